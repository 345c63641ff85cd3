// Package validation checks request payloads against embedded JSON schemas
// before they reach the service layer.
package validation

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	ValueField     = "value"
	MaxValueLength = 50
)

//go:embed schemas/create_todo.json
var createTodoSchemaJSON []byte

var createTodoSchema = mustCompile("create_todo.json", createTodoSchemaJSON)

// CreateTodo - проверенное тело запроса на создание
type CreateTodo struct {
	Value string
}

// Error описывает первое нарушение схемы
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ValidateCreateTodo принимает уже разобранное тело (JSON или форма)
func ValidateCreateTodo(payload any) (CreateTodo, error) {
	if err := createTodoSchema.Validate(payload); err != nil {
		return CreateTodo{}, toError(err)
	}

	// схема гарантирует объект со строковым value
	body := payload.(map[string]any)
	return CreateTodo{Value: body[ValueField].(string)}, nil
}

func mustCompile(url string, schema []byte) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(url, bytes.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("validation: add schema %s: %v", url, err))
	}
	return compiler.MustCompile(url)
}

func toError(err error) *Error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &Error{Message: err.Error()}
	}
	return describe(firstLeaf(ve))
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}

var quoted = regexp.MustCompile(`'([^']*)'`)

func describe(leaf *jsonschema.ValidationError) *Error {
	kw := leaf.KeywordLocation
	value := fmt.Sprintf("%q", ValueField)

	switch {
	case kw == "/type":
		return &Error{Message: "request body must be an object"}
	case strings.HasSuffix(kw, "/required"):
		return &Error{Field: ValueField, Message: value + " is required"}
	case strings.HasSuffix(kw, "/additionalProperties"):
		field := ""
		if m := quoted.FindStringSubmatch(leaf.Message); m != nil {
			field = m[1]
		}
		return &Error{Field: field, Message: fmt.Sprintf("%q is not allowed", field)}
	case strings.HasSuffix(kw, "/properties/value/type"):
		return &Error{Field: ValueField, Message: value + " must be a string"}
	case strings.HasSuffix(kw, "/properties/value/minLength"):
		return &Error{Field: ValueField, Message: value + " is not allowed to be empty"}
	case strings.HasSuffix(kw, "/properties/value/maxLength"):
		return &Error{
			Field:   ValueField,
			Message: fmt.Sprintf("%s length must be less than or equal to %d characters long", value, MaxValueLength),
		}
	default:
		return &Error{Message: leaf.Message}
	}
}
