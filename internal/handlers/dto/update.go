package dto

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldError - ошибка разбора одного поля запроса
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

func fieldError(field, format string, args ...any) *FieldError {
	return &FieldError{
		Field:   field,
		Message: fmt.Sprintf("%q ", field) + fmt.Sprintf(format, args...),
	}
}

// Form - тело application/x-www-form-urlencoded, все значения строки
type Form map[string]any

// ParseUpdateTodo разбирает тело PATCH с правилами истинности JSON-значений:
// order и value с ложным значением пропускаются, а присутствующий ключ done
// всегда меняет состояние. Только в Form строка done читается как bool.
// Неизвестные ключи игнорируются.
func ParseUpdateTodo(body any) (UpdateTodoRequest, error) {
	var req UpdateTodoRequest

	var fields map[string]any
	form := false
	switch b := body.(type) {
	case Form:
		fields, form = b, true
	case map[string]any:
		fields = b
	default:
		return req, &FieldError{Message: "request body must be an object"}
	}

	if raw, ok := fields["order"]; ok && truthy(raw) {
		order, err := parseOrder(raw)
		if err != nil {
			return req, err
		}
		req.Order = &order
	}

	if raw, ok := fields["done"]; ok {
		done, err := parseDone(raw, form)
		if err != nil {
			return req, err
		}
		req.Done = &done
	}

	if raw, ok := fields["value"]; ok && truthy(raw) {
		value, err := parseValue(raw)
		if err != nil {
			return req, err
		}
		req.Value = &value
	}

	return req, nil
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0 && !math.IsNaN(val)
	case string:
		return val != ""
	default:
		return true
	}
}

func parseOrder(raw any) (int, error) {
	switch val := raw.(type) {
	case float64:
		if val != math.Trunc(val) || math.Abs(val) > math.MaxInt32 {
			return 0, fieldError("order", "must be an integer")
		}
		return int(val), nil
	case string:
		order, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fieldError("order", "must be an integer")
		}
		return order, nil
	default:
		return 0, fieldError("order", "must be an integer")
	}
}

func parseDone(raw any, form bool) (bool, error) {
	// форма присылает строки: "true", "1", "false", "0"; пустая строка - ложь
	if val, ok := raw.(string); ok && form && val != "" {
		done, err := strconv.ParseBool(val)
		if err != nil {
			return false, fieldError("done", "must be a boolean")
		}
		return done, nil
	}
	return truthy(raw), nil
}

func parseValue(raw any) (string, error) {
	switch val := raw.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	default:
		return "", fieldError("value", "must be a string")
	}
}
