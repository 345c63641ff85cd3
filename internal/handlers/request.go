package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"todoList/internal/handlers/dto"
	"todoList/internal/service"
)

const (
	codeUnsupportedMediaType = "UNSUPPORTED_MEDIA_TYPE"
	codeBodyTooLarge         = "BODY_TOO_LARGE"
)

// decodeBody разбирает тело как JSON или как форму (dto.Form).
// Пустое тело считается пустым объектом.
func decodeBody(r *http.Request) (any, error) {
	switch {
	case checkContentType(r, contentTypeForm):
		if err := r.ParseForm(); err != nil {
			return nil, bodyError(err, "request body is not a valid form")
		}
		body := make(dto.Form, len(r.PostForm))
		for key, values := range r.PostForm {
			if len(values) > 0 {
				body[key] = values[0]
			}
		}
		return body, nil

	case r.Header.Get("Content-Type") == "", checkContentType(r, contentTypeJSON):
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, bodyError(err, "request body could not be read")
		}
		if len(bytes.TrimSpace(raw)) == 0 {
			return map[string]any{}, nil
		}

		var body any
		dec := json.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&body); err != nil {
			return nil, bodyError(err, "request body is not valid JSON")
		}
		if dec.More() {
			return nil, service.NewValidationError("", "request body must contain a single JSON value")
		}
		return body, nil

	default:
		return nil, service.NewBusinessError(codeUnsupportedMediaType,
			"Content-Type must be application/json or application/x-www-form-urlencoded",
			service.ToDetail("received", r.Header.Get("Content-Type")))
	}
}

func bodyError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return service.NewBusinessError(codeBodyTooLarge, "request body is too large",
			service.ToDetail("limit", tooLarge.Limit))
	}
	busErr := service.NewValidationError("", message)
	busErr.Err = err
	return busErr
}
