package handlers

import (
	"context"
	"errors"
	"net/http"
	"todoList/internal/logger"
	"todoList/internal/middleware"
	"todoList/internal/service"

	"go.uber.org/zap"
)

const (
	internalErrorMessage = "internal server error"
	timeoutMessage       = "request timeout"
)

// HandlerFunc возвращает ошибку вместо записи ответа; её отрисует renderError
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// Handle - единая точка, где необработанные ошибки превращаются в JSON
func Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			renderError(w, r, err)
		}
	}
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("request_id", requestID),
			zap.String("error_code", businessErr.Code),
			zap.String("message", businessErr.Message),
			zap.Int("http_status", statusCode))

		responseWithError(w, statusCode, businessErr.Message)
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.Warn("HTTP: Запрос не уложился в таймаут",
			zap.String("request_id", requestID),
			zap.Error(err))
		responseWithError(w, http.StatusGatewayTimeout, timeoutMessage)
		return
	}

	logger.Error("HTTP: Необработанная ошибка", err,
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))

	responseWithError(w, http.StatusInternalServerError, internalErrorMessage)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case codeUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	case codeBodyTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}
