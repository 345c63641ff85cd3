package handlers

import (
	"errors"
	"net/http"
	"todoList/internal/handlers/dto"
	"todoList/internal/logger"
	"todoList/internal/middleware"
	"todoList/internal/service"
	"todoList/internal/validation"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "todo-list"

type TodoHandler struct {
	TodoService Service
	Health      HealthReporter
}

// NewTodoHandler: health может быть nil, тогда /health проверяет хранилище напрямую
func NewTodoHandler(todoService Service, health HealthReporter) *TodoHandler {
	return &TodoHandler{
		TodoService: todoService,
		Health:      health,
	}
}

func (h *TodoHandler) Root(w http.ResponseWriter, r *http.Request) error {
	responseWithJSON(w, http.StatusOK, toPayload("message", "Hi!"))
	return nil
}

func (h *TodoHandler) PostTodo(w http.ResponseWriter, r *http.Request) error {
	requestID := middleware.GetRequestID(r.Context())
	logger.HttpRequestInfo(r, "HTTP_IN: Создание записи", zap.String("request_id", requestID))

	body, err := decodeBody(r)
	if err != nil {
		return err
	}

	if form, ok := body.(dto.Form); ok {
		body = map[string]any(form)
	}

	req, err := validation.ValidateCreateTodo(body)
	if err != nil {
		var validationErr *validation.Error
		if errors.As(err, &validationErr) {
			return service.NewValidationError(validationErr.Field, validationErr.Message)
		}
		return err
	}

	item, err := h.TodoService.CreateTodo(r.Context(), req.Value)
	if err != nil {
		return err
	}

	logger.Info("HTTP: Запись создана",
		zap.String("request_id", requestID),
		zap.String("todo_id", item.ID),
		zap.Int("order", item.Order))

	responseWithJSON(w, http.StatusCreated, toPayload("todo", dto.FromTodo(item)))
	return nil
}

func (h *TodoHandler) GetTodos(w http.ResponseWriter, r *http.Request) error {
	todos, err := h.TodoService.GetTodos(r.Context())
	if err != nil {
		return err
	}

	responseWithJSON(w, http.StatusOK, toPayload("todos", dto.FromTodoList(todos)))
	return nil
}

func (h *TodoHandler) PatchTodo(w http.ResponseWriter, r *http.Request) error {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")
	logger.HttpRequestInfo(r, "HTTP_IN: Обновление записи",
		zap.String("request_id", requestID),
		zap.String("todo_id", id))

	body, err := decodeBody(r)
	if err != nil {
		return err
	}

	req, err := dto.ParseUpdateTodo(body)
	if err != nil {
		// неизвестная запись важнее кривого тела: сначала 404
		if _, lookupErr := h.TodoService.GetTodoByID(r.Context(), id); lookupErr != nil {
			return lookupErr
		}
		var fieldErr *dto.FieldError
		if errors.As(err, &fieldErr) {
			return service.NewValidationError(fieldErr.Field, fieldErr.Message)
		}
		return err
	}

	if err := h.TodoService.UpdateTodo(r.Context(), id, req.ToPatch()); err != nil {
		return err
	}

	responseWithJSON(w, http.StatusOK)
	return nil
}

func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) error {
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "id")
	logger.HttpRequestInfo(r, "HTTP_IN: Удаление записи",
		zap.String("request_id", requestID),
		zap.String("todo_id", id))

	if err := h.TodoService.DeleteTodo(r.Context(), id); err != nil {
		return err
	}

	responseWithJSON(w, http.StatusOK)
	return nil
}
