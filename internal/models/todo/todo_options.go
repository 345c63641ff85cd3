package todo

import (
	"time"
)

type TodoOption func(*Todo)

// Опции возвращают nil, если изменять нечего.

func WithValue(value string) TodoOption {
	if value == "" {
		return nil
	}
	return func(t *Todo) {
		t.Value = value
	}
}

func WithOrder(order int) TodoOption {
	if order == 0 {
		return nil
	}
	return func(t *Todo) {
		t.Order = order
	}
}

func WithDone(done bool, now time.Time) TodoOption {
	return func(t *Todo) {
		if done {
			doneAt := now
			t.DoneAt = &doneAt
			return
		}
		t.DoneAt = nil
	}
}

func Apply(t *Todo, options ...TodoOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}
