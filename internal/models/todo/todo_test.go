package todo_test

import (
	"testing"
	"time"

	"todoList/internal/models/todo"

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	item := &todo.Todo{ID: "a", Value: "old", Order: 2}

	assert.Nil(t, todo.WithValue(""))
	assert.Nil(t, todo.WithOrder(0))

	todo.Apply(item, todo.WithValue(""), todo.WithOrder(0))
	assert.Equal(t, "old", item.Value)
	assert.Equal(t, 2, item.Order)

	todo.Apply(item, todo.WithValue("new"), todo.WithOrder(5), todo.WithDone(true, now))
	assert.Equal(t, "new", item.Value)
	assert.Equal(t, 5, item.Order)
	assert.True(t, item.IsDone())
	assert.Equal(t, now, *item.DoneAt)

	todo.Apply(item, todo.WithDone(false, now))
	assert.False(t, item.IsDone())
}

