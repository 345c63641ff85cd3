package todo

import (
	"time"
)

// Todo - одна запись списка дел. ID назначает хранилище.
type Todo struct {
	ID     string     `json:"todoId"`
	Value  string     `json:"value"`
	Order  int        `json:"order"`
	DoneAt *time.Time `json:"doneAt"`
}

func (t *Todo) IsDone() bool {
	return t.DoneAt != nil
}

// Patch - частичное обновление; nil означает "не трогать"
type Patch struct {
	Order *int
	Done  *bool
	Value *string
}

