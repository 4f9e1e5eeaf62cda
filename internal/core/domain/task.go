package domain

import (
	"time"

	"github.com/google/uuid"
)

// Task is kept as an ownership index: deleting an account cascades over
// every task whose OwnerID matches. Task management itself lives behind
// the TaskRepository port.
type Task struct {
	ID        int
	UUID      uuid.UUID
	OwnerID   int
	Title     string `validate:"required,min=3,max=255"`
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
