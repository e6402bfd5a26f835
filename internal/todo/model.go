package todo

import (
	"time"

	"github.com/google/uuid"
)

// Todo is the domain model. UserID is the owning user and is immutable
// after creation; ownership is never transferred.
type Todo struct {
	ID        uuid.UUID
	Content   string
	IsDone    bool
	UserID    uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdatePatch carries the updatable fields; nil means "leave unchanged".
// At least one field must be set, which the handler enforces before the
// service is called.
type UpdatePatch struct {
	Content *string
	IsDone  *bool
}
