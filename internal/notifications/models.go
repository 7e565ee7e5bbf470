package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Level is the visual severity of a toast
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Toast is a transient notification pushed to connected dashboard clients
type Toast struct {
	ID          uuid.UUID `json:"id"`
	Level       Level     `json:"level"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// Notifier is the side channel services use to surface transient feedback.
// Implementations must never block or fail the calling operation.
type Notifier interface {
	Toast(level Level, title, description string)
}
