package history

import (
	"context"
	"time"
)

// EventType classifies a lifecycle or backup event.
type EventType string

const (
	EventStart           EventType = "process_start"
	EventStop            EventType = "process_stop"
	EventKill            EventType = "process_kill"
	EventAdopt           EventType = "process_adopt"
	EventBackupSuccess   EventType = "backup_success"
	EventBackupError     EventType = "backup_error"
	EventBackupCancelled EventType = "backup_cancelled"
	EventBackupDeleted   EventType = "backup_deleted"
)

// Event is one audit record exported to external systems.
type Event struct {
	Type       EventType `json:"type"`
	Name       string    `json:"name"`
	Detail     string    `json:"detail,omitempty"`
	PID        int       `json:"pid,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Sink is a destination for history events. Implementations must be safe
// for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}
