package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/citizen-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginSucceeded EventType = "login_succeeded"
	EventLoginFailed    EventType = "login_failed"
	EventLogout         EventType = "logout"
	EventUserRegistered EventType = "user_registered"
)

// Actor describes who triggered an event.
type Actor struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role,omitempty"`
}

// Event represents an authentication event emitted by handlers.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Actor     Actor     `json:"actor"`
	Reason    string    `json:"reason,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent stamps a new event with an id and the current time.
func NewEvent(eventType EventType, actor Actor) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	}
}
