package domain

import "time"

// EventType names a workflow notification.
type EventType string

const (
	EventSubmitted EventType = "request_submitted"
	EventAdvanced  EventType = "request_advanced"  // approved, moved to the next stage
	EventCompleted EventType = "request_completed" // approved at the last stage
	EventRejected  EventType = "request_rejected"
)

// NotificationEvent is emitted fire-and-forget after a committed transition.
type NotificationEvent struct {
	EventType  EventType     `json:"eventType"`
	RequestID  string        `json:"requestID"`
	NewStatus  RequestStatus `json:"newStatus"`
	ActorID    string        `json:"actorID"`
	OccurredAt time.Time     `json:"occurredAt"`
}
