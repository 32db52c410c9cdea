// Package domain defines the core domain models for the livechat engine.
package domain

// QueueStatus represents the lifecycle status of a queue entry.
// An entry is created waiting and transitions exactly once to a
// terminal status.
type QueueStatus string

const (
	QueueStatusWaiting  QueueStatus = "waiting"
	QueueStatusAccepted QueueStatus = "accepted"
	QueueStatusRejected QueueStatus = "rejected"
	QueueStatusCanceled QueueStatus = "canceled"
)

// Terminal reports whether the status can no longer change.
func (s QueueStatus) Terminal() bool {
	return s != QueueStatusWaiting
}

// SessionType represents the kind of a chat session.
type SessionType string

const (
	SessionTypeChatbot SessionType = "chatbot"
	SessionTypeLive    SessionType = "live"
)

// UserStatus represents the directory status of a user.
// Inactive users are banned from joining the queue.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// EventType represents the type of a push or chat event.
type EventType string

const (
	// Push channel events (per-user notification streams)
	EventTypeConnected     EventType = "connected"
	EventTypePing          EventType = "ping"
	EventTypeQueued        EventType = "queued"
	EventTypeQueueCanceled EventType = "queue_canceled"
	EventTypeAccepted      EventType = "accepted"
	EventTypeRejected      EventType = "rejected"
	EventTypeQueueUpdated  EventType = "queue_updated"
	EventTypeChatEnded     EventType = "chat_ended"

	// Chat channel events (per-session sockets)
	EventTypeChatConnected EventType = "chat_connected"
	EventTypeChatMessage   EventType = "message"
)
