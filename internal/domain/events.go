package domain

import (
	"encoding/json"
	"time"
)

// PushEvent is one unit of fan-out delivery on a notification or chat
// channel: a tagged event with an optional JSON payload.
type PushEvent struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewPushEvent builds a PushEvent, marshaling data when present.
func NewPushEvent(event EventType, data interface{}) PushEvent {
	ev := PushEvent{Event: event}
	if data == nil {
		return ev
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return ev
	}
	ev.Data = raw
	return ev
}

// QueuedData is the data for a queued event.
type QueuedData struct {
	QueueID string      `json:"queue_id"`
	Status  QueueStatus `json:"status"`
}

// QueueCanceledData is the data for a queue_canceled event.
type QueueCanceledData struct {
	QueueID string `json:"queue_id"`
}

// AcceptedData is the data for an accepted event.
type AcceptedData struct {
	SessionID  string `json:"session_id"`
	OfficialID string `json:"official_id"`
}

// RejectedData is the data for a rejected event.
type RejectedData struct {
	Reason string `json:"reason"`
}

// ChatEndedData is the data for a chat_ended event.
type ChatEndedData struct {
	SessionID string `json:"session_id"`
	EndedBy   string `json:"ended_by"`
}

// ChatConnectedData is the ack payload sent when a chat socket attaches.
type ChatConnectedData struct {
	SessionID string `json:"session_id"`
}

// ChatMessageData is the broadcast payload for a persisted message.
type ChatMessageData struct {
	InteractionID string    `json:"interaction_id"`
	SessionID     string    `json:"session_id"`
	SenderID      string    `json:"sender_id"`
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
}
