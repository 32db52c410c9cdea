package domain

import "time"

// ChatSession represents a conversation session. Live sessions are
// created by acceptance; chatbot sessions are created directly.
// EndTime is nil while the session is open and set exactly once.
type ChatSession struct {
	SessionID   string      `json:"session_id"`
	SessionType SessionType `json:"session_type"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     *time.Time  `json:"end_time,omitempty"`
}

// Ended reports whether the session has been ended.
func (s *ChatSession) Ended() bool {
	return s.EndTime != nil
}

// Participant is a session membership record. A live session has
// exactly two participants, created atomically with the session.
type Participant struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

// SessionSummary is a session enriched with the counterpart
// participant and last-message preview for listing endpoints.
type SessionSummary struct {
	SessionID       string      `json:"session_id"`
	SessionType     SessionType `json:"session_type"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         *time.Time  `json:"end_time,omitempty"`
	CounterpartID   string      `json:"counterpart_id,omitempty"`
	CounterpartName string      `json:"counterpart_name,omitempty"`
	LastMessage     string      `json:"last_message,omitempty"`
	LastMessageTime *time.Time  `json:"last_message_time,omitempty"`
}

// Message represents a single persisted chat interaction.
type Message struct {
	InteractionID string    `json:"interaction_id"`
	SessionID     string    `json:"session_id"`
	SenderID      string    `json:"sender_id"`
	Text          string    `json:"message_text"`
	Timestamp     time.Time `json:"timestamp"`
	IsFromBot     bool      `json:"is_from_bot"`
}
