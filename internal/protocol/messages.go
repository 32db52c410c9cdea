// Package protocol defines the WebSocket frames exchanged on chat
// sockets. Outbound frames reuse the tagged event envelope
// (domain.PushEvent); inbound frames are defined here.
package protocol

// ChatSendMessage is the inbound frame a client posts into its session.
type ChatSendMessage struct {
	SenderID string `json:"sender_id"`
	Message  string `json:"message"`
}

// ErrorMessage is sent to a client when a frame cannot be handled.
type ErrorMessage struct {
	Event   string `json:"event"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeInternalError  = "internal_error"
)

// NewError builds an ErrorMessage frame.
func NewError(code, message string) ErrorMessage {
	return ErrorMessage{Event: "error", Code: code, Message: message}
}
