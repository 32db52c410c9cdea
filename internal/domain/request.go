package domain

// JoinQueueRequest is the request body for joining the live queue.
type JoinQueueRequest struct {
	CustomerID string `json:"customer_id"`
}

// CancelQueueRequest is the request body for canceling a pending entry.
type CancelQueueRequest struct {
	CustomerID string `json:"customer_id"`
}

// AcceptRequest is the request body for accepting a queue entry.
type AcceptRequest struct {
	OfficialID string `json:"official_id"`
	QueueID    string `json:"queue_id"`
}

// RejectRequest is the request body for rejecting a queue entry.
type RejectRequest struct {
	OfficialID string `json:"official_id"`
	QueueID    string `json:"queue_id"`
	Reason     string `json:"reason"`
}

// EndSessionRequest is the request body for ending a session.
type EndSessionRequest struct {
	SessionID string `json:"session_id"`
	EndedBy   string `json:"ended_by"`
}

// CreateSessionRequest is the request body for creating a session
// directly (chatbot mode bookkeeping).
type CreateSessionRequest struct {
	UserID      string `json:"user_id"`
	SessionType string `json:"session_type"`
}
