package domain

import "time"

// QueueEntry represents a customer's pending request for a live session.
type QueueEntry struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	Status     QueueStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

// QueueEntrySummary is a waiting queue entry enriched with customer
// display fields for the official-facing queue list.
type QueueEntrySummary struct {
	ID            string      `json:"id"`
	CustomerID    string      `json:"customer_id"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	Status        QueueStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}
