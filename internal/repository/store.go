// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"time"

	"github.com/xiaot623/livechat/internal/domain"
)

// Store defines the interface for data persistence.
type Store interface {
	// Directory operations
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	CreateOfficialProfile(ctx context.Context, profile *domain.OfficialProfile) error
	GetOfficialProfile(ctx context.Context, officialID string) (*domain.OfficialProfile, error)

	// Queue operations
	CreateQueueEntry(ctx context.Context, entry *domain.QueueEntry) error
	GetQueueEntry(ctx context.Context, queueID string) (*domain.QueueEntry, error)
	GetWaitingEntryByCustomer(ctx context.Context, customerID string) (*domain.QueueEntry, error)
	GetLatestEntryByCustomer(ctx context.Context, customerID string) (*domain.QueueEntry, error)
	TransitionQueueStatus(ctx context.Context, queueID string, from, to domain.QueueStatus) (bool, error)
	DeleteQueueEntry(ctx context.Context, queueID string) (bool, error)
	ListWaitingEntries(ctx context.Context) ([]domain.QueueEntrySummary, error)
	CountWaitingEntries(ctx context.Context) (int, error)

	// Assignment and session lifecycle (transactional)
	AcceptLiveSession(ctx context.Context, queueID, officialID string, session *domain.ChatSession) (string, error)
	EndLiveSession(ctx context.Context, sessionID, endedBy string, endTime time.Time) ([]string, error)

	// Session operations
	CreateSessionWithParticipants(ctx context.Context, session *domain.ChatSession, userIDs []string) error
	GetChatSession(ctx context.Context, sessionID string) (*domain.ChatSession, error)
	GetParticipants(ctx context.Context, sessionID string) ([]string, error)
	DeleteChatSession(ctx context.Context, sessionID string) (bool, error)
	ListActiveSessionsByOfficial(ctx context.Context, officialID string) ([]domain.SessionSummary, error)
	ListSessionsByCustomer(ctx context.Context, customerID string) ([]domain.SessionSummary, error)

	// Message operations
	CreateMessage(ctx context.Context, message *domain.Message) error
	GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)

	// Lifecycle
	Close() error
}
