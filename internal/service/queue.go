package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/livechat/internal/domain"
)

// JoinQueue places a customer into the waiting queue. A customer who
// already holds a waiting entry gets that entry back unchanged.
func (s *Service) JoinQueue(ctx context.Context, customerID string) (*domain.QueueEntry, error) {
	user, err := s.store.GetUser(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	if user == nil {
		return nil, domain.ErrCustomerNotFound
	}
	if user.Status != domain.UserStatusActive {
		return nil, domain.ErrCustomerBanned
	}

	existing, err := s.store.GetWaitingEntryByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending entry: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	waiting, err := s.store.CountWaitingEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count waiting entries: %w", err)
	}

	decision, reason, err := s.policyEngine.Evaluate(ctx, map[string]interface{}{
		"customer_id":     customerID,
		"customer_status": string(user.Status),
		"waiting_count":   waiting,
		"max_queue_depth": s.config.MaxQueueDepth,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: policy evaluation failed: %v", domain.ErrInternal, err)
	}
	if decision == "block" {
		if reason == "" {
			reason = "blocked by policy"
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrQueueNotAvailable, reason)
	}

	entry := &domain.QueueEntry{
		ID:         "q_" + uuid.New().String()[:8],
		CustomerID: customerID,
		Status:     domain.QueueStatusWaiting,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateQueueEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create queue entry: %w", err)
	}

	s.notif.SendToCustomer(customerID, domain.NewPushEvent(domain.EventTypeQueued, domain.QueuedData{
		QueueID: entry.ID,
		Status:  entry.Status,
	}))
	s.notif.SendToAllOfficials(domain.NewPushEvent(domain.EventTypeQueueUpdated, nil))

	return entry, nil
}

// CancelQueue cancels the customer's waiting entry.
func (s *Service) CancelQueue(ctx context.Context, customerID string) (*domain.QueueEntry, error) {
	entry, err := s.store.GetWaitingEntryByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending entry: %w", err)
	}
	if entry == nil {
		return nil, domain.ErrNoPendingRequest
	}

	ok, err := s.store.TransitionQueueStatus(ctx, entry.ID, domain.QueueStatusWaiting, domain.QueueStatusCanceled)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel queue entry: %w", err)
	}
	if !ok {
		// Lost a race against an accept or reject in the meantime.
		return nil, domain.ErrNoPendingRequest
	}
	entry.Status = domain.QueueStatusCanceled

	s.notif.SendToCustomer(customerID, domain.NewPushEvent(domain.EventTypeQueueCanceled, domain.QueueCanceledData{
		QueueID: entry.ID,
	}))
	s.notif.SendToAllOfficials(domain.NewPushEvent(domain.EventTypeQueueUpdated, nil))

	return entry, nil
}

// GetQueueStatus returns the customer's most recent entry regardless of
// status, or nil when the customer never queued.
func (s *Service) GetQueueStatus(ctx context.Context, customerID string) (*domain.QueueEntry, error) {
	entry, err := s.store.GetLatestEntryByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue status: %w", err)
	}
	return entry, nil
}

// ListWaitingQueue returns waiting entries oldest first, enriched with
// customer display fields.
func (s *Service) ListWaitingQueue(ctx context.Context) ([]domain.QueueEntrySummary, error) {
	entries, err := s.store.ListWaitingEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting entries: %w", err)
	}
	return entries, nil
}

// DeleteQueueEntry hard-deletes an entry. Administrative escape hatch,
// no notifications.
func (s *Service) DeleteQueueEntry(ctx context.Context, queueID string) error {
	deleted, err := s.store.DeleteQueueEntry(ctx, queueID)
	if err != nil {
		return fmt.Errorf("failed to delete queue entry: %w", err)
	}
	if !deleted {
		return domain.ErrQueueNotFound
	}
	return nil
}
