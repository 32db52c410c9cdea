package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/livechat/internal/domain"
)

// AcceptQueueEntry assigns a waiting entry to an official. A single
// transaction flips the entry to accepted, claims one unit of the
// official's capacity, and creates the session with both participants.
// Of N concurrent accepts on the same entry exactly one wins.
func (s *Service) AcceptQueueEntry(ctx context.Context, officialID, queueID string) (*domain.ChatSession, error) {
	session := &domain.ChatSession{
		SessionID:   "sess_" + uuid.New().String()[:8],
		SessionType: domain.SessionTypeLive,
		StartTime:   time.Now(),
	}

	customerID, err := s.store.AcceptLiveSession(ctx, queueID, officialID, session)
	if err != nil {
		return nil, err
	}
	log.Printf("Queue entry %s accepted by %s, session %s", queueID, officialID, session.SessionID)

	s.notif.SendToCustomer(customerID, domain.NewPushEvent(domain.EventTypeAccepted, domain.AcceptedData{
		SessionID:  session.SessionID,
		OfficialID: officialID,
	}))
	s.notif.SendToAllOfficials(domain.NewPushEvent(domain.EventTypeQueueUpdated, nil))

	return session, nil
}

// RejectQueueEntry marks a waiting entry rejected and tells the
// customer why. A missing or no-longer-waiting entry reports ok=false
// instead of an error.
func (s *Service) RejectQueueEntry(ctx context.Context, officialID, queueID, reason string) (bool, error) {
	entry, err := s.store.GetQueueEntry(ctx, queueID)
	if err != nil {
		return false, fmt.Errorf("failed to get queue entry: %w", err)
	}
	if entry == nil {
		return false, nil
	}

	ok, err := s.store.TransitionQueueStatus(ctx, queueID, domain.QueueStatusWaiting, domain.QueueStatusRejected)
	if err != nil {
		return false, fmt.Errorf("failed to reject queue entry: %w", err)
	}
	if !ok {
		return false, nil
	}
	log.Printf("Queue entry %s rejected by %s", queueID, officialID)

	s.notif.SendToCustomer(entry.CustomerID, domain.NewPushEvent(domain.EventTypeRejected, domain.RejectedData{
		Reason: reason,
	}))
	s.notif.SendToAllOfficials(domain.NewPushEvent(domain.EventTypeQueueUpdated, nil))

	return true, nil
}
