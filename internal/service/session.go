package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/livechat/internal/domain"
)

// EndSession ends a live session on behalf of one of its participants.
// The official participant's capacity is released exactly once; ending
// an already-ended session reports ErrSessionAlreadyEnded.
func (s *Service) EndSession(ctx context.Context, sessionID, endedBy string) error {
	participants, err := s.store.EndLiveSession(ctx, sessionID, endedBy, time.Now())
	if err != nil {
		return err
	}
	log.Printf("Session %s ended by %s", sessionID, endedBy)

	ended := domain.NewPushEvent(domain.EventTypeChatEnded, domain.ChatEndedData{
		SessionID: sessionID,
		EndedBy:   endedBy,
	})
	s.chat.BroadcastJSON(sessionID, ended)
	// Each participant only has subscribers in the registry matching
	// their role, so pushing on both reaches exactly the right one.
	for _, userID := range participants {
		s.notif.SendToCustomer(userID, ended)
		s.notif.SendToOfficial(userID, ended)
	}

	s.dropSessionSendLock(sessionID)
	return nil
}

// ListActiveSessions returns the official's open live sessions, each
// resolving the counterpart's display name.
func (s *Service) ListActiveSessions(ctx context.Context, officialID string) ([]domain.SessionSummary, error) {
	sessions, err := s.store.ListActiveSessionsByOfficial(ctx, officialID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return sessions, nil
}

// ListCustomerSessions returns the customer's live sessions newest
// first, enriched with a last-message preview.
func (s *Service) ListCustomerSessions(ctx context.Context, customerID string) ([]domain.SessionSummary, error) {
	sessions, err := s.store.ListSessionsByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list customer sessions: %w", err)
	}
	return sessions, nil
}

// GetSessionMessages returns a session's history in chronological
// order. A limit of 0 means the full history.
func (s *Service) GetSessionMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	session, err := s.store.GetChatSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}

	messages, err := s.store.GetMessages(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

// CreateChatSession creates a chatbot or live session directly with a
// single participant. Live assignment normally goes through accept;
// this is the bookkeeping entry point for chatbot-mode conversations.
func (s *Service) CreateChatSession(ctx context.Context, userID string, sessionType domain.SessionType) (*domain.ChatSession, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrCustomerNotFound
	}

	session := &domain.ChatSession{
		SessionID:   "sess_" + uuid.New().String()[:8],
		SessionType: sessionType,
		StartTime:   time.Now(),
	}
	if err := s.store.CreateSessionWithParticipants(ctx, session, []string{userID}); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// DeleteChatSession removes a session together with its participants
// and messages. When userID is given the caller must be a participant.
func (s *Service) DeleteChatSession(ctx context.Context, sessionID, userID string) error {
	session, err := s.store.GetChatSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return domain.ErrSessionNotFound
	}

	if userID != "" {
		participants, err := s.store.GetParticipants(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to get participants: %w", err)
		}
		if !contains(participants, userID) {
			return domain.ErrNotSessionParticipant
		}
	}

	deleted, err := s.store.DeleteChatSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if !deleted {
		return domain.ErrSessionNotFound
	}

	s.dropSessionSendLock(sessionID)
	return nil
}

// AuthorizeChatJoin checks that a session is open and the sender is a
// participant before a chat socket may attach to it.
func (s *Service) AuthorizeChatJoin(ctx context.Context, sessionID, senderID string) error {
	session, err := s.store.GetChatSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return domain.ErrSessionNotFound
	}
	if session.Ended() {
		return domain.ErrSessionAlreadyEnded
	}

	participants, err := s.store.GetParticipants(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	if !contains(participants, senderID) {
		return domain.ErrNotSessionParticipant
	}
	return nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
