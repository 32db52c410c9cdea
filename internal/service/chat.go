package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xiaot623/livechat/internal/domain"
)

// SendChatMessage persists a message and then broadcasts it to every
// connection attached to the session. The per-session lock keeps
// delivery order equal to persistence order when several connections
// send at once.
func (s *Service) SendChatMessage(ctx context.Context, sessionID, senderID, text string) (*domain.Message, error) {
	lock := s.sessionSendLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	msg := &domain.Message{
		InteractionID: "int_" + uuid.New().String()[:8],
		SessionID:     sessionID,
		SenderID:      senderID,
		Text:          text,
		Timestamp:     time.Now(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to persist message: %w", err)
	}

	// Broadcast only after the row is durable. Delivery failures prune
	// dead connections inside the hub and never roll the message back.
	s.chat.BroadcastJSON(sessionID, domain.NewPushEvent(domain.EventTypeChatMessage, domain.ChatMessageData{
		InteractionID: msg.InteractionID,
		SessionID:     sessionID,
		SenderID:      senderID,
		Message:       text,
		Timestamp:     msg.Timestamp,
	}))

	return msg, nil
}
