package service

import (
	"sync"

	"github.com/xiaot623/livechat/internal/config"
	"github.com/xiaot623/livechat/internal/hub"
	"github.com/xiaot623/livechat/internal/repository"
	"github.com/xiaot623/livechat/policy"
)

type Service struct {
	store        store.Store
	notif        *hub.NotifHub
	chat         *hub.ChatHub
	config       *config.Config
	policyEngine *policy.Engine

	// sendMu guards sessionSends. Each session's lock serializes that
	// session's persist-then-broadcast path, so delivery order always
	// matches persistence order.
	sendMu       sync.Mutex
	sessionSends map[string]*sync.Mutex
}

func New(store store.Store, notif *hub.NotifHub, chat *hub.ChatHub, cfg *config.Config, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        store,
		notif:        notif,
		chat:         chat,
		config:       cfg,
		policyEngine: policyEngine,
		sessionSends: make(map[string]*sync.Mutex),
	}
}

// sessionSendLock returns the session's send lock, creating it on first
// use.
func (s *Service) sessionSendLock(sessionID string) *sync.Mutex {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	m, ok := s.sessionSends[sessionID]
	if !ok {
		m = &sync.Mutex{}
		s.sessionSends[sessionID] = m
	}
	return m
}

// dropSessionSendLock forgets the lock of an ended or deleted session.
func (s *Service) dropSessionSendLock(sessionID string) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	delete(s.sessionSends, sessionID)
}
