package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xiaot623/livechat/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

func seedUser(t *testing.T, s *SQLiteStore, userID, name string, status domain.UserStatus) {
	t.Helper()
	err := s.CreateUser(context.Background(), &domain.User{
		UserID:   userID,
		FullName: name,
		Email:    userID + "@example.com",
		Status:   status,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", userID, err)
	}
}

func seedOfficial(t *testing.T, s *SQLiteStore, officialID string, maxSessions int) {
	t.Helper()
	seedUser(t, s, officialID, "Official "+officialID, domain.UserStatusActive)
	err := s.CreateOfficialProfile(context.Background(), &domain.OfficialProfile{
		OfficialID:  officialID,
		MaxSessions: maxSessions,
		Status:      "available",
	})
	if err != nil {
		t.Fatalf("CreateOfficialProfile(%s) failed: %v", officialID, err)
	}
}

func seedWaitingEntry(t *testing.T, s *SQLiteStore, queueID, customerID string, createdAt time.Time) {
	t.Helper()
	err := s.CreateQueueEntry(context.Background(), &domain.QueueEntry{
		ID:         queueID,
		CustomerID: customerID,
		Status:     domain.QueueStatusWaiting,
		CreatedAt:  createdAt,
	})
	if err != nil {
		t.Fatalf("CreateQueueEntry(%s) failed: %v", queueID, err)
	}
}

func TestSQLiteStoreDirectory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	seedUser(t, store, "cust_1", "Casey Wu", domain.UserStatusActive)

	user, err := store.GetUser(ctx, "cust_1")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if user == nil || user.FullName != "Casey Wu" {
		t.Fatalf("unexpected user: %+v", user)
	}

	missing, err := store.GetUser(ctx, "nope")
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing user, got %+v", missing)
	}

	seedOfficial(t, store, "off_1", 4)
	profile, err := store.GetOfficialProfile(ctx, "off_1")
	if err != nil {
		t.Fatalf("GetOfficialProfile failed: %v", err)
	}
	if profile == nil || profile.MaxSessions != 4 || profile.CurrentSessions != 0 {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestSQLiteStoreQueueLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	seedUser(t, store, "cust_1", "Casey Wu", domain.UserStatusActive)
	base := time.Now().Add(-time.Hour)
	seedWaitingEntry(t, store, "q_1", "cust_1", base)

	entry, err := store.GetQueueEntry(ctx, "q_1")
	if err != nil {
		t.Fatalf("GetQueueEntry failed: %v", err)
	}
	if entry == nil || entry.Status != domain.QueueStatusWaiting {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	waiting, err := store.GetWaitingEntryByCustomer(ctx, "cust_1")
	if err != nil {
		t.Fatalf("GetWaitingEntryByCustomer failed: %v", err)
	}
	if waiting == nil || waiting.ID != "q_1" {
		t.Fatalf("unexpected waiting entry: %+v", waiting)
	}

	ok, err := store.TransitionQueueStatus(ctx, "q_1", domain.QueueStatusWaiting, domain.QueueStatusCanceled)
	if err != nil {
		t.Fatalf("TransitionQueueStatus failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected transition to succeed")
	}

	// A terminal entry cannot transition again.
	ok, err = store.TransitionQueueStatus(ctx, "q_1", domain.QueueStatusWaiting, domain.QueueStatusRejected)
	if err != nil {
		t.Fatalf("TransitionQueueStatus failed: %v", err)
	}
	if ok {
		t.Fatalf("expected transition of terminal entry to fail")
	}
	entry, _ = store.GetQueueEntry(ctx, "q_1")
	if entry.Status != domain.QueueStatusCanceled {
		t.Fatalf("terminal status changed: %+v", entry)
	}

	// Latest entry wins for status polling.
	seedWaitingEntry(t, store, "q_2", "cust_1", base.Add(time.Minute))
	latest, err := store.GetLatestEntryByCustomer(ctx, "cust_1")
	if err != nil {
		t.Fatalf("GetLatestEntryByCustomer failed: %v", err)
	}
	if latest == nil || latest.ID != "q_2" {
		t.Fatalf("unexpected latest entry: %+v", latest)
	}

	count, err := store.CountWaitingEntries(ctx)
	if err != nil {
		t.Fatalf("CountWaitingEntries failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 waiting entry, got %d", count)
	}

	deleted, err := store.DeleteQueueEntry(ctx, "q_2")
	if err != nil {
		t.Fatalf("DeleteQueueEntry failed: %v", err)
	}
	if !deleted {
		t.Fatalf("expected delete to report true")
	}
	deleted, err = store.DeleteQueueEntry(ctx, "q_2")
	if err != nil {
		t.Fatalf("DeleteQueueEntry failed: %v", err)
	}
	if deleted {
		t.Fatalf("expected delete of missing entry to report false")
	}
}

func TestSQLiteStoreListWaitingEntries(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	seedUser(t, store, "cust_1", "Casey Wu", domain.UserStatusActive)
	seedUser(t, store, "cust_2", "Dee Park", domain.UserStatusActive)
	base := time.Now().Add(-time.Hour)
	seedWaitingEntry(t, store, "q_2", "cust_2", base.Add(time.Minute))
	seedWaitingEntry(t, store, "q_1", "cust_1", base)

	entries, err := store.ListWaitingEntries(ctx)
	if err != nil {
		t.Fatalf("ListWaitingEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "q_1" || entries[1].ID != "q_2" {
		t.Fatalf("expected oldest-first order, got %+v", entries)
	}
	if entries[0].CustomerName != "Casey Wu" {
		t.Fatalf("expected enriched customer name, got %+v", entries[0])
	}
}

func TestSQLiteStoreAcceptLiveSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	seedUser(t, store, "cust_1", "Casey Wu", domain.UserStatusActive)
	seedOfficial(t, store, "off_1", 2)
	seedWaitingEntry(t, store, "q_1", "cust_1", time.Now())

	session := &domain.ChatSession{
		SessionID:   "sess_1",
		SessionType: domain.SessionTypeLive,
		StartTime:   time.Now(),
	}
	customerID, err := store.AcceptLiveSession(ctx, "q_1", "off_1", session)
	if err != nil {
		t.Fatalf("AcceptLiveSession failed: %v", err)
	}
	if customerID != "cust_1" {
		t.Fatalf("expected customer cust_1, got %s", customerID)
	}

	entry, _ := store.GetQueueEntry(ctx, "q_1")
	if entry.Status != domain.QueueStatusAccepted {
		t.Fatalf("expected accepted entry, got %+v", entry)
	}
	profile, _ := store.GetOfficialProfile(ctx, "off_1")
	if profile.CurrentSessions != 1 {
		t.Fatalf("expected capacity 1, got %d", profile.CurrentSessions)
	}
	participants, err := store.GetParticipants(ctx, "sess_1")
	if err != nil {
		t.Fatalf("GetParticipants failed: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %v", participants)
	}

	// Accepting the same entry again loses.
	_, err = store.AcceptLiveSession(ctx, "q_1", "off_1", &domain.ChatSession{
		SessionID: "sess_2", SessionType: domain.SessionTypeLive, StartTime: time.Now(),
	})
	if !errors.Is(err, domain.ErrQueueNotAvailable) {
		t.Fatalf("expected ErrQueueNotAvailable, got %v", err)
	}

	_, err = store.AcceptLiveSession(ctx, "q_missing", "off_1", &domain.ChatSession{
		SessionID: "sess_3", SessionType: domain.SessionTypeLive, StartTime: time.Now(),
	})
	if !errors.Is(err, domain.ErrQueueNotFound) {
		t.Fatalf("expected ErrQueueNotFound, got %v", err)
	}
}

func TestSQLiteStoreAcceptCapacityGuard(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	seedUser(t, store, "cust_1", "Casey Wu", domain.UserStatusActive)
	seedUser(t, store, "cust_2", "Dee Park", domain.UserStatusActive)
	seedOfficial(t, store, "off_1", 1)
	seedWaitingEntry(t, store, "q_1", "cust_1", time.Now())
	seedWaitingEntry(t, store, "q_2", "cust_2", time.Now())

	_, err := store.AcceptLiveSession(ctx, "q_1", "off_1", &domain.ChatSession{
		SessionID: "sess_1", SessionType: domain.SessionTypeLive, StartTime: time.Now(),
	})
	if err != nil {
		t.Fatalf("AcceptLiveSession failed: %v", err)
	}

	// At max capacity the accept fails and the transaction rolls back:
	// the entry stays waiting and no session or participants exist.
	_, err = store.AcceptLiveSession(ctx, "q_2", "off_1", &domain.ChatSession{
		SessionID: "sess_2", SessionType: domain.SessionTypeLive, StartTime: time.Now(),
	})
	if !errors.Is(err, domain.ErrMaxSessionsReached) {
		t.Fatalf("expected ErrMaxSessionsReached, got %v", err)
	}
	entry, _ := store.GetQueueEntry(ctx, "q_2")
	if entry.Status != domain.QueueStatusWaiting {
		t.Fatalf("expected rolled-back entry to stay waiting, got %+v", entry)
	}
	session, err := store.GetChatSession(ctx, "sess_2")
	if err != nil {
		t.Fatalf("GetChatSession failed: %v", err)
	}
	if session != nil {
		t.Fatalf("expected no session after rollback, got %+v", session)
	}
	profile, _ := store.GetOfficialProfile(ctx, "off_1")
	if profile.CurrentSessions != 1 {
		t.Fatalf("expected capacity unchanged at 1, got %d", profile.CurrentSessions)
	}

	_, err = store.AcceptLiveSession(ctx, "q_2", "off_missing", &domain.ChatSession{
		SessionID: "sess_3", SessionType: domain.SessionTypeLive, StartTime: time.Now(),
	})
	if !errors.Is(err, domain.ErrOfficialNotFound) {
		t.Fatalf("expected ErrOfficialNotFound, got %v", err)
	}
}

func TestSQLiteStoreAcceptSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	seedUser(t, store, "cust_1", "Casey Wu", domain.UserStatusActive)
	const officials = 8
	ids := make([]string, officials)
	for i := range ids {
		ids[i] = "off_" + string(rune('a'+i))
		seedOfficial(t, store, ids[i], 5)
	}
	seedWaitingEntry(t, store, "q_1", "cust_1", time.Now())

	var wg sync.WaitGroup
	errs := make([]error, officials)
	for i := 0; i < officials; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.AcceptLiveSession(ctx, "q_1", ids[i], &domain.ChatSession{
				SessionID:   "sess_" + ids[i],
				SessionType: domain.SessionTypeLive,
				StartTime:   time.Now(),
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, domain.ErrQueueNotAvailable):
		default:
			t.Fatalf("official %s got unexpected error: %v", ids[i], err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestSQLiteStoreConcurrentAcceptsRespectCapacity(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	seedOfficial(t, store, "off_1", 2)
	const customers = 6
	queueIDs := make([]string, customers)
	for i := range queueIDs {
		custID := "cust_" + string(rune('a'+i))
		seedUser(t, store, custID, "Customer "+custID, domain.UserStatusActive)
		queueIDs[i] = "q_" + custID
		seedWaitingEntry(t, store, queueIDs[i], custID, time.Now())
	}

	var wg sync.WaitGroup
	errs := make([]error, customers)
	for i := 0; i < customers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.AcceptLiveSession(ctx, queueIDs[i], "off_1", &domain.ChatSession{
				SessionID:   "sess_" + queueIDs[i],
				SessionType: domain.SessionTypeLive,
				StartTime:   time.Now(),
			})
		}(i)
	}
	wg.Wait()

	accepted := 0
	for i, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, domain.ErrMaxSessionsReached):
		default:
			t.Fatalf("accept %s got unexpected error: %v", queueIDs[i], err)
		}
	}
	if accepted != 2 {
		t.Fatalf("expected exactly 2 accepts within capacity, got %d", accepted)
	}
	profile, _ := store.GetOfficialProfile(ctx, "off_1")
	if profile.CurrentSessions != 2 {
		t.Fatalf("capacity invariant violated: %d", profile.CurrentSessions)
	}
}

func TestSQLiteStoreEndLiveSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	seedUser(t, store, "cust_1", "Casey Wu", domain.UserStatusActive)
	seedOfficial(t, store, "off_1", 2)
	seedWaitingEntry(t, store, "q_1", "cust_1", time.Now())
	_, err := store.AcceptLiveSession(ctx, "q_1", "off_1", &domain.ChatSession{
		SessionID: "sess_1", SessionType: domain.SessionTypeLive, StartTime: time.Now(),
	})
	if err != nil {
		t.Fatalf("AcceptLiveSession failed: %v", err)
	}

	_, err = store.EndLiveSession(ctx, "sess_1", "stranger", time.Now())
	if !errors.Is(err, domain.ErrNotSessionParticipant) {
		t.Fatalf("expected ErrNotSessionParticipant, got %v", err)
	}

	participants, err := store.EndLiveSession(ctx, "sess_1", "cust_1", time.Now())
	if err != nil {
		t.Fatalf("EndLiveSession failed: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %v", participants)
	}

	session, _ := store.GetChatSession(ctx, "sess_1")
	if session.EndTime == nil {
		t.Fatalf("expected end_time to be set")
	}
	profile, _ := store.GetOfficialProfile(ctx, "off_1")
	if profile.CurrentSessions != 0 {
		t.Fatalf("expected capacity released to 0, got %d", profile.CurrentSessions)
	}

	// Ending twice reports already ended and does not decrement again.
	_, err = store.EndLiveSession(ctx, "sess_1", "cust_1", time.Now())
	if !errors.Is(err, domain.ErrSessionAlreadyEnded) {
		t.Fatalf("expected ErrSessionAlreadyEnded, got %v", err)
	}
	profile, _ = store.GetOfficialProfile(ctx, "off_1")
	if profile.CurrentSessions != 0 {
		t.Fatalf("expected capacity floored at 0, got %d", profile.CurrentSessions)
	}

	_, err = store.EndLiveSession(ctx, "sess_missing", "cust_1", time.Now())
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSQLiteStoreSessionListings(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	seedUser(t, store, "cust_1", "Casey Wu", domain.UserStatusActive)
	seedOfficial(t, store, "off_1", 5)

	base := time.Now().Add(-2 * time.Hour)
	older := &domain.ChatSession{
		SessionID: "sess_old", SessionType: domain.SessionTypeLive, StartTime: base,
	}
	if err := store.CreateSessionWithParticipants(ctx, older, []string{"cust_1", "off_1"}); err != nil {
		t.Fatalf("CreateSessionWithParticipants failed: %v", err)
	}
	newer := &domain.ChatSession{
		SessionID: "sess_new", SessionType: domain.SessionTypeLive, StartTime: base.Add(time.Hour),
	}
	if err := store.CreateSessionWithParticipants(ctx, newer, []string{"cust_1", "off_1"}); err != nil {
		t.Fatalf("CreateSessionWithParticipants failed: %v", err)
	}

	long := strings.Repeat("x", 60)
	msg := &domain.Message{
		InteractionID: "int_1",
		SessionID:     "sess_new",
		SenderID:      "cust_1",
		Text:          long,
		Timestamp:     base.Add(time.Hour + time.Minute),
	}
	if err := store.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	active, err := store.ListActiveSessionsByOfficial(ctx, "off_1")
	if err != nil {
		t.Fatalf("ListActiveSessionsByOfficial failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active sessions, got %d", len(active))
	}
	if active[0].SessionID != "sess_old" {
		t.Fatalf("expected oldest-first active order, got %+v", active)
	}
	if active[0].CounterpartName != "Casey Wu" {
		t.Fatalf("expected counterpart name, got %+v", active[0])
	}

	// Ending a session removes it from the active list.
	if _, err := store.EndLiveSession(ctx, "sess_old", "off_1", time.Now()); err != nil {
		t.Fatalf("EndLiveSession failed: %v", err)
	}
	active, _ = store.ListActiveSessionsByOfficial(ctx, "off_1")
	if len(active) != 1 || active[0].SessionID != "sess_new" {
		t.Fatalf("expected only the open session, got %+v", active)
	}

	history, err := store.ListSessionsByCustomer(ctx, "cust_1")
	if err != nil {
		t.Fatalf("ListSessionsByCustomer failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(history))
	}
	if history[0].SessionID != "sess_new" {
		t.Fatalf("expected newest-first order, got %+v", history)
	}
	if history[0].LastMessage != strings.Repeat("x", 50)+"..." {
		t.Fatalf("expected truncated preview, got %q", history[0].LastMessage)
	}
	if history[0].LastMessageTime == nil {
		t.Fatalf("expected last message time")
	}
	if history[0].CounterpartName != "Official off_1" {
		t.Fatalf("expected official name, got %+v", history[0])
	}
}

func TestSQLiteStoreMessages(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	seedUser(t, store, "cust_1", "Casey Wu", domain.UserStatusActive)
	session := &domain.ChatSession{
		SessionID: "sess_1", SessionType: domain.SessionTypeChatbot, StartTime: time.Now(),
	}
	if err := store.CreateSessionWithParticipants(ctx, session, []string{"cust_1"}); err != nil {
		t.Fatalf("CreateSessionWithParticipants failed: %v", err)
	}

	base := time.Now().Add(-time.Minute)
	for i, text := range []string{"first", "second", "third"} {
		msg := &domain.Message{
			InteractionID: "int_" + text,
			SessionID:     "sess_1",
			SenderID:      "cust_1",
			Text:          text,
			Timestamp:     base.Add(time.Duration(i) * time.Second),
		}
		if err := store.CreateMessage(ctx, msg); err != nil {
			t.Fatalf("CreateMessage failed: %v", err)
		}
	}

	messages, err := store.GetMessages(ctx, "sess_1", 0)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	if messages[0].Text != "first" || messages[2].Text != "third" {
		t.Fatalf("expected chronological order, got %+v", messages)
	}

	limited, err := store.GetMessages(ctx, "sess_1", 2)
	if err != nil {
		t.Fatalf("GetMessages failed: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("expected 2 messages with limit, got %d", len(limited))
	}
}

func TestSQLiteStoreDeleteChatSession(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	defer store.Close()

	seedUser(t, store, "cust_1", "Casey Wu", domain.UserStatusActive)
	session := &domain.ChatSession{
		SessionID: "sess_1", SessionType: domain.SessionTypeChatbot, StartTime: time.Now(),
	}
	if err := store.CreateSessionWithParticipants(ctx, session, []string{"cust_1"}); err != nil {
		t.Fatalf("CreateSessionWithParticipants failed: %v", err)
	}
	msg := &domain.Message{
		InteractionID: "int_1", SessionID: "sess_1", SenderID: "cust_1",
		Text: "hello", Timestamp: time.Now(),
	}
	if err := store.CreateMessage(ctx, msg); err != nil {
		t.Fatalf("CreateMessage failed: %v", err)
	}

	deleted, err := store.DeleteChatSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("DeleteChatSession failed: %v", err)
	}
	if !deleted {
		t.Fatalf("expected delete to report true")
	}
	got, _ := store.GetChatSession(ctx, "sess_1")
	if got != nil {
		t.Fatalf("expected session gone, got %+v", got)
	}
	messages, _ := store.GetMessages(ctx, "sess_1", 0)
	if len(messages) != 0 {
		t.Fatalf("expected messages gone, got %d", len(messages))
	}

	deleted, err = store.DeleteChatSession(ctx, "sess_1")
	if err != nil {
		t.Fatalf("DeleteChatSession failed: %v", err)
	}
	if deleted {
		t.Fatalf("expected delete of missing session to report false")
	}
}
