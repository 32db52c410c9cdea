package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xiaot623/livechat/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Seed the demo directory
	if err := store.seedDirectory(); err != nil {
		log.Printf("Failed to seed directory: %v", err)
		// Don't fail startup for this
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active'
		)`,
		`CREATE TABLE IF NOT EXISTS admission_official_profiles (
			admission_official_id TEXT PRIMARY KEY,
			current_sessions INTEGER NOT NULL DEFAULT 0,
			max_sessions INTEGER NOT NULL DEFAULT 5,
			status TEXT NOT NULL DEFAULT 'available',
			FOREIGN KEY (admission_official_id) REFERENCES users(user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS live_chat_queue (
			id TEXT PRIMARY KEY,
			customer_id TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'waiting',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (customer_id) REFERENCES users(user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_customer ON live_chat_queue(customer_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_queue_status ON live_chat_queue(status, created_at)`,
		`CREATE TABLE IF NOT EXISTS chat_sessions (
			session_id TEXT PRIMARY KEY,
			session_type TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_open ON chat_sessions(session_type, end_time)`,
		`CREATE TABLE IF NOT EXISTS participants (
			session_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			PRIMARY KEY (session_id, user_id),
			FOREIGN KEY (session_id) REFERENCES chat_sessions(session_id),
			FOREIGN KEY (user_id) REFERENCES users(user_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_user ON participants(user_id)`,
		`CREATE TABLE IF NOT EXISTS chat_interactions (
			interaction_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			sender_id TEXT NOT NULL,
			message_text TEXT NOT NULL,
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			is_from_bot INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (session_id) REFERENCES chat_sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_session ON chat_interactions(session_id, timestamp)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

func (s *SQLiteStore) seedDirectory() error {
	ctx := context.Background()
	users := []domain.User{
		{UserID: "u_alice", FullName: "Alice Tran", Email: "alice@example.com", Status: domain.UserStatusActive},
		{UserID: "u_ben", FullName: "Ben Okafor", Email: "ben@example.com", Status: domain.UserStatusActive},
		{UserID: "o_dana", FullName: "Dana Park", Email: "dana@university.edu", Status: domain.UserStatusActive},
		{UserID: "o_eli", FullName: "Eli Stone", Email: "eli@university.edu", Status: domain.UserStatusActive},
	}
	for i := range users {
		if err := s.CreateUser(ctx, &users[i]); err != nil {
			// Ignore if exists
			if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return err
			}
		}
	}

	profiles := []domain.OfficialProfile{
		{OfficialID: "o_dana", MaxSessions: 5, Status: "available"},
		{OfficialID: "o_eli", MaxSessions: 3, Status: "available"},
	}
	for i := range profiles {
		if err := s.CreateOfficialProfile(ctx, &profiles[i]); err != nil {
			if !strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return err
			}
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser creates a directory user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (user_id, full_name, email, status) VALUES (?, ?, ?, ?)`,
		user.UserID, user.FullName, user.Email, user.Status)
	return err
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, full_name, email, status FROM users WHERE user_id = ?`,
		userID).Scan(&user.UserID, &user.FullName, &user.Email, &user.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateOfficialProfile creates an official capacity record.
func (s *SQLiteStore) CreateOfficialProfile(ctx context.Context, profile *domain.OfficialProfile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admission_official_profiles (admission_official_id, current_sessions, max_sessions, status) VALUES (?, ?, ?, ?)`,
		profile.OfficialID, profile.CurrentSessions, profile.MaxSessions, profile.Status)
	return err
}

// GetOfficialProfile retrieves an official's capacity record.
func (s *SQLiteStore) GetOfficialProfile(ctx context.Context, officialID string) (*domain.OfficialProfile, error) {
	var profile domain.OfficialProfile
	err := s.db.QueryRowContext(ctx,
		`SELECT admission_official_id, current_sessions, max_sessions, status FROM admission_official_profiles WHERE admission_official_id = ?`,
		officialID).Scan(&profile.OfficialID, &profile.CurrentSessions, &profile.MaxSessions, &profile.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateQueueEntry creates a new queue entry.
func (s *SQLiteStore) CreateQueueEntry(ctx context.Context, entry *domain.QueueEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO live_chat_queue (id, customer_id, status, created_at) VALUES (?, ?, ?, ?)`,
		entry.ID, entry.CustomerID, entry.Status, entry.CreatedAt)
	return err
}

// GetQueueEntry retrieves a queue entry by ID.
func (s *SQLiteStore) GetQueueEntry(ctx context.Context, queueID string) (*domain.QueueEntry, error) {
	return s.scanQueueEntry(s.db.QueryRowContext(ctx,
		`SELECT id, customer_id, status, created_at FROM live_chat_queue WHERE id = ?`,
		queueID))
}

// GetWaitingEntryByCustomer retrieves the customer's current waiting
// entry, if any.
func (s *SQLiteStore) GetWaitingEntryByCustomer(ctx context.Context, customerID string) (*domain.QueueEntry, error) {
	return s.scanQueueEntry(s.db.QueryRowContext(ctx,
		`SELECT id, customer_id, status, created_at FROM live_chat_queue
		 WHERE customer_id = ? AND status = ?
		 ORDER BY created_at DESC LIMIT 1`,
		customerID, domain.QueueStatusWaiting))
}

// GetLatestEntryByCustomer retrieves the most recently created entry
// for the customer regardless of status.
func (s *SQLiteStore) GetLatestEntryByCustomer(ctx context.Context, customerID string) (*domain.QueueEntry, error) {
	return s.scanQueueEntry(s.db.QueryRowContext(ctx,
		`SELECT id, customer_id, status, created_at FROM live_chat_queue
		 WHERE customer_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		customerID))
}

func (s *SQLiteStore) scanQueueEntry(row *sql.Row) (*domain.QueueEntry, error) {
	var entry domain.QueueEntry
	err := row.Scan(&entry.ID, &entry.CustomerID, &entry.Status, &entry.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// TransitionQueueStatus moves an entry from one status to another.
// Returns false when the entry is absent or no longer in the expected
// status, which is how concurrent transitions lose the race.
func (s *SQLiteStore) TransitionQueueStatus(ctx context.Context, queueID string, from, to domain.QueueStatus) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE live_chat_queue SET status = ? WHERE id = ? AND status = ?`,
		to, queueID, from)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// DeleteQueueEntry hard-deletes a queue entry.
func (s *SQLiteStore) DeleteQueueEntry(ctx context.Context, queueID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM live_chat_queue WHERE id = ?`, queueID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListWaitingEntries lists waiting entries oldest-first, enriched with
// customer display fields.
func (s *SQLiteStore) ListWaitingEntries(ctx context.Context) ([]domain.QueueEntrySummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT q.id, q.customer_id, u.full_name, u.email, q.status, q.created_at
		 FROM live_chat_queue q
		 LEFT JOIN users u ON u.user_id = q.customer_id
		 WHERE q.status = ?
		 ORDER BY q.created_at ASC`,
		domain.QueueStatusWaiting)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.QueueEntrySummary
	for rows.Next() {
		var entry domain.QueueEntrySummary
		var name, email sql.NullString
		if err := rows.Scan(&entry.ID, &entry.CustomerID, &name, &email, &entry.Status, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if name.Valid {
			entry.CustomerName = name.String
		}
		if email.Valid {
			entry.CustomerEmail = email.String
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// CountWaitingEntries counts entries currently in waiting status.
func (s *SQLiteStore) CountWaitingEntries(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM live_chat_queue WHERE status = ?`,
		domain.QueueStatusWaiting).Scan(&count)
	return count, err
}

// AcceptLiveSession claims a waiting queue entry for an official and
// creates the session with both participant rows, all in one
// transaction. The conditional updates are the race guards: the entry
// claim admits exactly one winner, and the capacity increment cannot
// pass max_sessions. Returns the claimed entry's customer ID.
func (s *SQLiteStore) AcceptLiveSession(ctx context.Context, queueID, officialID string, session *domain.ChatSession) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin accept transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE live_chat_queue SET status = ? WHERE id = ? AND status = ?`,
		domain.QueueStatusAccepted, queueID, domain.QueueStatusWaiting)
	if err != nil {
		return "", fmt.Errorf("claim queue entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if affected == 0 {
		// Lost the race, or the entry never existed.
		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM live_chat_queue WHERE id = ?`, queueID).Scan(&status)
		if err == sql.ErrNoRows {
			return "", domain.ErrQueueNotFound
		}
		if err != nil {
			return "", err
		}
		return "", domain.ErrQueueNotAvailable
	}

	var customerID string
	if err := tx.QueryRowContext(ctx,
		`SELECT customer_id FROM live_chat_queue WHERE id = ?`, queueID).Scan(&customerID); err != nil {
		return "", fmt.Errorf("load claimed entry: %w", err)
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE admission_official_profiles
		 SET current_sessions = current_sessions + 1
		 WHERE admission_official_id = ? AND current_sessions < max_sessions`,
		officialID)
	if err != nil {
		return "", fmt.Errorf("reserve official capacity: %w", err)
	}
	affected, err = res.RowsAffected()
	if err != nil {
		return "", err
	}
	if affected == 0 {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM admission_official_profiles WHERE admission_official_id = ?`,
			officialID).Scan(&one)
		if err == sql.ErrNoRows {
			return "", domain.ErrOfficialNotFound
		}
		if err != nil {
			return "", err
		}
		return "", domain.ErrMaxSessionsReached
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_sessions (session_id, session_type, start_time, end_time) VALUES (?, ?, ?, ?)`,
		session.SessionID, session.SessionType, session.StartTime, session.EndTime); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	for _, userID := range []string{customerID, officialID} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO participants (session_id, user_id) VALUES (?, ?)`,
			session.SessionID, userID); err != nil {
			return "", fmt.Errorf("create participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit accept transaction: %w", err)
	}
	return customerID, nil
}

// EndLiveSession closes a session and releases the official's
// capacity slot in one transaction. Returns the session's
// participant IDs for notification fan-out.
func (s *SQLiteStore) EndLiveSession(ctx context.Context, sessionID, endedBy string, endTime time.Time) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin end transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var endCol sql.NullTime
	err = tx.QueryRowContext(ctx,
		`SELECT end_time FROM chat_sessions WHERE session_id = ?`, sessionID).Scan(&endCol)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	if endCol.Valid {
		return nil, domain.ErrSessionAlreadyEnded
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT user_id FROM participants WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, err
	}
	var participants []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			rows.Close()
			return nil, err
		}
		participants = append(participants, userID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	isParticipant := false
	for _, p := range participants {
		if p == endedBy {
			isParticipant = true
			break
		}
	}
	if !isParticipant {
		return nil, domain.ErrNotSessionParticipant
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE chat_sessions SET end_time = ? WHERE session_id = ? AND end_time IS NULL`,
		endTime, sessionID)
	if err != nil {
		return nil, fmt.Errorf("close session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.ErrSessionAlreadyEnded
	}

	// Release capacity for whichever participant holds an official
	// profile, floored at zero.
	if _, err := tx.ExecContext(ctx,
		`UPDATE admission_official_profiles
		 SET current_sessions = MAX(current_sessions - 1, 0)
		 WHERE admission_official_id IN (SELECT user_id FROM participants WHERE session_id = ?)`,
		sessionID); err != nil {
		return nil, fmt.Errorf("release official capacity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit end transaction: %w", err)
	}
	return participants, nil
}

// CreateSessionWithParticipants creates a session and its participant
// rows atomically.
func (s *SQLiteStore) CreateSessionWithParticipants(ctx context.Context, session *domain.ChatSession, userIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO chat_sessions (session_id, session_type, start_time, end_time) VALUES (?, ?, ?, ?)`,
		session.SessionID, session.SessionType, session.StartTime, session.EndTime); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	for _, userID := range userIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO participants (session_id, user_id) VALUES (?, ?)`,
			session.SessionID, userID); err != nil {
			return fmt.Errorf("create participant: %w", err)
		}
	}
	return tx.Commit()
}

// GetChatSession retrieves a session by ID.
func (s *SQLiteStore) GetChatSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	var session domain.ChatSession
	var endTime sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT session_id, session_type, start_time, end_time FROM chat_sessions WHERE session_id = ?`,
		sessionID).Scan(&session.SessionID, &session.SessionType, &session.StartTime, &endTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if endTime.Valid {
		session.EndTime = &endTime.Time
	}
	return &session, nil
}

// GetParticipants retrieves the participant user IDs of a session.
func (s *SQLiteStore) GetParticipants(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM participants WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		participants = append(participants, userID)
	}
	return participants, rows.Err()
}

// DeleteChatSession removes a session with its participants and
// messages. Returns false when the session does not exist.
func (s *SQLiteStore) DeleteChatSession(ctx context.Context, sessionID string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM chat_interactions WHERE session_id = ?`, sessionID); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM participants WHERE session_id = ?`, sessionID); err != nil {
		return false, err
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM chat_sessions WHERE session_id = ?`, sessionID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete transaction: %w", err)
	}
	return affected > 0, nil
}

// ListActiveSessionsByOfficial lists open live sessions where the
// official participates, oldest first, with the counterpart resolved.
func (s *SQLiteStore) ListActiveSessionsByOfficial(ctx context.Context, officialID string) ([]domain.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.session_id, s.session_type, s.start_time, s.end_time, p2.user_id, u.full_name
		 FROM chat_sessions s
		 JOIN participants p1 ON p1.session_id = s.session_id AND p1.user_id = ?
		 LEFT JOIN participants p2 ON p2.session_id = s.session_id AND p2.user_id != ?
		 LEFT JOIN users u ON u.user_id = p2.user_id
		 WHERE s.session_type = ? AND s.end_time IS NULL
		 ORDER BY s.start_time ASC`,
		officialID, officialID, domain.SessionTypeLive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessionSummaries(rows)
}

// ListSessionsByCustomer lists all live sessions the customer
// participated in, newest first, with last-message previews.
func (s *SQLiteStore) ListSessionsByCustomer(ctx context.Context, customerID string) ([]domain.SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.session_id, s.session_type, s.start_time, s.end_time, p2.user_id, u.full_name,
		        last.message_text, last.timestamp
		 FROM chat_sessions s
		 JOIN participants p1 ON p1.session_id = s.session_id AND p1.user_id = ?
		 LEFT JOIN participants p2 ON p2.session_id = s.session_id AND p2.user_id != ?
		 LEFT JOIN users u ON u.user_id = p2.user_id
		 LEFT JOIN chat_interactions last ON last.interaction_id = (
		     SELECT ci.interaction_id FROM chat_interactions ci
		     WHERE ci.session_id = s.session_id
		     ORDER BY ci.timestamp DESC, ci.interaction_id DESC LIMIT 1)
		 WHERE s.session_type = ?
		 ORDER BY s.start_time DESC`,
		customerID, customerID, domain.SessionTypeLive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.SessionSummary
	for rows.Next() {
		var sum domain.SessionSummary
		var endTime, lastTime sql.NullTime
		var counterpartID, counterpartName, lastMessage sql.NullString
		if err := rows.Scan(&sum.SessionID, &sum.SessionType, &sum.StartTime, &endTime,
			&counterpartID, &counterpartName, &lastMessage, &lastTime); err != nil {
			return nil, err
		}
		if endTime.Valid {
			sum.EndTime = &endTime.Time
		}
		if counterpartID.Valid {
			sum.CounterpartID = counterpartID.String
		}
		if counterpartName.Valid {
			sum.CounterpartName = counterpartName.String
		}
		if lastMessage.Valid {
			sum.LastMessage = previewText(lastMessage.String)
		}
		if lastTime.Valid {
			sum.LastMessageTime = &lastTime.Time
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func scanSessionSummaries(rows *sql.Rows) ([]domain.SessionSummary, error) {
	var summaries []domain.SessionSummary
	for rows.Next() {
		var sum domain.SessionSummary
		var endTime sql.NullTime
		var counterpartID, counterpartName sql.NullString
		if err := rows.Scan(&sum.SessionID, &sum.SessionType, &sum.StartTime, &endTime,
			&counterpartID, &counterpartName); err != nil {
			return nil, err
		}
		if endTime.Valid {
			sum.EndTime = &endTime.Time
		}
		if counterpartID.Valid {
			sum.CounterpartID = counterpartID.String
		}
		if counterpartName.Valid {
			sum.CounterpartName = counterpartName.String
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// previewText truncates a message for session list previews.
func previewText(text string) string {
	runes := []rune(text)
	if len(runes) <= 50 {
		return text
	}
	return string(runes[:50]) + "..."
}

// CreateMessage creates a new chat interaction.
func (s *SQLiteStore) CreateMessage(ctx context.Context, message *domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_interactions (interaction_id, session_id, sender_id, message_text, timestamp, is_from_bot) VALUES (?, ?, ?, ?, ?, ?)`,
		message.InteractionID, message.SessionID, message.SenderID, message.Text, message.Timestamp, message.IsFromBot)
	return err
}

// GetMessages retrieves a session's messages in chronological order.
// A limit of zero returns the full history.
func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	query := `SELECT interaction_id, session_id, sender_id, message_text, timestamp, is_from_bot
	          FROM chat_interactions WHERE session_id = ?
	          ORDER BY timestamp ASC, interaction_id ASC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(&msg.InteractionID, &msg.SessionID, &msg.SenderID, &msg.Text, &msg.Timestamp, &msg.IsFromBot); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
