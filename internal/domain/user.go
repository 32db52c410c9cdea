package domain

// User is a directory record. The livechat engine only reads these:
// registration and profile management belong to other services.
type User struct {
	UserID   string     `json:"user_id"`
	FullName string     `json:"full_name"`
	Email    string     `json:"email"`
	Status   UserStatus `json:"status"`
}

// OfficialProfile holds an admission official's capacity record.
// Invariant: 0 <= CurrentSessions <= MaxSessions at all times.
type OfficialProfile struct {
	OfficialID      string `json:"admission_official_id"`
	CurrentSessions int    `json:"current_sessions"`
	MaxSessions     int    `json:"max_sessions"`
	Status          string `json:"status"`
}

// Available reports whether the official can take one more session.
func (p *OfficialProfile) Available() bool {
	return p.CurrentSessions < p.MaxSessions
}
