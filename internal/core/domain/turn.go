package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Label returns the uppercase form used when serialising history into
// prompt text, e.g. "USER".
func (r Role) Label() string {
	return strings.ToUpper(string(r))
}

// Turn is a single message in a tutoring session.
type Turn struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
}

// SessionKey scopes conversation memory. Two requests share history
// only when every component matches.
type SessionKey struct {
	Username  string
	SessionID string
	Year      string
	Semester  string
	Subject   string
}

// Validate checks that all key components are present.
func (k SessionKey) Validate() error {
	for _, part := range []struct {
		name, value string
	}{
		{"username", k.Username},
		{"session id", k.SessionID},
		{"year", k.Year},
		{"semester", k.Semester},
		{"subject", k.Subject},
	} {
		if strings.TrimSpace(part.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, part.name)
		}
	}
	return nil
}

// Name returns the canonical storage key,
// "username_year_semester_subject_sessionID".
func (k SessionKey) Name() string {
	return fmt.Sprintf("%s_%s_%s_%s_%s", k.Username, k.Year, k.Semester, k.Subject, k.SessionID)
}
