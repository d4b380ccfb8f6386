// Package sessions keeps server-side session state: who is logged in on a
// given client and which captcha was last issued to it.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

// Session is anonymous until UserName is set by a successful login.
type Session struct {
	ID        string      `json:"id"`
	UserName  string      `json:"username,omitempty"`
	Role      models.Role `json:"role,omitempty"`
	Captcha   string      `json:"captcha,omitempty"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (s *Session) Authenticated() bool {
	return s != nil && s.UserName != ""
}

// HasRole reports whether the session is authenticated with role r.
func (s *Session) HasRole(r models.Role) bool {
	return s.Authenticated() && s.Role == r
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions by ID. Get returns common.ErrorNotFound for
// unknown or expired IDs. Save overwrites (last write wins).
//
// Update applies fn to the live session atomically and stores the result.
// It never recreates a session deleted concurrently: unknown or expired IDs
// yield common.ErrorNotFound and an error from fn aborts the write.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Update(ctx context.Context, id string, fn func(s *Session) error) (*Session, error)
	Delete(ctx context.Context, id string) error
}
