package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/google/uuid"
)

// DefaultTTL is how long a session lives after it was last written.
const DefaultTTL = 24 * time.Hour

// Manager drives the session lifecycle on top of a Store.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store: store,
		ttl:   ttl,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Load returns the live session with the given id or common.ErrorNotFound.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, common.ErrorNotFound
	}

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Expired(m.now()) {
		_ = m.store.Delete(ctx, id)
		return nil, common.ErrorNotFound
	}
	return s, nil
}

// Start creates a new anonymous session.
func (m *Manager) Start(ctx context.Context) (*Session, error) {
	s := &Session{ID: m.newID(), ExpiresAt: m.now().Add(m.ttl)}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("session save: %w", err)
	}
	return s, nil
}

// Authenticate issues a fresh session for userName and discards prevID, so a
// session id observed before login is useless afterwards.
func (m *Manager) Authenticate(ctx context.Context, prevID, userName string, role models.Role) (*Session, error) {
	if prevID != "" {
		if err := m.store.Delete(ctx, prevID); err != nil {
			return nil, fmt.Errorf("session delete: %w", err)
		}
	}

	s := &Session{
		ID:        m.newID(),
		UserName:  userName,
		Role:      role,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("session save: %w", err)
	}
	return s, nil
}

// Clear removes the session. Unknown ids are not an error.
func (m *Manager) Clear(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}

// IssueCaptcha stores code in the session identified by id, starting an
// anonymous session when id is empty or no longer live. The returned session
// is the one holding the code.
func (m *Manager) IssueCaptcha(ctx context.Context, id, code string) (*Session, error) {
	if id != "" {
		s, err := m.store.Update(ctx, id, func(s *Session) error {
			s.Captcha = code
			return nil
		})
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("session update: %w", err)
		}
	}

	s := &Session{ID: m.newID(), Captcha: code, ExpiresAt: m.now().Add(m.ttl)}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("session save: %w", err)
	}
	return s, nil
}

// ConsumeCaptcha returns the code last issued to the session and forgets it.
// Concurrent callers on one session never receive the same code. An empty
// string means nothing was issued.
func (m *Manager) ConsumeCaptcha(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}

	var code string
	_, err := m.store.Update(ctx, id, func(s *Session) error {
		code = s.Captcha
		s.Captcha = ""
		return nil
	})
	if errors.Is(err, common.ErrorNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("session update: %w", err)
	}
	return code, nil
}

type sweeper interface {
	Sweep(now time.Time) int
}

// RunSweeper periodically purges expired sessions until ctx is done. Stores
// that expire entries themselves are left alone.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration, log logging.Logger) {
	sw, ok := m.store.(sweeper)
	if !ok {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sw.Sweep(m.now()); n > 0 {
				log.Debug(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}
