// Package services holds the server's business logic: registration, login,
// credential recovery and gated access to academic records.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/dmitrijs2005/gradekeeper/internal/server/passwords"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gradekeeper/internal/server/sessions"
)

type RegisterRequest struct {
	FullName string `json:"fullname"`
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthService registers users and opens and closes their sessions.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *passwords.Hasher
	sessions    *sessions.Manager
	log         logging.Logger
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, hasher *passwords.Hasher,
	sm *sessions.Manager, log logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		sessions:    sm,
		log:         log.With("module", "auth"),
	}
}

// Register validates req and stores a new user. Validation failures are
// reported with the matching common sentinel, first failure wins. A taken
// username or email yields common.ErrConflict.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	if err := validateRegistration(req); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.FindByUsernameOrEmail(ctx, req.UserName, req.Email)
	if err == nil {
		return common.ErrConflict
	}
	if !errors.Is(err, common.ErrorNotFound) {
		s.log.Error(ctx, "user lookup failed", "error", err)
		return common.ErrorInternal
	}

	if err := validateRole(req.Role); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, common.ErrWeakPassword) {
			return common.ErrWeakPassword
		}
		s.log.Error(ctx, "password hashing failed", "error", err)
		return common.ErrorInternal
	}

	user := &models.User{
		FullName:     req.FullName,
		UserName:     req.UserName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.Role(req.Role),
	}

	if _, err := repo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return common.ErrConflict
		}
		s.log.Error(ctx, "user insert failed", "error", err)
		return common.ErrorInternal
	}

	s.log.Info(ctx, "user registered", "username", user.UserName, "role", user.Role)
	return nil
}

// Login checks the credentials and, on success, replaces prevSessionID with
// a new authenticated session. Unknown users and wrong passwords both yield
// common.ErrInvalidCredentials after the same amount of hashing work.
func (s *AuthService) Login(ctx context.Context, prevSessionID, userName, password string) (*sessions.Session, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByUsername(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Equalize(password)
			return nil, common.ErrInvalidCredentials
		}
		s.log.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	sess, err := s.sessions.Authenticate(ctx, prevSessionID, user.UserName, user.Role)
	if err != nil {
		s.log.Error(ctx, "session start failed", "error", err)
		return nil, common.ErrorInternal
	}

	return sess, nil
}

// Logout ends the session. Calling it without a session is fine.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		s.log.Error(ctx, "session clear failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}
