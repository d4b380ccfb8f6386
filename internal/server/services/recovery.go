package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/captcha"
	"github.com/dmitrijs2005/gradekeeper/internal/server/passwords"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gradekeeper/internal/server/sessions"
)

// CaptchaMode selects where the expected captcha comes from.
type CaptchaMode string

const (
	// CaptchaServer compares against the code stored in the caller's session.
	CaptchaServer CaptchaMode = "server"
	// CaptchaClient compares against captcha_real sent in the same request.
	CaptchaClient CaptchaMode = "client"
)

func ParseCaptchaMode(s string) (CaptchaMode, error) {
	switch m := CaptchaMode(s); m {
	case CaptchaServer, CaptchaClient:
		return m, nil
	case "":
		return CaptchaServer, nil
	default:
		return "", fmt.Errorf("unknown captcha mode %q", s)
	}
}

// Recovery types accepted in RecoveryRequest.Type.
const (
	RecoverPassword = "password"
	RecoverUsername = "username"
)

type RecoveryRequest struct {
	Type         string `json:"type"`
	UserName     string `json:"username"`
	Email        string `json:"email"`
	NewValue     string `json:"newvalue"`
	ConfirmValue string `json:"confirmvalue"`
	Captcha      string `json:"captcha"`
	CaptchaReal  string `json:"captcha_real"`
}

// RecoveryService implements the forgot-password and forgot-username form.
type RecoveryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *passwords.Hasher
	sessions    *sessions.Manager
	mode        CaptchaMode
	log         logging.Logger

	generate func() (string, error)
}

func NewRecoveryService(db *sql.DB, m repomanager.RepositoryManager, hasher *passwords.Hasher,
	sm *sessions.Manager, mode CaptchaMode, log logging.Logger) *RecoveryService {
	return &RecoveryService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		sessions:    sm,
		mode:        mode,
		log:         log.With("module", "recovery"),
		generate:    captcha.Generate,
	}
}

// IssueCaptcha generates a code and remembers it in the session identified
// by sessionID, creating an anonymous session if needed.
func (s *RecoveryService) IssueCaptcha(ctx context.Context, sessionID string) (*sessions.Session, string, error) {
	code, err := s.generate()
	if err != nil {
		s.log.Error(ctx, "captcha generation failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	sess, err := s.sessions.IssueCaptcha(ctx, sessionID, code)
	if err != nil {
		s.log.Error(ctx, "captcha store failed", "error", err)
		return nil, "", common.ErrorInternal
	}

	return sess, code, nil
}

func (s *RecoveryService) checkCaptcha(ctx context.Context, sessionID string, req RecoveryRequest) error {
	if s.mode == CaptchaClient {
		if req.Captcha != req.CaptchaReal {
			return common.ErrCaptchaMismatch
		}
		return nil
	}

	expected, err := s.sessions.ConsumeCaptcha(ctx, sessionID)
	if err != nil {
		s.log.Error(ctx, "captcha load failed", "error", err)
		return common.ErrorInternal
	}
	if expected == "" || req.Captcha != expected {
		return common.ErrCaptchaMismatch
	}
	return nil
}

// Recover updates the password or username of the user matching both
// req.UserName and req.Email. It returns the capitalised name of the updated
// field. The captcha and the confirmation are checked before storage is
// touched; lookup and update share one transaction.
func (s *RecoveryService) Recover(ctx context.Context, sessionID string, req RecoveryRequest) (string, error) {
	if err := s.checkCaptcha(ctx, sessionID, req); err != nil {
		return "", err
	}

	if req.NewValue != req.ConfirmValue {
		return "", common.ErrValueMismatch
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		user, err := users.FindByUsernameAndEmail(ctx, req.UserName, req.Email)
		if err != nil {
			return err
		}

		switch req.Type {
		case RecoverPassword:
			hash, err := s.hasher.Hash(req.NewValue)
			if err != nil {
				return err
			}
			return users.UpdatePassword(ctx, user.UserName, hash)

		case RecoverUsername:
			// same length rule as registration
			if err := validateUsername(req.NewValue); err != nil {
				return err
			}
			if req.NewValue == user.UserName {
				return nil
			}

			owner, err := users.FindByUsername(ctx, req.NewValue)
			if err == nil && owner.ID != user.ID {
				return common.ErrConflict
			}
			if err != nil && !errors.Is(err, common.ErrorNotFound) {
				return err
			}

			if err := users.UpdateUsername(ctx, user.ID, req.NewValue); err != nil {
				return err
			}
			_, err = s.repomanager.Academics(tx).RenameUser(ctx, user.UserName, req.NewValue)
			return err

		default:
			return common.ErrInvalidType
		}
	})

	if err != nil {
		for _, known := range []error{
			common.ErrorNotFound,
			common.ErrConflict,
			common.ErrInvalidType,
			common.ErrInvalidUsername,
			common.ErrWeakPassword,
		} {
			if errors.Is(err, known) {
				return "", known
			}
		}
		s.log.Error(ctx, "recovery failed", "type", req.Type, "error", err)
		return "", common.ErrorInternal
	}

	s.log.Info(ctx, "credentials recovered", "type", req.Type, "username", req.UserName)
	return fieldLabel(req.Type), nil
}

func fieldLabel(t string) string {
	switch t {
	case RecoverPassword:
		return "Password"
	case RecoverUsername:
		return "Username"
	default:
		return t
	}
}
