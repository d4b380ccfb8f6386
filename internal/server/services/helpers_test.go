package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/passwords"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gradekeeper/internal/server/sessions"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	db       *sql.DB
	rm       *repomanager.SQLRepositoryManager
	sessions *sessions.Manager
	auth     *AuthService
	recovery *RecoveryService
	records  *RecordService
}

func newTestEnv(t *testing.T, mode CaptchaMode) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, dialect, err := dbx.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLRepositoryManager(dialect)
	require.NoError(t, rm.RunMigrations(ctx, db))

	hasher, err := passwords.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	sm := sessions.NewManager(sessions.NewMemoryStore(), time.Hour)
	log := logging.Nop()

	return &testEnv{
		db:       db,
		rm:       rm,
		sessions: sm,
		auth:     NewAuthService(db, rm, hasher, sm, log),
		recovery: NewRecoveryService(db, rm, hasher, sm, mode, log),
		records:  NewRecordService(db, rm, log),
	}
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		FullName: "A B",
		UserName: "abc",
		Email:    "a@b.com",
		Password: "Abc123!",
		Role:     "student",
	}
}

func (e *testEnv) register(t *testing.T, userName, email, password, role string) {
	t.Helper()
	require.NoError(t, e.auth.Register(context.Background(), RegisterRequest{
		FullName: "Full " + userName, UserName: userName, Email: email, Password: password, Role: role,
	}))
}

func (e *testEnv) login(t *testing.T, userName, password string) *sessions.Session {
	t.Helper()
	sess, err := e.auth.Login(context.Background(), "", userName, password)
	require.NoError(t, err)
	return sess
}
