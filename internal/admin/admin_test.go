package admin

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/server/config"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, input string) (*App, *bytes.Buffer) {
	t.Helper()

	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = ":memory:"
	c.BcryptCost = 4

	var out bytes.Buffer
	app, err := NewApp(context.Background(), c, strings.NewReader(input), &out, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, &out
}

// stubPasswords makes readPassword return the given values in order.
func stubPasswords(t *testing.T, values ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })

	i := 0
	readPassword = func(int) ([]byte, error) {
		v := values[i%len(values)]
		i++
		return []byte(v), nil
	}
}

func TestAddUser_CreatesAccount(t *testing.T) {
	app, out := newTestApp(t, "Alice A\nalice\na@x.io\nfaculty\n")
	stubPasswords(t, "Passw0rd!")
	ctx := context.Background()

	require.NoError(t, app.Migrate(ctx))
	require.NoError(t, app.AddUser(ctx))
	assert.Contains(t, out.String(), "User alice created")

	u, err := app.rm.Users(app.db).FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.RoleFaculty, u.Role)
	assert.NotEqual(t, []byte("Passw0rd!"), u.PasswordHash)
}

func TestAddUser_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("passwords differ", func(t *testing.T) {
		app, _ := newTestApp(t, "Alice A\nalice\na@x.io\nstudent\n")
		stubPasswords(t, "Passw0rd!", "Passw0rd?")
		require.NoError(t, app.Migrate(ctx))

		assert.ErrorIs(t, app.AddUser(ctx), ErrPasswordsDiffer)
	})

	t.Run("weak password", func(t *testing.T) {
		app, _ := newTestApp(t, "Alice A\nalice\na@x.io\nstudent\n")
		stubPasswords(t, "password")
		require.NoError(t, app.Migrate(ctx))

		assert.ErrorIs(t, app.AddUser(ctx), common.ErrWeakPassword)
	})

	t.Run("duplicate", func(t *testing.T) {
		app, _ := newTestApp(t, "Alice A\nalice\na@x.io\nstudent\nAlice B\nalice\nb@x.io\nstudent\n")
		stubPasswords(t, "Passw0rd!")
		require.NoError(t, app.Migrate(ctx))

		require.NoError(t, app.AddUser(ctx))
		err := app.AddUser(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("input ends early", func(t *testing.T) {
		app, _ := newTestApp(t, "Alice A\n")
		stubPasswords(t, "Passw0rd!")
		require.NoError(t, app.Migrate(ctx))

		assert.ErrorIs(t, app.AddUser(ctx), io.EOF)
	})
}

func TestRecords(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()
	require.NoError(t, app.Migrate(ctx))

	require.NoError(t, app.Records(ctx, "alice"))
	assert.Contains(t, out.String(), "No records")

	_, err := app.rm.Academics(app.db).Create(ctx, &models.AcademicRecord{
		UserName: "alice", Semester: 2, Subject: "Algebra", Marks: 88, Attendance: 95,
	})
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, app.Records(ctx, "alice"))
	assert.Contains(t, out.String(), "Algebra")
	assert.Contains(t, out.String(), "88")
}

func TestDispatch(t *testing.T) {
	app, out := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, app.Dispatch(ctx, "help", nil))
	assert.Contains(t, out.String(), "Available commands")

	assert.Error(t, app.Dispatch(ctx, "records", nil))
	assert.Error(t, app.Dispatch(ctx, "drop", nil))
}

func TestRun_SingleCommand(t *testing.T) {
	app, out := newTestApp(t, "")

	require.NoError(t, app.Run(context.Background(), []string{"migrate"}))
	assert.Contains(t, out.String(), "Database is up to date")
}

func TestRoot_Script(t *testing.T) {
	app, out := newTestApp(t, "migrate\n\nbogus\nrecords bob\nexit\nhelp\n")

	require.NoError(t, app.Run(context.Background(), nil))

	s := out.String()
	assert.Contains(t, s, "Welcome to GradeKeeper admin")
	assert.Contains(t, s, "Database is up to date")
	assert.Contains(t, s, "Error: unknown command: bogus")
	assert.Contains(t, s, "No records")
	assert.Contains(t, s, "Bye!")
	assert.NotContains(t, s, "Available commands")
}

func TestRoot_EndOfInput(t *testing.T) {
	app, out := newTestApp(t, "help")

	require.NoError(t, app.Root(context.Background()))
	assert.Contains(t, out.String(), "Available commands")
}

// syncRecorder is a log sink that counts flushes.
type syncRecorder struct {
	bytes.Buffer
	synced int
}

func (s *syncRecorder) Sync() error {
	s.synced++
	return nil
}

func TestClose_FlushesZapLogger(t *testing.T) {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = ":memory:"
	c.BcryptCost = 4
	c.LogFormat = "zap"

	var logs syncRecorder
	app, err := NewApp(context.Background(), c, strings.NewReader(""), io.Discard, &logs)
	require.NoError(t, err)

	require.NoError(t, app.Migrate(context.Background()))
	require.NoError(t, app.Close())

	assert.Equal(t, 1, logs.synced)
	assert.Contains(t, logs.String(), "migrations applied")
}
