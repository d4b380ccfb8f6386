package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"sync"
	"testing"

	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_EmbeddedPerDialect(t *testing.T) {
	for _, dir := range []string{"postgres", "sqlite"} {
		files, err := fs.Glob(Migrations, dir+"/*.sql")
		require.NoError(t, err)
		assert.Len(t, files, 2, dir)
	}
}

func TestUp_SQLiteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := dbx.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Up(ctx, db, dialect))
	require.NoError(t, Up(ctx, db, dialect))

	for _, table := range []string{"users", "academics"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=$1`, table).Scan(&name)
		require.NoError(t, err, table)
	}
}

func TestUp_Concurrent(t *testing.T) {
	ctx := context.Background()
	db, dialect, err := dbx.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, Up(ctx, db, dialect))
		}()
	}
	wg.Wait()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM academics`).Scan(&n))
	assert.Zero(t, n)
}

func TestUp_PassesDialectAndDir(t *testing.T) {
	orig := newProvider
	t.Cleanup(func() { newProvider = orig })

	stop := errors.New("stop")
	for _, tt := range []struct {
		dialect     dbx.Dialect
		wantDialect goose.Dialect
		wantLocker  bool
	}{
		{dbx.DialectPostgres, goose.DialectPostgres, true},
		{dbx.DialectSQLite, goose.DialectSQLite3, false},
	} {
		t.Run(string(tt.dialect), func(t *testing.T) {
			var (
				gotDialect goose.Dialect
				gotFiles   []string
				gotOpts    int
			)
			newProvider = func(d goose.Dialect, db *sql.DB, fsys fs.FS, opts ...goose.ProviderOption) (*goose.Provider, error) {
				gotDialect = d
				gotFiles, _ = fs.Glob(fsys, "*.sql")
				gotOpts = len(opts)
				return nil, stop
			}

			err := Up(context.Background(), nil, tt.dialect)
			assert.ErrorIs(t, err, stop)
			assert.Equal(t, tt.wantDialect, gotDialect)
			assert.Len(t, gotFiles, 2)
			assert.Equal(t, tt.wantLocker, gotOpts == 1)
		})
	}
}

func TestUp_WrapsErrors(t *testing.T) {
	t.Run("provider", func(t *testing.T) {
		orig := newProvider
		t.Cleanup(func() { newProvider = orig })

		newProvider = func(goose.Dialect, *sql.DB, fs.FS, ...goose.ProviderOption) (*goose.Provider, error) {
			return nil, errors.New("boom")
		}

		err := Up(context.Background(), nil, dbx.DialectSQLite)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "goose provider: boom")
	})

	t.Run("up", func(t *testing.T) {
		ctx := context.Background()
		db, dialect, err := dbx.Open(ctx, ":memory:")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		err = Up(ctx, db, dialect)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "goose")
	})
}
