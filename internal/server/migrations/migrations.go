// Package migrations embeds the goose SQL migrations, one directory per
// supported dialect, and applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/lock"
)

//go:embed postgres/*.sql sqlite/*.sql
var Migrations embed.FS

// newProvider is a seam for testing goose.NewProvider.
var newProvider = goose.NewProvider

// upMu serialises migration runs within the process. PostgreSQL runs are
// additionally guarded across processes by a goose session lock.
var upMu sync.Mutex

// Up applies every pending migration for dialect. Already applied versions
// are skipped, so calling Up repeatedly or concurrently is safe.
func Up(ctx context.Context, db *sql.DB, dialect dbx.Dialect) error {
	upMu.Lock()
	defer upMu.Unlock()

	fsys, err := fs.Sub(Migrations, string(dialect))
	if err != nil {
		return fmt.Errorf("goose fs: %w", err)
	}

	var opts []goose.ProviderOption
	if dialect == dbx.DialectPostgres {
		locker, err := lock.NewPostgresSessionLocker()
		if err != nil {
			return fmt.Errorf("goose locker: %w", err)
		}
		opts = append(opts, goose.WithSessionLocker(locker))
	}

	provider, err := newProvider(goose.Dialect(dialect.GooseDialect()), db, fsys, opts...)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
