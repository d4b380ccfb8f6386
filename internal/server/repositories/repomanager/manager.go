// Package repomanager vends repository implementations bound to a
// connection or transaction and owns schema migration.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/server/migrations"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/academics"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Academics(db dbx.DBTX) academics.Repository
}

// SQLRepositoryManager serves both PostgreSQL and SQLite; the repositories
// share their SQL and only migrations differ per dialect.
type SQLRepositoryManager struct {
	dialect dbx.Dialect
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up

func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Academics(db dbx.DBTX) academics.Repository {
	return academics.NewSQLRepository(db)
}

// RunMigrations brings the schema up to date. It is idempotent.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db, m.dialect)
}

func (m *SQLRepositoryManager) Dialect() dbx.Dialect {
	return m.dialect
}

func NewSQLRepositoryManager(dialect dbx.Dialect) *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: dialect}
}
