package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

// SQLRepository implements Repository over a dbx.DBTX. The queries use
// $N placeholders, which both pgx and modernc sqlite accept.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

const selectUser = `SELECT id, fullname, username, email, password, role FROM users`

func (r *SQLRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (fullname, username, email, password, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.FullName, user.UserName, user.Email, user.PasswordHash, string(user.Role)).Scan(&user.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) findOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	user := &models.User{}
	var role string

	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&user.ID, &user.FullName, &user.UserName, &user.Email, &user.PasswordHash, &role)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	user.Role = models.Role(role)
	return user, nil
}

func (r *SQLRepository) FindByUsername(ctx context.Context, userName string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE username = $1`, userName)
}

func (r *SQLRepository) FindByUsernameOrEmail(ctx context.Context, userName, email string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE username = $1 OR email = $2 ORDER BY id LIMIT 1`, userName, email)
}

func (r *SQLRepository) FindByUsernameAndEmail(ctx context.Context, userName, email string) (*models.User, error) {
	return r.findOne(ctx, selectUser+` WHERE username = $1 AND email = $2`, userName, email)
}

func (r *SQLRepository) UpdatePassword(ctx context.Context, userName string, passwordHash []byte) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET password = $1 WHERE username = $2`, passwordHash, userName)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLRepository) UpdateUsername(ctx context.Context, userID int64, newUserName string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET username = $1 WHERE id = $2`, newUserName, userID)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
