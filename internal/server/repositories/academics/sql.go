package academics

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

const selectRecord = `SELECT id, username, semester, subject, marks, attendance FROM academics`

func (r *SQLRepository) Create(ctx context.Context, rec *models.AcademicRecord) (*models.AcademicRecord, error) {

	query :=
		`INSERT INTO academics (username, semester, subject, marks, attendance)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		rec.UserName, rec.Semester, rec.Subject, rec.Marks, rec.Attendance).Scan(&rec.ID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *SQLRepository) ListByUsername(ctx context.Context, userName string) ([]models.AcademicRecord, error) {
	return r.list(ctx, selectRecord+` WHERE username = $1 ORDER BY id`, userName)
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]models.AcademicRecord, error) {
	return r.list(ctx, selectRecord+` ORDER BY id`)
}

func (r *SQLRepository) list(ctx context.Context, query string, args ...any) ([]models.AcademicRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.AcademicRecord, 0)
	for rows.Next() {
		var rec models.AcademicRecord
		if err := rows.Scan(&rec.ID, &rec.UserName, &rec.Semester, &rec.Subject, &rec.Marks, &rec.Attendance); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return result, nil
}

func (r *SQLRepository) RenameUser(ctx context.Context, oldName, newName string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE academics SET username = $1 WHERE username = $2`, newName, oldName)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
