// Package academics stores per-subject academic records keyed by username.
package academics

import (
	"context"

	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, rec *models.AcademicRecord) (*models.AcademicRecord, error)

	// ListByUsername returns the records of one user in insertion order.
	ListByUsername(ctx context.Context, userName string) ([]models.AcademicRecord, error)

	ListAll(ctx context.Context) ([]models.AcademicRecord, error)

	// RenameUser re-points every record of oldName to newName and reports
	// how many rows changed.
	RenameUser(ctx context.Context, oldName, newName string) (int64, error)
}
