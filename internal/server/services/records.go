package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gradekeeper/internal/server/sessions"
)

// RecordService serves academic records according to the caller's role.
// Reads by the wrong role return an empty list, writes fail with
// common.ErrorUnauthorized.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *RecordService {
	return &RecordService{db: db, repomanager: m, log: log.With("module", "records")}
}

// StudentRecords returns the records of the logged-in student.
func (s *RecordService) StudentRecords(ctx context.Context, sess *sessions.Session) ([]models.AcademicRecord, error) {
	if !sess.HasRole(models.RoleStudent) {
		return []models.AcademicRecord{}, nil
	}

	list, err := s.repomanager.Academics(s.db).ListByUsername(ctx, sess.UserName)
	if err != nil {
		s.log.Error(ctx, "student records query failed", "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}

// FacultyRecords returns every record.
func (s *RecordService) FacultyRecords(ctx context.Context, sess *sessions.Session) ([]models.AcademicRecord, error) {
	if !sess.HasRole(models.RoleFaculty) {
		return []models.AcademicRecord{}, nil
	}

	list, err := s.repomanager.Academics(s.db).ListAll(ctx)
	if err != nil {
		s.log.Error(ctx, "faculty records query failed", "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}

// AddRecord stores rec as given; the values are not range checked.
func (s *RecordService) AddRecord(ctx context.Context, sess *sessions.Session, rec models.AcademicRecord) error {
	if !sess.HasRole(models.RoleFaculty) {
		return common.ErrorUnauthorized
	}

	if _, err := s.repomanager.Academics(s.db).Create(ctx, &rec); err != nil {
		s.log.Error(ctx, "record insert failed", "error", err)
		return common.ErrorInternal
	}

	s.log.Info(ctx, "record added", "by", sess.UserName, "student", rec.UserName, "subject", rec.Subject)
	return nil
}

// InitDatabase applies pending migrations.
func (s *RecordService) InitDatabase(ctx context.Context) error {
	if err := s.repomanager.RunMigrations(ctx, s.db); err != nil {
		s.log.Error(ctx, "migrations failed", "error", err)
		return common.ErrorInternal
	}
	return nil
}
