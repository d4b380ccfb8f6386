package academics

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/server/migrations"
	"github.com/dmitrijs2005/gradekeeper/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewSQLRepository(db), mock, db
}

func newSQLiteRepo(t *testing.T) *SQLRepository {
	t.Helper()
	ctx := context.Background()

	db, dialect, err := dbx.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, migrations.Up(ctx, db, dialect))
	return NewSQLRepository(db)
}

var recordCols = []string{"id", "username", "semester", "subject", "marks", "attendance"}

func TestCreate_Mock(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+academics\s*\(username,\s*semester,\s*subject,\s*marks,\s*attendance\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id\s*$`
	mock.ExpectQuery(q).
		WithArgs("alice", 1, "Math", 90, 95).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	got, err := repo.Create(context.Background(), &models.AcademicRecord{UserName: "alice", Semester: 1, Subject: "Math", Marks: 90, Attendance: 95})
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.ID)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+academics`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.AcademicRecord{UserName: "alice"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestListAll_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT .* FROM\s+academics\s+ORDER\s+BY\s+id\s*$`).
		WillReturnRows(sqlmock.NewRows(recordCols).AddRow("not-a-number", "alice", 1, "Math", 1, 1))

	_, err := repo.ListAll(context.Background())
	if err == nil || !regexp.MustCompile(`scan error`).MatchString(err.Error()) {
		t.Fatalf("expected scan error, got %v", err)
	}
}

func TestListByUsername_RowsError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(recordCols).
		AddRow(int64(1), "alice", 1, "Math", 1, 1).
		RowError(0, errors.New("row boom"))
	mock.ExpectQuery(`WHERE\s+username\s*=\s*\$1\s+ORDER\s+BY\s+id`).WithArgs("alice").WillReturnRows(rows)

	_, err := repo.ListByUsername(context.Background(), "alice")
	if err == nil || !regexp.MustCompile(`rows error: .*row boom`).MatchString(err.Error()) {
		t.Fatalf("expected rows error, got %v", err)
	}
}

func TestRenameUser_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+academics\s+SET\s+username\s*=\s*\$1\s+WHERE\s+username\s*=\s*\$2\s*$`).
		WithArgs("bob", "alice").
		WillReturnError(errors.New("exec err"))

	_, err := repo.RenameUser(context.Background(), "alice", "bob")
	if err == nil || !regexp.MustCompile(`db error: .*exec err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestSQLite_ListAndRename(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	empty, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	for _, rec := range []models.AcademicRecord{
		{UserName: "alice", Semester: 1, Subject: "Math", Marks: 90, Attendance: 95},
		{UserName: "bob", Semester: 1, Subject: "Physics", Marks: 70, Attendance: 80},
		{UserName: "alice", Semester: 2, Subject: "Chemistry", Marks: 85, Attendance: 88},
	} {
		rec := rec
		_, err := repo.Create(ctx, &rec)
		require.NoError(t, err)
	}

	alice, err := repo.ListByUsername(ctx, "alice")
	require.NoError(t, err)
	want := []models.AcademicRecord{
		{UserName: "alice", Semester: 1, Subject: "Math", Marks: 90, Attendance: 95},
		{UserName: "alice", Semester: 2, Subject: "Chemistry", Marks: 85, Attendance: 88},
	}
	if diff := cmp.Diff(want, alice, cmpopts.IgnoreFields(models.AcademicRecord{}, "ID")); diff != "" {
		t.Fatalf("ListByUsername mismatch (-want +got):\n%s", diff)
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := repo.RenameUser(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	gone, err := repo.ListByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, gone)

	carol, err := repo.ListByUsername(ctx, "carol")
	require.NoError(t, err)
	assert.Len(t, carol, 2)
}
