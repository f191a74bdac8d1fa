package repository

import (
	"testing"
	"time"

	"motelaudit-backend/internal/report/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func parsedWithProperty(name string) *domain.ParsedReport {
	report := domain.EmptyParsedReport()
	v := domain.FlexString(name)
	report.PropertyName = &v
	return report
}

func TestCreateFromParsedKeepsMotelOnReport(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReportRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "motel_master"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "motel_name", "location", "created_at"}).
			AddRow(3, "Sunrise Motel", "Route 9", time.Now()))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "motel_daily_report"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "motel_daily_report"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	report, created, err := repo.CreateFromParsed(parsedWithProperty("Sunrise Motel"))
	require.NoError(t, err)
	require.True(t, created)

	// Downstream indexing reads the association, so the returned report
	// must carry the persisted motel row.
	assert.Equal(t, uint(3), report.MotelID)
	assert.Equal(t, "Sunrise Motel", report.Motel.MotelName)
	assert.Equal(t, "Route 9", report.Motel.Location)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFromParsedCreatesMissingMotel(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReportRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "motel_master"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "motel_name", "location", "created_at"}))
	mock.ExpectQuery(`INSERT INTO "motel_master"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "motel_daily_report"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`INSERT INTO "motel_daily_report"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	report, created, err := repo.CreateFromParsed(parsedWithProperty("New Motel"))
	require.NoError(t, err)
	require.True(t, created)

	assert.Equal(t, uint(5), report.MotelID)
	assert.Equal(t, "New Motel", report.Motel.MotelName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFromParsedDuplicateRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReportRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "motel_master"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "motel_name", "location", "created_at"}).
			AddRow(3, "Sunrise Motel", "", time.Now()))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "motel_daily_report"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	report, created, err := repo.CreateFromParsed(parsedWithProperty("Sunrise Motel"))
	require.NoError(t, err, "a duplicate is a skip, not an error")
	assert.False(t, created)
	assert.Nil(t, report)
	assert.NoError(t, mock.ExpectationsWereMet())
}
