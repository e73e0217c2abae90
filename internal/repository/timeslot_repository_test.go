package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akazantsev/timetable-api/internal/models"
)

func newTimeSlotRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimeSlotRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newTimeSlotRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	rows := sqlmock.NewRows([]string{"id", "slot_number", "time_start", "time_end", "is_active", "created_at", "updated_at"}).
		AddRow("slot-1", 1, "08:00", "09:20", true, time.Now(), time.Now()).
		AddRow("slot-2", 2, "09:30", "10:50", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + timeSlotColumns + " FROM time_slots WHERE is_active = TRUE ORDER BY slot_number ASC")).
		WillReturnRows(rows)

	slots, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Len(t, slots, 2)
	assert.Equal(t, 1, slots[0].SlotNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryReorderTransactional(t *testing.T) {
	db, mock, cleanup := newTimeSlotRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE time_slots SET slot_number = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(2, sqlmock.AnyArg(), "slot-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE time_slots SET slot_number = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(1, sqlmock.AnyArg(), "slot-2").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	orders := []models.SlotOrder{
		{ID: "slot-1", SlotNumber: 2},
		{ID: "slot-2", SlotNumber: 1},
	}
	require.NoError(t, repo.Reorder(context.Background(), orders))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryMaxSlotNumberEmptyCatalog(t *testing.T) {
	db, mock, cleanup := newTimeSlotRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(slot_number), 0) FROM time_slots")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))

	max, err := repo.MaxSlotNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, max)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimeSlotRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newTimeSlotRepoMock(t)
	defer cleanup()
	repo := NewTimeSlotRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO time_slots")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	slot := &models.TimeSlot{SlotNumber: 1, TimeStart: "08:00", TimeEnd: "09:20", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), slot))
	assert.NotEmpty(t, slot.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
