package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/whenfree-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEventRepositoryCreateGeneratesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("INSERT INTO events").
		WithArgs(sqlmock.AnyArg(), "Dinner", nil, nil, "1234", `["2024-06-01","2024-06-02"]`, `["lunch","dinner"]`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	event := &models.Event{
		Title:     "Dinner",
		AdminCode: "1234",
		HostDates: models.DateList{"2024-06-01", "2024-06-02"},
		TimeSlots: models.SlotList{models.SlotLunch, models.SlotDinner},
	}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.Len(t, event.ID, EventIDLength)
	assert.False(t, event.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryFindByIDParsesJSONColumns(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	created := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "title", "location", "description", "admin_code", "host_dates", "time_slots", "created_at"}).
		AddRow("abc123XYZ0", "Picnic", "Park", nil, "1234", []byte(`"[\"2024-06-01\"]"`), `["allday"]`, created)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, location, description, admin_code, host_dates, time_slots, created_at FROM events WHERE id = $1")).
		WithArgs("abc123XYZ0").
		WillReturnRows(rows)

	event, err := repo.FindByID(context.Background(), "abc123XYZ0")
	require.NoError(t, err)
	assert.Equal(t, "Picnic", event.Title)
	require.NotNil(t, event.Location)
	assert.Equal(t, "Park", *event.Location)
	assert.Nil(t, event.Description)
	assert.Equal(t, models.DateList{"2024-06-01"}, event.HostDates)
	assert.Equal(t, models.SlotList{models.SlotAllDay}, event.TimeSlots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery("FROM events WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEventRepositoryFindAdminCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT admin_code FROM events WHERE id = $1")).
		WithArgs("evt").
		WillReturnRows(sqlmock.NewRows([]string{"admin_code"}).AddRow("1234"))

	code, err := repo.FindAdminCode(context.Background(), "evt")
	require.NoError(t, err)
	assert.Equal(t, "1234", code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryUpdateDetails(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	location := "Cafe"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE events SET title = $2, location = $3, description = $4 WHERE id = $1")).
		WithArgs("evt", "Brunch", "Cafe", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateDetails(context.Background(), "evt", models.EventDetails{Title: "Brunch", Location: &location})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
