package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/whenfree-api/internal/models"
)

func TestResponseRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResponseRepository(db)

	now := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO responses \(event_id, name, plus_one, availability\)\s+VALUES \(\$1, \$2, \$3, \$4\)\s+ON CONFLICT \(event_id, name\)\s+DO UPDATE SET`).
		WithArgs("evt", "Alice", nil, `{"2024-06-01":["lunch"]}`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	resp := &models.Response{
		EventID:      "evt",
		Name:         "Alice",
		Availability: models.Availability{"2024-06-01": {models.SlotLunch}},
	}
	require.NoError(t, repo.Upsert(context.Background(), resp))
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, now, resp.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseRepositoryUpsertError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResponseRepository(db)

	mock.ExpectQuery("INSERT INTO responses").WillReturnError(errors.New("fk violation"))

	err := repo.Upsert(context.Background(), &models.Response{EventID: "evt", Name: "Bob"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert response")
}

func TestResponseRepositoryListByEventOrdersByCreation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResponseRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "event_id", "name", "plus_one", "availability", "created_at", "updated_at"}).
		AddRow(int64(1), "evt", "Zed", nil, `{"2024-06-01":["dinner"]}`, now, now).
		AddRow(int64(2), "evt", "Amy", "Sam", []byte(`"{\"2024-06-02\":[\"allday\"]}"`), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM responses WHERE event_id = $1 ORDER BY created_at ASC, id ASC")).
		WithArgs("evt").
		WillReturnRows(rows)

	list, err := repo.ListByEvent(context.Background(), "evt")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Zed", list[0].Name)
	assert.Nil(t, list[0].PlusOne)
	assert.Equal(t, "Amy", list[1].Name)
	require.NotNil(t, list[1].PlusOne)
	assert.Equal(t, "Sam", *list[1].PlusOne)
	assert.Equal(t, []models.TimeSlot{models.SlotAllDay}, list[1].Availability["2024-06-02"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResponseRepositoryListByEventEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResponseRepository(db)

	mock.ExpectQuery("FROM responses").
		WithArgs("evt").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "name", "plus_one", "availability", "created_at", "updated_at"}))

	list, err := repo.ListByEvent(context.Background(), "evt")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestResponseRepositoryDeleteByName(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewResponseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM responses WHERE event_id = $1 AND name = $2")).
		WithArgs("evt", "Ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	affected, err := repo.DeleteByName(context.Background(), "evt", "Ghost")
	require.NoError(t, err)
	assert.Zero(t, affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
