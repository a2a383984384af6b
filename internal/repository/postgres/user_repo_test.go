package postgres

import (
	"context"
	"testing"
	"time"

	"studycon/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT id, username, email, name, created_at, updated_at`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "name", "created_at", "updated_at"}).
			AddRow("u-1", "alice", "alice@example.com", "Alice", now, now))

	u, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT id, username, email, name, created_at, updated_at`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "name", "created_at", "updated_at"}))

	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListCandidatesForEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	cols := []string{"id", "username", "email", "interests", "auto_invite_opt_in",
		"preferred_radius_km", "location_lat", "location_lng"}
	mock.ExpectQuery(`SELECT u\.id, u\.username, u\.email, p\.interests`).
		WithArgs(pq.Array([]string{"spanish"}), "u-h").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("u-a", "alice", "alice@example.com", pq.StringArray{"spanish", "chess"}, true, 25.0, 48.85, 2.35).
			AddRow("u-b", "bob", "bob@example.com", pq.StringArray{"spanish"}, true, 0.0, nil, nil))

	candidates, err := repo.ListCandidatesForEvent(context.Background(), []string{"spanish"}, "u-h")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, []string{"spanish", "chess"}, candidates[0].Interests)
	require.NotNil(t, candidates[0].Lat)
	assert.InDelta(t, 48.85, *candidates[0].Lat, 1e-9)
	assert.Nil(t, candidates[1].Lat)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListCandidatesForEvent_NoTags(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserRepository(db)

	// No query is issued for a tagless event.
	candidates, err := repo.ListCandidatesForEvent(context.Background(), nil, "u-h")
	require.NoError(t, err)
	assert.Empty(t, candidates)
	require.NoError(t, mock.ExpectationsWereMet())
}
