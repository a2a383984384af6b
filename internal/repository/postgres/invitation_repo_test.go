package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"studycon/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestInvitationRepository_UpsertAutoMatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		mock        func(mock sqlmock.Sqlmock)
		wantCreated bool
		wantErr     bool
	}{
		{
			name: "creates row and membership",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO invitations \(event_id, user_id, is_auto_matched\)`).
					WithArgs("ev-1", "u-1", true).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-1"))
				mock.ExpectExec(`INSERT INTO event_invited_users`).
					WithArgs("ev-1", "u-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
			wantCreated: true,
		},
		{
			name: "existing pair absorbed, membership still ensured",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO invitations`).
					WithArgs("ev-1", "u-1", true).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectExec(`INSERT INTO event_invited_users`).
					WithArgs("ev-1", "u-1").
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectCommit()
			},
			wantCreated: false,
		},
		{
			name: "db error rolls back",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`INSERT INTO invitations`).
					WillReturnError(sql.ErrConnDone)
				mock.ExpectRollback()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewInvitationRepository(db)
			created, err := repo.UpsertAutoMatch(ctx, "ev-1", "u-1")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantCreated, created)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInvitationRepository_CreateManual(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO invitations`).
		WithArgs("ev-1", "u-2", false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("inv-2"))
	mock.ExpectExec(`INSERT INTO event_invited_users`).
		WithArgs("ev-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewInvitationRepository(db)
	created, err := repo.CreateManual(context.Background(), "ev-1", "u-2")
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_ClearAutoMatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM event_invited_users`).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM invitations WHERE event_id = \$1 AND is_auto_matched = TRUE`).
		WithArgs("ev-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	repo := NewInvitationRepository(db)
	removed, err := repo.ClearAutoMatches(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Equal(t, 2, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM invitations WHERE event_id = \$1 AND user_id = \$2`).
		WithArgs("ev-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM event_invited_users WHERE event_id = \$1 AND user_id = \$2`).
		WithArgs("ev-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewInvitationRepository(db)
	require.NoError(t, repo.Delete(context.Background(), "ev-1", "u-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInvitationRepository_GetByEventAndUser(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		want    *domain.Invitation
		wantErr error
	}{
		{
			name: "found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, user_id, is_auto_matched, created_at`).
					WithArgs("ev-1", "u-1").
					WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "is_auto_matched", "created_at"}).
						AddRow("inv-1", "ev-1", "u-1", true, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)))
			},
			want: &domain.Invitation{
				ID:            "inv-1",
				EventID:       "ev-1",
				UserID:        "u-1",
				IsAutoMatched: true,
				CreatedAt:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT id, event_id, user_id, is_auto_matched, created_at`).
					WithArgs("ev-1", "u-1").
					WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewInvitationRepository(db)
			got, err := repo.GetByEventAndUser(ctx, "ev-1", "u-1")
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInvitationRepository_ListAutoMatchedUserIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT user_id FROM invitations WHERE event_id = \$1 AND is_auto_matched = TRUE`).
		WithArgs("ev-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u-1").AddRow("u-2"))

	repo := NewInvitationRepository(db)
	ids, err := repo.ListAutoMatchedUserIDs(context.Background(), "ev-1")
	require.NoError(t, err)
	require.Equal(t, []string{"u-1", "u-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
