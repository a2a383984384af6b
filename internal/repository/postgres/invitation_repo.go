package postgres

import (
	"context"
	"database/sql"
	"errors"

	"studycon/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

// NewInvitationRepository returns a domain.InvitationRepository implemented
// with Postgres. Invitation rows and the event_invited_users relation are
// written inside one transaction per operation, so an invitation row always
// implies invited-users membership.
func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

func (r *invitationRepository) UpsertAutoMatch(ctx context.Context, eventID, userID string) (bool, error) {
	return r.upsert(ctx, eventID, userID, true)
}

func (r *invitationRepository) CreateManual(ctx context.Context, eventID, userID string) (bool, error) {
	return r.upsert(ctx, eventID, userID, false)
}

// upsert creates an invitation row unless one already exists for the pair,
// and ensures invited-users membership either way. ON CONFLICT absorbs
// concurrent inserts of the same pair: the loser sees existed.
func (r *invitationRepository) upsert(ctx context.Context, eventID, userID string, autoMatched bool) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var id string
	created := true
	err = tx.QueryRowContext(ctx, `
		INSERT INTO invitations (event_id, user_id, is_auto_matched)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id, user_id) DO NOTHING
		RETURNING id
	`, eventID, userID, autoMatched).Scan(&id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return false, err
		}
		// Existing row (auto or manual) is left untouched.
		created = false
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO event_invited_users (event_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (event_id, user_id) DO NOTHING
	`, eventID, userID)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return created, nil
}

func (r *invitationRepository) ClearAutoMatches(ctx context.Context, eventID string) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Membership first, while the auto-matched rows still identify which
	// users to remove. Uniqueness of (event_id, user_id) guarantees no
	// manual invitation shares the pair.
	_, err = tx.ExecContext(ctx, `
		DELETE FROM event_invited_users
		WHERE event_id = $1
		  AND user_id IN (SELECT user_id FROM invitations WHERE event_id = $1 AND is_auto_matched = TRUE)
	`, eventID)
	if err != nil {
		return 0, err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM invitations WHERE event_id = $1 AND is_auto_matched = TRUE`, eventID)
	if err != nil {
		return 0, err
	}
	removed, _ := result.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(removed), nil
}

func (r *invitationRepository) Delete(ctx context.Context, eventID, userID string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM invitations WHERE event_id = $1 AND user_id = $2`, eventID, userID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM event_invited_users WHERE event_id = $1 AND user_id = $2`, eventID, userID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *invitationRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Invitation, error) {
	query := `
		SELECT id, event_id, user_id, is_auto_matched, created_at
		FROM invitations
		WHERE event_id = $1 AND user_id = $2
	`
	inv := &domain.Invitation{}
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&inv.ID, &inv.EventID, &inv.UserID, &inv.IsAutoMatched, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Invitation, error) {
	query := `
		SELECT id, event_id, user_id, is_auto_matched, created_at
		FROM invitations
		WHERE event_id = $1
		ORDER BY created_at
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv := &domain.Invitation{}
		if err := rows.Scan(&inv.ID, &inv.EventID, &inv.UserID, &inv.IsAutoMatched, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

func (r *invitationRepository) ListAutoMatchedUserIDs(ctx context.Context, eventID string) ([]string, error) {
	return r.listIDs(ctx,
		`SELECT user_id FROM invitations WHERE event_id = $1 AND is_auto_matched = TRUE ORDER BY user_id`,
		eventID)
}

func (r *invitationRepository) ListAutoMatchedEventIDs(ctx context.Context, userID string) ([]string, error) {
	return r.listIDs(ctx,
		`SELECT event_id FROM invitations WHERE user_id = $1 AND is_auto_matched = TRUE ORDER BY event_id`,
		userID)
}

func (r *invitationRepository) ListInvitedUserIDs(ctx context.Context, eventID string) ([]string, error) {
	return r.listIDs(ctx,
		`SELECT user_id FROM event_invited_users WHERE event_id = $1 ORDER BY user_id`,
		eventID)
}

func (r *invitationRepository) listIDs(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
