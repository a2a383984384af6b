package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"studycon/internal/domain"
)

const eventColumns = `id, host_id, title, description, event_type, interest_tags,
	auto_matching_enabled, is_public, max_participants, location_lat, location_lng,
	start_time, end_time, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var tags pq.StringArray
	var latNull, lngNull sql.NullFloat64
	err := row.Scan(
		&e.ID, &e.HostID, &e.Title, &e.Description, &e.EventType, &tags,
		&e.AutoMatchingEnabled, &e.IsPublic, &e.MaxParticipants, &latNull, &lngNull,
		&e.StartTime, &e.EndTime, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.InterestTags = tags
	if latNull.Valid {
		e.LocationLat = &latNull.Float64
	}
	if lngNull.Valid {
		e.LocationLng = &lngNull.Float64
	}
	return e, nil
}

func collectEvents(rows *sql.Rows) ([]*domain.Event, error) {
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Create inserts the event and its host attendee row in one transaction, so
// the attendee set of a fresh event already contains the host.
func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO events (host_id, title, description, event_type, interest_tags,
			auto_matching_enabled, is_public, max_participants, location_lat, location_lng,
			start_time, end_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, query,
		e.HostID, e.Title, e.Description, e.EventType, pq.Array(e.InterestTags),
		e.AutoMatchingEnabled, e.IsPublic, e.MaxParticipants, e.LocationLat, e.LocationLng,
		e.StartTime, e.EndTime, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO event_attendees (event_id, user_id) VALUES ($1, $2) ON CONFLICT (event_id, user_id) DO NOTHING`,
		e.ID, e.HostID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	add := func(col string, val any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, val)
		n++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.EventType != nil {
		add("event_type", *upd.EventType)
	}
	if upd.InterestTags != nil {
		add("interest_tags", pq.Array(upd.InterestTags))
	}
	if upd.AutoMatchingEnabled != nil {
		add("auto_matching_enabled", *upd.AutoMatchingEnabled)
	}
	if upd.IsPublic != nil {
		add("is_public", *upd.IsPublic)
	}
	if upd.MaxParticipants != nil {
		add("max_participants", *upd.MaxParticipants)
	}
	if upd.LocationLat != nil {
		add("location_lat", *upd.LocationLat)
	}
	if upd.LocationLng != nil {
		add("location_lng", *upd.LocationLng)
	}
	if upd.StartTime != nil {
		add("start_time", *upd.StartTime)
	}
	if upd.EndTime != nil {
		add("end_time", *upd.EndTime)
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING `+eventColumns, strings.Join(setClauses, ", "), n)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Delete removes the event. Invitations, invited-users, and attendees rows
// reference events with ON DELETE CASCADE.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) ListAutoMatchable(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE auto_matching_enabled = TRUE AND is_public = TRUE AND start_time > $1
		ORDER BY start_time
	`
	rows, err := r.DB.QueryContext(ctx, query, now)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *eventRepository) ListCandidatesForUser(ctx context.Context, interests []string, userID string, now time.Time) ([]*domain.Event, error) {
	if len(interests) == 0 {
		return []*domain.Event{}, nil
	}
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE auto_matching_enabled = TRUE AND is_public = TRUE
		  AND start_time > $1
		  AND interest_tags && $2
		  AND host_id <> $3
		ORDER BY start_time
	`
	rows, err := r.DB.QueryContext(ctx, query, now, pq.Array(interests), userID)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *eventRepository) ListHostedBy(ctx context.Context, userID string, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE host_id = $1 AND end_time > $2
		ORDER BY start_time
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *eventRepository) ListAttendedBy(ctx context.Context, userID string, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + prefixedEventColumns("e") + `
		FROM events e
		JOIN event_attendees ea ON ea.event_id = e.id
		WHERE ea.user_id = $1 AND e.end_time > $2
		ORDER BY e.start_time
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *eventRepository) ListInvited(ctx context.Context, userID string, autoMatched bool, now time.Time) ([]*domain.Event, error) {
	query := `
		SELECT ` + prefixedEventColumns("e") + `
		FROM events e
		JOIN invitations i ON i.event_id = e.id
		WHERE i.user_id = $1 AND i.is_auto_matched = $2 AND e.end_time > $3
		ORDER BY e.start_time
	`
	rows, err := r.DB.QueryContext(ctx, query, userID, autoMatched, now)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *eventRepository) ListPublicUpcoming(ctx context.Context, now time.Time, p domain.PaginationParams) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE is_public = TRUE AND start_time > $1
		ORDER BY start_time
		LIMIT $2 OFFSET $3
	`
	rows, err := r.DB.QueryContext(ctx, query, now, p.Limit(20), p.Offset())
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *eventRepository) AddAttendee(ctx context.Context, eventID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO event_attendees (event_id, user_id) VALUES ($1, $2) ON CONFLICT (event_id, user_id) DO NOTHING`,
		eventID, userID)
	return err
}

func (r *eventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM event_attendees WHERE event_id = $1 AND user_id = $2`,
		eventID, userID)
	return err
}

func (r *eventRepository) IsAttendee(ctx context.Context, eventID, userID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&exists)
	return exists, err
}

func (r *eventRepository) ListAttendeeIDs(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT user_id FROM event_attendees WHERE event_id = $1 ORDER BY user_id`, eventID)
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

func (r *eventRepository) CountAttendees(ctx context.Context, eventID string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_attendees WHERE event_id = $1`, eventID).Scan(&n)
	return n, err
}

func prefixedEventColumns(alias string) string {
	cols := strings.Split(eventColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}
