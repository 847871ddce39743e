package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/kkcos-go/apperror"
)

// pgForeignKeyViolation is the PostgreSQL error code for foreign key violations.
const pgForeignKeyViolation = "23503"

// EventService owns event persistence and the statistics queries. All reads
// used by the statistics are single grouped aggregates; nothing is
// materialized, every request recomputes from the current table contents.
type EventService struct {
	db *pgxpool.Pool
}

// NewEventService creates a new EventService.
func NewEventService(db *pgxpool.Pool) *EventService {
	return &EventService{db: db}
}

// CreateEvent validates and inserts a new event, returning it with the
// assigned id. A missing timestamp defaults to the current UTC time.
func (s *EventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	consistency, err := ParseConsistency(req.Consistency)
	if err != nil {
		return nil, apperror.NewValidationError(err.Error(), nil)
	}

	timestamp := time.Now().UTC()
	if req.Timestamp != nil && *req.Timestamp != "" {
		timestamp, err = ParseTimestamp(*req.Timestamp)
		if err != nil {
			return nil, apperror.NewValidationError(err.Error(), nil)
		}
	}

	event := &Event{
		UserID:      req.UserID,
		GroupID:     req.GroupID,
		Timestamp:   timestamp,
		Duration:    req.Duration,
		Consistency: consistency,
		Notes:       req.Notes,
	}

	query := `INSERT INTO events (user_id, group_id, "timestamp", duration, consistency, notes)
              VALUES ($1, $2, $3, $4, $5, $6)
              RETURNING id`
	err = s.db.QueryRow(ctx, query,
		event.UserID, event.GroupID, event.Timestamp, event.Duration, string(event.Consistency), event.Notes,
	).Scan(&event.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", event.UserID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to create event", err)
	}
	return event, nil
}

// ListEvents returns a page of events ordered by id.
func (s *EventService) ListEvents(ctx context.Context, offset, limit int) ([]Event, error) {
	query := `SELECT id, user_id, group_id, "timestamp", duration, consistency, notes
              FROM events
              ORDER BY id
              OFFSET $1 LIMIT $2`
	rows, err := s.db.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list events", err)
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan event", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to list events", err)
	}
	return events, nil
}

// GetEvent returns a single event by id.
func (s *EventService) GetEvent(ctx context.Context, eventID int) (*Event, error) {
	query := `SELECT id, user_id, group_id, "timestamp", duration, consistency, notes
              FROM events
              WHERE id = $1`
	event, err := scanEvent(s.db.QueryRow(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError("Event not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get event", err)
	}
	return event, nil
}

// DeleteEvent removes an event by id.
func (s *EventService) DeleteEvent(ctx context.Context, eventID int) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		return apperror.NewDatabaseError("failed to delete event", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFoundError("Event not found", nil)
	}
	return nil
}

// Ranking returns (username, count) for every user with at least one event,
// sorted by count descending. Ties resolve to the lower user id so the order
// is deterministic.
func (s *EventService) Ranking(ctx context.Context) ([]RankingEntry, error) {
	query := `SELECT u.username, COUNT(e.id) AS count
              FROM users u
              JOIN events e ON e.user_id = u.id
              GROUP BY u.id, u.username
              ORDER BY COUNT(e.id) DESC, u.id ASC`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query ranking", err)
	}
	defer rows.Close()

	ranking := make([]RankingEntry, 0)
	for rows.Next() {
		var entry RankingEntry
		if err := rows.Scan(&entry.Username, &entry.Count); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan ranking row", err)
		}
		ranking = append(ranking, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to query ranking", err)
	}
	return ranking, nil
}

// Stats computes the hall of fame and the per-user daily averages. The four
// aggregates are independent reads against the current table contents; an
// empty store yields null superlatives and an empty averages list, never an
// error.
func (s *EventService) Stats(ctx context.Context) (*StatsResponse, error) {
	monstruoso, err := s.topByConsistency(ctx, ConsistencyJurasica)
	if err != nil {
		return nil, err
	}

	escopetas, err := s.topByConsistency(ctx, ConsistencyEspurruteo)
	if err != nil {
		return nil, err
	}

	timido, err := s.fewestEvents(ctx)
	if err != nil {
		return nil, err
	}

	activity, err := s.userActivity(ctx)
	if err != nil {
		return nil, err
	}

	return &StatsResponse{
		HallOfFame: HallOfFame{
			Monstruoso: monstruoso,
			Escopetas:  escopetas,
			Timido:     timido,
		},
		Averages: computeAverages(activity, time.Now().UTC()),
	}, nil
}

// topByConsistency finds the user with the most events of one consistency.
// Returns nil when no such events exist.
func (s *EventService) topByConsistency(ctx context.Context, consistency Consistency) (*HallOfFameEntry, error) {
	query := `SELECT u.username, COUNT(e.id) AS count
              FROM users u
              JOIN events e ON e.user_id = u.id
              WHERE e.consistency = $1
              GROUP BY u.id, u.username
              ORDER BY COUNT(e.id) DESC, u.id ASC
              LIMIT 1`
	var entry HallOfFameEntry
	err := s.db.QueryRow(ctx, query, string(consistency)).Scan(&entry.Username, &entry.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("failed to query hall of fame", err)
	}
	return &entry, nil
}

// fewestEvents finds the user with the minimum nonzero event count. Users
// with no events never appear: the inner join only produces rows for users
// who have logged something.
func (s *EventService) fewestEvents(ctx context.Context) (*HallOfFameEntry, error) {
	query := `SELECT u.username, COUNT(e.id) AS count
              FROM users u
              JOIN events e ON e.user_id = u.id
              GROUP BY u.id, u.username
              ORDER BY COUNT(e.id) ASC, u.id ASC
              LIMIT 1`
	var entry HallOfFameEntry
	err := s.db.QueryRow(ctx, query).Scan(&entry.Username, &entry.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("failed to query hall of fame", err)
	}
	return &entry, nil
}

// userActivity returns the grouped (count, first event) aggregate per user,
// one round-trip for all users.
func (s *EventService) userActivity(ctx context.Context) ([]UserActivity, error) {
	query := `SELECT u.username, COUNT(e.id), MIN(e."timestamp")
              FROM users u
              JOIN events e ON e.user_id = u.id
              GROUP BY u.id, u.username
              ORDER BY u.id ASC`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query user activity", err)
	}
	defer rows.Close()

	activity := make([]UserActivity, 0)
	for rows.Next() {
		var row UserActivity
		if err := rows.Scan(&row.Username, &row.Total, &row.FirstEvent); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan activity row", err)
		}
		activity = append(activity, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to query user activity", err)
	}
	return activity, nil
}

// scanEvent scans one event row, converting nullable columns.
func scanEvent(row pgx.Row) (*Event, error) {
	var event Event
	var consistency string
	err := row.Scan(&event.ID, &event.UserID, &event.GroupID, &event.Timestamp, &event.Duration, &consistency, &event.Notes)
	if err != nil {
		return nil, err
	}
	event.Consistency = Consistency(consistency)
	return &event, nil
}
