// Package sqlite provides a SQLite-backed implementation of the listening
// history store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
	"github.com/rs/zerolog"

	"github.com/karl2522/audiora/backend/internal/core/domain"
	"github.com/karl2522/audiora/backend/internal/core/ports"
)

const (
	// activeSessionWindow bounds how old a play can be and still count as an
	// active session. Prevents zombie sessions when a user returns much later.
	activeSessionWindow = 2 * time.Hour

	defaultQueryLimit   = 50
	defaultProfileLimit = 1000
)

// Store implements the history store port on SQLite.
type Store struct {
	db     *sql.DB
	now    func() time.Time
	logger zerolog.Logger
}

var _ ports.HistoryStore = (*Store)(nil)

// NewStore creates a connection and runs the schema migration.
func NewStore(storagePath string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", storagePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	s := &Store{
		db:     db,
		now:    time.Now,
		logger: logger.With().Str("component", "history").Logger(),
	}

	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}

	return s, nil
}

// Close ensures the DB connection is closed gracefully.
func (s *Store) Close() error {
	return s.db.Close()
}

// LogStart records the beginning of a play. Genre and mood are normalized at
// ingestion so profile aggregation sees a consistent vocabulary. An active
// session for the same user and track is resolved as a skip first; cross-track
// transitions are the playback surface's responsibility.
func (s *Store) LogStart(ctx context.Context, userID, trackID string, data ports.TrackPlayData) (domain.PlayEvent, error) {
	genre := ""
	if data.Genre != "" {
		genre = domain.NormalizeGenre(data.Genre)
	}
	mood := ""
	if data.Mood != "" {
		mood = domain.NormalizeMood(data.Mood)
	}

	if active, err := s.findActive(ctx, userID, trackID); err != nil {
		return domain.PlayEvent{}, err
	} else if active != nil {
		if err := s.resolveAsSkipped(ctx, active.ID, active.DurationPlayed); err != nil {
			return domain.PlayEvent{}, err
		}
		s.logger.Debug().Str("user", userID).Str("track", trackID).Msg("resolved duplicate active session as skipped")
	}

	startedAt := s.now()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO play_history (
			user_id, track_id, track_title, track_artist, track_genre,
			track_mood, track_duration, started_at, duration_played
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
	`, userID, trackID, data.Title, data.Artist, nullable(genre), nullable(mood), data.Duration, startedAt)
	if err != nil {
		return domain.PlayEvent{}, fmt.Errorf("sqlite: insert play: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.PlayEvent{}, fmt.Errorf("sqlite: insert play: %w", err)
	}

	return domain.PlayEvent{
		ID:            id,
		UserID:        userID,
		TrackID:       trackID,
		Title:         data.Title,
		Artist:        data.Artist,
		Genre:         genre,
		Mood:          mood,
		TrackDuration: data.Duration,
		StartedAt:     startedAt,
	}, nil
}

// LogComplete marks the active session for the track as completed. Without an
// active session it is a no-op.
func (s *Store) LogComplete(ctx context.Context, userID, trackID string, durationPlayed int) error {
	active, err := s.findActive(ctx, userID, trackID)
	if err != nil || active == nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE play_history
		SET completed = 1, completed_at = ?, duration_played = ?
		WHERE id = ?
	`, s.now(), durationPlayed, active.ID)
	if err != nil {
		return fmt.Errorf("sqlite: complete play: %w", err)
	}
	return nil
}

// LogSkip marks the active session for the track as skipped. Without an
// active session it is a no-op.
func (s *Store) LogSkip(ctx context.Context, userID, trackID string, durationPlayed int) error {
	active, err := s.findActive(ctx, userID, trackID)
	if err != nil || active == nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE play_history
		SET skipped = 1, skipped_at = ?, duration_played = ?
		WHERE id = ?
	`, s.now(), durationPlayed, active.ID)
	if err != nil {
		return fmt.Errorf("sqlite: skip play: %w", err)
	}
	return nil
}

// FindAllForUser returns the user's most recent events for profile
// aggregation, newest first.
func (s *Store) FindAllForUser(ctx context.Context, userID string, limit int) ([]domain.PlayEvent, error) {
	if limit <= 0 {
		limit = defaultProfileLimit
	}
	rows, err := s.db.QueryContext(ctx, selectEvents+`
		WHERE user_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query history: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// FindByUserID returns a filtered page of the user's history, newest first.
func (s *Store) FindByUserID(ctx context.Context, userID string, q ports.HistoryQuery) ([]domain.PlayEvent, error) {
	where, args := historyFilter(userID, q)
	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit, q.Offset)

	rows, err := s.db.QueryContext(ctx, selectEvents+where+`
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query history: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// CountByUserID counts the user's events within the query's date range.
func (s *Store) CountByUserID(ctx context.Context, userID string, q ports.HistoryQuery) (int, error) {
	where, args := historyFilter(userID, q)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM play_history"+where, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: count history: %w", err)
	}
	return count, nil
}

// DeleteByUserID removes all of a user's history and reports how many rows
// went away.
func (s *Store) DeleteByUserID(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM play_history WHERE user_id = ?", userID)
	if err != nil {
		return 0, fmt.Errorf("sqlite: delete history: %w", err)
	}
	return res.RowsAffected()
}

const selectEvents = `
	SELECT id, user_id, track_id, track_title, track_artist, track_genre,
		track_mood, track_duration, started_at, duration_played,
		completed, skipped, completed_at, skipped_at
	FROM play_history
`

func historyFilter(userID string, q ports.HistoryQuery) (string, []any) {
	var b strings.Builder
	b.WriteString(" WHERE user_id = ?")
	args := []any{userID}
	if !q.StartDate.IsZero() {
		b.WriteString(" AND started_at >= ?")
		args = append(args, q.StartDate)
	}
	if !q.EndDate.IsZero() {
		b.WriteString(" AND started_at <= ?")
		args = append(args, q.EndDate)
	}
	return b.String(), args
}

func scanEvents(rows *sql.Rows) ([]domain.PlayEvent, error) {
	events := make([]domain.PlayEvent, 0)
	for rows.Next() {
		var (
			e           domain.PlayEvent
			genre, mood sql.NullString
			completedAt sql.NullTime
			skippedAt   sql.NullTime
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.TrackID, &e.Title, &e.Artist, &genre,
			&mood, &e.TrackDuration, &e.StartedAt, &e.DurationPlayed,
			&e.Completed, &e.Skipped, &completedAt, &skippedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scan play: %w", err)
		}
		e.Genre = genre.String
		e.Mood = mood.String
		if completedAt.Valid {
			t := completedAt.Time
			e.CompletedAt = &t
		}
		if skippedAt.Valid {
			t := skippedAt.Time
			e.SkippedAt = &t
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate history: %w", err)
	}
	return events, nil
}

// findActive returns the most recent unresolved session for the track within
// the active window, or nil.
func (s *Store) findActive(ctx context.Context, userID, trackID string) (*domain.PlayEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, duration_played FROM play_history
		WHERE user_id = ? AND track_id = ? AND completed = 0 AND skipped = 0 AND started_at > ?
		ORDER BY started_at DESC
		LIMIT 1
	`, userID, trackID, s.now().Add(-activeSessionWindow))

	var e domain.PlayEvent
	if err := row.Scan(&e.ID, &e.DurationPlayed); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: find active play: %w", err)
	}
	return &e, nil
}

func (s *Store) resolveAsSkipped(ctx context.Context, id int64, durationPlayed int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE play_history
		SET skipped = 1, skipped_at = ?, duration_played = ?
		WHERE id = ?
	`, s.now(), durationPlayed, id)
	if err != nil {
		return fmt.Errorf("sqlite: resolve active play: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS play_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		track_id TEXT NOT NULL,
		track_title TEXT NOT NULL,
		track_artist TEXT NOT NULL,
		track_genre TEXT,
		track_mood TEXT,
		track_duration INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		duration_played INTEGER NOT NULL DEFAULT 0,
		completed INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		completed_at DATETIME,
		skipped_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_play_history_user_started
		ON play_history(user_id, started_at DESC);

	CREATE INDEX IF NOT EXISTS idx_play_history_active
		ON play_history(user_id, track_id, completed, skipped);
	`
	if _, err := s.db.Exec(query); err != nil {
		return err
	}
	return nil
}
