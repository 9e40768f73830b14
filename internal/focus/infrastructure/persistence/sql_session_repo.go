package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/focus/domain"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLSessionRepository implements domain.Repository on SQLite or Postgres.
// Segments are stored as a JSON array.
type SQLSessionRepository struct {
	conn database.Connection
}

// NewSQLSessionRepository creates a new session repository.
func NewSQLSessionRepository(conn database.Connection) *SQLSessionRepository {
	return &SQLSessionRepository{conn: conn}
}

const sessionColumns = `id, task_id, state, pause_reason, segments, rounds,
       started_at, ended_at, version, created_at, updated_at`

const upsertSession = `INSERT INTO focus_sessions (` + sessionColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    task_id = excluded.task_id,
    state = excluded.state,
    pause_reason = excluded.pause_reason,
    segments = excluded.segments,
    rounds = excluded.rounds,
    started_at = excluded.started_at,
    ended_at = excluded.ended_at,
    version = excluded.version,
    updated_at = excluded.updated_at`

// Save inserts or updates the tracker.
func (r *SQLSessionRepository) Save(ctx context.Context, s *domain.SessionTracker) error {
	snap := s.Snapshot()
	segments, err := json.Marshal(nonNil(snap.Segments))
	if err != nil {
		return fmt.Errorf("encode segments: %w", err)
	}

	var taskID any
	if snap.TaskID != uuid.Nil {
		taskID = snap.TaskID.String()
	}

	_, err = database.ExecutorFromContext(ctx, r.conn).Exec(ctx, upsertSession,
		snap.ID.String(),
		taskID,
		string(snap.State),
		string(snap.PauseReason),
		string(segments),
		snap.Rounds,
		optionalTime(snap.StartedAt),
		optionalTime(snap.EndedAt),
		snap.Version,
		database.FormatTime(snap.CreatedAt),
		database.FormatTime(snap.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("save focus session %s: %w", snap.ID, err)
	}
	return nil
}

// FindCurrent returns the most recently updated session.
func (r *SQLSessionRepository) FindCurrent(ctx context.Context) (*domain.SessionTracker, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM focus_sessions ORDER BY updated_at DESC, created_at DESC LIMIT 1`)
	s, err := scanSession(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

func scanSession(row database.Row) (*domain.SessionTracker, error) {
	var (
		id, state, pauseReason, segments string
		taskID, startedAt, endedAt       *string
		rounds, version                  int
		createdAt, updatedAt             string
	)
	if err := row.Scan(&id, &taskID, &state, &pauseReason, &segments, &rounds,
		&startedAt, &endedAt, &version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	snap := domain.Snapshot{
		PauseReason: domain.PauseReason(pauseReason),
		Rounds:      rounds,
		Version:     version,
	}

	var err error
	if snap.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("focus session row %q: %w", id, err)
	}
	if taskID != nil && *taskID != "" {
		if snap.TaskID, err = uuid.Parse(*taskID); err != nil {
			return nil, fmt.Errorf("focus session %s task_id: %w", id, err)
		}
	}
	if snap.State, err = domain.ParseState(state); err != nil {
		return nil, fmt.Errorf("focus session %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(segments), &snap.Segments); err != nil {
		return nil, fmt.Errorf("focus session %s segments: %w", id, err)
	}
	if t, err := database.ParseNullTime(startedAt); err != nil {
		return nil, fmt.Errorf("focus session %s started_at: %w", id, err)
	} else if t != nil {
		snap.StartedAt = *t
	}
	if t, err := database.ParseNullTime(endedAt); err != nil {
		return nil, fmt.Errorf("focus session %s ended_at: %w", id, err)
	} else if t != nil {
		snap.EndedAt = *t
	}
	if snap.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("focus session %s created_at: %w", id, err)
	}
	if snap.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("focus session %s updated_at: %w", id, err)
	}

	return domain.Rehydrate(snap), nil
}

func optionalTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return database.FormatTime(t)
}

func nonNil(segments []domain.Segment) []domain.Segment {
	if segments == nil {
		return []domain.Segment{}
	}
	return segments
}
