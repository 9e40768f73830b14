package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/studybuddy/internal/planning/domain"
	sharedDomain "github.com/felixgeelhaar/studybuddy/internal/shared/domain"
	"github.com/felixgeelhaar/studybuddy/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLScheduleRepository implements domain.Repository on SQLite or Postgres.
// Entries are written with the header; a schedule's entries never change
// after it is built.
type SQLScheduleRepository struct {
	conn database.Connection
}

var (
	_ domain.Repository                         = (*SQLScheduleRepository)(nil)
	_ sharedDomain.Repository[*domain.Schedule] = (*SQLScheduleRepository)(nil)
)

// NewSQLScheduleRepository creates a new schedule repository.
func NewSQLScheduleRepository(conn database.Connection) *SQLScheduleRepository {
	return &SQLScheduleRepository{conn: conn}
}

const upsertSchedule = `INSERT INTO schedules
    (id, start_date, daily_capacity_seconds, stale, generated_at, version, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    stale = excluded.stale,
    version = excluded.version,
    updated_at = excluded.updated_at`

const insertEntry = `INSERT INTO schedule_entries
    (schedule_id, seq, day, kind, task_id, subject, starts_at, ends_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (schedule_id, seq) DO NOTHING`

// Save stores the schedule header and any entries not yet written.
func (r *SQLScheduleRepository) Save(ctx context.Context, s *domain.Schedule) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	_, err := exec.Exec(ctx, upsertSchedule,
		s.ID().String(),
		s.StartDate().Format(database.DateLayout),
		int64(s.DailyCapacity()/time.Second),
		s.Stale(),
		database.FormatTime(s.GeneratedAt()),
		s.Version(),
		database.FormatTime(s.CreatedAt()),
		database.FormatTime(s.UpdatedAt()),
	)
	if err != nil {
		return fmt.Errorf("save schedule %s: %w", s.ID(), err)
	}

	for i, e := range s.Entries() {
		var taskID any
		if e.TaskID != uuid.Nil {
			taskID = e.TaskID.String()
		}
		_, err := exec.Exec(ctx, insertEntry,
			s.ID().String(), i, e.Day, string(e.Kind), taskID, e.Subject,
			database.FormatTime(e.Start), database.FormatTime(e.End),
		)
		if err != nil {
			return fmt.Errorf("save schedule %s entry %d: %w", s.ID(), i, err)
		}
	}
	return nil
}

const selectSchedule = `SELECT id, start_date, daily_capacity_seconds, stale, generated_at, version, created_at, updated_at
FROM schedules`

// FindByID loads a schedule or returns domain.ErrScheduleNotFound.
func (r *SQLScheduleRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Schedule, error) {
	return r.findOne(ctx, selectSchedule+` WHERE id = ?`, id.String())
}

// FindLatest returns the most recently generated schedule.
func (r *SQLScheduleRepository) FindLatest(ctx context.Context) (*domain.Schedule, error) {
	return r.findOne(ctx, selectSchedule+` ORDER BY generated_at DESC, created_at DESC LIMIT 1`)
}

func (r *SQLScheduleRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Schedule, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	var (
		id, startDate, generatedAt, createdAt, updatedAt string
		capacitySeconds                                  int64
		stale                                            bool
		version                                          int
	)
	err := exec.QueryRow(ctx, query, args...).
		Scan(&id, &startDate, &capacitySeconds, &stale, &generatedAt, &version, &createdAt, &updatedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	scheduleID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("schedule row %q: %w", id, err)
	}
	// Entry dates are midnights in the local zone the schedule was built in;
	// start_date is read back in time.Local for the same reason.
	start, err := time.ParseInLocation(database.DateLayout, startDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("schedule %s start date: %w", id, err)
	}
	generated, err := database.ParseTime(generatedAt)
	if err != nil {
		return nil, err
	}
	created, err := database.ParseTime(createdAt)
	if err != nil {
		return nil, err
	}
	updated, err := database.ParseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	entries, err := r.entries(ctx, exec, id, start)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateSchedule(
		scheduleID, start, time.Duration(capacitySeconds)*time.Second, entries,
		generated, stale, version, created, updated,
	), nil
}

func (r *SQLScheduleRepository) entries(ctx context.Context, exec database.Executor, scheduleID string, start time.Time) ([]domain.Entry, error) {
	rows, err := exec.Query(ctx,
		`SELECT day, kind, task_id, subject, starts_at, ends_at
FROM schedule_entries WHERE schedule_id = ? ORDER BY seq`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("query schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		var (
			e              domain.Entry
			kind           string
			taskID         *string
			startsAt, ends string
		)
		if err := rows.Scan(&e.Day, &kind, &taskID, &e.Subject, &startsAt, &ends); err != nil {
			return nil, err
		}
		e.Kind = domain.EntryKind(kind)
		if taskID != nil {
			if e.TaskID, err = uuid.Parse(*taskID); err != nil {
				return nil, fmt.Errorf("schedule %s entry task: %w", scheduleID, err)
			}
		}
		if e.Start, err = database.ParseTime(startsAt); err != nil {
			return nil, err
		}
		if e.End, err = database.ParseTime(ends); err != nil {
			return nil, err
		}
		e.Start = e.Start.In(start.Location())
		e.End = e.End.In(start.Location())
		e.Date = start.AddDate(0, 0, e.Day-1)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
