package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/CoParent/internal/database"
	"github.com/hray3182/CoParent/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `event_id, kind, parent_ref, title, description, start_date, end_date, created_at`

var copyColumns = []string{"event_id", "family_id", "kind", "parent_ref", "title", "description", "start_date", "end_date", "created_at"}

func (r *EventRepository) ReadAll(ctx context.Context, familyID int64) ([]models.CalendarEvent, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM calendar_event WHERE family_id = $1
		 ORDER BY start_date ASC, created_at DESC, event_id ASC`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// BulkWrite copies the whole batch inside one transaction.
func (r *EventRepository) BulkWrite(ctx context.Context, familyID int64, events []models.CalendarEvent) error {
	for i := range events {
		if err := events[i].Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"calendar_event"}, copyColumns,
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			e := &events[i]
			createdAt := e.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now()
			}
			return []any{e.ID, familyID, string(e.Kind.Tag()), nullableRef(e.Parent()), e.StoredTitle(),
				e.Description, e.Start.Time(), e.End.Time(), createdAt}, nil
		}),
	)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *EventRepository) Create(ctx context.Context, familyID int64, event *models.CalendarEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO calendar_event (event_id, family_id, kind, parent_ref, title, description, start_date, end_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at`,
		event.ID, familyID, string(event.Kind.Tag()), nullableRef(event.Parent()), event.StoredTitle(),
		event.Description, event.Start.Time(), event.End.Time(),
	).Scan(&event.CreatedAt)
}

func (r *EventRepository) GetByID(ctx context.Context, familyID int64, eventID string) (*models.CalendarEvent, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM calendar_event WHERE event_id = $1 AND family_id = $2`,
		eventID, familyID,
	)
	event, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetByDateRange returns events overlapping [start, end].
func (r *EventRepository) GetByDateRange(ctx context.Context, familyID int64, start, end models.Date) ([]models.CalendarEvent, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+eventColumns+`
		 FROM calendar_event WHERE family_id = $1 AND end_date >= $2 AND start_date <= $3
		 ORDER BY start_date ASC, created_at DESC, event_id ASC`,
		familyID, start.Time(), end.Time(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (r *EventRepository) Update(ctx context.Context, familyID int64, event *models.CalendarEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE calendar_event SET kind = $1, parent_ref = $2, title = $3, description = $4,
		 start_date = $5, end_date = $6
		 WHERE event_id = $7 AND family_id = $8`,
		string(event.Kind.Tag()), nullableRef(event.Parent()), event.StoredTitle(), event.Description,
		event.Start.Time(), event.End.Time(), event.ID, familyID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, familyID int64, eventID string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM calendar_event WHERE event_id = $1 AND family_id = $2`,
		eventID, familyID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableRef(ref models.ParentRef) *string {
	if ref == "" {
		return nil
	}
	s := string(ref)
	return &s
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (models.CalendarEvent, error) {
	var (
		e          models.CalendarEvent
		kind       string
		parentRef  *string
		start, end time.Time
	)
	if err := row.Scan(&e.ID, &kind, &parentRef, &e.Title, &e.Description, &start, &end, &e.CreatedAt); err != nil {
		return e, err
	}
	ref := ""
	if parentRef != nil {
		ref = *parentRef
	}
	// A row that no longer maps to a kind is returned without one; readers
	// skip events with no kind.
	k, err := models.KindFromTag(models.KindTag(kind), ref, e.Title)
	if err != nil {
		log.Printf("event %s: %v", e.ID, err)
	}
	e.Kind = k
	e.Start = models.DateFromTime(start)
	e.End = models.DateFromTime(end)
	return e, nil
}

func scanEvents(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
