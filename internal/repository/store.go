package repository

import (
	"context"
	"errors"

	"github.com/hray3182/CoParent/internal/database"
	"github.com/hray3182/CoParent/internal/models"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrFamilyFull        = errors.New("family already has two parents")
	ErrAlreadyRegistered = errors.New("telegram account already belongs to a family")
)

// EventStore is the family calendar. BulkWrite is all or nothing.
type EventStore interface {
	ReadAll(ctx context.Context, familyID int64) ([]models.CalendarEvent, error)
	BulkWrite(ctx context.Context, familyID int64, events []models.CalendarEvent) error
	Create(ctx context.Context, familyID int64, event *models.CalendarEvent) error
	Update(ctx context.Context, familyID int64, event *models.CalendarEvent) error
	Delete(ctx context.Context, familyID int64, eventID string) error
	GetByID(ctx context.Context, familyID int64, eventID string) (*models.CalendarEvent, error)
	GetByDateRange(ctx context.Context, familyID int64, start, end models.Date) ([]models.CalendarEvent, error)
}

type FamilyStore interface {
	// CreateFamily stores f and registers creator as Parent A.
	CreateFamily(ctx context.Context, f *models.Family, creator *models.Parent) error
	GetFamily(ctx context.Context, familyID int64) (*models.Family, error)
	ListFamilies(ctx context.Context) ([]models.Family, error)
	// JoinFamily registers p as Parent B.
	JoinFamily(ctx context.Context, familyID int64, p *models.Parent) error
	ParentByTelegramID(ctx context.Context, telegramID int64) (*models.Parent, error)
	ListParents(ctx context.Context, familyID int64) ([]models.Parent, error)
}

type RecapSettingsStore interface {
	// GetRecapSettings returns the settings of ref, creating defaults for chatID.
	GetRecapSettings(ctx context.Context, ref models.ParentRef, chatID int64) (*models.RecapSettings, error)
	SaveRecapSettings(ctx context.Context, s *models.RecapSettings) error
	ListRecapSettings(ctx context.Context, familyID int64) ([]models.RecapSettings, error)
	MarkRecapSent(ctx context.Context, ref models.ParentRef, day models.Date, messageID int) error
}

type ChildStore interface {
	// CreateChild assigns an id when c has none.
	CreateChild(ctx context.Context, c *models.Child) error
	GetChild(ctx context.Context, familyID int64, childID string) (*models.Child, error)
	ListChildren(ctx context.Context, familyID int64) ([]models.Child, error)
	UpdateChild(ctx context.Context, c *models.Child) error
	DeleteChild(ctx context.Context, familyID int64, childID string) error
}

type Store interface {
	EventStore
	FamilyStore
	RecapSettingsStore
	ChildStore
}

// Postgres bundles the pgx repositories into a Store.
type Postgres struct {
	*EventRepository
	*FamilyRepository
	*RecapSettingsRepository
	*ChildRepository
}

func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{
		EventRepository:         NewEventRepository(db),
		FamilyRepository:        NewFamilyRepository(db),
		RecapSettingsRepository: NewRecapSettingsRepository(db),
		ChildRepository:         NewChildRepository(db),
	}
}

var _ Store = (*Postgres)(nil)
