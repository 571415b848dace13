package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hray3182/CoParent/internal/database"
	"github.com/hray3182/CoParent/internal/models"
)

type FamilyRepository struct {
	db *database.DB
}

func NewFamilyRepository(db *database.DB) *FamilyRepository {
	return &FamilyRepository{db: db}
}

const uniqueViolation = "23505"

func (r *FamilyRepository) CreateFamily(ctx context.Context, f *models.Family, creator *models.Parent) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if f.WeekStart == "" {
		f.WeekStart = "monday"
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO family (name, timezone, week_start) VALUES ($1, $2, $3)
		 RETURNING family_id, created_at`,
		f.Name, f.Timezone, f.WeekStart,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return err
	}

	creator.FamilyID = f.ID
	creator.Role = models.RoleParentA
	if err := insertParent(ctx, tx, creator); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *FamilyRepository) GetFamily(ctx context.Context, familyID int64) (*models.Family, error) {
	f := &models.Family{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT family_id, name, timezone, week_start, created_at FROM family WHERE family_id = $1`,
		familyID,
	).Scan(&f.ID, &f.Name, &f.Timezone, &f.WeekStart, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FamilyRepository) ListFamilies(ctx context.Context) ([]models.Family, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT family_id, name, timezone, week_start, created_at FROM family ORDER BY family_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var f models.Family
		if err := rows.Scan(&f.ID, &f.Name, &f.Timezone, &f.WeekStart, &f.CreatedAt); err != nil {
			return nil, err
		}
		families = append(families, f)
	}
	return families, rows.Err()
}

func (r *FamilyRepository) JoinFamily(ctx context.Context, familyID int64, p *models.Parent) error {
	if _, err := r.GetFamily(ctx, familyID); err != nil {
		return err
	}
	p.FamilyID = familyID
	p.Role = models.RoleParentB
	return insertParent(ctx, r.db.Pool, p)
}

func (r *FamilyRepository) ParentByTelegramID(ctx context.Context, telegramID int64) (*models.Parent, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT parent_ref, family_id, role, display_name, COALESCE(telegram_id, 0), created_at
		 FROM parent WHERE telegram_id = $1`,
		telegramID,
	)
	p, err := scanParent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *FamilyRepository) ListParents(ctx context.Context, familyID int64) ([]models.Parent, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT parent_ref, family_id, role, display_name, COALESCE(telegram_id, 0), created_at
		 FROM parent WHERE family_id = $1 ORDER BY role`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parents []models.Parent
	for rows.Next() {
		p, err := scanParent(rows)
		if err != nil {
			return nil, err
		}
		parents = append(parents, p)
	}
	return parents, rows.Err()
}

type execQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertParent(ctx context.Context, q execQuerier, p *models.Parent) error {
	if p.Ref == "" {
		p.Ref = models.ParentRef(uuid.NewString())
	}
	var telegramID *int64
	if p.TelegramID != 0 {
		telegramID = &p.TelegramID
	}
	err := q.QueryRow(ctx,
		`INSERT INTO parent (parent_ref, family_id, role, display_name, telegram_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		string(p.Ref), p.FamilyID, string(p.Role), p.DisplayName, telegramID,
	).Scan(&p.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == "parent_telegram_id_key" {
			return ErrAlreadyRegistered
		}
		return ErrFamilyFull
	}
	if err != nil {
		return fmt.Errorf("insert parent: %w", err)
	}
	return nil
}

func scanParent(row scanner) (models.Parent, error) {
	var (
		p    models.Parent
		ref  string
		role string
	)
	err := row.Scan(&ref, &p.FamilyID, &role, &p.DisplayName, &p.TelegramID, &p.CreatedAt)
	p.Ref = models.ParentRef(ref)
	p.Role = models.Role(role)
	return p, err
}
