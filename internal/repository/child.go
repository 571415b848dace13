package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hray3182/CoParent/internal/database"
	"github.com/hray3182/CoParent/internal/models"
)

type ChildRepository struct {
	db *database.DB
}

func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

const childColumns = `child_id, family_id, name, birth_date, school_name, class_name, teacher_name,
	activities, allergies, medications, doctor_name, doctor_phone, created_at`

func (r *ChildRepository) CreateChild(ctx context.Context, c *models.Child) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO child (child_id, family_id, name, birth_date, school_name, class_name, teacher_name,
		 activities, allergies, medications, doctor_name, doctor_phone)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`,
		c.ID, c.FamilyID, c.Name, c.BirthDate.Time(), c.School.SchoolName, c.School.ClassName,
		c.School.TeacherName, c.Activities, c.Medical.Allergies, c.Medical.Medications,
		c.Medical.DoctorName, c.Medical.DoctorPhone,
	).Scan(&c.CreatedAt)
}

func (r *ChildRepository) GetChild(ctx context.Context, familyID int64, childID string) (*models.Child, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+childColumns+` FROM child WHERE child_id = $1 AND family_id = $2`,
		childID, familyID,
	)
	c, err := scanChild(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChildren returns the children of a family, eldest first.
func (r *ChildRepository) ListChildren(ctx context.Context, familyID int64) ([]models.Child, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+childColumns+` FROM child WHERE family_id = $1 ORDER BY birth_date ASC, name ASC`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ChildRepository) UpdateChild(ctx context.Context, c *models.Child) error {
	if err := c.Validate(); err != nil {
		return err
	}
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE child SET name = $1, birth_date = $2, school_name = $3, class_name = $4, teacher_name = $5,
		 activities = $6, allergies = $7, medications = $8, doctor_name = $9, doctor_phone = $10
		 WHERE child_id = $11 AND family_id = $12`,
		c.Name, c.BirthDate.Time(), c.School.SchoolName, c.School.ClassName, c.School.TeacherName,
		c.Activities, c.Medical.Allergies, c.Medical.Medications, c.Medical.DoctorName, c.Medical.DoctorPhone,
		c.ID, c.FamilyID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ChildRepository) DeleteChild(ctx context.Context, familyID int64, childID string) error {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM child WHERE child_id = $1 AND family_id = $2`,
		childID, familyID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanChild(row scanner) (models.Child, error) {
	var (
		c     models.Child
		birth time.Time
	)
	err := row.Scan(&c.ID, &c.FamilyID, &c.Name, &birth, &c.School.SchoolName, &c.School.ClassName,
		&c.School.TeacherName, &c.Activities, &c.Medical.Allergies, &c.Medical.Medications,
		&c.Medical.DoctorName, &c.Medical.DoctorPhone, &c.CreatedAt)
	if err != nil {
		return c, err
	}
	c.BirthDate = models.DateFromTime(birth)
	return c, nil
}
