package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hray3182/CoParent/internal/database"
	"github.com/hray3182/CoParent/internal/models"
)

type RecapSettingsRepository struct {
	db *database.DB
}

func NewRecapSettingsRepository(db *database.DB) *RecapSettingsRepository {
	return &RecapSettingsRepository{db: db}
}

const recapSettingsColumns = `parent_ref, chat_id, enabled, transition_notice,
	COALESCE(quiet_start, ''), COALESCE(quiet_end, ''), last_recap_date, last_recap_message_id, updated_at`

// GetRecapSettings retrieves the settings of ref, creating defaults if none exist.
func (r *RecapSettingsRepository) GetRecapSettings(ctx context.Context, ref models.ParentRef, chatID int64) (*models.RecapSettings, error) {
	def := models.NewDefaultRecapSettings(ref, chatID)
	row := r.db.Pool.QueryRow(ctx,
		`INSERT INTO recap_settings (parent_ref, chat_id, enabled, transition_notice, quiet_start, quiet_end)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (parent_ref) DO UPDATE SET parent_ref = EXCLUDED.parent_ref
		 RETURNING `+recapSettingsColumns,
		string(ref), chatID, def.Enabled, def.TransitionNotice, def.QuietStart, def.QuietEnd,
	)
	return scanRecapSettings(row)
}

func (r *RecapSettingsRepository) SaveRecapSettings(ctx context.Context, s *models.RecapSettings) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE recap_settings SET chat_id = $1, enabled = $2, transition_notice = $3,
		 quiet_start = $4, quiet_end = $5, updated_at = NOW()
		 WHERE parent_ref = $6`,
		s.ChatID, s.Enabled, s.TransitionNotice, s.QuietStart, s.QuietEnd, string(s.ParentRef),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecapSettings returns the settings of every parent of the family that has any.
func (r *RecapSettingsRepository) ListRecapSettings(ctx context.Context, familyID int64) ([]models.RecapSettings, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT s.parent_ref, s.chat_id, s.enabled, s.transition_notice,
		 COALESCE(s.quiet_start, ''), COALESCE(s.quiet_end, ''), s.last_recap_date,
		 s.last_recap_message_id, s.updated_at
		 FROM recap_settings s JOIN parent p ON p.parent_ref = s.parent_ref
		 WHERE p.family_id = $1 ORDER BY p.role`,
		familyID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RecapSettings
	for rows.Next() {
		s, err := scanRecapSettings(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *RecapSettingsRepository) MarkRecapSent(ctx context.Context, ref models.ParentRef, day models.Date, messageID int) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE recap_settings SET last_recap_date = $1, last_recap_message_id = $2, updated_at = NOW()
		 WHERE parent_ref = $3`,
		day.Time(), messageID, string(ref),
	)
	return err
}

func scanRecapSettings(row scanner) (*models.RecapSettings, error) {
	var (
		s        models.RecapSettings
		ref      string
		lastDate *time.Time
	)
	err := row.Scan(&ref, &s.ChatID, &s.Enabled, &s.TransitionNotice, &s.QuietStart, &s.QuietEnd,
		&lastDate, &s.LastRecapMessageID, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.ParentRef = models.ParentRef(ref)
	if lastDate != nil {
		d := models.DateFromTime(*lastDate)
		s.LastRecapDate = &d
	}
	return &s, nil
}
