package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/taskforge/taskforge/internal/models"
)

const selectPreferencesByUserQuery = `
SELECT id,
       theme,
       default_view,
       sort_by,
       sort_order,
       show_completed,
       notifications,
       created_at,
       updated_at
FROM preferences
WHERE user_id = $1
`

func (s *Store) GetPreferencesByUser(ctx context.Context, userID string) (*models.Preferences, error) {
	prefs := &models.Preferences{UserID: userID}
	err := s.pool.QueryRow(
		ctx,
		selectPreferencesByUserQuery,
		prefs.UserID,
	).Scan(
		&prefs.ID,
		&prefs.Theme,
		&prefs.DefaultView,
		&prefs.SortBy,
		&prefs.SortOrder,
		&prefs.ShowCompleted,
		&prefs.Notifications,
		&prefs.CreatedAt,
		&prefs.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return prefs, nil
}

func (s *Store) GetOrCreatePreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	defaults := models.DefaultPreferences(userID)

	prefsUUID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	defaults.ID = prefsUUID.String()

	now := time.Now()
	defaults.CreatedAt = now
	defaults.UpdatedAt = now

	// The insert loses the race against a concurrent creation; the
	// follow-up select returns whichever row won.
	const insertPreferencesQuery = `
INSERT INTO preferences (id,
                         user_id,
                         theme,
                         default_view,
                         sort_by,
                         sort_order,
                         show_completed,
                         notifications,
                         created_at,
                         updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id) DO NOTHING
`
	_, err = s.pool.Exec(
		ctx,
		insertPreferencesQuery,
		defaults.ID,
		defaults.UserID,
		defaults.Theme,
		defaults.DefaultView,
		defaults.SortBy,
		defaults.SortOrder,
		defaults.ShowCompleted,
		defaults.Notifications,
		defaults.CreatedAt,
		defaults.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return s.GetPreferencesByUser(ctx, userID)
}

func (s *Store) UpdatePreferences(ctx context.Context, prefs *models.Preferences) error {
	prefs.UpdatedAt = time.Now()

	const updatePreferencesQuery = `
UPDATE preferences
SET theme = $1,
    default_view = $2,
    sort_by = $3,
    sort_order = $4,
    show_completed = $5,
    notifications = $6,
    updated_at = $7
WHERE id = $8
`
	_, err := s.pool.Exec(
		ctx,
		updatePreferencesQuery,
		prefs.Theme,
		prefs.DefaultView,
		prefs.SortBy,
		prefs.SortOrder,
		prefs.ShowCompleted,
		prefs.Notifications,
		prefs.UpdatedAt,
		prefs.ID,
	)
	return err
}
