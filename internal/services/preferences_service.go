package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/storage"
)

type preferenceServiceImpl struct {
	logger      zerolog.Logger
	preferences storage.PreferenceStore
	limiter     RateLimiter
}

func NewPreferenceService(
	logger zerolog.Logger,
	preferences storage.PreferenceStore,
	limiter RateLimiter,
) PreferenceService {
	return &preferenceServiceImpl{
		logger:      logger,
		preferences: preferences,
		limiter:     limiter,
	}
}

func (s *preferenceServiceImpl) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	prefs, err := s.preferences.GetPreferencesByUser(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select preferences")
		return nil, err
	}
	if prefs == nil {
		// Absence is not an error; the defaults carry an empty ID to
		// mark that nothing is persisted yet.
		return models.DefaultPreferences(userID), nil
	}
	return prefs, nil
}

func (s *preferenceServiceImpl) UpdatePreferences(ctx context.Context, params UpdatePreferencesParams) (*models.Preferences, error) {
	if params.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketPreferences, params.UserID); err != nil {
		return nil, err
	}

	var v violations
	if params.Theme != nil && !models.ValidTheme(*params.Theme) {
		v.addf("theme must be one of %s, %s, %s",
			models.ThemeLight, models.ThemeDark, models.ThemeSystem)
	}
	if params.DefaultView != nil && !models.ValidView(*params.DefaultView) {
		v.addf("default view must be one of %s, %s, %s",
			models.ViewList, models.ViewBoard, models.ViewCalendar)
	}
	if params.SortBy != nil && !models.ValidSortBy(*params.SortBy) {
		v.addf("sort field must be one of %s, %s, %s, %s",
			models.SortByCreatedAt, models.SortByDueDate, models.SortByPriority, models.SortByPosition)
	}
	if params.SortOrder != nil && !models.ValidSortOrder(*params.SortOrder) {
		v.addf("sort order must be %s or %s", models.SortOrderAsc, models.SortOrderDesc)
	}
	if err := v.err(); err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("preferences validation failed")
		return nil, err
	}

	prefs, err := s.preferences.GetOrCreatePreferences(ctx, params.UserID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to get or create preferences")
		return nil, err
	}

	if params.Theme != nil {
		prefs.Theme = *params.Theme
	}
	if params.DefaultView != nil {
		prefs.DefaultView = *params.DefaultView
	}
	if params.SortBy != nil {
		prefs.SortBy = *params.SortBy
	}
	if params.SortOrder != nil {
		prefs.SortOrder = *params.SortOrder
	}
	if params.ShowCompleted != nil {
		prefs.ShowCompleted = *params.ShowCompleted
	}
	if params.Notifications != nil {
		prefs.Notifications = *params.Notifications
	}

	err = s.preferences.UpdatePreferences(ctx, prefs)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to update preferences")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", params.UserID).
		Msg("updated preferences")
	return prefs, nil
}
