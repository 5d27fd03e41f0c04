package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/storage"
)

type activityServiceImpl struct {
	logger   zerolog.Logger
	tasks    storage.TaskStore
	activity storage.ActivityStore
	limiter  RateLimiter
}

func NewActivityService(
	logger zerolog.Logger,
	tasks storage.TaskStore,
	activity storage.ActivityStore,
	limiter RateLimiter,
) ActivityService {
	return &activityServiceImpl{
		logger:   logger,
		tasks:    tasks,
		activity: activity,
		limiter:  limiter,
	}
}

func (s *activityServiceImpl) ListTaskActivity(ctx context.Context, userID, taskID string) ([]*models.Activity, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	err := s.checkTaskAccess(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	records, err := s.activity.ListActivityByTask(ctx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select activity by task")
		return nil, err
	}
	return records, nil
}

func (s *activityServiceImpl) RecentActivity(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if limit <= 0 || limit > recentActivityLimit {
		limit = recentActivityLimit
	}
	return s.activity.ListActivityByUser(ctx, userID, limit)
}

func (s *activityServiceImpl) ClearTaskActivity(ctx context.Context, userID, taskID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketTaskMutations, userID); err != nil {
		return err
	}

	err := s.checkTaskAccess(ctx, userID, taskID)
	if err != nil {
		return err
	}

	err = s.activity.DeleteActivityByTask(ctx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete activity by task")
		return err
	}

	s.logger.Info().
		Str("task_id", taskID).
		Str("user_id", userID).
		Msg("cleared task activity")
	return nil
}

// checkTaskAccess verifies the caller may read a task's audit trail.
// The trail outlives the task, so when the task row is gone the check
// falls back to the user reference on the records themselves.
func (s *activityServiceImpl) checkTaskAccess(ctx context.Context, userID, taskID string) error {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task by id")
		return err
	}
	if task != nil {
		if task.UserID != userID {
			return ErrNotAuthorized
		}
		return nil
	}

	records, err := s.activity.ListActivityByTask(ctx, taskID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return ErrNotFound
	}
	for _, record := range records {
		if record.UserID != userID {
			return ErrNotAuthorized
		}
	}
	return nil
}
