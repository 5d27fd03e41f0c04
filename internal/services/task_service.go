package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/storage"
)

type taskServiceImpl struct {
	logger   zerolog.Logger
	tasks    storage.TaskStore
	comments storage.CommentStore
	activity storage.ActivityStore
	limiter  RateLimiter
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskStore,
	comments storage.CommentStore,
	activity storage.ActivityStore,
	limiter RateLimiter,
) TaskService {
	return &taskServiceImpl{
		logger:   logger,
		tasks:    tasks,
		comments: comments,
		activity: activity,
		limiter:  limiter,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	if params.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketTaskMutations, params.UserID); err != nil {
		return nil, err
	}

	if params.Priority == "" {
		params.Priority = models.PriorityMedium
	}

	var v violations
	v.checkTitle(params.Title)
	v.checkDescription(params.Description)
	v.checkPriority(params.Priority)
	if params.DueDate != nil {
		v.checkDueDate(*params.DueDate)
	}
	v.checkTags(params.Tags)
	if err := v.err(); err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("task validation failed")
		return nil, err
	}

	maxPosition, err := s.tasks.MaxPosition(ctx, params.UserID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", params.UserID).
			Msg("failed to select max task position")
		return nil, err
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}

	task := &models.Task{
		ID:          taskUUID.String(),
		UserID:      params.UserID,
		Title:       params.Title,
		Description: params.Description,
		Status:      models.StatusPending,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		Position:    maxPosition + 1,
		Tags:        params.Tags,
	}

	err = s.tasks.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Int("position", task.Position).
		Msg("inserted task")

	err = s.appendAudit(ctx, task.ID, task.UserID, models.ActionCreated, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.ownedTask(ctx, userID, taskID)
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, userID, status string) ([]*models.Task, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	if status != "" {
		var v violations
		v.checkStatus(status)
		if err := v.err(); err != nil {
			return nil, err
		}
		return s.tasks.ListTasksByUserAndStatus(ctx, userID, status)
	}
	return s.tasks.ListTasksByUser(ctx, userID)
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	if params.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketTaskMutations, params.UserID); err != nil {
		return nil, err
	}

	task, err := s.ownedTask(ctx, params.UserID, params.TaskID)
	if err != nil {
		return nil, err
	}

	var v violations
	if params.Title != nil {
		v.checkTitle(*params.Title)
	}
	if params.Description != nil {
		v.checkDescription(*params.Description)
	}
	if params.Status != nil {
		v.checkStatus(*params.Status)
	}
	if params.Priority != nil {
		v.checkPriority(*params.Priority)
	}
	if params.DueDate != nil {
		v.checkDueDate(*params.DueDate)
	}
	if params.Tags != nil {
		v.checkTags(params.Tags)
	}
	if err = v.err(); err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("task validation failed")
		return nil, err
	}

	prevStatus := task.Status
	prevPriority := task.Priority

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.Priority != nil {
		task.Priority = *params.Priority
	}
	if params.DueDate != nil {
		task.DueDate = params.DueDate
	} else if params.ClearDue {
		task.DueDate = nil
	}
	if params.Tags != nil {
		task.Tags = params.Tags
	}

	// The completion timestamp is set if and only if the task is
	// completed, no matter which path the status took.
	if task.Status == models.StatusCompleted {
		if task.CompletedAt == nil {
			now := time.Now()
			task.CompletedAt = &now
		}
	} else {
		task.CompletedAt = nil
	}

	err = s.tasks.UpdateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated task")

	action, change := auditForUpdate(prevStatus, task.Status, prevPriority, task.Priority)
	err = s.appendAudit(ctx, task.ID, task.UserID, action, change)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.UserID).
		Str("action", action).
		Msg("updated task")
	return task, nil
}

// auditForUpdate picks the single audit action for an update call.
// Completion takes priority over a plain status change, which takes
// priority over a priority change.
func auditForUpdate(prevStatus, status, prevPriority, priority string) (string, *models.ActivityChange) {
	switch {
	case status != prevStatus && status == models.StatusCompleted:
		return models.ActionCompleted, nil
	case status != prevStatus:
		return models.ActionStatusChanged, &models.ActivityChange{From: prevStatus, To: status}
	case priority != prevPriority:
		return models.ActionPriorityChanged, &models.ActivityChange{From: prevPriority, To: priority}
	default:
		return models.ActionUpdated, nil
	}
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, userID, taskID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketTaskMutations, userID); err != nil {
		return err
	}

	task, err := s.ownedTask(ctx, userID, taskID)
	if err != nil {
		return err
	}

	// The audit record is appended while the task still exists so the
	// reference is valid at log time.
	err = s.appendAudit(ctx, task.ID, task.UserID, models.ActionDeleted, nil)
	if err != nil {
		return err
	}

	// Comments and the task row are removed as independent per-record
	// deletes; there is no rollback if one of them fails.
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return s.comments.DeleteCommentsByTask(groupCtx, task.ID)
	})
	group.Go(func() error {
		return s.tasks.DeleteTask(groupCtx, task.ID)
	})
	err = group.Wait()
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", userID).
		Msg("deleted task")
	return nil
}

func (s *taskServiceImpl) ReorderTasks(ctx context.Context, userID string, moves []TaskMove) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketTaskMutations, userID); err != nil {
		return err
	}

	var v violations
	for _, move := range moves {
		if move.Position < 0 {
			v.addf("position for task %s must not be negative", move.TaskID)
		}
	}
	if err := v.err(); err != nil {
		return err
	}

	// Every referenced task must exist and belong to the caller
	// before the first position is written.
	for _, move := range moves {
		_, err := s.ownedTask(ctx, userID, move.TaskID)
		if err != nil {
			return err
		}
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, move := range moves {
		move := move
		group.Go(func() error {
			return s.tasks.UpdateTaskPosition(groupCtx, move.TaskID, move.Position)
		})
	}
	err := group.Wait()
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to reorder tasks")
		return err
	}

	s.logger.Info().
		Str("user_id", userID).
		Int("count", len(moves)).
		Msg("reordered tasks")
	return nil
}

func (s *taskServiceImpl) TaskStats(ctx context.Context, userID string) (*TaskStats, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	tasks, err := s.tasks.ListTasksByUser(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select tasks for stats")
		return nil, err
	}

	now := time.Now()
	stats := &TaskStats{Total: len(tasks)}
	for _, task := range tasks {
		switch task.Status {
		case models.StatusPending:
			stats.Pending++
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusCompleted:
			stats.Completed++
		}
		if isOverdue(task, now) {
			stats.Overdue++
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(100 * float64(stats.Completed) / float64(stats.Total)))
	}
	return stats, nil
}

func (s *taskServiceImpl) OverdueTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	now := time.Now()
	tasks, err := s.tasks.ListTasksWithDueDate(ctx, userID, &now)
	if err != nil {
		return nil, err
	}

	overdue := make([]*models.Task, 0, len(tasks))
	for _, task := range tasks {
		if isOverdue(task, now) {
			overdue = append(overdue, task)
		}
	}
	return overdue, nil
}

func (s *taskServiceImpl) UpcomingTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	tasks, err := s.tasks.ListTasksWithDueDate(ctx, userID, nil)
	if err != nil {
		return nil, err
	}

	upcoming := make([]*models.Task, 0, derivedReadListLimit)
	for _, task := range tasks {
		if task.Status == models.StatusCompleted {
			continue
		}
		upcoming = append(upcoming, task)
		if len(upcoming) == derivedReadListLimit {
			break
		}
	}
	return upcoming, nil
}

func (s *taskServiceImpl) HighPriorityTasks(ctx context.Context, userID string) ([]*models.Task, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	tasks, err := s.tasks.ListTasksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	open := make([]*models.Task, 0, derivedReadListLimit)
	for _, task := range tasks {
		if task.Priority == models.PriorityHigh && task.Status != models.StatusCompleted {
			open = append(open, task)
		}
	}
	sort.Slice(open, func(i, j int) bool {
		return open[i].CreatedAt.Before(open[j].CreatedAt)
	})
	if len(open) > derivedReadListLimit {
		open = open[:derivedReadListLimit]
	}
	return open, nil
}

func (s *taskServiceImpl) Productivity(ctx context.Context, userID string) (*ProductivityStats, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	now := time.Now()
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	stats := &ProductivityStats{}
	var err error
	stats.CreatedLastDay, err = s.tasks.CountTasksCreatedSince(ctx, userID, dayAgo)
	if err != nil {
		return nil, err
	}
	stats.CompletedLastDay, err = s.tasks.CountTasksCompletedSince(ctx, userID, dayAgo)
	if err != nil {
		return nil, err
	}
	stats.CreatedLastWeek, err = s.tasks.CountTasksCreatedSince(ctx, userID, weekAgo)
	if err != nil {
		return nil, err
	}
	stats.CompletedLastWeek, err = s.tasks.CountTasksCompletedSince(ctx, userID, weekAgo)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *taskServiceImpl) ownedTask(ctx context.Context, userID, taskID string) (*models.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task by id")
		return nil, err
	}
	if task == nil {
		s.logger.Warn().
			Str("task_id", taskID).
			Msg("task not found")
		return nil, ErrNotFound
	}
	if task.UserID != userID {
		s.logger.Warn().
			Str("task_id", taskID).
			Str("user_id", userID).
			Msg("task owned by another user")
		return nil, ErrNotAuthorized
	}
	return task, nil
}

func (s *taskServiceImpl) appendAudit(ctx context.Context, taskID, userID, action string, change *models.ActivityChange) error {
	activityUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate activity uuid")
		return err
	}

	record := &models.Activity{
		ID:     activityUUID.String(),
		TaskID: taskID,
		UserID: userID,
		Action: action,
		Change: change,
	}
	err = s.activity.AppendActivity(ctx, record)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("action", action).
			Msg("failed to append activity")
		return err
	}
	return nil
}

func isOverdue(task *models.Task, now time.Time) bool {
	return task.DueDate != nil &&
		task.DueDate.Before(now) &&
		task.Status != models.StatusCompleted
}

func checkRateLimit(limiter RateLimiter, bucket, key string) error {
	allowed, retryAfter := limiter.Allow(bucket, key)
	if !allowed {
		return &RateLimitError{RetryAfter: retryAfter}
	}
	return nil
}
