package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/storage"
)

type commentServiceImpl struct {
	logger   zerolog.Logger
	tasks    storage.TaskStore
	comments storage.CommentStore
	limiter  RateLimiter
}

func NewCommentService(
	logger zerolog.Logger,
	tasks storage.TaskStore,
	comments storage.CommentStore,
	limiter RateLimiter,
) CommentService {
	return &commentServiceImpl{
		logger:   logger,
		tasks:    tasks,
		comments: comments,
		limiter:  limiter,
	}
}

func (s *commentServiceImpl) CreateComment(ctx context.Context, params CreateCommentParams) (*models.Comment, error) {
	if params.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketCommentMutations, params.UserID); err != nil {
		return nil, err
	}

	err := s.checkTaskOwnership(ctx, params.UserID, params.TaskID)
	if err != nil {
		return nil, err
	}

	var v violations
	v.checkCommentContent(params.Content)
	if err = v.err(); err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Msg("comment validation failed")
		return nil, err
	}

	commentUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate comment uuid")
		return nil, err
	}

	comment := &models.Comment{
		ID:      commentUUID.String(),
		TaskID:  params.TaskID,
		UserID:  params.UserID,
		Content: params.Content,
	}
	err = s.comments.CreateComment(ctx, comment)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", params.TaskID).
			Msg("failed to insert comment")
		return nil, err
	}

	s.logger.Info().
		Str("comment_id", comment.ID).
		Str("task_id", comment.TaskID).
		Msg("created comment")
	return comment, nil
}

func (s *commentServiceImpl) ListComments(ctx context.Context, userID, taskID string) ([]*models.Comment, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	err := s.checkTaskOwnership(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	return s.comments.ListCommentsByTask(ctx, taskID)
}

func (s *commentServiceImpl) DeleteComment(ctx context.Context, userID, commentID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketCommentMutations, userID); err != nil {
		return err
	}

	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("comment_id", commentID).
			Msg("failed to select comment by id")
		return err
	}
	if comment == nil {
		return ErrNotFound
	}
	if comment.UserID != userID {
		s.logger.Warn().
			Str("comment_id", commentID).
			Str("user_id", userID).
			Msg("comment authored by another user")
		return ErrNotAuthorized
	}

	err = s.comments.DeleteComment(ctx, commentID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("comment_id", commentID).
			Msg("failed to delete comment")
		return err
	}

	s.logger.Info().
		Str("comment_id", commentID).
		Str("user_id", userID).
		Msg("deleted comment")
	return nil
}

func (s *commentServiceImpl) checkTaskOwnership(ctx context.Context, userID, taskID string) error {
	task, err := s.tasks.GetTaskByID(ctx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task by id")
		return err
	}
	if task == nil {
		return ErrNotFound
	}
	if task.UserID != userID {
		return ErrNotAuthorized
	}
	return nil
}
