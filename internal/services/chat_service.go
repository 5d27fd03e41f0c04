package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/taskforge/taskforge/internal/completion"
	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/storage"
)

type chatServiceImpl struct {
	logger   zerolog.Logger
	threads  storage.ThreadStore
	messages storage.MessageStore
	provider completion.Provider
	limiter  RateLimiter
}

func NewChatService(
	logger zerolog.Logger,
	threads storage.ThreadStore,
	messages storage.MessageStore,
	provider completion.Provider,
	limiter RateLimiter,
) ChatService {
	return &chatServiceImpl{
		logger:   logger,
		threads:  threads,
		messages: messages,
		provider: provider,
		limiter:  limiter,
	}
}

func (s *chatServiceImpl) CreateThread(ctx context.Context, userID, title string) (*models.Thread, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketChatMutations, userID); err != nil {
		return nil, err
	}

	var v violations
	v.checkThreadTitle(title)
	if err := v.err(); err != nil {
		return nil, err
	}

	threadUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate thread uuid")
		return nil, err
	}

	thread := &models.Thread{
		ID:            threadUUID.String(),
		UserID:        userID,
		Title:         title,
		Status:        models.ThreadActive,
		LastMessageAt: time.Now(),
	}
	err = s.threads.CreateThread(ctx, thread)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert thread")
		return nil, err
	}

	s.logger.Info().
		Str("thread_id", thread.ID).
		Str("user_id", userID).
		Msg("created thread")
	return thread, nil
}

func (s *chatServiceImpl) GetThread(ctx context.Context, userID, threadID string) (*models.Thread, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.ownedThread(ctx, userID, threadID)
}

func (s *chatServiceImpl) ListThreads(ctx context.Context, userID string) ([]*models.Thread, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.threads.ListThreadsByUser(ctx, userID)
}

func (s *chatServiceImpl) ArchiveThread(ctx context.Context, userID, threadID string) (*models.Thread, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketChatMutations, userID); err != nil {
		return nil, err
	}

	thread, err := s.ownedThread(ctx, userID, threadID)
	if err != nil {
		return nil, err
	}

	thread.Status = models.ThreadArchived
	err = s.threads.UpdateThread(ctx, thread)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("thread_id", thread.ID).
			Msg("failed to archive thread")
		return nil, err
	}

	s.logger.Info().
		Str("thread_id", thread.ID).
		Msg("archived thread")
	return thread, nil
}

func (s *chatServiceImpl) DeleteThread(ctx context.Context, userID, threadID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketChatMutations, userID); err != nil {
		return err
	}

	thread, err := s.ownedThread(ctx, userID, threadID)
	if err != nil {
		return err
	}

	// Messages and the thread are removed as independent per-record
	// deletes; there is no rollback if one of them fails.
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return s.messages.DeleteMessagesByThread(groupCtx, thread.ID)
	})
	group.Go(func() error {
		return s.threads.DeleteThread(groupCtx, thread.ID)
	})
	err = group.Wait()
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("thread_id", thread.ID).
			Msg("failed to delete thread")
		return err
	}

	s.logger.Info().
		Str("thread_id", thread.ID).
		Str("user_id", userID).
		Msg("deleted thread")
	return nil
}

func (s *chatServiceImpl) ListMessages(ctx context.Context, userID, threadID string) ([]*models.Message, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	_, err := s.ownedThread(ctx, userID, threadID)
	if err != nil {
		return nil, err
	}
	return s.messages.ListMessagesByThread(ctx, threadID)
}

func (s *chatServiceImpl) SendMessage(ctx context.Context, params SendMessageParams) (*ChatExchange, error) {
	if params.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	if err := checkRateLimit(s.limiter, BucketChatSend, params.UserID); err != nil {
		return nil, err
	}

	thread, err := s.ownedThread(ctx, params.UserID, params.ThreadID)
	if err != nil {
		return nil, err
	}

	var v violations
	v.checkMessageContent(params.Content)
	if err = v.err(); err != nil {
		return nil, err
	}

	userMessage, err := s.persistMessage(ctx, thread, params.UserID, models.RoleUser, params.Content)
	if err != nil {
		return nil, err
	}

	reply, err := s.provider.Complete(ctx, params.Content)
	if err != nil {
		// The user message stays persisted; the exchange is reported
		// as failed.
		s.logger.Error().
			Err(err).
			Str("thread_id", thread.ID).
			Msg("completion provider failed")
		return nil, err
	}

	assistantMessage, err := s.persistMessage(ctx, thread, params.UserID, models.RoleAssistant, reply)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("thread_id", thread.ID).
		Str("user_id", params.UserID).
		Msg("chat exchange completed")
	return &ChatExchange{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
	}, nil
}

// persistMessage stores one message and bumps the thread's
// last-message timestamp.
func (s *chatServiceImpl) persistMessage(ctx context.Context, thread *models.Thread, userID, role, content string) (*models.Message, error) {
	messageUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate message uuid")
		return nil, err
	}

	message := &models.Message{
		ID:       messageUUID.String(),
		ThreadID: thread.ID,
		UserID:   userID,
		Role:     role,
		Content:  content,
	}
	err = s.messages.CreateMessage(ctx, message)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("thread_id", thread.ID).
			Msg("failed to insert message")
		return nil, err
	}

	thread.LastMessageAt = message.CreatedAt
	err = s.threads.UpdateThread(ctx, thread)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("thread_id", thread.ID).
			Msg("failed to bump thread last message time")
		return nil, err
	}
	return message, nil
}

func (s *chatServiceImpl) ownedThread(ctx context.Context, userID, threadID string) (*models.Thread, error) {
	thread, err := s.threads.GetThreadByID(ctx, threadID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("thread_id", threadID).
			Msg("failed to select thread by id")
		return nil, err
	}
	if thread == nil {
		return nil, ErrNotFound
	}
	if thread.UserID != userID {
		s.logger.Warn().
			Str("thread_id", threadID).
			Str("user_id", userID).
			Msg("thread owned by another user")
		return nil, ErrNotAuthorized
	}
	return thread, nil
}
