package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taskforge/taskforge/internal/models"
)

func (s *Store) CreateThread(ctx context.Context, thread *models.Thread) error {
	now := time.Now()
	thread.CreatedAt = now
	thread.UpdatedAt = now

	const insertThreadQuery = `
INSERT INTO threads (id,
                     user_id,
                     title,
                     status,
                     last_message_at,
                     created_at,
                     updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := s.pool.Exec(
		ctx,
		insertThreadQuery,
		thread.ID,
		thread.UserID,
		thread.Title,
		thread.Status,
		thread.LastMessageAt,
		thread.CreatedAt,
		thread.UpdatedAt,
	)
	return err
}

func (s *Store) GetThreadByID(ctx context.Context, id string) (*models.Thread, error) {
	thread := &models.Thread{ID: id}

	const selectThreadByIDQuery = `
SELECT user_id,
       title,
       status,
       last_message_at,
       created_at,
       updated_at
FROM threads
WHERE id = $1
`
	err := s.pool.QueryRow(
		ctx,
		selectThreadByIDQuery,
		thread.ID,
	).Scan(
		&thread.UserID,
		&thread.Title,
		&thread.Status,
		&thread.LastMessageAt,
		&thread.CreatedAt,
		&thread.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return thread, nil
}

func (s *Store) ListThreadsByUser(ctx context.Context, userID string) ([]*models.Thread, error) {
	const selectThreadsByUserQuery = `
SELECT id,
       title,
       status,
       last_message_at,
       created_at,
       updated_at
FROM threads
WHERE user_id = $1
ORDER BY last_message_at DESC
`
	rows, err := s.pool.Query(ctx, selectThreadsByUserQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []*models.Thread
	for rows.Next() {
		thread := &models.Thread{UserID: userID}
		err = rows.Scan(
			&thread.ID,
			&thread.Title,
			&thread.Status,
			&thread.LastMessageAt,
			&thread.CreatedAt,
			&thread.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		threads = append(threads, thread)
	}
	return threads, rows.Err()
}

func (s *Store) UpdateThread(ctx context.Context, thread *models.Thread) error {
	thread.UpdatedAt = time.Now()

	const updateThreadQuery = `
UPDATE threads
SET title = $1,
    status = $2,
    last_message_at = $3,
    updated_at = $4
WHERE id = $5
`
	_, err := s.pool.Exec(
		ctx,
		updateThreadQuery,
		thread.Title,
		thread.Status,
		thread.LastMessageAt,
		thread.UpdatedAt,
		thread.ID,
	)
	return err
}

func (s *Store) DeleteThread(ctx context.Context, id string) error {
	const deleteThreadQuery = `
DELETE FROM threads
WHERE id = $1
`
	_, err := s.pool.Exec(ctx, deleteThreadQuery, id)
	return err
}

func (s *Store) CreateMessage(ctx context.Context, message *models.Message) error {
	message.CreatedAt = time.Now()

	const insertMessageQuery = `
INSERT INTO messages (id,
                      thread_id,
                      user_id,
                      role,
                      content,
                      created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := s.pool.Exec(
		ctx,
		insertMessageQuery,
		message.ID,
		message.ThreadID,
		message.UserID,
		message.Role,
		message.Content,
		message.CreatedAt,
	)
	return err
}

func (s *Store) ListMessagesByThread(ctx context.Context, threadID string) ([]*models.Message, error) {
	const selectMessagesByThreadQuery = `
SELECT id,
       user_id,
       role,
       content,
       created_at
FROM messages
WHERE thread_id = $1
ORDER BY created_at ASC
`
	rows, err := s.pool.Query(ctx, selectMessagesByThreadQuery, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		message := &models.Message{ThreadID: threadID}
		err = rows.Scan(
			&message.ID,
			&message.UserID,
			&message.Role,
			&message.Content,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (s *Store) DeleteMessagesByThread(ctx context.Context, threadID string) error {
	const deleteMessagesByThreadQuery = `
DELETE FROM messages
WHERE thread_id = $1
`
	_, err := s.pool.Exec(ctx, deleteMessagesByThreadQuery, threadID)
	return err
}
