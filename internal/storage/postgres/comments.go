package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taskforge/taskforge/internal/models"
)

func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	const insertCommentQuery = `
INSERT INTO comments (id,
                      task_id,
                      user_id,
                      content,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := s.pool.Exec(
		ctx,
		insertCommentQuery,
		comment.ID,
		comment.TaskID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	return err
}

func (s *Store) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	comment := &models.Comment{ID: id}

	const selectCommentByIDQuery = `
SELECT task_id,
       user_id,
       content,
       created_at,
       updated_at
FROM comments
WHERE id = $1
`
	err := s.pool.QueryRow(
		ctx,
		selectCommentByIDQuery,
		comment.ID,
	).Scan(
		&comment.TaskID,
		&comment.UserID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return comment, nil
}

func (s *Store) ListCommentsByTask(ctx context.Context, taskID string) ([]*models.Comment, error) {
	const selectCommentsByTaskQuery = `
SELECT id,
       user_id,
       content,
       created_at,
       updated_at
FROM comments
WHERE task_id = $1
ORDER BY created_at ASC
`
	rows, err := s.pool.Query(ctx, selectCommentsByTaskQuery, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment := &models.Comment{TaskID: taskID}
		err = rows.Scan(
			&comment.ID,
			&comment.UserID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	const deleteCommentQuery = `
DELETE FROM comments
WHERE id = $1
`
	_, err := s.pool.Exec(ctx, deleteCommentQuery, id)
	return err
}

func (s *Store) DeleteCommentsByTask(ctx context.Context, taskID string) error {
	const deleteCommentsByTaskQuery = `
DELETE FROM comments
WHERE task_id = $1
`
	_, err := s.pool.Exec(ctx, deleteCommentsByTaskQuery, taskID)
	return err
}
