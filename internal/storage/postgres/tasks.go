package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taskforge/taskforge/internal/models"
)

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   user_id,
                   title,
                   description,
                   status,
                   priority,
                   due_date,
                   completed_at,
                   position,
                   tags,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	_, err := s.pool.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.CompletedAt,
		task.Position,
		task.Tags,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}

func (s *Store) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	task := &models.Task{ID: id}

	const selectTaskByIDQuery = `
SELECT user_id,
       title,
       description,
       status,
       priority,
       due_date,
       completed_at,
       position,
       tags,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
`
	err := s.pool.QueryRow(
		ctx,
		selectTaskByIDQuery,
		task.ID,
	).Scan(
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.DueDate,
		&task.CompletedAt,
		&task.Position,
		&task.Tags,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return task, nil
}

const selectTaskColumns = `
SELECT id,
       title,
       description,
       status,
       priority,
       due_date,
       completed_at,
       position,
       tags,
       created_at,
       updated_at
FROM tasks
`

func (s *Store) ListTasksByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	const query = selectTaskColumns + `
WHERE user_id = $1
ORDER BY created_at DESC
`
	return s.queryTasks(ctx, userID, query, userID)
}

func (s *Store) ListTasksByUserAndStatus(ctx context.Context, userID, status string) ([]*models.Task, error) {
	const query = selectTaskColumns + `
WHERE user_id = $1 AND status = $2
ORDER BY created_at DESC
`
	return s.queryTasks(ctx, userID, query, userID, status)
}

func (s *Store) ListTasksByPosition(ctx context.Context, userID string) ([]*models.Task, error) {
	const query = selectTaskColumns + `
WHERE user_id = $1
ORDER BY position ASC
`
	return s.queryTasks(ctx, userID, query, userID)
}

func (s *Store) ListTasksWithDueDate(ctx context.Context, userID string, until *time.Time) ([]*models.Task, error) {
	if until != nil {
		const query = selectTaskColumns + `
WHERE user_id = $1 AND due_date IS NOT NULL AND due_date <= $2
ORDER BY due_date ASC
`
		return s.queryTasks(ctx, userID, query, userID, *until)
	}

	const query = selectTaskColumns + `
WHERE user_id = $1 AND due_date IS NOT NULL
ORDER BY due_date ASC
`
	return s.queryTasks(ctx, userID, query, userID)
}

func (s *Store) queryTasks(ctx context.Context, userID, query string, args ...any) ([]*models.Task, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task := &models.Task{UserID: userID}
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.Priority,
			&task.DueDate,
			&task.CompletedAt,
			&task.Position,
			&task.Tags,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *Store) MaxPosition(ctx context.Context, userID string) (int, error) {
	const selectMaxPositionQuery = `
SELECT COALESCE(MAX(position), 0)
FROM tasks
WHERE user_id = $1
`
	var position int
	err := s.pool.QueryRow(ctx, selectMaxPositionQuery, userID).Scan(&position)
	if err != nil {
		return 0, err
	}
	return position, nil
}

func (s *Store) CountTasksCreatedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM tasks
WHERE user_id = $1 AND created_at >= $2
`
	var count int
	err := s.pool.QueryRow(ctx, query, userID, since).Scan(&count)
	return count, err
}

func (s *Store) CountTasksCompletedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM tasks
WHERE user_id = $1 AND completed_at IS NOT NULL AND completed_at >= $2
`
	var count int
	err := s.pool.QueryRow(ctx, query, userID, since).Scan(&count)
	return count, err
}

func (s *Store) UpdateTask(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now()

	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    status = $3,
    priority = $4,
    due_date = $5,
    completed_at = $6,
    tags = $7,
    updated_at = $8
WHERE id = $9
`
	_, err := s.pool.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.CompletedAt,
		task.Tags,
		task.UpdatedAt,
		task.ID,
	)
	return err
}

func (s *Store) UpdateTaskPosition(ctx context.Context, id string, position int) error {
	const updateTaskPositionQuery = `
UPDATE tasks
SET position = $1,
    updated_at = $2
WHERE id = $3
`
	_, err := s.pool.Exec(ctx, updateTaskPositionQuery, position, time.Now(), id)
	return err
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	_, err := s.pool.Exec(ctx, deleteTaskQuery, id)
	return err
}
