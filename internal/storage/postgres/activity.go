package postgres

import (
	"context"
	"time"

	"github.com/taskforge/taskforge/internal/models"
)

func (s *Store) AppendActivity(ctx context.Context, activity *models.Activity) error {
	activity.CreatedAt = time.Now()

	var changeFrom, changeTo *string
	if activity.Change != nil {
		changeFrom = &activity.Change.From
		changeTo = &activity.Change.To
	}

	const insertActivityQuery = `
INSERT INTO activity (id,
                      task_id,
                      user_id,
                      action,
                      change_from,
                      change_to,
                      created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := s.pool.Exec(
		ctx,
		insertActivityQuery,
		activity.ID,
		activity.TaskID,
		activity.UserID,
		activity.Action,
		changeFrom,
		changeTo,
		activity.CreatedAt,
	)
	return err
}

func (s *Store) ListActivityByTask(ctx context.Context, taskID string) ([]*models.Activity, error) {
	const selectActivityByTaskQuery = `
SELECT id,
       user_id,
       action,
       change_from,
       change_to,
       created_at
FROM activity
WHERE task_id = $1
ORDER BY created_at DESC
`
	rows, err := s.pool.Query(ctx, selectActivityByTaskQuery, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.Activity
	for rows.Next() {
		record := &models.Activity{TaskID: taskID}
		var changeFrom, changeTo *string
		err = rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Action,
			&changeFrom,
			&changeTo,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		record.Change = scanChange(changeFrom, changeTo)
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) ListActivityByUser(ctx context.Context, userID string, limit int) ([]*models.Activity, error) {
	const selectActivityByUserQuery = `
SELECT id,
       task_id,
       action,
       change_from,
       change_to,
       created_at
FROM activity
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2
`
	rows, err := s.pool.Query(ctx, selectActivityByUserQuery, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.Activity
	for rows.Next() {
		record := &models.Activity{UserID: userID}
		var changeFrom, changeTo *string
		err = rows.Scan(
			&record.ID,
			&record.TaskID,
			&record.Action,
			&changeFrom,
			&changeTo,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		record.Change = scanChange(changeFrom, changeTo)
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) DeleteActivityByTask(ctx context.Context, taskID string) error {
	const deleteActivityByTaskQuery = `
DELETE FROM activity
WHERE task_id = $1
`
	_, err := s.pool.Exec(ctx, deleteActivityByTaskQuery, taskID)
	return err
}

func scanChange(from, to *string) *models.ActivityChange {
	if from == nil && to == nil {
		return nil
	}
	change := &models.ActivityChange{}
	if from != nil {
		change.From = *from
	}
	if to != nil {
		change.To = *to
	}
	return change
}
