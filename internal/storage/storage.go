// Package storage is the record access layer. Each store reads and
// writes one entity type directly against Postgres. Stores perform no
// authorization and no field validation; callers must do both before
// calling. Absence of a record is reported as a nil result, never as
// an error. Create calls stamp creation/update timestamps, update
// calls refresh the update timestamp.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/taskforge/taskforge/internal/models"
)

// ErrConflict is returned when an insert violates a uniqueness
// constraint (duplicate user email). It is the only error a store
// maps to a sentinel; everything else propagates as-is.
var ErrConflict = errors.New("conflict")

type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	// ListTasksByUser returns the user's tasks newest first.
	ListTasksByUser(ctx context.Context, userID string) ([]*models.Task, error)
	ListTasksByUserAndStatus(ctx context.Context, userID, status string) ([]*models.Task, error)
	// ListTasksByPosition returns the user's tasks in ascending
	// manual order.
	ListTasksByPosition(ctx context.Context, userID string) ([]*models.Task, error)
	// ListTasksWithDueDate returns the user's tasks that have a due
	// date, ascending by due date. A non-nil until bounds the range.
	ListTasksWithDueDate(ctx context.Context, userID string, until *time.Time) ([]*models.Task, error)
	// MaxPosition returns the user's highest task position, 0 when
	// the user has no tasks.
	MaxPosition(ctx context.Context, userID string) (int, error)
	CountTasksCreatedSince(ctx context.Context, userID string, since time.Time) (int, error)
	CountTasksCompletedSince(ctx context.Context, userID string, since time.Time) (int, error)
	UpdateTask(ctx context.Context, task *models.Task) error
	UpdateTaskPosition(ctx context.Context, id string, position int) error
	DeleteTask(ctx context.Context, id string) error
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	ListCommentsByTask(ctx context.Context, taskID string) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	DeleteCommentsByTask(ctx context.Context, taskID string) error
}

type ActivityStore interface {
	AppendActivity(ctx context.Context, activity *models.Activity) error
	ListActivityByTask(ctx context.Context, taskID string) ([]*models.Activity, error)
	ListActivityByUser(ctx context.Context, userID string, limit int) ([]*models.Activity, error)
	DeleteActivityByTask(ctx context.Context, taskID string) error
}

type PreferenceStore interface {
	GetPreferencesByUser(ctx context.Context, userID string) (*models.Preferences, error)
	// GetOrCreatePreferences returns the user's singleton, inserting
	// the defaults first when no row exists yet.
	GetOrCreatePreferences(ctx context.Context, userID string) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, prefs *models.Preferences) error
}

type ThreadStore interface {
	CreateThread(ctx context.Context, thread *models.Thread) error
	GetThreadByID(ctx context.Context, id string) (*models.Thread, error)
	// ListThreadsByUser returns the user's threads, most recent
	// message first.
	ListThreadsByUser(ctx context.Context, userID string) ([]*models.Thread, error)
	UpdateThread(ctx context.Context, thread *models.Thread) error
	DeleteThread(ctx context.Context, id string) error
}

type MessageStore interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	// ListMessagesByThread returns messages oldest first.
	ListMessagesByThread(ctx context.Context, threadID string) ([]*models.Message, error)
	DeleteMessagesByThread(ctx context.Context, threadID string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByID(ctx context.Context, id string) (*models.Session, error)
	GetSessionByRefreshToken(ctx context.Context, refreshToken, fingerprint string) (*models.Session, error)
	UpdateSession(ctx context.Context, session *models.Session) error
	DeleteSessionsByUser(ctx context.Context, userID string) error
}
