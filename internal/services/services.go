package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taskforge/taskforge/internal/models"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotFound         = errors.New("not found")
	ErrNotAuthorized    = errors.New("not authorized")

	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
)

// RateLimitError is returned when a named bucket denies a mutation.
// No side effect has occurred by the time it is raised.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %s", e.RetryAfter.Round(time.Second))
}

// ValidationError aggregates every failing field rule of one call
// into a single message.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

// RateLimiter is the rate-limit boundary: check-and-consume a named
// bucket for a key, with a retry-after duration on denial.
type RateLimiter interface {
	Allow(name, key string) (bool, time.Duration)
}

// Named rate-limit buckets consulted before each mutating operation.
const (
	BucketTaskMutations    = "task_mutations"
	BucketCommentMutations = "comment_mutations"
	BucketPreferences      = "preferences"
	BucketChatMutations    = "chat_mutations"
	BucketChatSend         = "chat_send"
)

type TaskService interface {
	// CreateTask validates the fields, assigns the next manual
	// position for the caller and appends a "created" audit record.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	GetTask(ctx context.Context, userID, taskID string) (*models.Task, error)

	// ListTasks returns the caller's tasks newest first, or only
	// those with the given status when it is non-empty.
	ListTasks(ctx context.Context, userID, status string) ([]*models.Task, error)

	// UpdateTask applies a partial patch. Exactly one audit record is
	// appended per call; a status change landing on completed logs
	// "completed", other status changes log "status_changed", a
	// priority change logs "priority_changed", anything else logs
	// "updated". The completion timestamp is kept set if and only if
	// the resulting status is completed.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask appends the "deleted" audit record before removing
	// the task, then deletes the task and its comments. Audit
	// records are retained; ClearTaskActivity removes them in bulk.
	DeleteTask(ctx context.Context, userID, taskID string) error

	// ReorderTasks verifies ownership of every referenced task before
	// any position is written, then issues the writes concurrently
	// with no rollback on partial failure.
	ReorderTasks(ctx context.Context, userID string, moves []TaskMove) error

	TaskStats(ctx context.Context, userID string) (*TaskStats, error)
	OverdueTasks(ctx context.Context, userID string) ([]*models.Task, error)
	UpcomingTasks(ctx context.Context, userID string) ([]*models.Task, error)
	HighPriorityTasks(ctx context.Context, userID string) ([]*models.Task, error)
	Productivity(ctx context.Context, userID string) (*ProductivityStats, error)
}

type CreateTaskParams struct {
	UserID      string
	Title       string
	Description string
	Priority    string
	DueDate     *time.Time
	Tags        []string
}

type UpdateTaskParams struct {
	UserID string
	TaskID string

	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	ClearDue    bool
	// Tags replaces the tag set when non-nil; an empty non-nil slice
	// clears it.
	Tags []string
}

type TaskMove struct {
	TaskID   string
	Position int
}

type TaskStats struct {
	Total          int
	Pending        int
	InProgress     int
	Completed      int
	Overdue        int
	CompletionRate int
}

type ProductivityStats struct {
	CreatedLastDay    int
	CompletedLastDay  int
	CreatedLastWeek   int
	CompletedLastWeek int
}

type CommentService interface {
	CreateComment(ctx context.Context, params CreateCommentParams) (*models.Comment, error)
	ListComments(ctx context.Context, userID, taskID string) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID string) error
}

type CreateCommentParams struct {
	UserID  string
	TaskID  string
	Content string
}

type ActivityService interface {
	// ListTaskActivity returns the audit trail of a task. The trail
	// outlives the task itself, so records stay readable after the
	// task is deleted.
	ListTaskActivity(ctx context.Context, userID, taskID string) ([]*models.Activity, error)
	RecentActivity(ctx context.Context, userID string, limit int) ([]*models.Activity, error)
	// ClearTaskActivity removes a deleted task's audit trail in bulk.
	ClearTaskActivity(ctx context.Context, userID, taskID string) error
}

type PreferenceService interface {
	// GetPreferences returns the stored singleton, or materialized
	// defaults with an empty ID when none exists. The defaults are
	// not persisted.
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	// UpdatePreferences creates the singleton first when absent, then
	// applies the patch.
	UpdatePreferences(ctx context.Context, params UpdatePreferencesParams) (*models.Preferences, error)
}

type UpdatePreferencesParams struct {
	UserID string

	Theme         *string
	DefaultView   *string
	SortBy        *string
	SortOrder     *string
	ShowCompleted *bool
	Notifications *bool
}

type ChatService interface {
	CreateThread(ctx context.Context, userID, title string) (*models.Thread, error)
	GetThread(ctx context.Context, userID, threadID string) (*models.Thread, error)
	ListThreads(ctx context.Context, userID string) ([]*models.Thread, error)
	ArchiveThread(ctx context.Context, userID, threadID string) (*models.Thread, error)
	// DeleteThread cascades to the thread's messages.
	DeleteThread(ctx context.Context, userID, threadID string) error
	ListMessages(ctx context.Context, userID, threadID string) ([]*models.Message, error)

	// SendMessage persists the user's message, bumps the thread's
	// last-message time, obtains an assistant reply from the
	// completion provider and persists it, bumping the thread again.
	// A provider failure aborts the exchange after the user message
	// is stored.
	SendMessage(ctx context.Context, params SendMessageParams) (*ChatExchange, error)
}

type SendMessageParams struct {
	UserID   string
	ThreadID string
	Content  string
}

type ChatExchange struct {
	UserMessage      *models.Message
	AssistantMessage *models.Message
}

type AuthService interface {
	// Login authenticates the user by email and password. It deletes
	// the user's existing sessions, creates a fresh one and issues a
	// new JWT token pair.
	//
	// It returns ErrUserNotFound or ErrUserPasswordMismatch on bad
	// credentials.
	Login(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Refresh rotates the session matching the given refresh token
	// and fingerprint. It returns ErrSessionNotFound or
	// ErrSessionExpired.
	Refresh(ctx context.Context, params RefreshParams) (*LoginResult, error)

	// Register creates a user with a hashed password, a session with
	// the given fingerprint and a fresh JWT token pair. It returns
	// ErrUserAlreadyExists when the email is taken.
	Register(ctx context.Context, params LoginParams) (*LoginResult, error)

	// Logout invalidates all of the user's sessions.
	Logout(ctx context.Context, userID string) error

	// ParseJWTToken parses an access token and returns its registered
	// claims, or jwt.ErrTokenExpired when it is expired.
	ParseJWTToken(token string) (*jwt.RegisteredClaims, error)
}

type SessionService interface {
	GetSessionByID(ctx context.Context, sessionID string) (*models.Session, error)
}

type LoginParams struct {
	Email       string
	Password    string
	Fingerprint string
}

type LoginResult struct {
	UserID                string
	SessionID             string
	AccessToken           string
	AccessTokenExpiresAt  time.Time
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
}

type RefreshParams struct {
	RefreshToken string
	Fingerprint  string
}
