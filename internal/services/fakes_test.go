package services

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskforge/taskforge/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fakeLimiter allows everything unless a bucket name is marked denied.
type fakeLimiter struct {
	denied     map[string]bool
	retryAfter time.Duration
	calls      []string
}

func newFakeLimiter() *fakeLimiter {
	return &fakeLimiter{denied: make(map[string]bool)}
}

func (f *fakeLimiter) deny(bucket string, retryAfter time.Duration) {
	f.denied[bucket] = true
	f.retryAfter = retryAfter
}

func (f *fakeLimiter) Allow(name, key string) (bool, time.Duration) {
	f.calls = append(f.calls, name+":"+key)
	if f.denied[name] {
		return false, f.retryAfter
	}
	return true, 0
}

type fakeProvider struct {
	reply string
	err   error
	calls int
}

func (f *fakeProvider) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[string]models.Task

	updatePositionErr map[string]error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{
		tasks:             make(map[string]models.Task),
		updatePositionErr: make(map[string]error),
	}
}

// seed inserts a task as-is, without stamping timestamps.
func (f *fakeTaskStore) seed(task models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[task.ID] = task
}

func (f *fakeTaskStore) get(id string) (models.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	return task, ok
}

func (f *fakeTaskStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

func (f *fakeTaskStore) CreateTask(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeTaskStore) GetTaskByID(_ context.Context, id string) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[id]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

func (f *fakeTaskStore) byUser(userID string) []*models.Task {
	var tasks []*models.Task
	for id := range f.tasks {
		task := f.tasks[id]
		if task.UserID == userID {
			tasks = append(tasks, &task)
		}
	}
	return tasks
}

func (f *fakeTaskStore) ListTasksByUser(_ context.Context, userID string) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.byUser(userID)
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (f *fakeTaskStore) ListTasksByUserAndStatus(_ context.Context, userID, status string) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tasks []*models.Task
	for _, task := range f.byUser(userID) {
		if task.Status == status {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (f *fakeTaskStore) ListTasksByPosition(_ context.Context, userID string) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tasks := f.byUser(userID)
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].Position < tasks[j].Position
	})
	return tasks, nil
}

func (f *fakeTaskStore) ListTasksWithDueDate(_ context.Context, userID string, until *time.Time) ([]*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tasks []*models.Task
	for _, task := range f.byUser(userID) {
		if task.DueDate == nil {
			continue
		}
		if until != nil && task.DueDate.After(*until) {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})
	return tasks, nil
}

func (f *fakeTaskStore) MaxPosition(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, task := range f.byUser(userID) {
		if task.Position > max {
			max = task.Position
		}
	}
	return max, nil
}

func (f *fakeTaskStore) CountTasksCreatedSince(_ context.Context, userID string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, task := range f.byUser(userID) {
		if !task.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeTaskStore) CountTasksCompletedSince(_ context.Context, userID string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, task := range f.byUser(userID) {
		if task.CompletedAt != nil && !task.CompletedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeTaskStore) UpdateTask(_ context.Context, task *models.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.UpdatedAt = time.Now()
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeTaskStore) UpdateTaskPosition(_ context.Context, id string, position int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updatePositionErr[id]; err != nil {
		return err
	}
	task, ok := f.tasks[id]
	if !ok {
		return nil
	}
	task.Position = position
	task.UpdatedAt = time.Now()
	f.tasks[id] = task
	return nil
}

func (f *fakeTaskStore) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tasks, id)
	return nil
}

type fakeCommentStore struct {
	mu       sync.Mutex
	comments map[string]models.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: make(map[string]models.Comment)}
}

func (f *fakeCommentStore) seed(comment models.Comment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[comment.ID] = comment
}

func (f *fakeCommentStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.comments)
}

func (f *fakeCommentStore) CreateComment(_ context.Context, comment *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	f.comments[comment.ID] = *comment
	return nil
}

func (f *fakeCommentStore) GetCommentByID(_ context.Context, id string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comment, ok := f.comments[id]
	if !ok {
		return nil, nil
	}
	return &comment, nil
}

func (f *fakeCommentStore) ListCommentsByTask(_ context.Context, taskID string) ([]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var comments []*models.Comment
	for id := range f.comments {
		comment := f.comments[id]
		if comment.TaskID == taskID {
			comments = append(comments, &comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (f *fakeCommentStore) DeleteComment(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentStore) DeleteCommentsByTask(_ context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, comment := range f.comments {
		if comment.TaskID == taskID {
			delete(f.comments, id)
		}
	}
	return nil
}

type fakeActivityStore struct {
	mu      sync.Mutex
	records []models.Activity
}

func newFakeActivityStore() *fakeActivityStore {
	return &fakeActivityStore{}
}

func (f *fakeActivityStore) byTask(taskID string) []*models.Activity {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []*models.Activity
	for i := range f.records {
		if f.records[i].TaskID == taskID {
			record := f.records[i]
			records = append(records, &record)
		}
	}
	return records
}

func (f *fakeActivityStore) AppendActivity(_ context.Context, activity *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	activity.CreatedAt = time.Now()
	f.records = append(f.records, *activity)
	return nil
}

func (f *fakeActivityStore) ListActivityByTask(_ context.Context, taskID string) ([]*models.Activity, error) {
	return f.byTask(taskID), nil
}

func (f *fakeActivityStore) ListActivityByUser(_ context.Context, userID string, limit int) ([]*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []*models.Activity
	for i := len(f.records) - 1; i >= 0 && len(records) < limit; i-- {
		if f.records[i].UserID == userID {
			record := f.records[i]
			records = append(records, &record)
		}
	}
	return records, nil
}

func (f *fakeActivityStore) DeleteActivityByTask(_ context.Context, taskID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.records[:0]
	for _, record := range f.records {
		if record.TaskID != taskID {
			kept = append(kept, record)
		}
	}
	f.records = kept
	return nil
}

type fakePreferenceStore struct {
	mu               sync.Mutex
	byUser           map[string]models.Preferences
	nextID           int
	getOrCreateCalls int
}

func newFakePreferenceStore() *fakePreferenceStore {
	return &fakePreferenceStore{byUser: make(map[string]models.Preferences)}
}

func (f *fakePreferenceStore) GetPreferencesByUser(_ context.Context, userID string) (*models.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefs, ok := f.byUser[userID]
	if !ok {
		return nil, nil
	}
	return &prefs, nil
}

func (f *fakePreferenceStore) GetOrCreatePreferences(_ context.Context, userID string) (*models.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getOrCreateCalls++
	prefs, ok := f.byUser[userID]
	if !ok {
		f.nextID++
		defaults := models.DefaultPreferences(userID)
		defaults.ID = "prefs-" + strconv.Itoa(f.nextID)
		now := time.Now()
		defaults.CreatedAt = now
		defaults.UpdatedAt = now
		f.byUser[userID] = *defaults
		prefs = f.byUser[userID]
	}
	return &prefs, nil
}

func (f *fakePreferenceStore) UpdatePreferences(_ context.Context, prefs *models.Preferences) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefs.UpdatedAt = time.Now()
	f.byUser[prefs.UserID] = *prefs
	return nil
}

type fakeThreadStore struct {
	mu      sync.Mutex
	threads map[string]models.Thread
}

func newFakeThreadStore() *fakeThreadStore {
	return &fakeThreadStore{threads: make(map[string]models.Thread)}
}

func (f *fakeThreadStore) seed(thread models.Thread) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threads[thread.ID] = thread
}

func (f *fakeThreadStore) get(id string) (models.Thread, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	thread, ok := f.threads[id]
	return thread, ok
}

func (f *fakeThreadStore) CreateThread(_ context.Context, thread *models.Thread) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	thread.CreatedAt = now
	thread.UpdatedAt = now
	f.threads[thread.ID] = *thread
	return nil
}

func (f *fakeThreadStore) GetThreadByID(_ context.Context, id string) (*models.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	thread, ok := f.threads[id]
	if !ok {
		return nil, nil
	}
	return &thread, nil
}

func (f *fakeThreadStore) ListThreadsByUser(_ context.Context, userID string) ([]*models.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var threads []*models.Thread
	for id := range f.threads {
		thread := f.threads[id]
		if thread.UserID == userID {
			threads = append(threads, &thread)
		}
	}
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].LastMessageAt.After(threads[j].LastMessageAt)
	})
	return threads, nil
}

func (f *fakeThreadStore) UpdateThread(_ context.Context, thread *models.Thread) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	thread.UpdatedAt = time.Now()
	f.threads[thread.ID] = *thread
	return nil
}

func (f *fakeThreadStore) DeleteThread(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.threads, id)
	return nil
}

type fakeMessageStore struct {
	mu       sync.Mutex
	messages []models.Message
}

func newFakeMessageStore() *fakeMessageStore {
	return &fakeMessageStore{}
}

func (f *fakeMessageStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeMessageStore) CreateMessage(_ context.Context, message *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	message.CreatedAt = time.Now()
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeMessageStore) ListMessagesByThread(_ context.Context, threadID string) ([]*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var messages []*models.Message
	for i := range f.messages {
		if f.messages[i].ThreadID == threadID {
			message := f.messages[i]
			messages = append(messages, &message)
		}
	}
	return messages, nil
}

func (f *fakeMessageStore) DeleteMessagesByThread(_ context.Context, threadID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.messages[:0]
	for _, message := range f.messages {
		if message.ThreadID != threadID {
			kept = append(kept, message)
		}
	}
	f.messages = kept
	return nil
}
