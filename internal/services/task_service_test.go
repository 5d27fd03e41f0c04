package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/taskforge/taskforge/internal/models"
)

func newTaskFixture() (*fakeTaskStore, *fakeCommentStore, *fakeActivityStore, *fakeLimiter, TaskService) {
	tasks := newFakeTaskStore()
	comments := newFakeCommentStore()
	activity := newFakeActivityStore()
	limiter := newFakeLimiter()
	svc := NewTaskService(testLogger(), tasks, comments, activity, limiter)
	return tasks, comments, activity, limiter, svc
}

func TestCreateTaskFirstPositionIsOne(t *testing.T) {
	_, _, _, _, svc := newTaskFixture()

	task, err := svc.CreateTask(context.Background(), CreateTaskParams{
		UserID: "user-1",
		Title:  "write report",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Position != 1 {
		t.Errorf("position = %d, want 1", task.Position)
	}
	if task.Status != models.StatusPending {
		t.Errorf("status = %q, want %q", task.Status, models.StatusPending)
	}
	if task.Priority != models.PriorityMedium {
		t.Errorf("priority = %q, want %q", task.Priority, models.PriorityMedium)
	}
}

func TestCreateTaskAssignsNextPosition(t *testing.T) {
	tasks, _, activity, _, svc := newTaskFixture()
	tasks.seed(models.Task{ID: "t1", UserID: "user-1", Position: 4})
	tasks.seed(models.Task{ID: "t2", UserID: "user-2", Position: 9})

	task, err := svc.CreateTask(context.Background(), CreateTaskParams{
		UserID: "user-1",
		Title:  "write report",
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Position != 5 {
		t.Errorf("position = %d, want 5 (other users must not influence it)", task.Position)
	}

	records := activity.byTask(task.ID)
	if len(records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(records))
	}
	if records[0].Action != models.ActionCreated {
		t.Errorf("audit action = %q, want %q", records[0].Action, models.ActionCreated)
	}
	if records[0].Change != nil {
		t.Errorf("audit change = %+v, want nil", records[0].Change)
	}
}

func TestCreateTaskAggregatesViolations(t *testing.T) {
	tasks, _, activity, _, svc := newTaskFixture()

	longTag := strings.Repeat("x", 51)
	_, err := svc.CreateTask(context.Background(), CreateTaskParams{
		UserID:   "user-1",
		Title:    "",
		Priority: "urgent",
		Tags:     []string{longTag},
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(validationErr.Violations) != 3 {
		t.Errorf("violations = %d (%v), want 3", len(validationErr.Violations), validationErr.Violations)
	}
	if tasks.len() != 0 {
		t.Errorf("store has %d tasks, want none after failed validation", tasks.len())
	}
	if len(activity.byTask("")) != 0 || len(activity.records) != 0 {
		t.Error("no audit record must be appended for a failed create")
	}
}

func TestCreateTaskRejectsPastDueDate(t *testing.T) {
	_, _, _, _, svc := newTaskFixture()

	past := time.Now().Add(-time.Hour)
	_, err := svc.CreateTask(context.Background(), CreateTaskParams{
		UserID:  "user-1",
		Title:   "write report",
		DueDate: &past,
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestCreateTaskRateLimited(t *testing.T) {
	tasks, _, activity, limiter, svc := newTaskFixture()
	limiter.deny(BucketTaskMutations, 3*time.Second)

	_, err := svc.CreateTask(context.Background(), CreateTaskParams{
		UserID: "user-1",
		Title:  "write report",
	})

	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("err = %v, want *RateLimitError", err)
	}
	if rateErr.RetryAfter != 3*time.Second {
		t.Errorf("retry after = %s, want 3s", rateErr.RetryAfter)
	}
	if tasks.len() != 0 || len(activity.records) != 0 {
		t.Error("a denied call must leave the stores untouched")
	}
}

func TestCreateTaskRequiresAuthentication(t *testing.T) {
	_, _, _, limiter, svc := newTaskFixture()

	_, err := svc.CreateTask(context.Background(), CreateTaskParams{Title: "write report"})
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
	if len(limiter.calls) != 0 {
		t.Error("the limiter must not be consulted for anonymous calls")
	}
}

func TestGetTaskOwnership(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	tasks.seed(models.Task{ID: "t1", UserID: "user-2", Title: "other"})

	_, err := svc.GetTask(context.Background(), "user-1", "t1")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("err = %v, want ErrNotAuthorized", err)
	}

	_, err = svc.GetTask(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListTasksRejectsUnknownStatus(t *testing.T) {
	_, _, _, _, svc := newTaskFixture()

	_, err := svc.ListTasks(context.Background(), "user-1", "done")
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestUpdateTaskCompletionWinsTheAudit(t *testing.T) {
	tasks, _, activity, _, svc := newTaskFixture()
	tasks.seed(models.Task{
		ID: "t1", UserID: "user-1", Title: "write report",
		Status: models.StatusPending, Priority: models.PriorityLow,
	})

	status := models.StatusCompleted
	priority := models.PriorityHigh
	task, err := svc.UpdateTask(context.Background(), UpdateTaskParams{
		UserID: "user-1", TaskID: "t1",
		Status: &status, Priority: &priority,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.CompletedAt == nil {
		t.Error("completed task must carry a completion timestamp")
	}

	records := activity.byTask("t1")
	if len(records) != 1 {
		t.Fatalf("audit records = %d, want exactly 1 per update", len(records))
	}
	if records[0].Action != models.ActionCompleted {
		t.Errorf("audit action = %q, want %q", records[0].Action, models.ActionCompleted)
	}
	if records[0].Change != nil {
		t.Errorf("completed audit change = %+v, want nil", records[0].Change)
	}
}

func TestUpdateTaskStatusChangeAudit(t *testing.T) {
	tasks, _, activity, _, svc := newTaskFixture()
	tasks.seed(models.Task{
		ID: "t1", UserID: "user-1", Title: "write report",
		Status: models.StatusPending, Priority: models.PriorityLow,
	})

	status := models.StatusInProgress
	_, err := svc.UpdateTask(context.Background(), UpdateTaskParams{
		UserID: "user-1", TaskID: "t1", Status: &status,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	records := activity.byTask("t1")
	if len(records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(records))
	}
	if records[0].Action != models.ActionStatusChanged {
		t.Errorf("audit action = %q, want %q", records[0].Action, models.ActionStatusChanged)
	}
	want := models.ActivityChange{From: models.StatusPending, To: models.StatusInProgress}
	if records[0].Change == nil || *records[0].Change != want {
		t.Errorf("audit change = %+v, want %+v", records[0].Change, want)
	}
}

func TestUpdateTaskPriorityChangeAudit(t *testing.T) {
	tasks, _, activity, _, svc := newTaskFixture()
	tasks.seed(models.Task{
		ID: "t1", UserID: "user-1", Title: "write report",
		Status: models.StatusPending, Priority: models.PriorityLow,
	})

	priority := models.PriorityHigh
	_, err := svc.UpdateTask(context.Background(), UpdateTaskParams{
		UserID: "user-1", TaskID: "t1", Priority: &priority,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	records := activity.byTask("t1")
	if len(records) != 1 || records[0].Action != models.ActionPriorityChanged {
		t.Fatalf("audit = %+v, want a single priority_changed record", records)
	}
	want := models.ActivityChange{From: models.PriorityLow, To: models.PriorityHigh}
	if records[0].Change == nil || *records[0].Change != want {
		t.Errorf("audit change = %+v, want %+v", records[0].Change, want)
	}
}

func TestUpdateTaskPlainChangeAuditsUpdated(t *testing.T) {
	tasks, _, activity, _, svc := newTaskFixture()
	tasks.seed(models.Task{
		ID: "t1", UserID: "user-1", Title: "write report",
		Status: models.StatusPending, Priority: models.PriorityLow,
	})

	title := "write the quarterly report"
	_, err := svc.UpdateTask(context.Background(), UpdateTaskParams{
		UserID: "user-1", TaskID: "t1", Title: &title,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	records := activity.byTask("t1")
	if len(records) != 1 || records[0].Action != models.ActionUpdated {
		t.Fatalf("audit = %+v, want a single updated record", records)
	}
}

func TestUpdateTaskReopeningClearsCompletedAt(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	completedAt := time.Now().Add(-time.Hour)
	tasks.seed(models.Task{
		ID: "t1", UserID: "user-1", Title: "write report",
		Status: models.StatusCompleted, Priority: models.PriorityLow,
		CompletedAt: &completedAt,
	})

	status := models.StatusPending
	task, err := svc.UpdateTask(context.Background(), UpdateTaskParams{
		UserID: "user-1", TaskID: "t1", Status: &status,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.CompletedAt != nil {
		t.Error("reopened task must not carry a completion timestamp")
	}
}

func TestUpdateTaskKeepsOriginalCompletionTime(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	completedAt := time.Now().Add(-time.Hour)
	tasks.seed(models.Task{
		ID: "t1", UserID: "user-1", Title: "write report",
		Status: models.StatusCompleted, Priority: models.PriorityLow,
		CompletedAt: &completedAt,
	})

	title := "write report v2"
	task, err := svc.UpdateTask(context.Background(), UpdateTaskParams{
		UserID: "user-1", TaskID: "t1", Title: &title,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(completedAt) {
		t.Errorf("completed at = %v, want the original %v", task.CompletedAt, completedAt)
	}
}

func TestUpdateTaskClearDueDate(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	due := time.Now().Add(24 * time.Hour)
	tasks.seed(models.Task{
		ID: "t1", UserID: "user-1", Title: "write report",
		Status: models.StatusPending, Priority: models.PriorityLow,
		DueDate: &due,
	})

	task, err := svc.UpdateTask(context.Background(), UpdateTaskParams{
		UserID: "user-1", TaskID: "t1", ClearDue: true,
	})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if task.DueDate != nil {
		t.Errorf("due date = %v, want cleared", task.DueDate)
	}
}

func TestUpdateTaskNotOwnedLeavesStoreUntouched(t *testing.T) {
	tasks, _, activity, _, svc := newTaskFixture()
	tasks.seed(models.Task{
		ID: "t1", UserID: "user-2", Title: "other",
		Status: models.StatusPending, Priority: models.PriorityLow,
	})

	title := "hijacked"
	_, err := svc.UpdateTask(context.Background(), UpdateTaskParams{
		UserID: "user-1", TaskID: "t1", Title: &title,
	})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}

	stored, _ := tasks.get("t1")
	if stored.Title != "other" {
		t.Errorf("title = %q, the task must not change", stored.Title)
	}
	if len(activity.records) != 0 {
		t.Error("no audit record must be appended for a rejected update")
	}
}

func TestDeleteTaskAuditsBeforeRemovalAndCascades(t *testing.T) {
	tasks, comments, activity, _, svc := newTaskFixture()
	tasks.seed(models.Task{ID: "t1", UserID: "user-1", Title: "write report"})
	comments.seed(models.Comment{ID: "c1", TaskID: "t1", UserID: "user-1", Content: "first"})
	comments.seed(models.Comment{ID: "c2", TaskID: "other", UserID: "user-1", Content: "keep"})

	err := svc.DeleteTask(context.Background(), "user-1", "t1")
	if err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	if _, ok := tasks.get("t1"); ok {
		t.Error("the task row must be removed")
	}
	if comments.len() != 1 {
		t.Errorf("comments = %d, want only the unrelated one to survive", comments.len())
	}

	records := activity.byTask("t1")
	if len(records) != 1 || records[0].Action != models.ActionDeleted {
		t.Fatalf("audit = %+v, want a single deleted record surviving the task", records)
	}
}

func TestDeleteTaskNotOwned(t *testing.T) {
	tasks, _, activity, _, svc := newTaskFixture()
	tasks.seed(models.Task{ID: "t1", UserID: "user-2", Title: "other"})

	err := svc.DeleteTask(context.Background(), "user-1", "t1")
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
	if _, ok := tasks.get("t1"); !ok {
		t.Error("the task must survive a rejected delete")
	}
	if len(activity.records) != 0 {
		t.Error("no audit record must be appended for a rejected delete")
	}
}

func TestReorderTasksAppliesAllPositions(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	tasks.seed(models.Task{ID: "t1", UserID: "user-1", Position: 1})
	tasks.seed(models.Task{ID: "t2", UserID: "user-1", Position: 2})
	tasks.seed(models.Task{ID: "t3", UserID: "user-1", Position: 3})

	err := svc.ReorderTasks(context.Background(), "user-1", []TaskMove{
		{TaskID: "t1", Position: 3},
		{TaskID: "t2", Position: 1},
		{TaskID: "t3", Position: 2},
	})
	if err != nil {
		t.Fatalf("ReorderTasks: %v", err)
	}

	for id, want := range map[string]int{"t1": 3, "t2": 1, "t3": 2} {
		task, _ := tasks.get(id)
		if task.Position != want {
			t.Errorf("task %s position = %d, want %d", id, task.Position, want)
		}
	}
}

func TestReorderTasksForeignTaskBlocksEveryWrite(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	tasks.seed(models.Task{ID: "t1", UserID: "user-1", Position: 1})
	tasks.seed(models.Task{ID: "t2", UserID: "user-2", Position: 2})

	err := svc.ReorderTasks(context.Background(), "user-1", []TaskMove{
		{TaskID: "t1", Position: 9},
		{TaskID: "t2", Position: 8},
	})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}

	task, _ := tasks.get("t1")
	if task.Position != 1 {
		t.Errorf("t1 position = %d, no position may change when any check fails", task.Position)
	}
}

func TestReorderTasksRejectsNegativePositions(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	tasks.seed(models.Task{ID: "t1", UserID: "user-1", Position: 1})

	err := svc.ReorderTasks(context.Background(), "user-1", []TaskMove{
		{TaskID: "t1", Position: -1},
	})
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
}

func TestTaskStats(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	past := time.Now().Add(-time.Hour)
	tasks.seed(models.Task{ID: "t1", UserID: "user-1", Status: models.StatusPending, DueDate: &past})
	tasks.seed(models.Task{ID: "t2", UserID: "user-1", Status: models.StatusInProgress})
	tasks.seed(models.Task{ID: "t3", UserID: "user-1", Status: models.StatusCompleted, DueDate: &past})

	stats, err := svc.TaskStats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("TaskStats: %v", err)
	}

	if stats.Total != 3 || stats.Pending != 1 || stats.InProgress != 1 || stats.Completed != 1 {
		t.Errorf("stats = %+v, want 3 total split 1/1/1", stats)
	}
	if stats.Overdue != 1 {
		t.Errorf("overdue = %d, want 1 (completed tasks are never overdue)", stats.Overdue)
	}
	if stats.CompletionRate != 33 {
		t.Errorf("completion rate = %d, want 33", stats.CompletionRate)
	}
}

func TestTaskStatsEmpty(t *testing.T) {
	_, _, _, _, svc := newTaskFixture()

	stats, err := svc.TaskStats(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("TaskStats: %v", err)
	}
	if stats.Total != 0 || stats.CompletionRate != 0 {
		t.Errorf("stats = %+v, want all zero with no division by zero", stats)
	}
}

func TestTaskStatsIsReadOnly(t *testing.T) {
	tasks, _, activity, limiter, svc := newTaskFixture()
	tasks.seed(models.Task{ID: "t1", UserID: "user-1", Status: models.StatusPending})

	before, _ := tasks.get("t1")
	if _, err := svc.TaskStats(context.Background(), "user-1"); err != nil {
		t.Fatalf("TaskStats: %v", err)
	}
	if _, err := svc.TaskStats(context.Background(), "user-1"); err != nil {
		t.Fatalf("TaskStats: %v", err)
	}
	after, _ := tasks.get("t1")

	if !before.UpdatedAt.Equal(after.UpdatedAt) || before.Status != after.Status {
		t.Error("stats must not mutate any record")
	}
	if len(activity.records) != 0 {
		t.Error("stats must not append audit records")
	}
	if len(limiter.calls) != 0 {
		t.Error("reads are not rate limited")
	}
}

func TestOverdueTasksExcludesCompleted(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	tasks.seed(models.Task{ID: "t1", UserID: "user-1", Status: models.StatusPending, DueDate: &past})
	tasks.seed(models.Task{ID: "t2", UserID: "user-1", Status: models.StatusCompleted, DueDate: &past})
	tasks.seed(models.Task{ID: "t3", UserID: "user-1", Status: models.StatusPending, DueDate: &future})
	tasks.seed(models.Task{ID: "t4", UserID: "user-1", Status: models.StatusPending})

	overdue, err := svc.OverdueTasks(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("OverdueTasks: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != "t1" {
		t.Errorf("overdue = %+v, want only t1", overdue)
	}
}

func TestUpcomingTasksCapped(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	for i := 0; i < 15; i++ {
		due := time.Now().Add(time.Duration(i+1) * time.Hour)
		status := models.StatusPending
		if i == 0 {
			status = models.StatusCompleted
		}
		tasks.seed(models.Task{
			ID:      "t" + strconv.Itoa(i),
			UserID:  "user-1",
			Status:  status,
			DueDate: &due,
		})
	}

	upcoming, err := svc.UpcomingTasks(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("UpcomingTasks: %v", err)
	}
	if len(upcoming) != 10 {
		t.Fatalf("upcoming = %d, want capped at 10", len(upcoming))
	}
	for _, task := range upcoming {
		if task.Status == models.StatusCompleted {
			t.Errorf("task %s is completed, must be excluded", task.ID)
		}
	}
	if upcoming[0].ID != "t1" {
		t.Errorf("first upcoming = %s, want t1 (soonest open due date)", upcoming[0].ID)
	}
}

func TestHighPriorityTasksOldestFirstAndCapped(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	base := time.Now().Add(-24 * time.Hour)
	for i := 0; i < 12; i++ {
		tasks.seed(models.Task{
			ID:        "t" + strconv.Itoa(i),
			UserID:    "user-1",
			Status:    models.StatusPending,
			Priority:  models.PriorityHigh,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	tasks.seed(models.Task{
		ID: "low", UserID: "user-1",
		Status: models.StatusPending, Priority: models.PriorityLow,
		CreatedAt: base,
	})
	tasks.seed(models.Task{
		ID: "done", UserID: "user-1",
		Status: models.StatusCompleted, Priority: models.PriorityHigh,
		CreatedAt: base,
	})

	high, err := svc.HighPriorityTasks(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("HighPriorityTasks: %v", err)
	}
	if len(high) != 10 {
		t.Fatalf("high priority = %d, want capped at 10", len(high))
	}
	if high[0].ID != "t0" {
		t.Errorf("first = %s, want t0 (oldest open high-priority task)", high[0].ID)
	}
	for _, task := range high {
		if task.ID == "low" || task.ID == "done" {
			t.Errorf("task %s must be excluded", task.ID)
		}
	}
}

func TestProductivityWindows(t *testing.T) {
	tasks, _, _, _, svc := newTaskFixture()
	now := time.Now()
	hourAgo := now.Add(-time.Hour)
	threeDaysAgo := now.Add(-3 * 24 * time.Hour)
	tenDaysAgo := now.Add(-10 * 24 * time.Hour)

	tasks.seed(models.Task{ID: "t1", UserID: "user-1", CreatedAt: hourAgo, CompletedAt: &hourAgo})
	tasks.seed(models.Task{ID: "t2", UserID: "user-1", CreatedAt: threeDaysAgo, CompletedAt: &threeDaysAgo})
	tasks.seed(models.Task{ID: "t3", UserID: "user-1", CreatedAt: tenDaysAgo, CompletedAt: &tenDaysAgo})

	stats, err := svc.Productivity(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Productivity: %v", err)
	}
	want := ProductivityStats{
		CreatedLastDay:    1,
		CompletedLastDay:  1,
		CreatedLastWeek:   2,
		CompletedLastWeek: 2,
	}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}
