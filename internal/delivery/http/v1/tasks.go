package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/services"
)

type taskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Position    int        `json:"position"`
	Tags        []string   `json:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
		Position:    task.Position,
		Tags:        task.Tags,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func newTaskListResponse(tasks []*models.Task) []taskResponse {
	response := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTaskResponse(task)
	}
	return response
}

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		UserID:      h.callerID(c),
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newTaskResponse(task))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	task, err := h.tasks.GetTask(c, h.callerID(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get task")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	tasks, err := h.tasks.ListTasks(c, h.callerID(c), c.Query("status"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskListResponse(tasks))
}

type updateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ClearDue    bool       `json:"clear_due_date,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		UserID:      h.callerID(c),
		TaskID:      c.Param("id"),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ClearDue:    req.ClearDue,
		Tags:        req.Tags,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update task")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	err := h.tasks.DeleteTask(c, h.callerID(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete task")
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type reorderTasksRequest struct {
	Moves []taskMoveRequest `json:"moves" binding:"required,min=1"`
}

type taskMoveRequest struct {
	TaskID   string `json:"task_id" binding:"required"`
	Position int    `json:"position"`
}

func (h *handlerImpl) HandleReorderTasks(c *gin.Context) {
	var req reorderTasksRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	moves := make([]services.TaskMove, len(req.Moves))
	for i, move := range req.Moves {
		moves[i] = services.TaskMove{
			TaskID:   move.TaskID,
			Position: move.Position,
		}
	}

	err = h.tasks.ReorderTasks(c, h.callerID(c), moves)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to reorder tasks")
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type taskStatsResponse struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	InProgress     int `json:"in_progress"`
	Completed      int `json:"completed"`
	Overdue        int `json:"overdue"`
	CompletionRate int `json:"completion_rate"`
}

func (h *handlerImpl) HandleTaskStats(c *gin.Context) {
	stats, err := h.tasks.TaskStats(c, h.callerID(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to compute task stats")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, taskStatsResponse{
		Total:          stats.Total,
		Pending:        stats.Pending,
		InProgress:     stats.InProgress,
		Completed:      stats.Completed,
		Overdue:        stats.Overdue,
		CompletionRate: stats.CompletionRate,
	})
}

func (h *handlerImpl) HandleOverdueTasks(c *gin.Context) {
	tasks, err := h.tasks.OverdueTasks(c, h.callerID(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list overdue tasks")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskListResponse(tasks))
}

func (h *handlerImpl) HandleUpcomingTasks(c *gin.Context) {
	tasks, err := h.tasks.UpcomingTasks(c, h.callerID(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list upcoming tasks")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskListResponse(tasks))
}

func (h *handlerImpl) HandleHighPriorityTasks(c *gin.Context) {
	tasks, err := h.tasks.HighPriorityTasks(c, h.callerID(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list high priority tasks")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newTaskListResponse(tasks))
}

type productivityResponse struct {
	CreatedLastDay    int `json:"created_last_day"`
	CompletedLastDay  int `json:"completed_last_day"`
	CreatedLastWeek   int `json:"created_last_week"`
	CompletedLastWeek int `json:"completed_last_week"`
}

func (h *handlerImpl) HandleProductivity(c *gin.Context) {
	stats, err := h.tasks.Productivity(c, h.callerID(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to compute productivity")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, productivityResponse{
		CreatedLastDay:    stats.CreatedLastDay,
		CompletedLastDay:  stats.CompletedLastDay,
		CreatedLastWeek:   stats.CreatedLastWeek,
		CompletedLastWeek: stats.CompletedLastWeek,
	})
}
