package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskforge/taskforge/internal/models"
)

type activityResponse struct {
	ID        string                 `json:"id"`
	TaskID    string                 `json:"task_id"`
	Action    string                 `json:"action"`
	Change    *models.ActivityChange `json:"change,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func newActivityResponse(record *models.Activity) activityResponse {
	return activityResponse{
		ID:        record.ID,
		TaskID:    record.TaskID,
		Action:    record.Action,
		Change:    record.Change,
		CreatedAt: record.CreatedAt,
	}
}

func newActivityListResponse(records []*models.Activity) []activityResponse {
	response := make([]activityResponse, len(records))
	for i, record := range records {
		response[i] = newActivityResponse(record)
	}
	return response
}

func (h *handlerImpl) HandleTaskActivity(c *gin.Context) {
	records, err := h.activity.ListTaskActivity(c, h.callerID(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list task activity")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newActivityListResponse(records))
}

func (h *handlerImpl) HandleRecentActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	records, err := h.activity.RecentActivity(c, h.callerID(c), limit)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list recent activity")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newActivityListResponse(records))
}

func (h *handlerImpl) HandleClearTaskActivity(c *gin.Context) {
	err := h.activity.ClearTaskActivity(c, h.callerID(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to clear task activity")
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
