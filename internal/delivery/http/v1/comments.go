package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/services"
)

type commentResponse struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newCommentResponse(comment *models.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

type createCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *handlerImpl) HandleCreateComment(c *gin.Context) {
	var req createCommentRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	comment, err := h.comments.CreateComment(c, services.CreateCommentParams{
		UserID:  h.callerID(c),
		TaskID:  c.Param("id"),
		Content: req.Content,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create comment")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCommentResponse(comment))
}

func (h *handlerImpl) HandleListComments(c *gin.Context) {
	comments, err := h.comments.ListComments(c, h.callerID(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list comments")
		abortWithServiceError(c, err)
		return
	}

	response := make([]commentResponse, len(comments))
	for i, comment := range comments {
		response[i] = newCommentResponse(comment)
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleDeleteComment(c *gin.Context) {
	err := h.comments.DeleteComment(c, h.callerID(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete comment")
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
