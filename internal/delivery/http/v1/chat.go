package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskforge/taskforge/internal/models"
	"github.com/taskforge/taskforge/internal/services"
)

type threadResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Status        string    `json:"status"`
	LastMessageAt time.Time `json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func newThreadResponse(thread *models.Thread) threadResponse {
	return threadResponse{
		ID:            thread.ID,
		Title:         thread.Title,
		Status:        thread.Status,
		LastMessageAt: thread.LastMessageAt,
		CreatedAt:     thread.CreatedAt,
	}
}

type messageResponse struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func newMessageResponse(message *models.Message) messageResponse {
	return messageResponse{
		ID:        message.ID,
		ThreadID:  message.ThreadID,
		Role:      message.Role,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
}

type createThreadRequest struct {
	Title string `json:"title"`
}

func (h *handlerImpl) HandleCreateThread(c *gin.Context) {
	var req createThreadRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	thread, err := h.chat.CreateThread(c, h.callerID(c), req.Title)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create thread")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newThreadResponse(thread))
}

func (h *handlerImpl) HandleListThreads(c *gin.Context) {
	threads, err := h.chat.ListThreads(c, h.callerID(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list threads")
		abortWithServiceError(c, err)
		return
	}

	response := make([]threadResponse, len(threads))
	for i, thread := range threads {
		response[i] = newThreadResponse(thread)
	}
	c.JSON(http.StatusOK, response)
}

func (h *handlerImpl) HandleGetThread(c *gin.Context) {
	thread, err := h.chat.GetThread(c, h.callerID(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get thread")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newThreadResponse(thread))
}

func (h *handlerImpl) HandleArchiveThread(c *gin.Context) {
	thread, err := h.chat.ArchiveThread(c, h.callerID(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to archive thread")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, newThreadResponse(thread))
}

func (h *handlerImpl) HandleDeleteThread(c *gin.Context) {
	err := h.chat.DeleteThread(c, h.callerID(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete thread")
		abortWithServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *handlerImpl) HandleListMessages(c *gin.Context) {
	messages, err := h.chat.ListMessages(c, h.callerID(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list messages")
		abortWithServiceError(c, err)
		return
	}

	response := make([]messageResponse, len(messages))
	for i, message := range messages {
		response[i] = newMessageResponse(message)
	}
	c.JSON(http.StatusOK, response)
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type chatExchangeResponse struct {
	UserMessage      messageResponse `json:"user_message"`
	AssistantMessage messageResponse `json:"assistant_message"`
}

func (h *handlerImpl) HandleSendMessage(c *gin.Context) {
	var req sendMessageRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	exchange, err := h.chat.SendMessage(c, services.SendMessageParams{
		UserID:   h.callerID(c),
		ThreadID: c.Param("id"),
		Content:  req.Content,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to send message")
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, chatExchangeResponse{
		UserMessage:      newMessageResponse(exchange.UserMessage),
		AssistantMessage: newMessageResponse(exchange.AssistantMessage),
	})
}
