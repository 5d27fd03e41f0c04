package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/taskforge/taskforge/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleRegister(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleListTasks(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleReorderTasks(c *gin.Context)
	HandleTaskStats(c *gin.Context)
	HandleOverdueTasks(c *gin.Context)
	HandleUpcomingTasks(c *gin.Context)
	HandleHighPriorityTasks(c *gin.Context)
	HandleProductivity(c *gin.Context)

	HandleCreateComment(c *gin.Context)
	HandleListComments(c *gin.Context)
	HandleDeleteComment(c *gin.Context)

	HandleTaskActivity(c *gin.Context)
	HandleRecentActivity(c *gin.Context)
	HandleClearTaskActivity(c *gin.Context)

	HandleGetPreferences(c *gin.Context)
	HandleUpdatePreferences(c *gin.Context)

	HandleCreateThread(c *gin.Context)
	HandleListThreads(c *gin.Context)
	HandleGetThread(c *gin.Context)
	HandleArchiveThread(c *gin.Context)
	HandleDeleteThread(c *gin.Context)
	HandleListMessages(c *gin.Context)
	HandleSendMessage(c *gin.Context)
}

type handlerImpl struct {
	logger      zerolog.Logger
	auth        services.AuthService
	sessions    services.SessionService
	tasks       services.TaskService
	comments    services.CommentService
	activity    services.ActivityService
	preferences services.PreferenceService
	chat        services.ChatService
}

func New(
	logger zerolog.Logger,
	authService services.AuthService,
	sessionService services.SessionService,
	taskService services.TaskService,
	commentService services.CommentService,
	activityService services.ActivityService,
	preferenceService services.PreferenceService,
	chatService services.ChatService,
) Handler {
	return &handlerImpl{
		logger:      logger,
		auth:        authService,
		sessions:    sessionService,
		tasks:       taskService,
		comments:    commentService,
		activity:    activityService,
		preferences: preferenceService,
		chat:        chatService,
	}
}
