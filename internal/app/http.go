package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/taskforge/taskforge/internal/completion"
	"github.com/taskforge/taskforge/internal/config"
	v1 "github.com/taskforge/taskforge/internal/delivery/http/v1"
	"github.com/taskforge/taskforge/internal/services"
	"github.com/taskforge/taskforge/internal/storage/postgres"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	cfg := config.Global()

	store := postgres.New(globalPostgresPool)
	limiter := newRateLimiter()
	provider := completion.NewBreaker(completion.Placeholder{}, cfg.Completion.Timeout)

	authService := services.NewAuthService(
		globalLogger, store, store,
		cfg.JWT.Issuer,
		[]byte(cfg.JWT.SigningKey),
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)
	sessionService := services.NewSessionService(globalLogger, store)
	taskService := services.NewTaskService(globalLogger, store, store, store, limiter)
	commentService := services.NewCommentService(globalLogger, store, store, limiter)
	activityService := services.NewActivityService(globalLogger, store, store, limiter)
	preferenceService := services.NewPreferenceService(globalLogger, store, limiter)
	chatService := services.NewChatService(globalLogger, store, store, provider, limiter)

	v1Handler := v1.New(
		globalLogger,
		authService,
		sessionService,
		taskService,
		commentService,
		activityService,
		preferenceService,
		chatService,
	)
	router = router.Group("/api/v1")

	authRouter := router.Group("/auth")
	authRouter.POST("/login", v1Handler.HandleLogin)
	authRouter.POST("/refresh", v1Handler.HandleRefresh)
	authRouter.POST("/register", v1Handler.HandleRegister)
	authRouter.POST("/logout", v1Handler.HandleAuthMiddleware, v1Handler.HandleLogout)

	authorized := router.Group("", v1Handler.HandleAuthMiddleware)

	taskRouter := authorized.Group("/tasks")
	taskRouter.POST("", v1Handler.HandleCreateTask)
	taskRouter.GET("", v1Handler.HandleListTasks)
	taskRouter.PUT("/reorder", v1Handler.HandleReorderTasks)
	taskRouter.GET("/stats", v1Handler.HandleTaskStats)
	taskRouter.GET("/overdue", v1Handler.HandleOverdueTasks)
	taskRouter.GET("/upcoming", v1Handler.HandleUpcomingTasks)
	taskRouter.GET("/high-priority", v1Handler.HandleHighPriorityTasks)
	taskRouter.GET("/productivity", v1Handler.HandleProductivity)
	taskRouter.GET("/:id", v1Handler.HandleGetTask)
	taskRouter.PUT("/:id", v1Handler.HandleUpdateTask)
	taskRouter.DELETE("/:id", v1Handler.HandleDeleteTask)
	taskRouter.POST("/:id/comments", v1Handler.HandleCreateComment)
	taskRouter.GET("/:id/comments", v1Handler.HandleListComments)
	taskRouter.GET("/:id/activity", v1Handler.HandleTaskActivity)
	taskRouter.DELETE("/:id/activity", v1Handler.HandleClearTaskActivity)

	authorized.DELETE("/comments/:id", v1Handler.HandleDeleteComment)
	authorized.GET("/activity", v1Handler.HandleRecentActivity)

	authorized.GET("/preferences", v1Handler.HandleGetPreferences)
	authorized.PUT("/preferences", v1Handler.HandleUpdatePreferences)

	threadRouter := authorized.Group("/threads")
	threadRouter.POST("", v1Handler.HandleCreateThread)
	threadRouter.GET("", v1Handler.HandleListThreads)
	threadRouter.GET("/:id", v1Handler.HandleGetThread)
	threadRouter.POST("/:id/archive", v1Handler.HandleArchiveThread)
	threadRouter.DELETE("/:id", v1Handler.HandleDeleteThread)
	threadRouter.GET("/:id/messages", v1Handler.HandleListMessages)
	threadRouter.POST("/:id/messages", v1Handler.HandleSendMessage)
}
