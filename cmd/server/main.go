package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sprint-tracker-api/internal/config"
	"github.com/yukikurage/sprint-tracker-api/internal/constants"
	"github.com/yukikurage/sprint-tracker-api/internal/database"
	apierrors "github.com/yukikurage/sprint-tracker-api/internal/errors"
	"github.com/yukikurage/sprint-tracker-api/internal/handlers"
	"github.com/yukikurage/sprint-tracker-api/internal/logging"
	"github.com/yukikurage/sprint-tracker-api/internal/middleware"
	"github.com/yukikurage/sprint-tracker-api/internal/repository"
	"github.com/yukikurage/sprint-tracker-api/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatalf("Failed to load configuration: %v", err)
	}

	logging.Init(cfg.LogLevel, cfg.LogFile)
	log := logging.Logger

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.RequestTimeout(cfg.RequestTimeout))

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,              // Redis pool size
		"tcp",           // network type
		cfg.RedisAddr(), // Redis address from config
		"",              // username (empty for default user)
		"",              // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize services
	repos := repository.New(database.GetDB())
	allocator := services.NewSequenceAllocator(repos)

	authService := services.NewAuthService(repos.Users)
	stepService := services.NewStepService(repos.Steps)
	workspaceService := services.NewWorkspaceService(repos)
	taskService := services.NewTaskService(repos, allocator)
	epicService := services.NewEpicService(repos, allocator)
	sprintService := services.NewSprintService(repos, services.SystemClock{})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	stepHandler := handlers.NewStepHandler(stepService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService)
	taskHandler := handlers.NewTaskHandler(taskService)
	epicHandler := handlers.NewEpicHandler(epicService)
	sprintHandler := handlers.NewSprintHandler(sprintService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if err := repos.Ping(c.Request.Context()); err != nil {
			apierrors.ServiceUnavailable(c, "database unreachable")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Sprint Tracker API is running",
		})
	})

	workspaceID := middleware.RequireIDParam("workspace")
	taskID := middleware.RequireIDParam("task")
	epicID := middleware.RequireIDParam("epic")
	sprintID := middleware.RequireIDParam("sprint")

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		steps := api.Group("/steps")
		steps.Use(middleware.RequireAuth())
		{
			steps.POST("", stepHandler.CreateStep)
			steps.GET("", stepHandler.ListSteps)
		}

		workspaces := api.Group("/workspaces")
		workspaces.Use(middleware.RequireAuth())
		{
			workspaces.POST("", workspaceHandler.CreateWorkspace)
			workspaces.GET("", workspaceHandler.ListWorkspaces)
			workspaces.GET("/:id", workspaceID, workspaceHandler.GetWorkspace)
			workspaces.PUT("/:id", workspaceID, workspaceHandler.UpdateWorkspace)
			workspaces.DELETE("/:id", workspaceID, workspaceHandler.DeleteWorkspace)
			workspaces.POST("/:id/tasks/move-by-keys", workspaceID, taskHandler.MoveTasksByKeys)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", taskID, taskHandler.GetTask)
			tasks.PATCH("/:id", taskID, taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskID, taskHandler.DeleteTask)
			tasks.POST("/:id/move", taskID, taskHandler.MoveTask)
		}

		epics := api.Group("/epics")
		epics.Use(middleware.RequireAuth())
		{
			epics.GET("", epicHandler.ListEpics)
			epics.POST("", epicHandler.CreateEpic)
			epics.GET("/:id", epicID, epicHandler.GetEpic)
			epics.PATCH("/:id", epicID, epicHandler.UpdateEpic)
			epics.DELETE("/:id", epicID, epicHandler.DeleteEpic)
		}

		sprints := api.Group("/sprints")
		sprints.Use(middleware.RequireAuth())
		{
			sprints.GET("", sprintHandler.ListSprints)
			sprints.POST("", sprintHandler.CreateSprint)
			sprints.POST("/bulk-delete", sprintHandler.BulkDeleteSprints)
			sprints.GET("/:id", sprintID, sprintHandler.GetSprint)
			sprints.PATCH("/:id", sprintID, sprintHandler.UpdateSprint)
			sprints.POST("/:id/activate", sprintID, sprintHandler.ActivateSprint)
			sprints.POST("/:id/close", sprintID, sprintHandler.CloseSprint)
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Infof("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	if sqlDB, err := database.GetDB().DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server exited")
}
