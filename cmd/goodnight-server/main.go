package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hchs200771/goodnight-app/internal/config"
	"github.com/hchs200771/goodnight-app/internal/feed"
	"github.com/hchs200771/goodnight-app/internal/follows"
	"github.com/hchs200771/goodnight-app/internal/sleep"
	"github.com/hchs200771/goodnight-app/internal/storage"
	"github.com/hchs200771/goodnight-app/internal/users"
)

// AppState holds all application services
type AppState struct {
	Logger        *zap.Logger
	DB            *storage.Router
	UserService   users.UserService
	FollowService follows.FollowGraph
	SleepService  sleep.SessionManager
	FeedService   *feed.Aggregator
}

func main() {
	// Load configuration
	config.Load()

	// Initialize logger with config
	logger := initLogger()

	// Initialize application state
	as, err := newAppState(logger)
	if err != nil {
		logger.Fatal("Failed to initialize application state", zap.Error(err))
	}

	// Run migrations against the primary
	ctx := context.Background()
	if err := storage.Migrate(ctx, as.DB.Primary()); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Create HTTP server
	router := setupRouter(as)

	addr := fmt.Sprintf("%s:%d", config.Http().Host, config.Http().Port)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Setup graceful shutdown
	done := setupSignalHandler(as, server, logger)

	// Start server
	logger.Info("Starting goodnight server", zap.String("address", addr))

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	logger.Info("Server shutdown complete")
}

// newAppState creates and initializes the application state
func newAppState(logger *zap.Logger) (*AppState, error) {
	pgConfig := config.Postgres()

	logger.Info("Database configuration",
		zap.String("host", pgConfig.Host),
		zap.Int("port", pgConfig.Port),
		zap.String("database", pgConfig.Database))

	primary, err := storage.Open(pgConfig.DSN(), pgConfig.MaxOpenConnections)
	if err != nil {
		return nil, fmt.Errorf("failed to open primary database: %w", err)
	}

	replicaDSN := ""
	replicaConfig := config.Replica()
	if replicaConfig.Enabled {
		replicaDSN = replicaConfig.DSN()
	}

	db := storage.NewRouter(primary, replicaDSN, replicaConfig.MaxOpenConnections, logger)

	userStore := users.NewPostgresStore(db.Primary())
	followStore := follows.NewPostgresStore(db.Primary())
	sleepStore := sleep.NewPostgresStore(db.Primary(), db.Read())

	userService := users.NewUserService(userStore)
	followService := follows.NewFollowService(followStore, userStore)
	sleepService := sleep.NewSessionService(sleepStore, userStore)
	feedService := feed.NewAggregator(followService, sleepStore, userStore)

	return &AppState{
		Logger:        logger,
		DB:            db,
		UserService:   userService,
		FollowService: followService,
		SleepService:  sleepService,
		FeedService:   feedService,
	}, nil
}

// initLogger creates a zap logger based on the configured level and format
func initLogger() *zap.Logger {
	logConfig := config.Logger()

	var zapConfig zap.Config
	if logConfig.Format == "json" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	switch logConfig.Level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}

	return logger
}

func setupRouter(as *AppState) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(cors.Default())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health endpoint
	router.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()

		if err := as.DB.Primary().PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now().Format(time.RFC3339),
				"error":     err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api/v1")
	{
		userRoutes := api.Group("/users")
		{
			userRoutes.POST("", createUser(as))
			userRoutes.POST("/:userId/follow", followUser(as))
			userRoutes.DELETE("/:userId/follow/:targetId", unfollowUser(as))

			sleepRecords := userRoutes.Group("/:userId/sleep_records")
			{
				sleepRecords.POST("/clock_in", clockIn(as))
				sleepRecords.POST("/clock_out", clockOut(as))
				sleepRecords.GET("", listSleepRecords(as))
				sleepRecords.GET("/friends_sleep_feed", friendsSleepFeed(as))
			}
		}
	}

	return router
}

func setupSignalHandler(as *AppState, server *http.Server, logger *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		logger.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		if err := as.DB.Close(); err != nil {
			logger.Error("Error closing database connections", zap.Error(err))
		}

		done <- struct{}{}
	}()

	return done
}

// errorStatus maps domain errors onto HTTP status codes. Every error in this
// service is deterministic for a given input and state, so nothing is retried
// here; the kind decides the code and the message carries the detail.
func errorStatus(err error) int {
	var userErr *users.UserError
	if errors.As(err, &userErr) {
		if userErr.Type == users.UserErrorTypeNotFound {
			return http.StatusNotFound
		}
		return http.StatusUnprocessableEntity
	}

	var followErr *follows.FollowError
	if errors.As(err, &followErr) {
		return http.StatusUnprocessableEntity
	}

	var sessionErr *sleep.SessionError
	if errors.As(err, &sessionErr) {
		return http.StatusUnprocessableEntity
	}

	var argErr *feed.InvalidArgumentError
	if errors.As(err, &argErr) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// Handler functions

func createUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req users.CreateUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		user, err := as.UserService.CreateUser(c.Request.Context(), &req)
		if err != nil {
			status := errorStatus(err)
			if status == http.StatusInternalServerError {
				as.Logger.Error("Failed to create user", zap.Error(err))
				c.JSON(status, gin.H{"error": "Failed to create user"})
				return
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "User created",
			"user":    user,
		})
	}
}

func followUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")

		var req struct {
			FollowedID string `json:"followed_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.FollowedID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "followed_id is required"})
			return
		}

		edge, err := as.FollowService.Follow(c.Request.Context(), userID, req.FollowedID)
		if err != nil {
			status := errorStatus(err)
			if status == http.StatusInternalServerError {
				as.Logger.Error("Failed to follow user",
					zap.String("follower_id", userID),
					zap.String("followed_id", req.FollowedID),
					zap.Error(err))
				c.JSON(status, gin.H{"error": "Failed to follow user"})
				return
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Followed successfully",
			"follow_relationship": gin.H{
				"id":          edge.UUID,
				"follower_id": edge.FollowerID,
				"followed_id": edge.FollowedID,
				"created_at":  edge.CreatedAt,
			},
		})
	}
}

func unfollowUser(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		targetID := c.Param("targetId")

		target, err := as.UserService.GetUser(c.Request.Context(), targetID)
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}

		if err := as.FollowService.Unfollow(c.Request.Context(), userID, targetID); err != nil {
			status := errorStatus(err)
			if status == http.StatusInternalServerError {
				as.Logger.Error("Failed to unfollow user",
					zap.String("follower_id", userID),
					zap.String("followed_id", targetID),
					zap.Error(err))
				c.JSON(status, gin.H{"error": "Failed to unfollow user"})
				return
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Unfollowed successfully",
			"unfollowed_user": gin.H{
				"id":   target.UUID,
				"name": target.Name,
			},
		})
	}
}

func clockIn(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")

		session, err := as.SleepService.ClockIn(c.Request.Context(), userID)
		if err != nil {
			var sessionErr *sleep.SessionError
			if errors.As(err, &sessionErr) && sessionErr.Type == sleep.SessionErrorTypeAlreadyOpen {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error": "User already has an ongoing sleep record",
					"current_sleep_record": gin.H{
						"id":       sessionErr.OpenSessionID,
						"bed_time": sessionErr.OpenSessionBedTime,
					},
				})
				return
			}

			status := errorStatus(err)
			if status == http.StatusInternalServerError {
				as.Logger.Error("Failed to clock in", zap.String("user_id", userID), zap.Error(err))
				c.JSON(status, gin.H{"error": "Failed to clock in"})
				return
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "Clocked in",
			"sleep_record": gin.H{
				"id":       session.UUID,
				"bed_time": session.BedTime,
				"status":   session.Status(),
			},
		})
	}
}

func clockOut(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")

		session, err := as.SleepService.ClockOut(c.Request.Context(), userID)
		if err != nil {
			status := errorStatus(err)
			if status == http.StatusInternalServerError {
				as.Logger.Error("Failed to clock out", zap.String("user_id", userID), zap.Error(err))
				c.JSON(status, gin.H{"error": "Failed to clock out"})
				return
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Clocked out",
			"sleep_record": gin.H{
				"id":                  session.UUID,
				"bed_time":            session.BedTime,
				"wake_up_time":        session.WakeUpTime,
				"duration_in_seconds": session.DurationInSeconds,
				"duration_in_hours":   session.DurationInHours(),
				"status":              session.Status(),
			},
		})
	}
}

func listSleepRecords(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")

		user, err := as.UserService.GetUser(c.Request.Context(), userID)
		if err != nil {
			c.JSON(errorStatus(err), gin.H{"error": err.Error()})
			return
		}

		page := intQuery(c, "page")
		perPage := intQuery(c, "per_page")

		sessions, meta, err := as.SleepService.ListSessions(c.Request.Context(), userID, page, perPage)
		if err != nil {
			as.Logger.Error("Failed to list sleep records", zap.String("user_id", userID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sleep records"})
			return
		}

		records := make([]gin.H, 0, len(sessions))
		for _, session := range sessions {
			records = append(records, gin.H{
				"id":                  session.UUID,
				"bed_time":            session.BedTime,
				"wake_up_time":        session.WakeUpTime,
				"duration_in_seconds": session.DurationInSeconds,
				"duration_in_hours":   session.DurationInHours(),
				"status":              session.Status(),
				"created_at":          session.CreatedAt,
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"user_id":       user.UUID,
			"user_name":     user.Name,
			"pagination":    meta,
			"sleep_records": records,
		})
	}
}

func friendsSleepFeed(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := &feed.FeedRequest{
			FollowerID: c.Param("userId"),
			Page:       intQuery(c, "page"),
			PerPage:    intQuery(c, "per_page"),
		}

		if startStr := c.Query("start_date"); startStr != "" {
			start, err := time.Parse(time.RFC3339, startStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be a valid RFC3339 timestamp"})
				return
			}
			req.StartDate = &start
		}
		if endStr := c.Query("end_date"); endStr != "" {
			end, err := time.Parse(time.RFC3339, endStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be a valid RFC3339 timestamp"})
				return
			}
			req.EndDate = &end
		}

		result, err := as.FeedService.FriendsFeed(c.Request.Context(), req)
		if err != nil {
			status := errorStatus(err)
			if status == http.StatusInternalServerError {
				as.Logger.Error("Failed to build friends sleep feed",
					zap.String("user_id", req.FollowerID),
					zap.Error(err))
				c.JSON(status, gin.H{"error": "Failed to build friends sleep feed"})
				return
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"user_id":               result.UserID,
			"user_name":             result.UserName,
			"total_records":         len(result.Records),
			"friends_sleep_records": result.Records,
			"time_range":            result.TimeRange,
			"pagination":            result.Pagination,
		})
	}
}

func intQuery(c *gin.Context, name string) int {
	value := c.Query(name)
	if value == "" {
		return 0
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return parsed
}
