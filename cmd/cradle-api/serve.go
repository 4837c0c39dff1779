package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cradlehq/backend/internal/config"
	"github.com/cradlehq/backend/internal/database"
	"github.com/cradlehq/backend/internal/handlers"
	"github.com/cradlehq/backend/internal/logger"
	"github.com/cradlehq/backend/internal/middleware"
	"github.com/cradlehq/backend/internal/notify"
	"github.com/cradlehq/backend/internal/repository"
	"github.com/cradlehq/backend/internal/service"
	"github.com/cradlehq/backend/pkg/supabase"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and listen for requests.`,
	RunE:  runServe,
}

var (
	port string
)

func init() {
	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides config)")
}

// stores is the set of repositories backing one store driver
type stores struct {
	children    repository.ChildRepository
	activities  repository.ActivityRepository
	daily       repository.DailyAnalyticsRepository
	insights    repository.InsightRepository
	checklist   repository.ChecklistRepository
	idempotency repository.IdempotencyRepository
	sinks       []service.ReminderSink
	close       func() error
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override port from flag if provided
	if port != "" {
		cfg.Server.Port = port
	}

	log := logger.NewSlogLogger(logger.Config{
		Level:   logger.ParseLevel(cfg.Logging.Level),
		Format:  cfg.Logging.Format,
		Service: "cradle-api",
	})
	logger.SetDefault(log)

	log.Info("starting Cradle API server",
		logger.String("env", cfg.Server.Env),
		logger.String("store", cfg.Store.Driver),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// The Supabase client also serves token checks and recipient lookups,
	// so it is built whenever credentials exist
	var supabaseClient *supabase.Client
	if cfg.Supabase.URL != "" && cfg.Supabase.ServiceKey != "" {
		supabaseClient = supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.ServiceKey)
	}

	st, err := openStores(ctx, cfg, supabaseClient)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.close(); err != nil {
			log.Warn("failed to close store", logger.Err(err))
		}
	}()

	var users notify.UserDirectory
	if supabaseClient != nil {
		users = supabaseClient
	}
	emailSink, err := notify.NewEmailSink(ctx, notify.EmailConfig{
		Region:     cfg.Notifications.Email.Region,
		FromEmail:  cfg.Notifications.Email.FromEmail,
		FromName:   cfg.Notifications.Email.FromName,
		AppBaseURL: cfg.Notifications.AppBaseURL,
		LeadDays:   repository.ReminderLeadDays,
	}, users)
	if err != nil {
		return fmt.Errorf("failed to initialize email reminders: %w", err)
	}
	if emailSink.IsEnabled() {
		st.sinks = append(st.sinks, emailSink)
	}

	loc, err := cfg.Analytics.Location()
	if err != nil {
		return err
	}

	// Initialize services
	activityService := service.NewActivityService(st.activities, st.children, st.insights)
	analyticsService := service.NewAnalyticsService(st.activities, st.children, st.daily, st.insights, service.AnalyticsConfig{
		Location:          loc,
		DefaultWindowDays: cfg.Analytics.DefaultWindowDays,
		InsightCacheTTL:   cfg.Analytics.InsightCacheTTL,
	})
	checklistService := service.NewChecklistService(st.checklist, st.children, st.sinks, service.ChecklistConfig{
		Location:            loc,
		DefaultJurisdiction: cfg.Checklist.DefaultJurisdiction,
	})

	var verifier middleware.TokenVerifier = supabaseClient
	if cfg.Supabase.JWTSecret != "" {
		verifier = middleware.NewJWTVerifier(cfg.Supabase.JWTSecret)
		log.Info("verifying access tokens locally")
	}

	// Set Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := newRouter(cfg, routerDeps{
		verifier:    verifier,
		idempotency: st.idempotency,
		activities:  handlers.NewActivityHandler(activityService),
		analytics:   handlers.NewAnalyticsHandler(analyticsService),
		insights:    handlers.NewInsightsHandler(analyticsService),
		checklist:   handlers.NewChecklistHandler(checklistService),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", logger.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", logger.Err(err))
			os.Exit(1)
		}
	}()

	return waitForShutdown(server)
}

func openStores(ctx context.Context, cfg *config.Config, client *supabase.Client) (*stores, error) {
	if cfg.Store.Driver == config.DriverSupabase {
		st := &stores{
			children:    repository.NewChildRepository(client),
			activities:  repository.NewActivityRepository(client),
			daily:       repository.NewDailyAnalyticsRepository(client),
			insights:    repository.NewInsightRepository(client),
			checklist:   repository.NewChecklistRepository(client),
			idempotency: repository.NewIdempotencyRepository(client),
			sinks:       []service.ReminderSink{repository.NewNotificationSink(client)},
			close:       func() error { return nil },
		}
		if cfg.Notifications.CalendarEnabled {
			st.sinks = append(st.sinks, repository.NewCalendarSink(client))
		}
		return st, nil
	}

	db, err := database.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	st := &stores{
		children:    repository.NewSQLChildRepository(db),
		activities:  repository.NewSQLActivityRepository(db),
		daily:       repository.NewSQLDailyAnalyticsRepository(db),
		insights:    repository.NewSQLInsightRepository(db),
		checklist:   repository.NewSQLChecklistRepository(db),
		idempotency: repository.NewSQLIdempotencyRepository(db),
		sinks:       []service.ReminderSink{repository.NewSQLNotificationSink(db)},
		close:       db.Close,
	}
	if cfg.Notifications.CalendarEnabled {
		st.sinks = append(st.sinks, repository.NewSQLCalendarSink(db))
	}
	return st, nil
}

type routerDeps struct {
	verifier    middleware.TokenVerifier
	idempotency repository.IdempotencyRepository
	activities  *handlers.ActivityHandler
	analytics   *handlers.AnalyticsHandler
	insights    *handlers.InsightsHandler
	checklist   *handlers.ChecklistHandler
}

func newRouter(cfg *config.Config, deps routerDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.SecurityHeaders(cfg.Server.Env))
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"env":    cfg.Server.Env,
			"store":  cfg.Store.Driver,
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(middleware.RateLimit())
	v1.Use(middleware.Auth(deps.verifier))
	v1.Use(middleware.Idempotency(deps.idempotency))

	child := v1.Group("/children/:child_id")
	{
		// Activity routes
		child.POST("/activities", deps.activities.CreateActivity)
		child.GET("/activities", deps.activities.ListActivities)
		child.DELETE("/activities/:id", deps.activities.DeleteActivity)

		// Analytics routes
		child.GET("/analytics/daily", deps.analytics.GetDaily)
		child.GET("/analytics/patterns", deps.analytics.GetPatterns)
		child.GET("/analytics/trends", deps.analytics.GetTrends)
		child.GET("/analytics/weekly", deps.analytics.GetWeekly)
		child.GET("/insights", deps.insights.GetInsights)

		// Checklist routes
		child.POST("/checklist/generate", middleware.RateLimitGenerate(), deps.checklist.Generate)
		child.GET("/checklist", deps.checklist.GetChecklist)
		child.PATCH("/checklist/:item_id", deps.checklist.UpdateItem)
	}

	return router
}

func waitForShutdown(server *http.Server) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server gracefully stopped")
	return nil
}
