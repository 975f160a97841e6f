package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/saberpro-api/api/swagger"
	"github.com/noah-isme/saberpro-api/internal/handler"
	"github.com/noah-isme/saberpro-api/internal/middleware"
	"github.com/noah-isme/saberpro-api/internal/repository"
	"github.com/noah-isme/saberpro-api/internal/service"
	"github.com/noah-isme/saberpro-api/pkg/cache"
	"github.com/noah-isme/saberpro-api/pkg/config"
	"github.com/noah-isme/saberpro-api/pkg/database"
	"github.com/noah-isme/saberpro-api/pkg/events"
	"github.com/noah-isme/saberpro-api/pkg/export"
	"github.com/noah-isme/saberpro-api/pkg/jobs"
	"github.com/noah-isme/saberpro-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/saberpro-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/saberpro-api/pkg/middleware/requestid"
)

// @title SaberPro API
// @version 1.0.0
// @description Enrollment, homework, grading and notification service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		if err := database.Migrate(db, cfg.Database.Name, logr); err != nil {
			return err
		}
	}

	metrics := service.NewMetricsService()
	validate := validator.New()
	checks := map[string]handler.Pinger{"postgres": db}

	var statsCache *service.CacheService
	if cfg.Stats.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("stats cache disabled, redis unavailable", zap.Error(err))
		} else {
			defer client.Close()
			checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
			statsCache = service.NewCacheService(repository.NewCacheRepository(client, logr), metrics, cfg.Stats.CacheTTL, logr, true)
		}
	}

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	homeworkRepo := repository.NewHomeworkRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	var notificationSvc *service.NotificationService
	if cfg.Kafka.Enabled {
		producer, err := events.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("init kafka producer: %w", err)
		}
		defer producer.Close() //nolint:errcheck

		queue := jobs.NewQueue("notification-events",
			service.NewNotificationEventHandler(producer, cfg.Kafka.NotificationTopic, metrics, logr),
			jobs.QueueConfig{
				Workers:    cfg.Notifications.Workers,
				MaxRetries: cfg.Notifications.Retries,
				RetryDelay: cfg.Notifications.RetryDelay,
				Logger:     logr,
			})
		queue.Start(context.WithoutCancel(ctx))
		defer queue.Stop()
		notificationSvc = service.NewNotificationService(notificationRepo, userRepo, queue, metrics, validate, logr)
	} else {
		notificationSvc = service.NewNotificationService(notificationRepo, userRepo, nil, metrics, validate, logr)
	}

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	profileSvc := service.NewProfileService(userRepo, studentRepo, teacherRepo, statsCache, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, teacherRepo, statsCache, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, teacherRepo, subjectRepo, notificationSvc, statsCache, metrics, validate, logr)
	homeworkSvc := service.NewHomeworkService(homeworkRepo, subjectRepo, enrollmentRepo, submissionRepo, studentRepo, teacherRepo, notificationSvc, statsCache, metrics, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, homeworkRepo, studentRepo, teacherRepo, enrollmentRepo, gradeRepo, notificationSvc, statsCache, metrics, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, submissionRepo, studentRepo, teacherRepo, subjectRepo, homeworkRepo, notificationSvc, statsCache, metrics,
		service.GradeConfig{NotifyOnRegrade: cfg.Notifications.NotifyOnRegrade}, validate, logr)
	statsSvc := service.NewStatsService(homeworkRepo, submissionRepo, studentRepo, teacherRepo, subjectRepo, statsCache, cfg.Stats.CacheTTL, validate, logr)
	exportSvc := service.NewExportService(gradeSvc, studentRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg.APIPrefix, routeDeps{
		tokens:        authSvc,
		audit:         auditRepo,
		logger:        logr,
		auth:          handler.NewAuthHandler(authSvc, profileSvc),
		accounts:      handler.NewAccountHandler(profileSvc),
		subjects:      handler.NewSubjectHandler(subjectSvc),
		enrollments:   handler.NewEnrollmentHandler(enrollmentSvc),
		homeworks:     handler.NewHomeworkHandler(homeworkSvc, statsSvc),
		submissions:   handler.NewSubmissionHandler(submissionSvc),
		grades:        handler.NewGradeHandler(gradeSvc, exportSvc),
		notifications: handler.NewNotificationHandler(notificationSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
