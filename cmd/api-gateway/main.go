package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/educasem/educasem-api/api/swagger"
	"github.com/educasem/educasem-api/internal/handler"
	"github.com/educasem/educasem-api/internal/middleware"
	"github.com/educasem/educasem-api/internal/models"
	"github.com/educasem/educasem-api/internal/service"
	"github.com/educasem/educasem-api/internal/store"
	"github.com/educasem/educasem-api/pkg/cache"
	"github.com/educasem/educasem-api/pkg/config"
	"github.com/educasem/educasem-api/pkg/database"
	appErrors "github.com/educasem/educasem-api/pkg/errors"
	"github.com/educasem/educasem-api/pkg/jobs"
	"github.com/educasem/educasem-api/pkg/logger"
	corsmiddleware "github.com/educasem/educasem-api/pkg/middleware/cors"
	reqidmiddleware "github.com/educasem/educasem-api/pkg/middleware/requestid"
	"github.com/educasem/educasem-api/pkg/response"
)

// @title Educasem API
// @version 1.0.0
// @description Authentication, authorization and catalog API for the Educasem learning platform
// @BasePath /api/v1
// @schemes http https

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

	userStore, cleanup, err := buildUserStore(cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init user store", "driver", cfg.Store.Driver, "error", err)
	}
	defer cleanup()

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog cache disabled", "error", err)
	} else {
		redisClient = client
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()
	catalog := store.NewCatalog()
	catalogCache := store.NewCache(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userStore, validate, logr, service.AuthConfig{
		TokenSecret: cfg.Session.Secret,
		TokenExpiry: cfg.Session.TokenExpiry,
		Issuer:      cfg.Session.Issuer,
		BaseURL:     cfg.BaseURL,
	})

	var registerSvc *service.RegisterService
	mailQueue := jobs.NewQueue("verification_mail", func(ctx context.Context, job jobs.Job) error {
		return registerSvc.SendVerificationMail(ctx, job)
	}, jobs.QueueConfig{
		Workers:    cfg.Registration.MailWorkers,
		MaxRetries: cfg.Registration.MailRetries,
		Logger:     logr,
	})
	registerSvc = service.NewRegisterService(userStore, validate, logr, mailQueue)
	mailQueue.Start(ctx)
	defer mailQueue.Stop()

	catalogSvc := service.NewCatalogService(catalog, catalogCache, metricsSvc, cfg.Catalog.CacheTTL, logr)
	userSvc := service.NewUserService(userStore, logr)
	dashboardSvc := service.NewDashboardService(userStore, catalog, logr)

	authHandler := handler.NewAuthHandler(authSvc, registerSvc, cfg.Session)
	oauthHandler := handler.NewOAuthHandler(authSvc, cfg.Google, cfg.Session)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	userHandler := handler.NewUserHandler(userSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc, authSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.Guard(authSvc, middleware.GuardConfig{
		APIPrefix:  cfg.APIPrefix,
		CookieName: cfg.Session.CookieName,
	}))

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, appErrors.ErrMethodNotAllowed)
	})
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	r.GET("/healthz", metricsHandler.Health)
	r.GET("/readyz", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/google", oauthHandler.GoogleLogin)
			auth.GET("/google/callback", oauthHandler.GoogleCallback)

			authed := auth.Group("")
			authed.Use(middleware.Session(authSvc, cfg.Session.CookieName))
			{
				authed.GET("/session", authHandler.Session)
				authed.POST("/refresh", authHandler.Refresh)
				authed.POST("/change-password", authHandler.ChangePassword)
			}
		}

		catalogGroup := api.Group("")
		catalogGroup.Use(middleware.WithResponseMeta())
		{
			catalogGroup.GET("/courses", catalogHandler.ListCourses)
			catalogGroup.GET("/courses/:id", catalogHandler.GetCourse)
			catalogGroup.GET("/tutors", catalogHandler.ListTutors)
			catalogGroup.GET("/tutors/:id", catalogHandler.GetTutor)
		}

		dashboard := api.Group("/dashboard")
		dashboard.Use(middleware.Session(authSvc, cfg.Session.CookieName))
		{
			dashboard.GET("/admin", middleware.RequireRole(models.RoleAdmin), dashboardHandler.Admin)
			dashboard.GET("/instructor", middleware.RequireRole(models.RoleInstructor), dashboardHandler.Instructor)
			dashboard.GET("/student", middleware.RequireRole(models.RoleStudent), dashboardHandler.Student)
		}

		users := api.Group("/users")
		users.Use(middleware.Session(authSvc, cfg.Session.CookieName))
		{
			users.GET("", middleware.RequireRole(models.RoleAdmin), userHandler.List)
			users.GET("/export", middleware.RequireRole(models.RoleAdmin), userHandler.Export)
			users.GET("/:id", middleware.RequireSelfOrRole(models.RoleAdmin), userHandler.Get)
			users.PATCH("/:id/active", middleware.RequireRole(models.RoleAdmin), userHandler.SetActive)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

// buildUserStore selects the user store backend from configuration. The
// memory driver ships with the seeded demo accounts.
func buildUserStore(cfg *config.Config, logr *zap.Logger) (store.UserStore, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := database.NewPostgres(cfg.Store.Database)
		if err != nil {
			return nil, nil, err
		}
		logr.Sugar().Infow("using postgres user store", "host", cfg.Store.Database.Host, "db", cfg.Store.Database.Name)
		return store.NewPostgresStore(db), func() { _ = db.Close() }, nil
	default:
		logr.Sugar().Infow("using in-memory user store with seeded accounts")
		return store.NewSeededMemoryStore(), func() {}, nil
	}
}
