package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/vidya-press/field-crm-api/api/swagger"
	"github.com/vidya-press/field-crm-api/internal/handler"
	"github.com/vidya-press/field-crm-api/internal/middleware"
	"github.com/vidya-press/field-crm-api/internal/repository"
	"github.com/vidya-press/field-crm-api/internal/scheduler"
	"github.com/vidya-press/field-crm-api/internal/service"
	"github.com/vidya-press/field-crm-api/pkg/cache"
	"github.com/vidya-press/field-crm-api/pkg/config"
	"github.com/vidya-press/field-crm-api/pkg/database"
	"github.com/vidya-press/field-crm-api/pkg/jobs"
	"github.com/vidya-press/field-crm-api/pkg/logger"
	corsmiddleware "github.com/vidya-press/field-crm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/vidya-press/field-crm-api/pkg/middleware/requestid"
)

// @title Field CRM API
// @version 1.0.0
// @description Visit logging and compliance validation engine for the field sales force
// @BasePath /api/v1
// @schemes http

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, reference cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	entityRepo := repository.NewEntityRepository(db)
	specimenRepo := repository.NewSpecimenRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	reportRepo := repository.NewExpenseReportRepository(db)
	tadaRepo := repository.NewTadaRepository(db)
	policyRepo := repository.NewPolicyRepository(db)
	reminderRepo := repository.NewReminderRepository(db)

	referenceSvc := service.NewReferenceService(policyRepo, entityRepo, specimenRepo, redisClient, metricsSvc, cfg.Reference.CacheTTL, logr)
	identitySvc := service.NewIdentityService(service.IdentityConfig{
		Secret:     cfg.Identity.Secret,
		Expiration: cfg.Identity.Expiration,
	})

	reminderScheduler := scheduler.NewReminderScheduler(reminderRepo, metricsSvc, cfg.Reminders.CronSpec, logr)
	reminderQueue := jobs.NewQueue("reminders", reminderScheduler.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Reminders.WorkerConcurrency,
		BufferSize: cfg.Reminders.QueueBuffer,
		Logger:     logr,
	})

	var reminderSink *jobs.Queue
	if cfg.Reminders.Enabled {
		reminderSink = reminderQueue
	}
	visitSvc := service.NewVisitService(visitRepo, entityRepo, specimenRepo, reminderSink, metricsSvc, cfg.Specimen.LedgerEnabled, logr)
	flowSvc := service.NewVisitFlowService(entityRepo, specimenRepo, referenceSvc, visitSvc, nil, validate, logr)
	expenseSvc := service.NewExpenseService(expenseRepo, policyRepo, metricsSvc, validate, logr)
	reportSvc := service.NewExpenseReportService(reportRepo, expenseRepo, policyRepo, validate, logr)
	tadaSvc := service.NewTadaService(tadaRepo, visitRepo, referenceSvc, metricsSvc, cfg.Tada.ClaimCeiling, validate, logr)

	visitHandler := handler.NewVisitHandler(flowSvc, visitSvc)
	expenseHandler := handler.NewExpenseHandler(expenseSvc)
	reportHandler := handler.NewExpenseReportHandler(reportSvc)
	tadaHandler := handler.NewTadaHandler(tadaSvc)
	referenceHandler := handler.NewReferenceHandler(referenceSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Identity(identitySvc))
	{
		visits := api.Group("/visits")
		{
			visits.GET("", visitHandler.List)
			visits.GET("/:id", visitHandler.Get)

			drafts := visits.Group("/drafts")
			drafts.POST("", visitHandler.StartDraft)
			drafts.GET("/:id", visitHandler.GetDraft)
			drafts.DELETE("/:id", visitHandler.CancelDraft)
			drafts.GET("/:id/required-fields", visitHandler.RequiredFields)
			drafts.PUT("/:id/entity", visitHandler.SetEntity)
			drafts.PUT("/:id/contacts", visitHandler.SetContacts)
			drafts.PUT("/:id/purposes", visitHandler.SetPurposes)
			drafts.PUT("/:id/joint-working", visitHandler.SetJointWorking)
			drafts.POST("/:id/given-lines", visitHandler.AddGivenLine)
			drafts.DELETE("/:id/given-lines/:index", visitHandler.RemoveGivenLine)
			drafts.POST("/:id/returned-lines", visitHandler.AddReturnedLine)
			drafts.DELETE("/:id/returned-lines/:index", visitHandler.RemoveReturnedLine)
			drafts.PUT("/:id/feedback", visitHandler.SetFeedback)
			drafts.PUT("/:id/next-visit", visitHandler.SetNextVisit)
			drafts.POST("/:id/next", visitHandler.Next)
			drafts.POST("/:id/back", visitHandler.Back)
			drafts.POST("/:id/submit", visitHandler.Submit)
		}

		expenses := api.Group("/expenses")
		{
			expenses.POST("", expenseHandler.Create)
			expenses.GET("", expenseHandler.List)
			expenses.GET("/policy-check", expenseHandler.CheckPolicy)
			expenses.GET("/:id", expenseHandler.Get)
			expenses.PUT("/:id", expenseHandler.Update)
		}

		reports := api.Group("/expense-reports")
		{
			reports.POST("", reportHandler.Create)
			reports.GET("", reportHandler.List)
			reports.GET("/:id", reportHandler.Get)
			reports.GET("/:id/export/csv", reportHandler.ExportCSV)
			reports.GET("/:id/export/pdf", reportHandler.ExportPDF)
			reports.POST("/:id/approve", middleware.AdminOnly(), reportHandler.Approve)
			reports.POST("/:id/reject", middleware.AdminOnly(), reportHandler.Reject)
			reports.POST("/:id/pay", middleware.AdminOnly(), reportHandler.MarkPaid)
		}

		claims := api.Group("/tada-claims")
		{
			claims.POST("", tadaHandler.Create)
			claims.GET("", tadaHandler.List)
			claims.GET("/:id", tadaHandler.Get)
			claims.POST("/:id/approve", middleware.AdminOnly(), tadaHandler.Approve)
			claims.POST("/:id/reject", middleware.AdminOnly(), tadaHandler.Reject)
			claims.POST("/:id/pay", middleware.AdminOnly(), tadaHandler.MarkPaid)
		}

		reference := api.Group("/reference")
		{
			reference.GET("/vocabularies/:kind", referenceHandler.Vocabulary)
			reference.GET("/expense-policies", referenceHandler.Policies)
			reference.GET("/entities", referenceHandler.Entities)
			reference.GET("/entities/:id/contacts", referenceHandler.Contacts)
			reference.GET("/allocations", referenceHandler.Allocations)
		}
	}

	if cfg.Reminders.Enabled {
		reminderQueue.Start(context.Background())
		defer reminderQueue.Stop()
		if err := reminderScheduler.Start(); err != nil {
			logr.Sugar().Fatalw("failed to start reminder scheduler", "error", err)
		}
		defer reminderScheduler.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
