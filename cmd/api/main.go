package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"isdao/payment-portal/payment-portal-backend/internal/banks"
	"isdao/payment-portal/payment-portal-backend/internal/config"
	"isdao/payment-portal/payment-portal-backend/internal/documents"
	"isdao/payment-portal/payment-portal-backend/internal/identity"
	"isdao/payment-portal/payment-portal-backend/internal/messages"
	"isdao/payment-portal/payment-portal-backend/internal/notifications"
	"isdao/payment-portal/payment-portal-backend/internal/requests"
	"isdao/payment-portal/payment-portal-backend/internal/search"
	"isdao/payment-portal/payment-portal-backend/pkg/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	// Connect through lib/pq so the pool settings stay on the sql.DB, then
	// hand the open connection to gorm.
	sqlDB, err := sql.Open("postgres", cfg.Database.GetDatabaseURL())
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	if cfg.Database.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxConns)
	}
	if cfg.Database.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	}
	if cfg.Database.MaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to initialise orm", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&identity.User{},
		&requests.PaymentRequest{},
		&requests.LineItem{},
		&requests.AuditEntry{},
		&requests.ReferenceCounter{},
		&documents.Artifact{},
		&documents.Attachment{},
		&banks.Bank{},
		&banks.ChartOfAccount{},
		&messages.Message{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	// ---------------- IDENTITY ----------------
	identityRepo := identity.NewRepository(db)
	identityService := identity.NewService(identityRepo, cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	identityHandler := identity.NewHandler(identityService)
	authRequired := identity.Middleware(identityService)

	// ---------------- DOCUMENTS ----------------
	var blobs storage.BlobStore
	if cfg.Documents.S3Bucket != "" {
		s3Store, err := storage.NewS3Store(context.Background(), cfg.AWS.Region, cfg.Documents.S3Bucket, cfg.AWS.AccessKey, cfg.AWS.SecretKey)
		if err != nil {
			logger.Fatal("failed to initialise s3 store", zap.Error(err))
		}
		blobs = s3Store
	} else {
		blobs = storage.NewLocalStore(cfg.Documents.Root)
	}
	documentsRepo := documents.NewRepository(db)
	documentsService := documents.NewService(documentsRepo, cfg.Documents.Root, blobs, logger)
	documentsHandler := documents.NewHandler(documentsService)

	// ---------------- NOTIFICATIONS ----------------
	hub := notifications.NewHub(logger)
	var mailer *notifications.Mailer
	var publisher *notifications.Publisher
	if cfg.AWS.EmailEnabled || cfg.AWS.EventTopic != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			logger.Fatal("failed to load aws configuration", zap.Error(err))
		}
		if cfg.AWS.EmailEnabled {
			mailer = notifications.NewMailer(sesv2.NewFromConfig(awsCfg), cfg.AWS.EmailFrom, logger)
		}
		if cfg.AWS.EventTopic != "" {
			publisher = notifications.NewPublisher(sns.NewFromConfig(awsCfg), cfg.AWS.EventTopic, logger)
		}
	}
	notifier := notifications.NewNotifier(hub, mailer, publisher, identityRepo, logger)
	notificationsHandler := notifications.NewHandler(hub)

	// ---------------- SEARCH ----------------
	var indexer requests.SearchIndex
	if cfg.Search.Enabled {
		esClient, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: cfg.Search.Addresses})
		if err != nil {
			logger.Fatal("failed to initialise search client", zap.Error(err))
		}
		indexer = search.NewIndexer(esClient, logger)
	}

	// ---------------- WORKFLOW ----------------
	requestsRepo := requests.NewRepository(db, cfg.Requests.ReferencePrefix, cfg.Requests.ReferenceStart)
	requestsService := requests.NewService(requestsRepo, requests.ApprovalChain(), identityService, documentsService, notifier, indexer, logger)
	requestsHandler := requests.NewHandler(requestsService)

	// ---------------- REFERENCE DATA ----------------
	banksRepo := banks.NewRepository(db)
	banksService := banks.NewService(banksRepo, logger)
	banksHandler := banks.NewHandler(banksService)

	// ---------------- MESSAGES ----------------
	messagesRepo := messages.NewRepository(db)
	messagesService := messages.NewService(messagesRepo, notifier, logger)
	messagesHandler := messages.NewHandler(messagesService)

	// ---------------- REMINDERS ----------------
	reminder := notifications.NewReminder(requestsRepo, notifier, cfg.Reminders.MaxAge, logger)
	if err := reminder.Start(cfg.Reminders.CronSpec); err != nil {
		logger.Fatal("failed to schedule reminders", zap.Error(err))
	}
	defer reminder.Stop()

	// ---------------- ROUTER ----------------
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), corsMiddleware())

	api := router.Group("/api/v1")
	authed := api.Group("", authRequired)
	{
		identityHandler.RegisterRoutes(router, authed)
		requestsHandler.RegisterRoutes(authed)
		documentsHandler.RegisterRoutes(authed)
		banksHandler.RegisterRoutes(authed)
		messagesHandler.RegisterRoutes(authed)
		notificationsHandler.RegisterRoutes(authed)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()
	logger.Info("server started", zap.String("addr", srv.Addr))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server exiting")
}

func newLogger(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	return logger
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
