package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cottonwood-backend/internal/auth"
	"cottonwood-backend/internal/cache"
	"cottonwood-backend/internal/config"
	"cottonwood-backend/internal/database"
	"cottonwood-backend/internal/db"
	"cottonwood-backend/internal/email"
	"cottonwood-backend/internal/handlers"
	"cottonwood-backend/internal/health"
	h "cottonwood-backend/internal/http"
	"cottonwood-backend/internal/logtail"
	"cottonwood-backend/internal/membership"
	"cottonwood-backend/internal/middleware"
	"cottonwood-backend/internal/repositories"
	"cottonwood-backend/internal/services"
	"cottonwood-backend/internal/shopify"
	"cottonwood-backend/internal/timeutil"
	"cottonwood-backend/migrations"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	store := flag.String("store", "postgres", "Member store: postgres or memory")
	flag.Parse()

	// Keep recent log lines for the staff log viewer
	logBuffer := logtail.New(logtail.DefaultCapacity)
	log.SetOutput(io.MultiWriter(os.Stderr, logBuffer))

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if err := timeutil.SetLocation(cfg.Membership.Timezone); err != nil {
		log.Fatalf("Invalid membership timezone %q: %v", cfg.Membership.Timezone, err)
	}

	// Stores
	var (
		pool      *pgxpool.Pool
		members   services.MemberStore
		logs      services.ActivityLogStore
		settingDB services.SettingStore
	)
	switch *store {
	case "postgres":
		var err error
		pool, err = db.Connect(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()

		log.Println("Running database migrations...")
		migrator := database.NewMigratorWithFS(pool, migrations.FS, ".")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = migrator.RunMigrations(ctx)
		cancel()
		if err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}

		members = repositories.NewMemberRepository(pool)
		logs = repositories.NewActivityLogRepository(pool)
		settingDB = repositories.NewSystemSettingRepository(pool)
	case "memory":
		log.Println("[Store] Using in-memory store; data is lost on restart")
		members = repositories.NewMemoryMemberStore()
		logs = repositories.NewMemoryActivityLogStore()
		settingDB = repositories.NewMemorySettingStore()
	default:
		log.Fatalf("Unknown store %q (want postgres or memory)", *store)
	}

	// Initialize Redis (optional - sync falls back to an in-process lock)
	if err := cache.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		log.Printf("[Redis] Cache unavailable: %v", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
		defer cache.Close()
	}

	// Commerce platform client
	var commerce services.Commerce
	if cfg.ShopifyEnabled() {
		commerce = shopify.NewClient(cfg.Shopify.Shop, cfg.Shopify.AccessToken, cfg.Shopify.APIVersion, cfg.Shopify.Timeout)
		log.Printf("[Shopify] Using shop %s", cfg.Shopify.Shop)
	} else {
		log.Println("[Shopify] Not configured; sync and live tag search are disabled")
	}

	// Email provider
	var provider email.Provider
	if cfg.Email.ResendAPIKey != "" {
		provider = email.NewResendProvider(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Email.ReplyTo)
	} else {
		log.Println("[Email] RESEND_API_KEY not set, using mock provider")
		provider = email.NewMockProvider()
	}

	// Services
	policy := membership.Policy{
		GraceDays:       cfg.Membership.GraceDays,
		LapsedAfterDays: cfg.Membership.LapsedAfterDays,
	}
	settingService := services.NewSettingService(settingDB)
	memberService := services.NewMemberService(members, logs, settingService, commerce, policy, cfg.Membership.MemberTag)
	syncService := services.NewSyncService(members, settingService, commerce, services.SyncOptions{
		MemberTag:      cfg.Membership.MemberTag,
		ProspectTag:    cfg.Membership.ProspectTag,
		SKUs:           cfg.Membership.SKUs,
		ProductKeyword: cfg.Membership.ProductKeyword,
		Timeout:        cfg.Sync.Timeout,
		LockTTL:        cfg.Sync.LockTTL,
	})
	emailService := services.NewEmailService(memberService, provider, cfg.Email.Concurrency)
	reportService := services.NewReportService(memberService)
	activityLogService := services.NewActivityLogService(logs)

	var backupClient services.ObjectPutter
	if cfg.BackupEnabled() {
		client, err := services.NewS3Client(context.Background(), services.BackupConfig{
			Endpoint:  cfg.Backup.Endpoint,
			Region:    cfg.Backup.Region,
			Bucket:    cfg.Backup.Bucket,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
		})
		if err != nil {
			log.Printf("[Backup] Disabled: %v", err)
		} else {
			backupClient = client
		}
	}
	backupService := services.NewBackupService(memberService, backupClient, cfg.Backup.Bucket, cfg.Backup.Prefix)

	scheduler, err := services.NewScheduler(syncService, backupService, cfg.Sync.Schedule, cfg.Backup.Schedule)
	if err != nil {
		log.Fatalf("Invalid schedule: %v", err)
	}
	scheduler.Start()

	// Health checker (no database ping in memory mode)
	var healthChecker *health.HealthChecker
	if pool != nil {
		healthChecker = health.NewHealthChecker(pool)
	} else {
		healthChecker = health.NewHealthChecker(nil)
	}

	// Staff authentication
	var jwtManager *auth.JWTManager
	if cfg.JWT.Secret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer)
	} else {
		log.Println("[Auth] JWT_SECRET not set, admin API is unauthenticated")
	}

	router := h.NewRouter(h.Handlers{
		Members:      handlers.NewMemberHandler(memberService, reportService),
		Sync:         handlers.NewSyncHandler(syncService),
		Email:        handlers.NewEmailHandler(emailService, settingService),
		ActivityLogs: handlers.NewActivityLogHandler(activityLogService),
		Backup:       handlers.NewBackupHandler(backupService),
		Logs:         handlers.NewLogHandler(logBuffer),
		Health:       handlers.NewHealthHandler(healthChecker),
	}, middleware.NewAuthMiddleware(jwtManager))

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.RequestLogger(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		log.Printf("Server running on %s (store: %s)", addr, *store)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	scheduler.Stop(ctx)
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped")
}
