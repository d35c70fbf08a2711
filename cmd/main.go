package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Kyz7/dashboard/internal/about"
	"github.com/Kyz7/dashboard/internal/auth"
	"github.com/Kyz7/dashboard/internal/config"
	"github.com/Kyz7/dashboard/internal/database"
	"github.com/Kyz7/dashboard/internal/logger"
	"github.com/Kyz7/dashboard/internal/media"
	"github.com/Kyz7/dashboard/internal/podcast"
	"github.com/Kyz7/dashboard/internal/role"
	"github.com/Kyz7/dashboard/internal/server"
	"github.com/Kyz7/dashboard/internal/storage"
	"github.com/Kyz7/dashboard/internal/user"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatal("❌ Logger setup failed: ", err)
	}
	defer zl.Sync()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("❌ Configuration error", zap.Error(err))
	}
	zl.Info("✅ Configuration validated", zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		zl.Fatal("❌ Database connection failed", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		zl.Fatal("❌ Migration failed", zap.Error(err))
	}
	zl.Info("✅ Database migrated successfully")

	if n, err := database.RunMigrations(db, "./migrations", zl); err != nil {
		zl.Warn("⚠️  SQL migrations failed, listing may be slower", zap.Error(err))
	} else {
		zl.Info("✅ SQL migrations completed", zap.Int("applied", n))
	}

	// ========== SEED DEFAULT DATA ==========
	if err := role.SeedDefaultRoles(db); err != nil {
		zl.Fatal("❌ Failed to seed roles", zap.Error(err))
	}
	zl.Info("✅ Default roles seeded")

	if err := user.EnsureAdmin(db, cfg.AdminEmail, cfg.AdminPassword, zl); err != nil {
		zl.Fatal("❌ Failed to create bootstrap admin", zap.Error(err))
	}

	// ========== STORAGE SETUP ==========
	buckets, err := storage.Open(cfg.Storage)
	if err != nil {
		zl.Fatal("❌ Storage setup failed", zap.Error(err))
	}
	zl.Info("💾 Storage ready",
		zap.String("mode", buckets.Mode),
		zap.String("media", buckets.Media.Bucket()),
		zap.String("about", buckets.About.Bucket()),
		zap.String("podcasts", buckets.Podcasts.Bucket()),
	)

	catalogue := media.DefaultCatalogue()
	if cfg.Media.CatalogueFile != "" {
		catalogue, err = media.LoadCatalogueFile(cfg.Media.CatalogueFile)
		if err != nil {
			zl.Fatal("❌ Failed to load folder catalogue", zap.Error(err))
		}
		zl.Info("📁 Folder catalogue loaded", zap.String("file", cfg.Media.CatalogueFile))
	}

	// ========== SERVICES ==========
	reconciler := media.NewReconciler(db, buckets, zl.Named("reconciler"))
	cleaner := media.NewCleaner(reconciler, zl.Named("cleanup"))

	mediaSvc := media.NewService(media.NewGormStore(db), buckets.Media, cleaner, catalogue, zl.Named("media"), media.Options{
		SiteID:          cfg.Media.SiteID,
		MaxUploadBytes:  cfg.Media.MaxUploadBytes,
		BulkConcurrency: cfg.Media.BulkConcurrency,
	})
	aboutSvc := about.NewService(db, buckets.About, mediaSvc, cleaner, zl.Named("about"), cfg.Media.SiteID, cfg.Media.AboutMaxBytes)
	podcastSvc := podcast.NewService(db, buckets.Podcasts, mediaSvc, cleaner, zl.Named("podcast"), cfg.Media.SiteID, cfg.Media.MaxUploadBytes)

	// ========== BACKGROUND JOBS ==========
	go reconciler.Run(ctx, cfg.Media.ReconcileInterval, cfg.Media.ReconcileBatch)
	zl.Info("🧹 Orphan blob reconciler started", zap.Duration("interval", cfg.Media.ReconcileInterval))

	// ========== START SERVER ==========
	app := server.New(server.Deps{
		DB:          db,
		Log:         zl,
		Tokens:      auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL),
		Media:       mediaSvc,
		About:       aboutSvc,
		Podcasts:    podcastSvc,
		StorageMode: buckets.Mode,
		UploadDir:   cfg.Storage.UploadDir,
	})

	go func() {
		<-ctx.Done()
		zl.Info("🛑 Shutting down")
		if err := app.Shutdown(); err != nil {
			zl.Error("Shutdown failed", zap.Error(err))
		}
	}()

	zl.Info("🚀 Dashboard server starting", zap.String("addr", cfg.ServerAddr), zap.String("site", cfg.Media.SiteID))
	if err := app.Listen(cfg.ServerAddr); err != nil {
		zl.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
