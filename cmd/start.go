package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"facet/core/config"
	"facet/core/loader"
	"facet/core/logger"
	"facet/core/middleware/auth"
	"facet/core/middleware/rayid"
	"facet/core/storage"
	"facet/feature/versions"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the facet server",
	Long:  `Starts the HTTP server exposing the webhook trigger and the cached filtered index.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 4. Initialize Storage
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		ensureBucket(store, cfg.Storage, logg)

		// 5. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(versions.NewFeature(store, cfg.Storage.Bucket, cfg.Versions, logg))

		// Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		// Logging Middleware (Zap + RayID)
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Auth (Protect API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 6. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown: stop accepting, then drain background runs.
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
		mgr.ShutdownAll()
		logg.Info("Background runs drained")
	},
}

// ensureBucket creates the artifact bucket on first boot.
func ensureBucket(store storage.Client, cfg storage.Config, logg *zap.Logger) {
	ctx := context.Background()
	exists, err := store.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		logg.Fatal("Failed to check bucket", zap.String("bucket", cfg.Bucket), zap.Error(err))
	}
	if exists {
		return
	}
	if err := store.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		logg.Fatal("Failed to create bucket", zap.String("bucket", cfg.Bucket), zap.Error(err))
	}
	logg.Info("Created bucket", zap.String("bucket", cfg.Bucket))
}

func init() {
	RootCmd.AddCommand(startCmd)
}
