package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/example/amarshop/internal/config"
	"github.com/example/amarshop/internal/database"
	"github.com/example/amarshop/internal/routes"
	"github.com/example/amarshop/internal/services"
	"github.com/example/amarshop/internal/session"
	"github.com/example/amarshop/internal/views"
)

const purgeInterval = time.Hour

var (
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "amarshop",
	Short: "Amar Shop storefront",
	Long: `Amar Shop storefront server.

Renders the shop's pages on top of the backend REST API configured with
API_BASE_URL. Run without arguments to start the server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		zcfg := zap.NewProductionConfig()
		if verbose || cfg.LogLevel == "debug" {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the storefront HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(serveCmd, invoiceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := services.NewClient(cfg.APIBaseURL, cfg.APITimeout, logger)

	var sessions interface {
		session.Backend
		sessionPurger
	}
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set, keeping sessions in memory")
		sessions = session.NewMemoryBackend()
	} else {
		db, err := database.Connect(cfg.DatabaseURL, logger)
		if err != nil {
			return err
		}
		sessions = database.NewSessionBackend(db)
	}
	go purgeSessions(ctx, sessions)

	app := newApp(cfg, api, sessions, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.AppPort), zap.String("api", api.BaseURL()))
		errCh <- app.Listen(":" + cfg.AppPort)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber.Listen error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	}
}

func newApp(cfg *config.Config, api *services.Client, sessions session.Backend, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Amar Shop",
		Views:   views.New(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).SendString(err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	routes.Register(app, routes.Deps{
		Config:   cfg,
		API:      api,
		Sessions: sessions,
		Logger:   log,
	})
	return app
}

// sessionPurger drops sessions idle since cutoff.
type sessionPurger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

func purgeSessions(ctx context.Context, backend sessionPurger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			purgeOnce(ctx, backend, now)
		}
	}
}

func purgeOnce(ctx context.Context, backend sessionPurger, now time.Time) {
	n, err := backend.Purge(ctx, now.Add(-cfg.SessionTTL))
	if err != nil {
		logger.Warn("session purge failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info("purged expired sessions", zap.Int64("count", n))
	}
}
