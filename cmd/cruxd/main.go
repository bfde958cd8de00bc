package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/cruxdb/cruxd/cmd/cruxd/container"
	"github.com/cruxdb/cruxd/cmd/cruxd/middleware"
	"github.com/cruxdb/cruxd/cmd/cruxd/repository"
	"github.com/cruxdb/cruxd/cmd/cruxd/routes"
	"github.com/cruxdb/cruxd/common/bootstrap"
	"github.com/cruxdb/cruxd/common/db"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bootstrap common components (DB, logger, queue, cache, telemetry)
	components, err := bootstrap.Setup(ctx, "cruxd",
		bootstrap.WithDBInitHook(repository.ApplySchema),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap cruxd: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(context.Background())

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// The change-feed listener is the only writer of audit entries.
	// It must be running before mutations are served or out-of-order
	// NOTIFY wakeups pile up unconsumed.
	go func() {
		if err := serviceContainer.FeedService.Run(ctx); err != nil && ctx.Err() == nil {
			components.Logger.Error("change-feed listener exited", "error", err)
		}
	}()
	defer serviceContainer.EventRepo.Close()

	// Periodic sweep of soft-deleted documents past their grace period
	go runSweeper(ctx, serviceContainer)

	e := setupEcho()
	setupMiddleware(e)
	setupHealthCheck(e, serviceContainer)
	registerRoutes(e, serviceContainer)

	startServer(ctx, e, serviceContainer)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestID())
	e.Use(middleware.ExtractUser())
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, c *container.Container) {
	e.GET("/health", func(ec echo.Context) error {
		if err := c.Components.Health(ec.Request().Context()); err != nil {
			return ec.JSON(503, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		return ec.JSON(200, map[string]string{
			"status":  "ok",
			"service": "cruxd",
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, c *container.Container) {
	routes.RegisterAreaRoutes(e, c)
	routes.RegisterClimbRoutes(e, c)
	routes.RegisterChangeLogRoutes(e, c)
	routes.RegisterImportRoutes(e, c)
}

// runSweeper expires soft-deleted documents and prunes consumed feed
// events on a fixed interval
func runSweeper(ctx context.Context, c *container.Container) {
	cfg := c.Components.Config.Feed
	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		grace := int(cfg.SweepAfter.Seconds())
		err := c.Components.DB.WithTransaction(ctx, func(q db.Querier) error {
			return c.AreaService.SweepDeleted(ctx, q, grace)
		})
		if err != nil {
			c.Components.Logger.Error("soft-delete sweep failed", "error", err)
		}

		if err := c.FeedService.PruneConsumed(ctx); err != nil {
			c.Components.Logger.Error("feed event prune failed", "error", err)
		}
	}
}

// startServer starts the Echo server and shuts it down when the root
// context is cancelled
func startServer(ctx context.Context, e *echo.Echo, c *container.Container) {
	port := c.Components.Config.Service.Port
	c.Components.Logger.Info("Starting cruxd", "port", port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			c.Components.Logger.Error("Server shutdown error", "error", err)
		}
	}()

	if err := e.Start(fmt.Sprintf(":%d", port)); err != nil && ctx.Err() == nil {
		c.Components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
