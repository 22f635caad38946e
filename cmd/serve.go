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

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"wagerpool/internal/config"
	"wagerpool/internal/entropy"
	"wagerpool/internal/handlers"
	"wagerpool/internal/models"
	"wagerpool/internal/services"
)

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	Listen string `env:"WAGERPOOL_LISTEN" help:"Override the listen address from the config file"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if c.Listen != "" {
		cfg.Listen = c.Listen
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l, closeLedger, err := openLedger(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeLedger()

	if err := openAccounts(ctx, l, cfg.Accounts); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	clock := quartz.NewReal()
	pool, err := services.OpenPool(ctx, l, entropy.NewHashSource(clock), models.AccountID(cfg.Operator),
		services.WithCustodyAccount(models.AccountID(cfg.CustodyAccount)),
		services.WithClock(clock),
		services.WithMetrics(services.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}

	// Initialize the HTTP Handler
	httpHandler := handlers.NewHTTPHandler(pool, clock)

	// Set up the Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	httpHandler.RegisterPublicRoutes(r, reg)

	// Group routes that require a gateway-asserted caller
	callerRoutes := r.Group("/")
	callerRoutes.Use(handlers.GatewayAuth(cfg.GatewayToken), httpHandler.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	httpHandler.RegisterCallerRoutes(callerRoutes)

	if cfg.GatewayToken == "" {
		logger.Warningf("gateway_token is empty: caller identity headers are trusted from any client")
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Server starting on %s", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.DrawInterval > 0 {
		sched, err := services.StartAutoDraw(gctx, pool, cfg.DrawInterval)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			return sched.Shutdown()
		})
	}

	return g.Wait()
}

// MigrateCmd prepares the storage backend without serving.
type MigrateCmd struct{}

func (c *MigrateCmd) Run(cli *CLI) error {
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}
	if cfg.Storage.Driver == config.DriverMemory {
		return errors.New("migrate needs a sqlite or postgres storage driver")
	}

	ctx := context.Background()
	l, closeLedger, err := openLedger(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer closeLedger()

	if err := openAccounts(ctx, l, cfg.Accounts); err != nil {
		return err
	}
	logger.Infof("migration complete")
	return nil
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
