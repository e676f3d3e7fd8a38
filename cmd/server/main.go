// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-roadball/pkg/config"
	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/health"
	"github.com/opd-ai/go-roadball/pkg/logging"
	"github.com/opd-ai/go-roadball/pkg/network"
	"github.com/opd-ai/go-roadball/pkg/resource"
)

func main() {
	logger := logging.NewLogger()
	defer func() { _ = logger.Sync() }()
	ctx := context.Background()

	configPath := flag.String("config", "config.json", "Path to configuration file (JSON or YAML)")
	levelsPath := flag.String("levels", "", "Path to a level file replacing the configured levels")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	flag.Parse()

	// Create default configuration file if requested
	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err,
				"config_path", *configPath,
			)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file",
			"config_path", *configPath,
		)
		return
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, *levelsPath, logger); err != nil {
		logger.Error(ctx, "Server failed", err)
		stop()
		os.Exit(1)
	}
	logger.Info(context.Background(), "Server stopped")
}

func run(ctx context.Context, configPath, levelsPath string, logger *logging.Logger) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	env, err := config.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	gameConfig, err := loadGameConfig(ctx, configPath, levelsPath, logger)
	if err != nil {
		return err
	}
	gameConfig.ApplyEnvironment(env)
	if err := gameConfig.Validate(); err != nil {
		return err
	}

	// Fail at startup rather than on the first connection.
	if _, err := engine.BuildLevels(gameConfig); err != nil {
		return logging.WrapError(err, "invalid levels")
	}

	resources := resource.NewResourceManager(env, logger)
	if err := resources.Start(); err != nil {
		return err
	}

	streams := network.NewStreamServer(func() (*engine.GameManager, error) {
		return engine.NewGameFromConfig(gameConfig, logger)
	}, resources, env, logger)
	defer streams.Close()

	listener, err := net.Listen("tcp", gameConfig.Network.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", gameConfig.Network.Address(), err)
	}

	budget := time.Duration(gameConfig.Frame.TimeStepMS * float64(time.Millisecond))
	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewFrameBudgetHealthCheck(streams.AverageFrame, budget))
	checker.AddCheck(health.NewNetworkHealthCheck(func() string { return listener.Addr().String() }))
	checker.AddCheck(resource.NewResourceHealthCheck(resources))
	checker.AddCheck(health.NewMemoryHealthCheck(env.MaxMemoryMB, resources.MemoryUsage))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	checker.Register(router)
	streams.Register(router)

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: env.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "Starting server",
			"address", listener.Addr().String(),
			"max_sessions", env.MaxSessions,
			"levels", len(gameConfig.Levels),
		)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), env.ShutdownTimeout)
		defer cancel()

		// Hijacked WebSocket connections are not tracked by Shutdown; the
		// resource manager cancels their sessions.
		sessionsErr := resources.Shutdown(shutdownCtx)
		return errors.Join(srv.Shutdown(shutdownCtx), sessionsErr)
	})
	return g.Wait()
}

// loadGameConfig reads the configuration file when it exists and the level
// file when one is given.
func loadGameConfig(ctx context.Context, configPath, levelsPath string, logger *logging.Logger) (*config.GameConfig, error) {
	var gameConfig *config.GameConfig
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", configPath,
		)
		gameConfig = config.DefaultConfig()
	} else {
		gameConfig, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
	}

	if levelsPath != "" {
		levels, err := config.LoadLevels(levelsPath)
		if err != nil {
			return nil, err
		}
		gameConfig.Levels = levels
	}
	return gameConfig, nil
}
