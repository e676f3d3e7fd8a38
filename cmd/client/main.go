// cmd/client/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/opd-ai/go-roadball/pkg/audio"
	"github.com/opd-ai/go-roadball/pkg/config"
	"github.com/opd-ai/go-roadball/pkg/engine"
	"github.com/opd-ai/go-roadball/pkg/health"
	"github.com/opd-ai/go-roadball/pkg/logging"
	"github.com/opd-ai/go-roadball/pkg/network"
	"github.com/opd-ai/go-roadball/pkg/render"
)

type options struct {
	configPath string
	levelsPath string
	renderer   string
	serverURL  string
	healthAddr string
	logPath    string
	width      int
	height     int
	scale      float64
	frames     uint64
	sound      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "config.json", "Path to configuration file (JSON or YAML)")
	flag.StringVar(&opts.levelsPath, "levels", "", "Path to a level file replacing the configured levels")
	flag.StringVar(&opts.renderer, "renderer", "terminal", "Renderer type: 'terminal', 'engo' or 'null'")
	flag.StringVar(&opts.serverURL, "server", "", "Play a game hosted at this WebSocket URL instead of locally")
	flag.StringVar(&opts.healthAddr, "health", "", "Serve /health and /ready on this address (local games only)")
	flag.StringVar(&opts.logPath, "log", "", "Log file (terminal renderer logs nowhere without it)")
	flag.IntVar(&opts.width, "width", 800, "Window width (Engo only)")
	flag.IntVar(&opts.height, "height", 600, "Window height (Engo only)")
	flag.Float64Var(&opts.scale, "scale", 8, "World units per terminal column")
	flag.Uint64Var(&opts.frames, "frames", 400, "Frames to run before exiting (null renderer only)")
	flag.BoolVar(&opts.sound, "sound", false, "Play event tones (local games only)")
	flag.Parse()

	logger, err := newLogger(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error(ctx, "client failed", err)
		stop()
		os.Exit(1)
	}
}

// newLogger keeps the terminal clean: the terminal renderer logs to a file
// or not at all.
func newLogger(opts options) (*logging.Logger, error) {
	if opts.logPath == "" {
		if opts.renderer == "terminal" {
			return logging.NewNopLogger(), nil
		}
		return logging.NewLogger(), nil
	}
	f, err := os.OpenFile(opts.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	encoder := zap.NewProductionEncoderConfig()
	encoder.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoder), zapcore.AddSync(f), zap.DebugLevel)
	return logging.NewLoggerWithCore(core), nil
}

func run(ctx context.Context, opts options, logger *logging.Logger) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	env, err := config.LoadConfigFromEnv()
	if err != nil {
		return err
	}

	var (
		sess session
		game *engine.GameManager
	)
	if opts.serverURL != "" {
		client, err := network.DialStream(ctx, opts.serverURL, env, logger)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		sess = client
	} else {
		gameConfig, err := loadGameConfig(ctx, opts, logger)
		if err != nil {
			return err
		}
		game, err = engine.NewGameFromConfig(gameConfig, logger)
		if err != nil {
			return err
		}
		sess = newLocalSession(game)

		if opts.sound {
			sounds := audio.NewSoundManager(logger)
			if err := sounds.Initialize(); err != nil {
				logger.Warn(ctx, "sound disabled", "error", err.Error())
			} else {
				sounds.Subscribe(game.EventBus)
				defer sounds.Cleanup()
			}
		}
	}

	// Cancelling ctx ends every goroutine of the group, health server
	// included, once the front end is done.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if game != nil && opts.healthAddr != "" {
		serveHealth(gctx, g, opts.healthAddr, game, logger)
	}

	f := frontEnd{ctx: gctx, group: g, stop: cancel, sess: sess, opts: opts, logger: logger}
	switch opts.renderer {
	case "engo":
		return f.runDesktop()
	case "null":
		return f.runHeadless(game)
	case "terminal":
		return f.runTerminal()
	default:
		return fmt.Errorf("unknown renderer %q", opts.renderer)
	}
}

// frontEnd drives one session through a renderer.
type frontEnd struct {
	ctx    context.Context
	group  *errgroup.Group
	stop   context.CancelFunc
	sess   session
	opts   options
	logger *logging.Logger
}

// runSession runs the session in the group and stops everything when it
// ends.
func (f frontEnd) runSession() {
	f.group.Go(func() error {
		defer f.stop()
		return f.sess.Run(f.ctx)
	})
}

// loadGameConfig reads the configuration file when it exists and the level
// file when one is given.
func loadGameConfig(ctx context.Context, opts options, logger *logging.Logger) (*config.GameConfig, error) {
	var gameConfig *config.GameConfig
	if _, err := os.Stat(opts.configPath); errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Configuration file not found, using default configuration",
			"config_path", opts.configPath,
		)
		gameConfig = config.DefaultConfig()
	} else {
		gameConfig, err = config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.levelsPath != "" {
		levels, err := config.LoadLevels(opts.levelsPath)
		if err != nil {
			return nil, err
		}
		gameConfig.Levels = levels
	}
	if err := gameConfig.Validate(); err != nil {
		return nil, err
	}
	return gameConfig, nil
}

// serveHealth exposes liveness and readiness for a local game.
func serveHealth(ctx context.Context, g *errgroup.Group, addr string, game *engine.GameManager, logger *logging.Logger) {
	budget := time.Duration(game.TimeUnitMS() * float64(time.Millisecond))
	checker := health.NewHealthChecker()
	checker.AddCheck(health.NewFrameLoopHealthCheck(
		func() time.Time { return game.Stats().LastUpdate }, 10*budget,
	))
	checker.AddCheck(health.NewFrameBudgetHealthCheck(
		func() time.Duration { return game.Stats().Average }, budget,
	))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	checker.Register(router)

	srv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	g.Go(func() error {
		logger.Info(ctx, "Starting health check server", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}

// runHeadless draws into the null renderer until the frame budget is spent.
func (f frontEnd) runHeadless(game *engine.GameManager) error {
	null := render.NewNullRenderer(f.logger)
	if local, ok := f.sess.(*localSession); ok {
		local.render = null
		local.maxFrames = f.opts.frames
	}

	f.runSession()
	f.group.Go(func() error {
		var seen uint64
		for snap := range f.sess.Snapshots() {
			seen++
			f.logger.Debug(f.ctx, "frame", "frame", snap.Frame, "status", render.StatusLine(snap))
			if seen >= f.opts.frames {
				f.stop()
			}
		}
		return nil
	})
	f.group.Go(func() error {
		for e := range f.sess.Events() {
			f.logger.Info(f.ctx, render.EventText(e), "event", string(e.Type))
		}
		return nil
	})

	err := f.group.Wait()
	if game != nil {
		stats := game.Stats()
		f.logger.Info(context.Background(), "headless run finished",
			"frames", stats.Frames,
			"rendered", null.Frames(),
			"average", stats.Average.String(),
			"max", stats.Max.String(),
			"status", game.Status().String(),
		)
	}
	return err
}
