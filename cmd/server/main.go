package main // Entry point package

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/iliyamo/camera-overlay/internal/config"
	"github.com/iliyamo/camera-overlay/internal/server"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "overlay-server",
		Usage: "Serve the camera overlay page and its text API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: config.DefaultFile, Usage: "YAML config file (optional)"},
			&cli.StringFlag{Name: "host", Usage: "interface to listen on"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "port to listen on"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "debug mode: verbose logs, template reload, live reload"},
			&cli.StringFlag{Name: "template-dir", Usage: "serve templates from this directory instead of the embedded copy"},
		},
		Action: run,
	}
}

// resolveConfig layers command line flags over the file and environment.
func resolveConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return config.Config{}, err
	}
	if c.IsSet("host") {
		cfg.Host = c.String("host")
	}
	if c.IsSet("port") {
		cfg.Port = c.Int("port")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("template-dir") {
		cfg.TemplateDir = c.String("template-dir")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc = zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}

func run(c *cli.Context) error {
	cfg, err := resolveConfig(c)
	if err != nil {
		return cli.Exit(err, 2)
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := server.Options{
		Config:    cfg,
		Cache:     config.LoadCacheConfig(),
		RateLimit: config.LoadRateLimitConfig(),
		Logger:    logger,
	}
	if rc, ok := config.LoadRedisConfig(); ok {
		rdb, err := config.NewRedisClient(ctx, rc)
		if err != nil {
			logger.Warn("redis unavailable, cache and rate limit disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			opts.Redis = rdb
			logger.Info("redis connected", zap.String("addr", rc.Addr))
		}
	}

	srv, err := server.New(opts)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return cli.Exit(err, 1)
	}
	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return cli.Exit(err, 1)
	}
	return nil
}
