// Package server assembles the echo instance: renderer, middleware chain and
// routes, plus the listen / graceful shutdown loop.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/camera-overlay/internal/config"
	"github.com/iliyamo/camera-overlay/internal/handler"
	"github.com/iliyamo/camera-overlay/internal/middleware"
	"github.com/iliyamo/camera-overlay/internal/router"
	"github.com/iliyamo/camera-overlay/internal/view"
	"github.com/iliyamo/camera-overlay/internal/web"
)

// Options carries everything New needs.  Redis is optional; without it the
// response cache and rate limiter are inert.
type Options struct {
	Config    config.Config
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client
	Logger    *zap.Logger
}

// Server is the overlay HTTP server.
type Server struct {
	echo     *echo.Echo
	cfg      config.Config
	logger   *zap.Logger
	renderer *view.Renderer
	reloader *view.LiveReloader
	watcher  *view.Watcher

	mu    sync.Mutex
	bound net.Addr
}

// New builds the server.  Templates are parsed here, so a broken template
// fails startup rather than the first request.
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	assets, err := view.NewAssets(staticFS, !cfg.Debug)
	if err != nil {
		return nil, err
	}

	var templates fs.FS
	if cfg.TemplateDir != "" {
		templates = os.DirFS(cfg.TemplateDir)
	} else if templates, err = fs.Sub(web.Templates, "templates"); err != nil {
		return nil, fmt.Errorf("embedded templates: %w", err)
	}
	renderer, err := view.NewRenderer(templates, assets, !cfg.Debug)
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, logger: logger, renderer: renderer}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug
	e.Renderer = renderer
	e.JSONSerializer = jsonSerializer{}

	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.CORS(cfg.AllowOrigins))

	routes := router.Routes{
		Page:   &handler.PageHandler{},
		Static: &handler.StaticHandler{Assets: assets, Debug: cfg.Debug},
		APIMiddleware: []echo.MiddlewareFunc{
			middleware.NewTokenBucket(opts.RateLimit, opts.Redis, logger),
			middleware.NewRedisCache(opts.Cache, opts.Redis, logger),
		},
	}

	if cfg.Debug {
		s.reloader = view.NewLiveReloader()
		routes.LiveReload = s.reloader
		routes.Page.LiveReloadPath = view.LiveReloadPath

		if cfg.TemplateDir != "" {
			s.watcher, err = view.NewWatcher(cfg.TemplateDir, s.reloadTemplates, logger)
			if err != nil {
				return nil, err
			}
		}
	}

	router.RegisterRoutes(e, routes)
	s.echo = e
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Addr returns the bound listener address once Run is serving, nil before.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	if s.watcher != nil {
		s.watcher.Start(ctx)
		defer s.watcher.Stop()
	}

	addr := s.cfg.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	// echo.Start serves on a preset Listener instead of binding again
	s.echo.Listener = ln
	s.mu.Lock()
	s.bound = ln.Addr()
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() { errCh <- s.echo.Start(addr) }()
	s.logger.Info("listening", zap.Stringer("addr", ln.Addr()), zap.String("env", s.cfg.Env), zap.Bool("debug", s.cfg.Debug))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", zap.Duration("timeout", s.cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	err = s.echo.Shutdown(shutdownCtx)
	// hijacked websocket connections are not tracked by http.Server
	if s.reloader != nil {
		s.reloader.Close()
	}
	if startErr := <-errCh; startErr != nil && !errors.Is(startErr, http.ErrServerClosed) && err == nil {
		err = startErr
	}
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) reloadTemplates() {
	if err := s.renderer.Reload(); err != nil {
		s.logger.Error("template reload failed", zap.Error(err))
		return
	}
	s.logger.Info("templates reloaded")
	if s.reloader != nil {
		s.reloader.BroadcastReload()
	}
}
