package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/daniilsolovey/sitecontent/config"
	"github.com/daniilsolovey/sitecontent/internal/assets"
	"github.com/daniilsolovey/sitecontent/internal/auth"
	"github.com/daniilsolovey/sitecontent/internal/content"
	"github.com/daniilsolovey/sitecontent/internal/db"
	"github.com/daniilsolovey/sitecontent/internal/metrics"
	"github.com/daniilsolovey/sitecontent/internal/rest"
	"github.com/daniilsolovey/sitecontent/internal/rpc"
	"github.com/go-pg/pg/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	newsDocument       = "news"
	interviewsDocument = "interviews"
)

type App struct {
	Backend    db.Backend
	Articles   *content.ArticleManager
	Interviews *content.InterviewManager
	Logger     *slog.Logger
	Echo       *echo.Echo
	Config     config.Config

	closer io.Closer
}

// New wires the service. For the postgres backend it connects, pings and
// migrates the database before anything else is built.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	backend, closer, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	credential, err := auth.New(cfg.Auth.Password, cfg.Auth.PasswordHash)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, fmt.Errorf("auth: %w", err)
	}

	trusted, err := cfg.TrustedProxyNets()
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}

	loc := cfg.Location()
	assetManager := assets.NewManager(cfg.Assets.UploadDir, cfg.Assets.MaxSize, loc, logger)

	articles := content.NewArticleManager(
		db.NewCollection(backend, newsDocument, content.EmptyNewsDocument, logger),
		assetManager, loc, logger,
	)
	interviews := content.NewInterviewManager(
		db.NewCollection(backend, interviewsDocument, content.EmptyInterviews, logger),
		assetManager, loc, logger,
	)

	registry := prometheus.NewRegistry()
	metrics.RegisterCollectors(registry)

	handler := rest.NewHandler(articles, interviews, assetManager, credential, logger)
	e := handler.RegisterRoutes(rest.Options{
		PublicDir: cfg.App.PublicDir,
		BodyLimit: cfg.App.BodyLimit,
		RateLimit: cfg.Auth.RateLimit,
		RateBurst: cfg.Auth.RateBurst,

		TrustedProxies: trusted,
		RPC:            rpc.New(logger, articles, interviews),
		Gatherer:       registry,
	})

	return &App{
		Backend:    backend,
		Articles:   articles,
		Interviews: interviews,
		Logger:     logger,
		Echo:       e,
		Config:     cfg,
		closer:     closer,
	}, nil
}

func newBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (db.Backend, io.Closer, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		opt := cfg.Database.Options
		database := pg.Connect(&opt)
		if cfg.Database.LogQueries {
			database.AddQueryHook(db.NewQueryHook(logger))
		}

		backend := db.NewPostgresBackend(database, logger)
		if err := backend.Ping(ctx); err != nil {
			_ = backend.Close()
			return nil, nil, fmt.Errorf("ping database: %w", err)
		}

		if err := db.RunMigrations(ctx, db.DatabaseURL(&opt)); err != nil {
			_ = backend.Close()
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}

		if cfg.Store.DataDir != "" {
			if err := seedFromFiles(ctx, backend, cfg.Store.DataDir, logger); err != nil {
				_ = backend.Close()
				return nil, nil, err
			}
		}

		logger.Info("using postgres document store", "addr", opt.Addr, "database", opt.Database)
		return backend, backend, nil

	default:
		backend, err := db.NewFileBackend(cfg.Store.DataDir, cfg.Store.IOTimeout)
		if err != nil {
			return nil, nil, err
		}

		logger.Info("using file document store", "dir", cfg.Store.DataDir)
		return backend, nil, nil
	}
}

// seedFromFiles fills an empty postgres store from the JSON files a file
// store left in dir.
func seedFromFiles(ctx context.Context, backend db.Backend, dir string, logger *slog.Logger) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	files, err := db.NewFileBackend(dir, 0)
	if err != nil {
		return err
	}

	n, err := db.Seed(ctx, backend, files, logger, newsDocument, interviewsDocument)
	if err != nil {
		return fmt.Errorf("seed documents from %s: %w", dir, err)
	}
	if n > 0 {
		logger.Info("seeded postgres store from files", "dir", dir, "documents", n)
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	addr := net.JoinHostPort(a.Config.App.Host, strconv.Itoa(a.Config.App.Port))
	a.Logger.Info("service started", "addr", addr)

	err := a.Echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) GracefulShutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}

	if a.closer != nil {
		if cerr := a.closer.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("close database: %w", cerr))
		}
	}

	return err
}
