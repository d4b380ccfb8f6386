// Package server wires the gradekeeper backend together: storage, sessions,
// services and the HTTP and gRPC listeners, and runs them until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/dbx"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gradekeeper/internal/server/config"
	"github.com/dmitrijs2005/gradekeeper/internal/server/httpserver"
	"github.com/dmitrijs2005/gradekeeper/internal/server/passwords"
	"github.com/dmitrijs2005/gradekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gradekeeper/internal/server/services"
	"github.com/dmitrijs2005/gradekeeper/internal/server/sessions"

	gs "github.com/dmitrijs2005/gradekeeper/internal/server/grpc"
)

const sweepInterval = time.Minute

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions *sessions.Manager
	servers  []runner
	closers  []func() error
}

// NewApp opens storage, applies migrations and builds every component
// described by c. The log output goes to w.
func NewApp(ctx context.Context, c *config.Config, w io.Writer) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger, syncLog, err := logging.New(c.LogFormat, w)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	app := &App{config: c, logger: logger}
	app.closers = append(app.closers, syncLog)

	captchaMode, err := services.ParseCaptchaMode(c.CaptchaMode)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	hasher, err := passwords.NewHasher(c.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, dialect, err := dbx.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db
	app.closers = append(app.closers, db.Close)

	rm := repomanager.NewSQLRepositoryManager(dialect)
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	store, err := app.sessionStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.sessions = sessions.NewManager(store, c.SessionTTL)

	as := services.NewAuthService(db, rm, hasher, app.sessions, logger)
	rs := services.NewRecoveryService(db, rm, hasher, app.sessions, captchaMode, logger)
	recs := services.NewRecordService(db, rm, logger)

	signer := auth.NewCookieSigner([]byte(c.SecretKey))
	h := httpserver.NewHandler(as, rs, recs, app.sessions, signer, c.CookieSecure, logger)

	app.servers = append(app.servers, httpserver.NewHTTPServer(c.EndpointAddrHTTP, h, c.CORSOrigins, logger))
	if c.EndpointAddrGRPC != "" {
		app.servers = append(app.servers, gs.NewGRPCServer(c.EndpointAddrGRPC, logger))
	}

	logger.Info(ctx, "App initialized", "dialect", string(dialect), "sessions", c.SessionBackend, "captcha", c.CaptchaMode)

	return app, nil
}

func (app *App) sessionStore(ctx context.Context) (sessions.Store, error) {
	switch app.config.SessionBackend {
	case config.SessionBackendRedis:
		client, err := sessions.NewRedisClient(ctx, app.config.RedisAddr, app.config.RedisPassword, app.config.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		app.closers = append(app.closers, client.Close)
		return sessions.NewRedisStore(client), nil
	default:
		return sessions.NewMemoryStore(), nil
	}
}

// Close releases storage connections and flushes the logger. Later
// resources are closed first.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(context.Background(), "close error", "error", err)
		}
	}
	app.closers = nil
}

// Run serves until ctx is cancelled or a termination signal arrives. A
// listener that fails stops the others.
func (app *App) Run(ctx context.Context) error {

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sessions.RunSweeper(ctx, sweepInterval, app.logger)
	}()

	for _, s := range app.servers {
		wg.Add(1)
		go func(s runner) {
			defer wg.Done()
			if err := s.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				cancelFunc()
			}
		}(s)
	}

	wg.Wait()

	app.logger.Info(context.Background(), "App stopped")
	app.Close()

	return firstErr
}

// Main loads configuration, builds the app and runs it, logging to stdout.
func Main(ctx context.Context) error {
	app, err := NewApp(ctx, config.LoadConfig(), os.Stdout)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
