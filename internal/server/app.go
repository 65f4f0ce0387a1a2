// Package server assembles the HTTP application: configuration, logger,
// storage backend, session manager and router. It also handles graceful
// shutdown, draining the background writes of every open session.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/famledger/internal/common"
	"github.com/dmitrijs2005/famledger/internal/logging"
	"github.com/dmitrijs2005/famledger/internal/server/config"
	"github.com/dmitrijs2005/famledger/internal/server/handlers"
	"github.com/dmitrijs2005/famledger/internal/session"
	"github.com/dmitrijs2005/famledger/internal/writequeue"
	"github.com/gin-gonic/gin"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	backend  *Backend
	sessions *session.Manager
	server   *http.Server
}

// NewApp opens the backend and builds the router. Logs go to out.
func NewApp(ctx context.Context, c *config.Config, out io.Writer) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, out)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	backend, err := OpenBackend(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	sessions := session.NewManager(backend.Open, backend.Shares, logger)
	backend.OnWriteFailure = evictOnLostWrite(sessions, c.ShutdownTimeout, logger)

	routerOpts := handlers.RouterOptions{
		SecretKey:    []byte(c.SecretKey),
		AllowOrigins: c.CORSAllowOrigins,
	}
	if backend.Writes != nil {
		routerOpts.WriteStats = backend.Writes.Stats
	}

	gin.SetMode(gin.ReleaseMode)
	router := handlers.NewRouter(handlers.New(sessions, logger), routerOpts)

	return &App{
		config:   c,
		logger:   logger,
		backend:  backend,
		sessions: sessions,
		server:   &http.Server{Addr: c.EndpointAddrHTTP, Handler: router},
	}, nil
}

// evictOnLostWrite drops the session whose queue gave up on a write, so the
// next request reloads the owner's books from the store instead of serving
// a cache that no longer matches it. Closing the session waits for the
// queue's workers, hence the goroutine.
func evictOnLostWrite(sessions *session.Manager, timeout time.Duration, logger logging.Logger) func(string, session.Queue, writequeue.Failure) {
	return func(ownerUID string, q session.Queue, f writequeue.Failure) {
		if errors.Is(f.Err, common.ErrorClosed) {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			evicted, err := sessions.EvictQueue(ctx, ownerUID, q)
			if evicted {
				logger.Warn(ctx, "session evicted after a lost write", "owner_uid", ownerUID, "job_id", f.JobID, "key", f.Key, "error", err)
			}
		}()
	}
}

// Handler exposes the router, mainly for tests.
func (app *App) Handler() http.Handler {
	return app.server.Handler
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "HTTP server listening", "addr", app.config.EndpointAddrHTTP, "backend", app.config.Backend)
	if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives, then
// stops accepting requests, drains the sessions and closes the storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	<-ctx.Done()
	err := app.shutdown()
	wg.Wait()
	return err
}

func (app *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()

	app.logger.Info(ctx, "Shutting down...")
	var errs []error
	if err := app.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := app.sessions.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("session drain: %w", err))
	}
	if err := app.backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage close: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		app.logger.Error(ctx, "shutdown finished with errors", "error", err)
	} else {
		app.logger.Info(ctx, "Stopped")
	}
	return err
}
