// Package desktop wraps the HTTP server with a two-state lifecycle and a
// system-tray shell.
package desktop

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/stwalsh4118/lectern/internal/config"
	"github.com/stwalsh4118/lectern/internal/db"
	"github.com/stwalsh4118/lectern/internal/server"
)

const (
	readyTimeout    = 3 * time.Second
	readyInterval   = 50 * time.Millisecond
	shutdownTimeout = 5 * time.Second
)

// Runner lifecycle errors. Re-entrant calls are rejected, never queued.
var (
	ErrAlreadyRunning = errors.New("server is already running")
	ErrNotRunning     = errors.New("server is not running")
)

// LogFunc receives forwarded log lines. Implementations must be safe to call
// from the server goroutine; the tray app hands lines off to a channel rather
// than touching UI state here.
type LogFunc func(line string)

// State is the runner's lifecycle state. There are exactly two: a failed
// start or stop never leaves the runner in a third, ambiguous state.
type State int

// Runner states
const (
	StateStopped State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Runner starts and stops the web server on a background goroutine.
type Runner struct {
	mu    sync.Mutex
	state State
	cfg   *config.Config
	logFn LogFunc

	database *db.DB
	srv      *server.Server
	done     chan struct{}
}

// NewRunner creates a stopped runner. logFn may be nil.
func NewRunner(cfg *config.Config, logFn LogFunc) *Runner {
	return &Runner{cfg: cfg, logFn: logFn}
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Running reports whether the server is up.
func (r *Runner) Running() bool {
	return r.State() == StateRunning
}

// URL returns the browsable base URL while running, or "" when stopped.
func (r *Runner) URL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StateRunning || r.srv == nil {
		return ""
	}
	return r.srv.URL()
}

// Start opens the database, applies migrations, binds the listener, and
// serves on a background goroutine. It fails without changing state when the
// runner is already running, when the bind fails, or when the listener does
// not answer health checks within a short timeout.
func (r *Runner) Start(contentRoot string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRunning {
		r.log("server is already running")
		return ErrAlreadyRunning
	}

	if err := os.MkdirAll(filepath.Dir(r.cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := db.New(r.cfg.Database.Path)
	if err != nil {
		r.log(fmt.Sprintf("failed to open database: %v", err))
		return err
	}

	if err := r.bootstrap(database); err != nil {
		_ = database.Close()
		r.log(fmt.Sprintf("failed to prepare database: %v", err))
		return err
	}

	srv := server.New(r.cfg, database, contentRoot)
	if err := srv.Listen(); err != nil {
		_ = database.Close()
		r.log(fmt.Sprintf("failed to start server: %v", err))
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(); err != nil {
			r.log(fmt.Sprintf("server error: %v", err))
		}
	}()

	if err := waitReady(srv.URL()); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_ = srv.Shutdown(ctx)
		cancel()
		<-done
		_ = database.Close()
		r.log(fmt.Sprintf("server did not become ready: %v", err))
		return err
	}

	r.database = database
	r.srv = srv
	r.done = done
	r.state = StateRunning
	r.log("server running at " + srv.URL())
	return nil
}

// Stop signals graceful shutdown and waits (bounded) for the serve goroutine
// to finish. The state is forced to Stopped regardless of the wait outcome.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRunning {
		r.log("server is not running")
		return ErrNotRunning
	}

	r.log("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := r.srv.Shutdown(ctx); err != nil {
		r.log(fmt.Sprintf("shutdown error: %v", err))
	}

	select {
	case <-r.done:
	case <-time.After(shutdownTimeout):
		r.log("timed out waiting for server to stop")
	}

	if err := r.database.Close(); err != nil {
		r.log(fmt.Sprintf("error closing database: %v", err))
	}

	r.srv = nil
	r.database = nil
	r.done = nil
	r.state = StateStopped
	r.log("server stopped")
	return nil
}

// bootstrap applies migrations and seeds default settings.
func (r *Runner) bootstrap(database *db.DB) error {
	sqlDB, err := database.GetSQLDB()
	if err != nil {
		return err
	}
	if err := db.RunEmbeddedMigrations(sqlDB); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return db.NewRepositories(database).Settings.EnsureDefaults(ctx)
}

func (r *Runner) log(line string) {
	if r.logFn != nil {
		r.logFn(line)
	}
}

// waitReady polls the health endpoint until it answers or the timeout lapses.
func waitReady(baseURL string) error {
	client := &http.Client{Timeout: readyInterval * 4}
	deadline := time.Now().Add(readyTimeout)

	for {
		resp, err := client.Get(baseURL + "/api/health")
		if err == nil {
			_ = resp.Body.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("health check failed: %w", err)
		}
		time.Sleep(readyInterval)
	}
}

// CallbackWriter adapts a LogFunc into an io.Writer so zerolog output can be
// mirrored to the tray UI line by line.
type CallbackWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
	fn  LogFunc
}

// NewCallbackWriter creates a writer forwarding complete lines to fn.
func NewCallbackWriter(fn LogFunc) *CallbackWriter {
	return &CallbackWriter{fn: fn}
}

// Write buffers p and emits one callback per complete line.
func (w *CallbackWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Partial line; put it back and wait for the rest.
			w.buf.WriteString(line)
			break
		}
		if trimmed := bytes.TrimRight([]byte(line), "\r\n"); len(trimmed) > 0 {
			w.fn(string(trimmed))
		}
	}
	return len(p), nil
}
