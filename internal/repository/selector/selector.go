// Package selector chooses the SessionStore once at startup.
package selector

import (
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/repository/memory"
	"alcyxob/workout-tracker/internal/repository/mongo"
	"alcyxob/workout-tracker/internal/repository/postgres"
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrUnrecognizedURL is the fallback reason for a URL no durable store understands.
var ErrUnrecognizedURL = errors.New("database url is not a postgres or mongodb connection string")

// Options configures Select.
type Options struct {
	URL            string
	DatabaseName   string // mongo only
	ConnectTimeout time.Duration
	MaxConns       int32 // postgres only
	AutoMigrate    bool
}

// Selection is the outcome of Select.
type Selection struct {
	Store          repository.SessionStore
	Backend        repository.Backend
	Requested      repository.Backend // what the URL asked for; empty when no URL was set
	Durable        bool
	FallbackReason error
	SelectedAt     time.Time
}

// Status is the JSON view of a Selection.
type Status struct {
	Backend        repository.Backend `json:"backend"`
	Requested      repository.Backend `json:"requested,omitempty"`
	Durable        bool               `json:"durable"`
	FallbackReason string             `json:"fallbackReason,omitempty"`
	SelectedAt     time.Time          `json:"selectedAt"`
}

func (s Selection) Status() Status {
	st := Status{
		Backend:    s.Backend,
		Requested:  s.Requested,
		Durable:    s.Durable,
		SelectedAt: s.SelectedAt,
	}
	if s.FallbackReason != nil {
		st.FallbackReason = s.FallbackReason.Error()
	}
	return st
}

// RequestedBackend maps a connection string to the store it asks for.
func RequestedBackend(url string) (repository.Backend, bool) {
	switch {
	case postgres.IsURL(url):
		return repository.BackendPostgres, true
	case mongo.IsURL(url):
		return repository.BackendMongo, true
	}
	return "", false
}

// Select opens the durable store named by opts.URL and verifies it with a
// trial read. It never fails: every problem degrades to the in-memory store.
func Select(ctx context.Context, opts Options) Selection {
	sel := Selection{SelectedAt: time.Now().UTC()}

	if opts.URL == "" {
		log.Println("INFO: No DATABASE_URL configured, using in-memory storage")
		return withMemory(sel, nil)
	}
	requested, ok := RequestedBackend(opts.URL)
	if !ok {
		log.Println("WARN: DATABASE_URL is not a recognized connection string, using in-memory storage")
		return withMemory(sel, ErrUnrecognizedURL)
	}
	sel.Requested = requested

	var (
		store repository.SessionStore
		err   error
	)
	switch requested {
	case repository.BackendPostgres:
		store, err = openPostgres(ctx, opts)
	case repository.BackendMongo:
		store, err = openMongo(ctx, opts)
	}
	if err == nil {
		err = probe(ctx, store, opts.ConnectTimeout)
		if err != nil {
			_ = store.Close(ctx)
		}
	}
	if err != nil {
		log.Printf("WARN: %s storage unavailable, falling back to in-memory storage: %v", requested, err)
		return withMemory(sel, err)
	}

	log.Printf("INFO: Using %s storage", requested)
	sel.Store = store
	sel.Backend = requested
	sel.Durable = requested.Durable()
	return sel
}

func withMemory(sel Selection, reason error) Selection {
	sel.Store = memory.NewStore()
	sel.Backend = repository.BackendMemory
	sel.Durable = false
	sel.FallbackReason = reason
	return sel
}

func openPostgres(ctx context.Context, opts Options) (repository.SessionStore, error) {
	pool, err := postgres.Connect(ctx, opts.URL, postgres.ConnectOptions{
		MaxConns:       opts.MaxConns,
		ConnectTimeout: opts.ConnectTimeout,
	})
	if err != nil {
		return nil, err
	}
	if opts.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	store, err := postgres.NewStore(pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func openMongo(ctx context.Context, opts Options) (repository.SessionStore, error) {
	client, err := mongo.ConnectDB(ctx, opts.URL, opts.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	db := client.Database(mongo.DatabaseName(opts.URL, opts.DatabaseName))
	if opts.AutoMigrate {
		if err := mongo.EnsureSessionIndexes(ctx, db); err != nil {
			_ = mongo.DisconnectDB(client)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
	}
	return mongo.NewMongoSessionStore(db)
}

// probe performs a trial read. An empty store is a healthy store.
func probe(ctx context.Context, store repository.SessionStore, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = repository.DefaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, err := store.GetCurrentSession(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("trial read: %w", err)
	}
	return nil
}

// Diagnose probes the database named by url independently of the live store.
func Diagnose(ctx context.Context, url, databaseName string, timeout time.Duration) repository.DiagnosticReport {
	switch {
	case mongo.IsURL(url):
		return mongo.Diagnose(ctx, url, databaseName, timeout)
	case url == "":
		return repository.DiagnosticReport{
			Message:     "DATABASE_URL is not configured",
			Details:     "Set DATABASE_URL to a postgres or mongodb connection string and restart",
			Diagnostics: repository.Diagnostics{URLFormat: "incorrect", Hostname: "unknown", Port: "unknown", Database: "unknown"},
		}
	}
	return postgres.Diagnose(ctx, url, timeout)
}
