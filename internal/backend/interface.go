package backend

import (
	"context"
	"slices"

	"agencydesk/internal/amqp"
	"agencydesk/internal/storage"
	"agencydesk/internal/store"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result is everything the application needs from a backend.
type Result struct {
	Store *store.Store

	// Repository is nil for the memory backend.
	Repository *storage.SQLiteRepository
	// Publisher is nil when AMQP is disabled or unreachable at startup.
	Publisher *amqp.Client

	Cleanup CleanupFunc
}

// Ready reports whether the backend's external dependencies respond.
func (r *Result) Ready(ctx context.Context) error {
	if r.Repository != nil {
		if err := r.Repository.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SeedFile overrides the embedded demo data. Used by memory, and by
	// sqlite when the database is empty.
	SeedFile string

	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	return slices.Contains(GetBackendTypes(), bt)
}
