package backend

import (
	"context"
	"errors"
	"fmt"

	"agencydesk/internal/amqp"
	"agencydesk/internal/log"
	"agencydesk/internal/seed"
	"agencydesk/internal/storage"
	"agencydesk/internal/store"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger   *log.Logger
	storeOps []store.Option
}

// NewFactory creates a factory. storeOpts are applied to every Store it builds.
func NewFactory(logger *log.Logger, storeOpts ...store.Option) *DefaultFactory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(log.ComponentBackend), storeOps: storeOpts}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		res *Result
		err error
	)
	switch config.Type {
	case SQLiteBackend:
		res, err = f.createSQLiteBackend(ctx, config)
	case MemoryBackend:
		res, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			f.logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
			res.Publisher = client
		}
	}
	res.Cleanup = closeAll(res)
	return res, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	initial, err := seed.Load(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	f.logger.Info("Initialized memory backend",
		log.FieldOperation, log.OpLoad,
		"clients", len(initial.Clients),
		"projects", len(initial.Projects),
		"invoices", len(initial.Invoices))
	return &Result{Store: store.New(initial, f.storeOps...)}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	empty, err := repo.IsEmpty(ctx)
	if err != nil {
		repo.Close()
		return nil, err
	}
	if empty {
		initial, err := seed.Load(config.SeedFile)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("load seed: %w", err)
		}
		if err := repo.ReplaceAll(ctx, initial); err != nil {
			repo.Close()
			return nil, fmt.Errorf("seed database: %w", err)
		}
		f.logger.Info("Seeded empty database", "db_path", config.SQLiteDBPath)
	}

	state, err := repo.LoadState(ctx)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	f.logger.Info("Initialized SQLite backend",
		log.FieldOperation, log.OpLoad,
		"db_path", config.SQLiteDBPath,
		"clients", len(state.Clients),
		"projects", len(state.Projects),
		"invoices", len(state.Invoices))
	return &Result{Store: store.New(state, f.storeOps...), Repository: repo}, nil
}

func closeAll(res *Result) CleanupFunc {
	return func() error {
		var errs []error
		if res.Publisher != nil {
			if err := res.Publisher.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		if res.Repository != nil {
			if err := res.Repository.Close(); err != nil {
				errs = append(errs, fmt.Errorf("storage: %w", err))
			}
		}
		return errors.Join(errs...)
	}
}
