package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/flockbook/internal/config"
	"github.com/mamadbah2/flockbook/internal/persistence"
	"github.com/mamadbah2/flockbook/internal/repository/memory"
	"github.com/mamadbah2/flockbook/internal/repository/mongodb"
	"github.com/mamadbah2/flockbook/internal/repository/sheets"
	"github.com/mamadbah2/flockbook/internal/repository/sqlite"
)

// Backend is a durable key/value store the process root must close on shutdown.
type Backend interface {
	persistence.Storage
	Close(ctx context.Context) error
}

// Open selects the storage backend named by cfg.Storage.Driver.
func Open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		backend Backend
		err     error
	)

	switch cfg.Storage.Driver {
	case config.DriverSQLite, "":
		var s *sqlite.Store
		if s, err = sqlite.Open(ctx, cfg.Storage.SQLitePath); err == nil {
			backend = s
		}
	case config.DriverMongoDB:
		var m *mongodb.MongoDBRepository
		if m, err = mongodb.NewMongoDBRepository(ctx, cfg.MongoDB); err == nil {
			backend = m
		}
	case config.DriverSheets:
		var g *sheets.GoogleSheetRepository
		if g, err = sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named("sheets")); err == nil {
			backend = g
		}
	case config.DriverMemory:
		backend = memory.New()
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.Storage.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
	}
	logger.Info("storage backend ready", zap.String("driver", cfg.Storage.Driver))
	return backend, nil
}
