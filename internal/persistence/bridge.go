package persistence

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/flockbook/internal/metrics"
	"github.com/mamadbah2/flockbook/internal/store"
)

// Storage keys, one per slice.
const (
	FarmsKey   = "farms"
	ReportsKey = "dailyReport"
)

const defaultWriteTimeout = 5 * time.Second

// Storage is a durable string key/value store.
type Storage interface {
	// GetItem returns the value stored under key; ok is false when the key is absent.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// Bridge mirrors store state to Storage. Failures are logged and counted,
// never returned to the store or the caller.
type Bridge struct {
	storage      Storage
	logger       *zap.Logger
	metrics      *metrics.Metrics
	writeTimeout time.Duration
}

// NewBridge wires a bridge over storage.
func NewBridge(storage Storage, logger *zap.Logger, m *metrics.Metrics) *Bridge {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		storage:      storage,
		logger:       logger,
		metrics:      m,
		writeTimeout: defaultWriteTimeout,
	}
}

// Rehydrate loads every slice from storage. A key that is missing, unreadable
// or unparsable falls back to the slice's initial state.
func (b *Bridge) Rehydrate(ctx context.Context) store.State {
	state := store.InitialState()

	if raw, ok := b.read(ctx, FarmsKey); ok {
		farms, err := DecodeFarms(raw)
		if err != nil {
			b.fail(FarmsKey, "decode", err)
		} else {
			state.Farms = farms
		}
	}

	if raw, ok := b.read(ctx, ReportsKey); ok {
		reports, err := DecodeReports(raw)
		if err != nil {
			b.fail(ReportsKey, "decode", err)
		} else {
			state.Reports = reports
		}
	}

	b.logger.Info("state rehydrated",
		zap.Int("farms", len(state.Farms.Farms)),
		zap.Int("reports", len(state.Reports.Reports)))
	return state
}

// Persist writes every slice of state to its key.
func (b *Bridge) Persist(ctx context.Context, state store.State) {
	b.persistFarms(ctx, state.Farms)
	b.persistReports(ctx, state.Reports)
}

// Attach persists after every store mutation. The returned function detaches.
func (b *Bridge) Attach(s *store.Store) func() {
	return s.Subscribe(func(state store.State) {
		ctx, cancel := context.WithTimeout(context.Background(), b.writeTimeout)
		defer cancel()
		b.Persist(ctx, state)
	})
}

// PurgeFarms removes the farms key, clears the farm slice (cascading to
// reports) and writes an empty farms snapshot right away, independent of the
// attached subscription.
func (b *Bridge) PurgeFarms(ctx context.Context, s *store.Store) error {
	if err := b.storage.RemoveItem(ctx, FarmsKey); err != nil {
		b.fail(FarmsKey, "remove", err)
	}

	if err := s.Dispatch(store.ClearFarms{}); err != nil {
		return err
	}

	b.persistFarms(ctx, store.InitialFarmsState())
	b.logger.Info("farm data purged")
	return nil
}

func (b *Bridge) read(ctx context.Context, key string) (string, bool) {
	raw, ok, err := b.storage.GetItem(ctx, key)
	if err != nil {
		b.fail(key, "read", err)
		return "", false
	}
	if !ok || raw == "" {
		b.logger.Debug("no persisted state", zap.String("key", key))
		return "", false
	}
	return raw, true
}

func (b *Bridge) persistFarms(ctx context.Context, farms store.FarmsState) {
	raw, err := EncodeFarms(farms)
	if err != nil {
		b.fail(FarmsKey, "encode", err)
		return
	}
	b.write(ctx, FarmsKey, raw)
}

func (b *Bridge) persistReports(ctx context.Context, reports store.ReportsState) {
	raw, err := EncodeReports(reports)
	if err != nil {
		b.fail(ReportsKey, "encode", err)
		return
	}
	b.write(ctx, ReportsKey, raw)
}

func (b *Bridge) write(ctx context.Context, key, raw string) {
	if err := b.storage.SetItem(ctx, key, raw); err != nil {
		b.fail(key, "write", err)
	}
}

func (b *Bridge) fail(key, op string, err error) {
	b.metrics.PersistenceFailed(key, op)
	b.logger.Error("persistence failure", zap.String("key", key), zap.String("op", op), zap.Error(err))
}
