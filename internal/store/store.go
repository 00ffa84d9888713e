package store

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/flockbook/internal/metrics"
)

// ErrClosed is returned when dispatching into a store after Close.
var ErrClosed = errors.New("store is closed")

// ErrNilAction is returned when Dispatch receives a nil action.
var ErrNilAction = errors.New("nil action")

// State is the full store state. JSON keys match the persisted storage keys.
type State struct {
	Farms   FarmsState   `json:"farms"`
	Reports ReportsState `json:"dailyReport"`
}

// InitialState returns the state of a freshly created store.
func InitialState() State {
	return State{Farms: InitialFarmsState(), Reports: InitialReportsState()}
}

// Reduce applies action to every slice.
func Reduce(state State, action Action) State {
	return State{
		Farms:   ReduceFarms(state.Farms, action),
		Reports: ReduceReports(state.Reports, action),
	}
}

// Cascade derives a follow-up action from an observed one. Follow-ups are
// reduced in the same pass as the action that triggered them.
type Cascade func(Action) (Action, bool)

// ClearFarmsCascade empties the report slice whenever the farm slice is
// cleared, whatever the reports reference.
func ClearFarmsCascade(action Action) (Action, bool) {
	if _, ok := action.(ClearFarms); ok {
		return ClearReports{}, true
	}
	return nil, false
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records reduced intents and collection sizes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithCascade registers a cascade on the dispatch path.
func WithCascade(c Cascade) Option {
	return func(s *Store) {
		if c != nil {
			s.cascades = append(s.cascades, c)
		}
	}
}

type stateListener struct {
	id int
	fn func(State)
}

type actionListener struct {
	id int
	fn func(Action)
}

// Store owns both slices. Every mutation goes through Dispatch, which reduces,
// applies cascades and notifies listeners without interleaving with other
// dispatches.
//
// Listeners run on the dispatching goroutine and must not call Dispatch.
type Store struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	state    State
	closed   bool
	cascades []Cascade

	nextID      int
	subscribers []stateListener
	observers   []actionListener

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// New creates a store seeded with initial.
func New(initial State, opts ...Option) *Store {
	s := &Store{
		state:  normalize(initial),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recordSizes(s.state)
	return s
}

// NewDefault creates a store with the farm-clear cascade registered.
func NewDefault(initial State, opts ...Option) *Store {
	return New(initial, append([]Option{WithCascade(ClearFarmsCascade)}, opts...)...)
}

// State returns the current snapshot. Snapshots are never mutated afterwards.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch reduces action and any cascaded follow-ups, then notifies state
// subscribers followed by action observers, in dispatch order.
func (s *Store) Dispatch(action Action) error {
	if action == nil {
		return ErrNilAction
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	reduced := []Action{action}
	next := Reduce(s.state, action)
	for _, cascade := range s.cascades {
		if follow, ok := cascade(action); ok && follow != nil {
			next = Reduce(next, follow)
			reduced = append(reduced, follow)
		}
	}
	s.state = next

	subscribers := append([]stateListener(nil), s.subscribers...)
	observers := append([]actionListener(nil), s.observers...)

	// Hand over to notifyMu before releasing mu so notifications keep dispatch order.
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, a := range reduced {
		s.logger.Debug("intent reduced", zap.String("type", a.Type()), zap.String("phase", string(a.Phase())))
		s.metrics.IntentDispatched(a.Type())
	}
	s.recordSizes(next)

	for _, sub := range subscribers {
		sub.fn(next)
	}
	for _, a := range reduced {
		for _, obs := range observers {
			obs.fn(a)
		}
	}
	return nil
}

// Subscribe registers fn to receive every new state. The returned function
// removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subscribers = append(s.subscribers, stateListener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Observe registers fn to receive every reduced action, cascaded follow-ups
// included. The returned function removes the observer.
func (s *Store) Observe(fn func(Action)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, actionListener{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, obs := range s.observers {
			if obs.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Close ends the store lifecycle. Later dispatches fail with ErrClosed.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.logger.Info("store closed",
		zap.Int("farms", len(s.state.Farms.Farms)),
		zap.Int("reports", len(s.state.Reports.Reports)))
}

func (s *Store) recordSizes(state State) {
	s.metrics.CollectionSize("farms", len(state.Farms.Farms))
	s.metrics.CollectionSize("dailyReport", len(state.Reports.Reports))
}

func normalize(state State) State {
	if state.Farms.Farms == nil {
		state.Farms.Farms = InitialFarmsState().Farms
	}
	if state.Reports.Reports == nil {
		state.Reports.Reports = InitialReportsState().Reports
	}
	return state
}
