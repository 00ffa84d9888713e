package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/flockbook/internal/metrics"
	"github.com/mamadbah2/flockbook/internal/store"
)

// ErrAlreadyStarted is returned by Run when the loop is already running.
var ErrAlreadyStarted = errors.New("pipeline already started")

// Runner observes the store's intents and runs the registered epics.
//
// A single loop goroutine dequeues actions in dispatch order. Each accepted
// request spawns its own goroutine for the round-trip, so waiting never blocks
// other requests or families. Completions of one family are dispatched in the
// order their requests were accepted.
type Runner struct {
	store   *store.Store
	epics   []Epic
	queue   *actionQueue
	logger  *zap.Logger
	metrics *metrics.Metrics

	// tails holds, per family, the done channel of the most recently spawned
	// task. Touched only by the loop goroutine.
	tails map[string]chan struct{}

	tasks     sync.WaitGroup
	loopDone  chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	unobserve func()
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records effect outcomes and durations.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithEpics registers epics at construction time.
func WithEpics(epics ...Epic) Option {
	return func(r *Runner) {
		r.epics = append(r.epics, epics...)
	}
}

// New creates a runner bound to s. Call Start to begin observing.
func New(s *store.Store, opts ...Option) *Runner {
	r := &Runner{
		store:    s,
		queue:    newActionQueue(),
		logger:   zap.NewNop(),
		tails:    make(map[string]chan struct{}),
		loopDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds an epic. It must be called before Start.
func (r *Runner) Register(epic Epic) {
	r.epics = append(r.epics, epic)
}

// Start subscribes to the store and launches the loop in a goroutine. Actions
// dispatched after Start returns are guaranteed to be observed.
func (r *Runner) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		r.observe()
		go func() {
			if err := r.loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("pipeline loop exited", zap.Error(err))
			}
		}()
	})
}

// Run subscribes to the store and runs the loop on the calling goroutine. It
// returns ErrAlreadyStarted if Start or Run was called before.
func (r *Runner) Run(ctx context.Context) error {
	started := false
	r.startOnce.Do(func() {
		started = true
		r.observe()
	})
	if !started {
		return ErrAlreadyStarted
	}
	return r.loop(ctx)
}

func (r *Runner) observe() {
	r.unobserve = r.store.Observe(func(a store.Action) {
		r.queue.Enqueue(a)
	})
}

// loop returns after Stop once the queue has drained, or when ctx is done.
// On cancellation it stops observing and still routes what was already
// queued, so every accepted request gets its completion.
func (r *Runner) loop(ctx context.Context) error {
	defer close(r.loopDone)
	r.logger.Info("pipeline starting", zap.Int("epics", len(r.epics)))

	for {
		if action, ok := r.queue.TryDequeue(); ok {
			r.route(ctx, action)
			continue
		}

		select {
		case <-ctx.Done():
			r.Stop()
			routed := 0
			for action, ok := r.queue.TryDequeue(); ok; action, ok = r.queue.TryDequeue() {
				r.route(ctx, action)
				routed++
			}
			r.logger.Info("pipeline stopping: context cancelled", zap.Int("routed", routed))
			return ctx.Err()
		case <-r.queue.Wait():
			if r.queue.Drained() {
				r.logger.Info("pipeline stopping: queue closed")
				return nil
			}
		}
	}
}

// Stop stops observing the store. Actions already observed are still routed,
// and in-flight tasks still dispatch their completion.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		if r.unobserve != nil {
			r.unobserve()
		}
		r.queue.Close()
	})
}

// Wait blocks until the loop has exited and every spawned task has dispatched.
func (r *Runner) Wait() {
	<-r.loopDone
	r.tasks.Wait()
}

func (r *Runner) route(ctx context.Context, action store.Action) {
	for _, epic := range r.epics {
		if epic.Accepts == nil || !epic.Accepts(action) {
			continue
		}
		r.spawn(ctx, epic, action)
	}
}

func (r *Runner) spawn(ctx context.Context, epic Epic, action store.Action) {
	prev := r.tails[epic.Family]
	done := make(chan struct{})
	r.tails[epic.Family] = done

	accepted := time.Now()
	r.tasks.Add(1)
	go func() {
		defer r.tasks.Done()
		defer close(done)

		completion, err := r.execute(ctx, epic, action)
		outcome := "success"
		if err != nil {
			outcome = "failure"
			r.logger.Warn("effect failed",
				zap.String("family", epic.Family),
				zap.String("type", action.Type()),
				zap.Error(err))
			if epic.Failure == nil {
				return
			}
			completion = epic.Failure()
		}

		if prev != nil {
			<-prev
		}

		if err := r.store.Dispatch(completion); err != nil {
			r.logger.Error("failed to dispatch completion",
				zap.String("family", epic.Family),
				zap.String("type", completion.Type()),
				zap.Error(err))
			return
		}
		r.metrics.EffectCompleted(epic.Family, outcome, time.Since(accepted))
	}()
}

func (r *Runner) execute(ctx context.Context, epic Epic, action store.Action) (completion store.Action, err error) {
	defer func() {
		if p := recover(); p != nil {
			completion = nil
			err = fmt.Errorf("effect panicked: %v", p)
		}
	}()

	if epic.RoundTrip != nil {
		if err := epic.RoundTrip(ctx, action); err != nil {
			return nil, fmt.Errorf("round trip: %w", err)
		}
	}
	if epic.Complete == nil {
		return nil, fmt.Errorf("epic %s has no completion", epic.Family)
	}
	completion, err = epic.Complete(ctx, action)
	if err == nil && completion == nil {
		err = fmt.Errorf("epic %s produced no completion", epic.Family)
	}
	return completion, err
}
