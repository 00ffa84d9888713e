package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/mamadbah2/flockbook/internal/store"
)

// DefaultLatency is the simulated server round-trip.
const DefaultLatency = 1500 * time.Millisecond

const (
	FamilyRegistration = "registration"
	FamilyDailyReport  = "dailyReport"

	RegisterFailureMessage = "An error occurred while registering the farm."
	ReportFailureMessage   = "An error occurred while submitting the report."
)

// RoundTrip stands in for the server exchange behind a request.
type RoundTrip func(ctx context.Context, action store.Action) error

// SimulatedLatency waits d and succeeds. The context is ignored: an accepted
// request always completes.
func SimulatedLatency(d time.Duration) RoundTrip {
	return func(context.Context, store.Action) error {
		if d <= 0 {
			return nil
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		<-timer.C
		return nil
	}
}

// Epic translates one family's Request intents into Success or Failure.
type Epic struct {
	Family    string
	Accepts   func(store.Action) bool
	RoundTrip RoundTrip
	Complete  func(ctx context.Context, action store.Action) (store.Action, error)
	Failure   func() store.Action
}

// RegisterFarmEpic completes farm registrations, assigning the farm ID once
// the round-trip has finished.
func RegisterFarmEpic(ids IDGenerator, roundTrip RoundTrip) Epic {
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return Epic{
		Family: FamilyRegistration,
		Accepts: func(a store.Action) bool {
			_, ok := a.(store.RegisterFarmRequest)
			return ok
		},
		RoundTrip: roundTrip,
		Complete: func(_ context.Context, a store.Action) (store.Action, error) {
			req, ok := a.(store.RegisterFarmRequest)
			if !ok {
				return nil, fmt.Errorf("unexpected action %s", a.Type())
			}
			id, err := ids.NewID()
			if err != nil {
				return nil, fmt.Errorf("assign farm id: %w", err)
			}
			return store.RegisterFarmSuccess{Farm: req.Farm.WithID(id)}, nil
		},
		Failure: func() store.Action {
			return store.RegisterFarmFailure{Message: RegisterFailureMessage}
		},
	}
}

// SubmitReportEpic completes daily report submissions unchanged.
func SubmitReportEpic(roundTrip RoundTrip) Epic {
	return Epic{
		Family: FamilyDailyReport,
		Accepts: func(a store.Action) bool {
			_, ok := a.(store.SubmitReportRequest)
			return ok
		},
		RoundTrip: roundTrip,
		Complete: func(_ context.Context, a store.Action) (store.Action, error) {
			req, ok := a.(store.SubmitReportRequest)
			if !ok {
				return nil, fmt.Errorf("unexpected action %s", a.Type())
			}
			return store.SubmitReportSuccess{Report: req.Report}, nil
		},
		Failure: func() store.Action {
			return store.SubmitReportFailure{Message: ReportFailureMessage}
		},
	}
}

// DefaultEpics returns both families wired with the same latency.
func DefaultEpics(ids IDGenerator, latency time.Duration) []Epic {
	return []Epic{
		RegisterFarmEpic(ids, SimulatedLatency(latency)),
		SubmitReportEpic(SimulatedLatency(latency)),
	}
}
