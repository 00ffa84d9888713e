package farms

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/flockbook/internal/domain/models"
	"github.com/mamadbah2/flockbook/internal/persistence"
	"github.com/mamadbah2/flockbook/internal/store"
)

// Service is the presentation-facing entry point. It validates input, only
// dispatches Request and Clear intents, and reads slices back.
type Service struct {
	store  *store.Store
	bridge *persistence.Bridge
	logger *zap.Logger
}

// NewService wires the facade over the store and the persistence bridge.
func NewService(s *store.Store, bridge *persistence.Bridge, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, bridge: bridge, logger: logger}
}

// RegisterFarm validates the form and dispatches a registration request. The
// farm appears in Farms once the pipeline completes it.
func (s *Service) RegisterFarm(_ context.Context, draft models.FarmDraft) error {
	if err := ValidateFarm(draft); err != nil {
		s.logger.Debug("farm form rejected", zap.Error(err))
		return err
	}
	if err := s.store.Dispatch(store.RegisterFarmRequest{Farm: draft}); err != nil {
		return fmt.Errorf("dispatch registration: %w", err)
	}
	s.logger.Info("farm registration requested", zap.String("farm_name", draft.FarmName))
	return nil
}

// SubmitReport validates the form and dispatches a report request.
func (s *Service) SubmitReport(_ context.Context, report models.DailyReport) error {
	if err := ValidateReport(report); err != nil {
		s.logger.Debug("report form rejected", zap.Error(err))
		return err
	}
	if err := s.store.Dispatch(store.SubmitReportRequest{Report: report}); err != nil {
		return fmt.Errorf("dispatch report: %w", err)
	}
	s.logger.Info("daily report requested",
		zap.String("farm_id", report.FarmID),
		zap.Time("date", report.Date))
	return nil
}

// ClearFarmData purges persisted farm data and clears both slices.
func (s *Service) ClearFarmData(ctx context.Context) error {
	if s.bridge == nil {
		return s.dispatch(store.ClearFarms{})
	}
	if err := s.bridge.PurgeFarms(ctx, s.store); err != nil {
		return fmt.Errorf("purge farm data: %w", err)
	}
	return nil
}

// ClearReports empties the report slice.
func (s *Service) ClearReports(context.Context) error {
	return s.dispatch(store.ClearReports{})
}

// Farms returns the current farm slice.
func (s *Service) Farms() store.FarmsState {
	return s.store.State().Farms
}

// Reports returns the current report slice.
func (s *Service) Reports() store.ReportsState {
	return s.store.State().Reports
}

// State returns both slices.
func (s *Service) State() store.State {
	return s.store.State()
}

// FarmByID looks a farm up by its identifier.
func (s *Service) FarmByID(id string) (models.Farm, bool) {
	for _, f := range s.store.State().Farms.Farms {
		if f.ID == id {
			return f, true
		}
	}
	return models.Farm{}, false
}

func (s *Service) dispatch(action store.Action) error {
	if err := s.store.Dispatch(action); err != nil {
		return fmt.Errorf("dispatch %s: %w", action.Type(), err)
	}
	return nil
}
