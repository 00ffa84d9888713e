package store

import "github.com/mamadbah2/flockbook/internal/domain/models"

// ReportsState is the daily report slice. Its JSON form is the persisted snapshot.
type ReportsState struct {
	Reports []models.DailyReport `json:"reports"`
	Loading bool                 `json:"loading"`
	Error   *string              `json:"error"`
}

// InitialReportsState returns an empty, idle report slice.
func InitialReportsState() ReportsState {
	return ReportsState{Reports: []models.DailyReport{}}
}

// ReduceReports computes the next report slice. Like ReduceFarms it never
// mutates its input. ClearFarms is not handled here; the cascade translates it.
func ReduceReports(state ReportsState, action Action) ReportsState {
	switch a := action.(type) {
	case SubmitReportRequest:
		state.Loading = true
		state.Error = nil
	case SubmitReportSuccess:
		state.Loading = false
		next := make([]models.DailyReport, len(state.Reports), len(state.Reports)+1)
		copy(next, state.Reports)
		state.Reports = append(next, a.Report)
	case SubmitReportFailure:
		state.Loading = false
		state.Error = stringPtr(a.Message)
	case ClearReports:
		return InitialReportsState()
	}
	return state
}
