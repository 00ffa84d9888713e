package store

import "github.com/mamadbah2/flockbook/internal/domain/models"

// Phase identifies where an intent sits in the request lifecycle.
type Phase string

const (
	PhaseRequest Phase = "request"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
	PhaseClear   Phase = "clear"
)

// Action is a closed set of intents understood by the reducers. The unexported
// marker keeps the set sealed to this package.
type Action interface {
	Type() string
	Phase() Phase
	isAction()
}

// RegisterFarmRequest asks for a farm to be registered. The draft has no ID yet.
type RegisterFarmRequest struct {
	Farm models.FarmDraft
}

// RegisterFarmSuccess carries the accepted farm with its assigned ID.
type RegisterFarmSuccess struct {
	Farm models.Farm
}

// RegisterFarmFailure reports a registration that was not applied.
type RegisterFarmFailure struct {
	Message string
}

// SubmitReportRequest asks for a daily report to be recorded.
type SubmitReportRequest struct {
	Report models.DailyReport
}

// SubmitReportSuccess carries the accepted daily report.
type SubmitReportSuccess struct {
	Report models.DailyReport
}

// SubmitReportFailure reports a submission that was not applied.
type SubmitReportFailure struct {
	Message string
}

// ClearFarms empties the farm collection.
type ClearFarms struct{}

// ClearReports empties the daily report collection.
type ClearReports struct{}

func (RegisterFarmRequest) Type() string { return "farms/registerFarmRequest" }
func (RegisterFarmSuccess) Type() string { return "farms/registerFarmSuccess" }
func (RegisterFarmFailure) Type() string { return "farms/registerFarmFailure" }
func (SubmitReportRequest) Type() string { return "dailyReport/submitDailyReportRequest" }
func (SubmitReportSuccess) Type() string { return "dailyReport/submitDailyReportSuccess" }
func (SubmitReportFailure) Type() string { return "dailyReport/submitDailyReportFailure" }
func (ClearFarms) Type() string          { return "farms/clearFarms" }
func (ClearReports) Type() string        { return "dailyReport/clearReports" }

func (RegisterFarmRequest) Phase() Phase { return PhaseRequest }
func (RegisterFarmSuccess) Phase() Phase { return PhaseSuccess }
func (RegisterFarmFailure) Phase() Phase { return PhaseFailure }
func (SubmitReportRequest) Phase() Phase { return PhaseRequest }
func (SubmitReportSuccess) Phase() Phase { return PhaseSuccess }
func (SubmitReportFailure) Phase() Phase { return PhaseFailure }
func (ClearFarms) Phase() Phase          { return PhaseClear }
func (ClearReports) Phase() Phase        { return PhaseClear }

func (RegisterFarmRequest) isAction() {}
func (RegisterFarmSuccess) isAction() {}
func (RegisterFarmFailure) isAction() {}
func (SubmitReportRequest) isAction() {}
func (SubmitReportSuccess) isAction() {}
func (SubmitReportFailure) isAction() {}
func (ClearFarms) isAction()          {}
func (ClearReports) isAction()        {}
