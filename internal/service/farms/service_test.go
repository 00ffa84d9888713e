package farms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/flockbook/internal/domain/models"
	"github.com/mamadbah2/flockbook/internal/persistence"
	"github.com/mamadbah2/flockbook/internal/repository/memory"
	"github.com/mamadbah2/flockbook/internal/store"
)

func validDraft() models.FarmDraft {
	return models.FarmDraft{
		FarmName:  "Green Valley",
		OwnerName: "J. Doe",
		Latitude:  "40.0",
		Longitude: "-74.0",
		FlockType: models.FlockLayers,
		BirdCount: "50",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func validReport() models.DailyReport {
	return models.DailyReport{
		FarmID:        "farm-1",
		Date:          time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		EggsCollected: "42",
		FeedUsed:      "6.5",
		Mortality:     "0",
	}
}

func TestValidateFarm(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.FarmDraft)
		field  string
	}{
		{"valid", func(*models.FarmDraft) {}, ""},
		{"short farm name", func(d *models.FarmDraft) { d.FarmName = "G" }, "farmName"},
		{"blank owner", func(d *models.FarmDraft) { d.OwnerName = "  " }, "ownerName"},
		{"latitude out of range", func(d *models.FarmDraft) { d.Latitude = "91" }, "latitude"},
		{"latitude not a number", func(d *models.FarmDraft) { d.Latitude = "north" }, "latitude"},
		{"longitude out of range", func(d *models.FarmDraft) { d.Longitude = "-180.5" }, "longitude"},
		{"unknown flock type", func(d *models.FarmDraft) { d.FlockType = "ducks" }, "flockType"},
		{"zero birds", func(d *models.FarmDraft) { d.BirdCount = "0" }, "birdCount"},
		{"fractional birds", func(d *models.FarmDraft) { d.BirdCount = "1.5" }, "birdCount"},
		{"missing start date", func(d *models.FarmDraft) { d.StartDate = time.Time{} }, "startDate"},
		{"five digit year", func(d *models.FarmDraft) { d.StartDate = time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC) }, "startDate"},
		{"latitude NaN", func(d *models.FarmDraft) { d.Latitude = "NaN" }, "latitude"},
		{"longitude infinite", func(d *models.FarmDraft) { d.Longitude = "-Inf" }, "longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			err := ValidateFarm(d)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestValidateReport(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.DailyReport)
		field  string
	}{
		{"valid", func(*models.DailyReport) {}, ""},
		{"zero values allowed", func(r *models.DailyReport) { r.EggsCollected, r.FeedUsed = "0", "0" }, ""},
		{"missing farm", func(r *models.DailyReport) { r.FarmID = "" }, "farmId"},
		{"missing date", func(r *models.DailyReport) { r.Date = time.Time{} }, "date"},
		{"negative eggs", func(r *models.DailyReport) { r.EggsCollected = "-1" }, "eggsCollected"},
		{"feed not a number", func(r *models.DailyReport) { r.FeedUsed = "lots" }, "feedUsed"},
		{"feed NaN", func(r *models.DailyReport) { r.FeedUsed = "NaN" }, "feedUsed"},
		{"feed Inf", func(r *models.DailyReport) { r.FeedUsed = "Inf" }, "feedUsed"},
		{"feed +Inf", func(r *models.DailyReport) { r.FeedUsed = "+Inf" }, "feedUsed"},
		{"feed infinity", func(r *models.DailyReport) { r.FeedUsed = "infinity" }, "feedUsed"},
		{"negative feed", func(r *models.DailyReport) { r.FeedUsed = "-0.5" }, "feedUsed"},
		{"fractional feed", func(r *models.DailyReport) { r.FeedUsed = "12.375" }, ""},
		{"report in year 10000", func(r *models.DailyReport) { r.Date = time.Date(10000, 1, 2, 0, 0, 0, 0, time.UTC) }, "date"},
		{"negative mortality", func(r *models.DailyReport) { r.Mortality = "-2" }, "mortality"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validReport()
			tt.mutate(&r)
			err := ValidateReport(r)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestService_RegisterFarmDispatchesRequest(t *testing.T) {
	s := store.NewDefault(store.InitialState())
	var seen []store.Action
	s.Observe(func(a store.Action) { seen = append(seen, a) })

	svc := NewService(s, nil, nil)
	require.NoError(t, svc.RegisterFarm(context.Background(), validDraft()))

	require.Len(t, seen, 1)
	assert.IsType(t, store.RegisterFarmRequest{}, seen[0])
	assert.True(t, svc.Farms().Loading)
	assert.Empty(t, svc.Farms().Farms, "the farm appears only after the pipeline completes it")
}

func TestService_InvalidFormIsNotDispatched(t *testing.T) {
	s := store.NewDefault(store.InitialState())
	svc := NewService(s, nil, nil)

	d := validDraft()
	d.BirdCount = "0"
	err := svc.RegisterFarm(context.Background(), d)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, store.InitialState(), svc.State())

	r := validReport()
	r.FarmID = ""
	assert.ErrorIs(t, svc.SubmitReport(context.Background(), r), ErrValidation)
	assert.False(t, svc.Reports().Loading)

	r = validReport()
	r.FeedUsed = "NaN"
	assert.ErrorIs(t, svc.SubmitReport(context.Background(), r), ErrValidation)
	assert.Equal(t, store.InitialState(), svc.State())
}

func TestService_SubmitReportForUnknownFarm(t *testing.T) {
	s := store.NewDefault(store.InitialState())
	svc := NewService(s, nil, nil)

	r := validReport()
	r.FarmID = "no-such-farm"
	require.NoError(t, svc.SubmitReport(context.Background(), r))
	assert.True(t, svc.Reports().Loading)
}

func TestService_ClearFarmDataPurgesStorage(t *testing.T) {
	ctx := context.Background()
	storage := memory.New()
	bridge := persistence.NewBridge(storage, nil, nil)

	s := store.NewDefault(store.InitialState())
	bridge.Attach(s)
	require.NoError(t, s.Dispatch(store.RegisterFarmSuccess{Farm: validDraft().WithID("farm-1")}))
	require.NoError(t, s.Dispatch(store.SubmitReportSuccess{Report: validReport()}))

	svc := NewService(s, bridge, nil)
	f, ok := svc.FarmByID("farm-1")
	require.True(t, ok)
	assert.Equal(t, "Green Valley", f.FarmName)

	require.NoError(t, svc.ClearFarmData(ctx))

	assert.Empty(t, svc.Farms().Farms)
	assert.Empty(t, svc.Reports().Reports)
	_, ok = svc.FarmByID("farm-1")
	assert.False(t, ok)

	raw, found, err := storage.GetItem(ctx, persistence.FarmsKey)
	require.NoError(t, err)
	require.True(t, found)
	farms, err := persistence.DecodeFarms(raw)
	require.NoError(t, err)
	assert.Empty(t, farms.Farms)
}

func TestService_ClearReportsKeepsFarms(t *testing.T) {
	s := store.NewDefault(store.InitialState())
	require.NoError(t, s.Dispatch(store.RegisterFarmSuccess{Farm: validDraft().WithID("farm-1")}))
	require.NoError(t, s.Dispatch(store.SubmitReportSuccess{Report: validReport()}))

	svc := NewService(s, nil, nil)
	require.NoError(t, svc.ClearReports(context.Background()))

	assert.Len(t, svc.Farms().Farms, 1)
	assert.Empty(t, svc.Reports().Reports)
}

func TestService_ClosedStore(t *testing.T) {
	s := store.NewDefault(store.InitialState())
	s.Close()
	svc := NewService(s, nil, nil)

	assert.ErrorIs(t, svc.RegisterFarm(context.Background(), validDraft()), store.ErrClosed)
	assert.ErrorIs(t, svc.ClearReports(context.Background()), store.ErrClosed)
}
