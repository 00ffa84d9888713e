package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/mamadbah2/flockbook/internal/domain/models"
	"github.com/mamadbah2/flockbook/internal/store"
)

// isoLayout is the ISO-8601 form written for every date field (UTC, millisecond precision).
const isoLayout = "2006-01-02T15:04:05.000Z"

// acceptedLayouts are tried in order when reviving a stored date.
var acceptedLayouts = []string{isoLayout, time.RFC3339Nano, "2006-01-02"}

type farmRecord struct {
	ID        string `json:"id"`
	FarmName  string `json:"farmName"`
	OwnerName string `json:"ownerName"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
	FlockType string `json:"flockType"`
	BirdCount string `json:"birdCount"`
	StartDate string `json:"startDate"`
}

type farmsSnapshot struct {
	Farms   []farmRecord `json:"farms"`
	Loading bool         `json:"loading"`
	Error   *string      `json:"error"`
}

type reportRecord struct {
	FarmID        string `json:"farmId"`
	Date          string `json:"date"`
	EggsCollected string `json:"eggsCollected"`
	FeedUsed      string `json:"feedUsed"`
	Mortality     string `json:"mortality"`
}

type reportsSnapshot struct {
	Reports []reportRecord `json:"reports"`
	Loading bool           `json:"loading"`
	Error   *string        `json:"error"`
}

// EncodeFarms serializes the farm slice to its stored JSON text.
func EncodeFarms(state store.FarmsState) (string, error) {
	snap := farmsSnapshot{
		Farms:   make([]farmRecord, 0, len(state.Farms)),
		Loading: state.Loading,
		Error:   state.Error,
	}
	for _, f := range state.Farms {
		snap.Farms = append(snap.Farms, farmRecord{
			ID:        f.ID,
			FarmName:  f.FarmName,
			OwnerName: f.OwnerName,
			Latitude:  f.Latitude,
			Longitude: f.Longitude,
			FlockType: string(f.FlockType),
			BirdCount: f.BirdCount,
			StartDate: formatDate(f.StartDate),
		})
	}
	return marshal(snap)
}

// DecodeFarms parses stored farm text and revives startDate values.
func DecodeFarms(raw string) (store.FarmsState, error) {
	var snap farmsSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return store.FarmsState{}, fmt.Errorf("parse farms snapshot: %w", err)
	}

	state := store.FarmsState{
		Farms:   make([]models.Farm, 0, len(snap.Farms)),
		Loading: snap.Loading,
		Error:   snap.Error,
	}
	for i, rec := range snap.Farms {
		startDate, err := parseDate(rec.StartDate)
		if err != nil {
			return store.FarmsState{}, fmt.Errorf("farm %d startDate: %w", i, err)
		}
		state.Farms = append(state.Farms, models.Farm{
			ID:        rec.ID,
			FarmName:  rec.FarmName,
			OwnerName: rec.OwnerName,
			Latitude:  rec.Latitude,
			Longitude: rec.Longitude,
			FlockType: models.FlockType(rec.FlockType),
			BirdCount: rec.BirdCount,
			StartDate: startDate,
		})
	}
	return state, nil
}

// EncodeReports serializes the report slice to its stored JSON text.
func EncodeReports(state store.ReportsState) (string, error) {
	snap := reportsSnapshot{
		Reports: make([]reportRecord, 0, len(state.Reports)),
		Loading: state.Loading,
		Error:   state.Error,
	}
	for _, r := range state.Reports {
		snap.Reports = append(snap.Reports, reportRecord{
			FarmID:        r.FarmID,
			Date:          formatDate(r.Date),
			EggsCollected: r.EggsCollected,
			FeedUsed:      r.FeedUsed,
			Mortality:     r.Mortality,
		})
	}
	return marshal(snap)
}

// DecodeReports parses stored report text and revives date values.
func DecodeReports(raw string) (store.ReportsState, error) {
	var snap reportsSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return store.ReportsState{}, fmt.Errorf("parse reports snapshot: %w", err)
	}

	state := store.ReportsState{
		Reports: make([]models.DailyReport, 0, len(snap.Reports)),
		Loading: snap.Loading,
		Error:   snap.Error,
	}
	for i, rec := range snap.Reports {
		date, err := parseDate(rec.Date)
		if err != nil {
			return store.ReportsState{}, fmt.Errorf("report %d date: %w", i, err)
		}
		state.Reports = append(state.Reports, models.DailyReport{
			FarmID:        rec.FarmID,
			Date:          date,
			EggsCollected: rec.EggsCollected,
			FeedUsed:      rec.FeedUsed,
			Mortality:     rec.Mortality,
		})
	}
	return state, nil
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	var lastErr error
	for _, layout := range acceptedLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
