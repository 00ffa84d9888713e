package reporting

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/flockbook/internal/store"
)

const dateLayout = "2006-01-02"

var hundred = decimal.NewFromInt(100)

// StateSource exposes the current store state.
type StateSource interface {
	State() store.State
}

// FarmStats aggregates the reports of a single farm.
type FarmStats struct {
	FarmID        string          `json:"farmId"`
	FarmName      string          `json:"farmName"`
	BirdCount     int             `json:"birdCount"`
	Reports       int             `json:"reports"`
	EggsCollected int             `json:"eggsCollected"`
	FeedUsedKg    decimal.Decimal `json:"feedUsedKg"`
	Mortality     int             `json:"mortality"`
	MortalityRate decimal.Decimal `json:"mortalityRate"`
}

// Dashboard holds statistics across every farm for a period.
type Dashboard struct {
	Start          time.Time       `json:"start,omitzero"`
	End            time.Time       `json:"end,omitzero"`
	Farms          int             `json:"farms"`
	Birds          int             `json:"birds"`
	Reports        int             `json:"reports"`
	EggsCollected  int             `json:"eggsCollected"`
	FeedUsedKg     decimal.Decimal `json:"feedUsedKg"`
	Mortality      int             `json:"mortality"`
	MortalityRate  decimal.Decimal `json:"mortalityRate"`
	FeedPerBirdKg  decimal.Decimal `json:"feedPerBirdKg"`
	PerFarm        []FarmStats     `json:"perFarm"`
	SkippedReports int             `json:"skippedReports"`
}

// Service computes dashboard statistics from the store.
type Service struct {
	source StateSource
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(source StateSource, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{source: source, logger: logger}
}

// Dashboard aggregates every report in the store.
func (s *Service) Dashboard() Dashboard {
	return s.build(time.Time{}, time.Time{})
}

// DashboardBetween aggregates reports dated within [start, end].
func (s *Service) DashboardBetween(start, end time.Time) Dashboard {
	return s.build(start, end)
}

func (s *Service) build(start, end time.Time) Dashboard {
	state := s.source.State()
	d := Dashboard{
		Start:         start,
		End:           end,
		Farms:         len(state.Farms.Farms),
		FeedUsedKg:    decimal.Zero,
		MortalityRate: decimal.Zero,
		FeedPerBirdKg: decimal.Zero,
		PerFarm:       make([]FarmStats, 0, len(state.Farms.Farms)),
	}

	index := make(map[string]int, len(state.Farms.Farms))
	for _, farm := range state.Farms.Farms {
		birds, err := parseInt(farm.BirdCount)
		if err != nil {
			s.logger.Debug("skip bird count with invalid value", zap.String("farm_id", farm.ID), zap.Error(err))
		}
		d.Birds += birds
		index[farm.ID] = len(d.PerFarm)
		d.PerFarm = append(d.PerFarm, FarmStats{
			FarmID:        farm.ID,
			FarmName:      farm.FarmName,
			BirdCount:     birds,
			FeedUsedKg:    decimal.Zero,
			MortalityRate: decimal.Zero,
		})
	}

	for _, report := range state.Reports.Reports {
		if !start.IsZero() && report.Date.Before(start) {
			continue
		}
		if !end.IsZero() && report.Date.After(end) {
			continue
		}

		eggs, errEggs := parseInt(report.EggsCollected)
		feed, errFeed := decimal.NewFromString(strings.TrimSpace(report.FeedUsed))
		deaths, errDeaths := parseInt(report.Mortality)
		if errEggs != nil || errFeed != nil || errDeaths != nil {
			s.logger.Debug("skip report with invalid quantities",
				zap.String("farm_id", report.FarmID),
				zap.Time("date", report.Date))
			d.SkippedReports++
			continue
		}

		d.Reports++
		d.EggsCollected += eggs
		d.FeedUsedKg = d.FeedUsedKg.Add(feed)
		d.Mortality += deaths

		i, ok := index[report.FarmID]
		if !ok {
			index[report.FarmID] = len(d.PerFarm)
			i = len(d.PerFarm)
			d.PerFarm = append(d.PerFarm, FarmStats{
				FarmID:        report.FarmID,
				FeedUsedKg:    decimal.Zero,
				MortalityRate: decimal.Zero,
			})
		}
		fs := &d.PerFarm[i]
		fs.Reports++
		fs.EggsCollected += eggs
		fs.FeedUsedKg = fs.FeedUsedKg.Add(feed)
		fs.Mortality += deaths
	}

	for i := range d.PerFarm {
		d.PerFarm[i].MortalityRate = rate(d.PerFarm[i].Mortality, d.PerFarm[i].BirdCount)
	}
	d.MortalityRate = rate(d.Mortality, d.Birds)
	if d.Birds > 0 {
		d.FeedPerBirdKg = d.FeedUsedKg.Div(decimal.NewFromInt(int64(d.Birds))).Round(3)
	}

	return d
}

// Summary renders the dashboard as a short human-readable message.
func (s *Service) Summary(d Dashboard) string {
	period := "all time"
	if !d.Start.IsZero() || !d.End.IsZero() {
		period = fmt.Sprintf("%s-%s", formatDay(d.Start), formatDay(d.End))
	}

	if d.Reports == 0 {
		return fmt.Sprintf("Flock summary (%s): %d farms, %d birds. No reports yet.", period, d.Farms, d.Birds)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Flock summary (%s): %d farms, %d birds.\n", period, d.Farms, d.Birds)
	fmt.Fprintf(&b, "Eggs: %d across %d reports.\n", d.EggsCollected, d.Reports)
	fmt.Fprintf(&b, "Feed: %s kg consumed", d.FeedUsedKg.StringFixed(2))
	if d.Birds > 0 {
		fmt.Fprintf(&b, ", %s kg per bird", d.FeedPerBirdKg.StringFixed(3))
	}
	b.WriteString(".\n")
	if d.Birds > 0 {
		fmt.Fprintf(&b, "Mortality: %d deaths, rate %s%%.", d.Mortality, d.MortalityRate.StringFixed(2))
	} else {
		fmt.Fprintf(&b, "Mortality: %d deaths. Population unknown.", d.Mortality)
	}
	return b.String()
}

// rate returns deaths as a percentage of birds, rounded to two decimals.
func rate(deaths, birds int) decimal.Decimal {
	if birds <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(deaths)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(birds))).
		Round(2)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "..."
	}
	return t.Format(dateLayout)
}

func parseInt(value string) (int, error) {
	str := strings.TrimSpace(value)
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.Atoi(str)
}
