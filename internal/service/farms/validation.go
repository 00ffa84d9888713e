package farms

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/flockbook/internal/domain/models"
)

// ErrValidation is wrapped by every ValidationError.
var ErrValidation = errors.New("validation failed")

const minNameLength = 2

// ValidationError describes the first invalid field of a form.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ValidateFarm checks a registration form before it is dispatched.
func ValidateFarm(d models.FarmDraft) error {
	if len(strings.TrimSpace(d.FarmName)) < minNameLength {
		return invalid("farmName", "Farm name must be at least 2 characters.")
	}
	if len(strings.TrimSpace(d.OwnerName)) < minNameLength {
		return invalid("ownerName", "Owner name must be at least 2 characters.")
	}
	if !inRange(d.Latitude, -90, 90) {
		return invalid("latitude", "Latitude must be a number between -90 and 90.")
	}
	if !inRange(d.Longitude, -180, 180) {
		return invalid("longitude", "Longitude must be a number between -180 and 180.")
	}
	if !d.FlockType.Valid() {
		return invalid("flockType", "Please select a flock type.")
	}
	if n, err := strconv.Atoi(strings.TrimSpace(d.BirdCount)); err != nil || n <= 0 {
		return invalid("birdCount", "Bird count must be a positive number.")
	}
	if d.StartDate.IsZero() {
		return invalid("startDate", "Start date is required.")
	}
	if !storableYear(d.StartDate) {
		return invalid("startDate", "Start date must be between years 1 and 9999.")
	}
	return nil
}

// ValidateReport checks a daily report form before it is dispatched. The farm
// reference is required but not looked up.
func ValidateReport(r models.DailyReport) error {
	if strings.TrimSpace(r.FarmID) == "" {
		return invalid("farmId", "Please select a farm.")
	}
	if r.Date.IsZero() {
		return invalid("date", "Report date is required.")
	}
	if !storableYear(r.Date) {
		return invalid("date", "Report date must be between years 1 and 9999.")
	}
	if !nonNegativeInt(r.EggsCollected) {
		return invalid("eggsCollected", "Eggs collected must be a non-negative number.")
	}
	if v, err := decimal.NewFromString(strings.TrimSpace(r.FeedUsed)); err != nil || v.IsNegative() {
		return invalid("feedUsed", "Feed used must be a non-negative number.")
	}
	if !nonNegativeInt(r.Mortality) {
		return invalid("mortality", "Mortality must be a non-negative number.")
	}
	return nil
}

// inRange rejects NaN and infinities along with out-of-range values.
func inRange(value string, lo, hi float64) bool {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= lo && v <= hi
}

// storableYear reports whether t round-trips through the snapshot date layout.
func storableYear(t time.Time) bool {
	y := t.UTC().Year()
	return y >= 1 && y <= 9999
}

func nonNegativeInt(value string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	return err == nil && n >= 0
}
