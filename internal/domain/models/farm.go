package models

import "time"

// FlockType enumerates the supported flock categories.
type FlockType string

const (
	FlockLayers   FlockType = "layers"
	FlockBroilers FlockType = "broilers"
	FlockBreeders FlockType = "breeders"
	FlockPullets  FlockType = "pullets"
	FlockOther    FlockType = "other"
)

// FlockTypes lists every accepted flock type in display order.
var FlockTypes = []FlockType{FlockLayers, FlockBroilers, FlockBreeders, FlockPullets, FlockOther}

// Valid reports whether the flock type is part of the fixed enumeration.
func (f FlockType) Valid() bool {
	for _, known := range FlockTypes {
		if f == known {
			return true
		}
	}
	return false
}

// FarmDraft is a farm registration payload before an identifier has been assigned.
type FarmDraft struct {
	FarmName  string    `json:"farmName"`
	OwnerName string    `json:"ownerName"`
	Latitude  string    `json:"latitude"`
	Longitude string    `json:"longitude"`
	FlockType FlockType `json:"flockType"`
	BirdCount string    `json:"birdCount"`
	StartDate time.Time `json:"startDate"`
}

// Farm is a registered farm. ID is assigned once, when the registration is accepted.
type Farm struct {
	ID        string    `json:"id"`
	FarmName  string    `json:"farmName"`
	OwnerName string    `json:"ownerName"`
	Latitude  string    `json:"latitude"`
	Longitude string    `json:"longitude"`
	FlockType FlockType `json:"flockType"`
	BirdCount string    `json:"birdCount"`
	StartDate time.Time `json:"startDate"`
}

// WithID finalizes a draft into a Farm carrying the given identifier.
func (d FarmDraft) WithID(id string) Farm {
	return Farm{
		ID:        id,
		FarmName:  d.FarmName,
		OwnerName: d.OwnerName,
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		FlockType: d.FlockType,
		BirdCount: d.BirdCount,
		StartDate: d.StartDate,
	}
}

// DailyReport captures one day of production for a farm. Numeric fields are kept
// as entered; they are validated before submission.
type DailyReport struct {
	FarmID        string    `json:"farmId"`
	Date          time.Time `json:"date"`
	EggsCollected string    `json:"eggsCollected"`
	FeedUsed      string    `json:"feedUsed"`
	Mortality     string    `json:"mortality"`
}
