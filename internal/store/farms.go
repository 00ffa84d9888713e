package store

import "github.com/mamadbah2/flockbook/internal/domain/models"

// FarmsState is the farm slice. Its JSON form is the persisted snapshot.
type FarmsState struct {
	Farms   []models.Farm `json:"farms"`
	Loading bool          `json:"loading"`
	Error   *string       `json:"error"`
}

// InitialFarmsState returns an empty, idle farm slice.
func InitialFarmsState() FarmsState {
	return FarmsState{Farms: []models.Farm{}}
}

// ReduceFarms computes the next farm slice. It is pure: the input is never
// mutated and the result depends only on its arguments.
func ReduceFarms(state FarmsState, action Action) FarmsState {
	switch a := action.(type) {
	case RegisterFarmRequest:
		state.Loading = true
		state.Error = nil
	case RegisterFarmSuccess:
		state.Loading = false
		state.Farms = appendFarm(state.Farms, a.Farm)
	case RegisterFarmFailure:
		state.Loading = false
		state.Error = stringPtr(a.Message)
	case ClearFarms:
		return InitialFarmsState()
	}
	return state
}

func appendFarm(farms []models.Farm, farm models.Farm) []models.Farm {
	next := make([]models.Farm, len(farms), len(farms)+1)
	copy(next, farms)
	return append(next, farm)
}

func stringPtr(s string) *string {
	return &s
}
