package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinbeefs/IntelliTravel/internal/types"
)

func routeWithSteps(steps ...types.Step) types.RouteAlternative {
	return types.RouteAlternative{
		Legs: []types.Leg{{Steps: steps}},
	}
}

func TestEstimateSpeedLimits_Heuristic(t *testing.T) {
	route := routeWithSteps(
		types.Step{Name: "Pacific Highway"},
		types.Step{Name: "Sunset Avenue"},
		types.Step{Name: "Mill Road"},
		types.Step{Name: "Old Lane"},
		types.Step{Name: "City Expressway"},
	)

	limits := EstimateSpeedLimits(route)
	require.Len(t, limits, 5)

	assert.Equal(t, types.SpeedEstimate{Name: "Pacific Highway", MaxSpeedKph: 80}, limits[0])
	assert.Equal(t, types.SpeedEstimate{Name: "Sunset Avenue", MaxSpeedKph: 60}, limits[1])
	assert.Equal(t, types.SpeedEstimate{Name: "Mill Road", MaxSpeedKph: 60}, limits[2])
	assert.Equal(t, types.SpeedEstimate{Name: "Old Lane", MaxSpeedKph: 40}, limits[3])
	assert.Equal(t, types.SpeedEstimate{Name: "City Expressway", MaxSpeedKph: 80}, limits[4])
}

func TestEstimateSpeedLimits_CaseInsensitive(t *testing.T) {
	limits := EstimateSpeedLimits(routeWithSteps(
		types.Step{Name: "RIVERSIDE HIGHWAY"},
		types.Step{Name: "elm avenue"},
	))
	require.Len(t, limits, 2)
	assert.Equal(t, 80, limits[0].MaxSpeedKph)
	assert.Equal(t, 60, limits[1].MaxSpeedKph)
}

func TestEstimateSpeedLimits_DedupPreservesFirstOccurrence(t *testing.T) {
	route := routeWithSteps(
		types.Step{Name: "Mill Road"},
		types.Step{Name: "Station Street"},
		types.Step{Name: "Mill Road"},
		types.Step{Name: "Station Street"},
	)

	limits := EstimateSpeedLimits(route)
	require.Len(t, limits, 2)
	assert.Equal(t, "Mill Road", limits[0].Name)
	assert.Equal(t, "Station Street", limits[1].Name)
}

func TestEstimateSpeedLimits_SkipsBlankNames(t *testing.T) {
	route := routeWithSteps(
		types.Step{Name: ""},
		types.Step{Name: "Harbour Road"},
		types.Step{Name: ""},
	)

	limits := EstimateSpeedLimits(route)
	require.Len(t, limits, 1)
	assert.Equal(t, "Harbour Road", limits[0].Name)
}

func TestEstimateSpeedLimits_OnlyFirstLeg(t *testing.T) {
	route := types.RouteAlternative{
		Legs: []types.Leg{
			{Steps: []types.Step{{Name: "First Street"}}},
			{Steps: []types.Step{{Name: "Second Street"}}},
		},
	}

	limits := EstimateSpeedLimits(route)
	require.Len(t, limits, 1)
	assert.Equal(t, "First Street", limits[0].Name)
}

func TestEstimateSpeedLimits_NoLegs(t *testing.T) {
	assert.Nil(t, EstimateSpeedLimits(types.RouteAlternative{}))
}
