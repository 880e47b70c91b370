package planner

import (
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// gateThreshold is the minimum category score (exclusive) a gated slot needs
// before it is emitted.
const gateThreshold = 40

// slotRule describes one entry of the daily template: when the stop happens,
// what kind it is, which preference category gates it (none means the slot is
// unconditional), and how duration and score are derived. New slot types are
// added here, not in the scheduling loop.
type slotRule struct {
	timeOfDay string
	stopType  types.StopType
	gate      types.Category // empty: never skipped
	// fixedMinutes of 0 means the slot lasts avg_hours_per_stop.
	fixedMinutes int
	// fixedScore applies to ungated slots; gated slots score their category.
	fixedScore int
}

// daySlots is the fixed time-of-day template applied to every trip day, in
// emission order. Meal slots are never gated by preference.
var daySlots = []slotRule{
	{timeOfDay: "09:00", stopType: types.StopAttraction, gate: types.CategoryCulture},
	{timeOfDay: "11:30", stopType: types.StopCoffee, gate: types.CategoryCoffee, fixedMinutes: 45},
	{timeOfDay: "12:30", stopType: types.StopRestaurant, fixedMinutes: 90, fixedScore: 100},
	{timeOfDay: "15:00", stopType: types.StopShopping, gate: types.CategoryShopping},
	{timeOfDay: "18:30", stopType: types.StopRestaurant, fixedMinutes: 120, fixedScore: 90},
}

// ScheduleItinerary turns a preference profile and a trip length into an
// ordered sequence of time-boxed draft stops. Pure and deterministic: no
// randomness, no external calls. The anchor seeds the later place search and
// never influences slot placement.
//
// Capacity per day is max(1, 24/avg_hours_per_stop); each emitted slot
// consumes one unit, skipped slots consume none, and Order stays contiguous
// per day.
func ScheduleItinerary(prefs types.UserPreference, days int, anchor types.Waypoint) []types.DraftStop {
	_ = anchor

	avgHours := prefs.AvgHoursPerStop
	if avgHours <= 0 {
		avgHours = types.DefaultAvgHoursPerStop
	}
	placesPerDay := 24 / avgHours
	if placesPerDay < 1 {
		placesPerDay = 1
	}

	var stops []types.DraftStop
	for day := 1; day <= days; day++ {
		emitted := 0
		for _, slot := range daySlots {
			if emitted >= placesPerDay {
				break
			}

			score := slot.fixedScore
			if slot.gate != "" {
				score = prefs.Score(slot.gate)
				if score <= gateThreshold {
					continue
				}
			}

			duration := slot.fixedMinutes
			if duration == 0 {
				duration = avgHours * 60
			}

			stops = append(stops, types.DraftStop{
				Day:             day,
				Order:           emitted,
				Time:            slot.timeOfDay,
				Type:            slot.stopType,
				DurationMinutes: duration,
				Score:           score,
			})
			emitted++
		}
	}
	return stops
}
