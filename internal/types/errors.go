package types

import "errors"

// Sentinel errors for the itinerary and routing engine. Handlers map these to
// distinct HTTP outcomes, so callers can tell "not enough stops yet" apart
// from "the routing provider let us down".
var (
	// ErrNoHistory is returned by the history analyzer when the visit window
	// is empty. Recoverable: callers substitute default preferences.
	ErrNoHistory = errors.New("no visit history in window")

	// ErrInsufficientWaypoints is returned when a route is requested for
	// fewer than two waypoints.
	ErrInsufficientWaypoints = errors.New("at least 2 waypoints required")

	// ErrInsufficientStops is returned when route reconciliation is requested
	// for a trip with fewer than two itinerary entries. No writes happen.
	ErrInsufficientStops = errors.New("need at least 2 locations")

	// ErrRouteUnavailable is returned on provider failure, timeout or a
	// malformed/empty provider response. No partial route state is persisted.
	ErrRouteUnavailable = errors.New("could not calculate route")

	// ErrNotFound is the generic repository miss.
	ErrNotFound = errors.New("resource not found")

	// ErrForbidden is returned when the acting user does not own (or
	// collaborate on) the target resource.
	ErrForbidden = errors.New("not allowed")
)
