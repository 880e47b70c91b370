package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/koinbeefs/IntelliTravel/app/observability/metrics"
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

// Ensure OSRMClient implements the Provider interface
var _ Provider = (*OSRMClient)(nil)

// Provider computes routes over an ordered waypoint sequence.
type Provider interface {
	ComputeRoute(ctx context.Context, waypoints []types.Waypoint, mode types.TransitMode) ([]types.RouteAlternative, error)
}

// OSRMClient talks to an OSRM-compatible routing service. One request per
// call, no retry and no client-side cache: the caller decides what a failed
// route computation means.
type OSRMClient struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

// NewOSRMClient creates a routing client against baseURL with the given
// request timeout.
func NewOSRMClient(baseURL string, timeout time.Duration, logger *slog.Logger) *OSRMClient {
	return &OSRMClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// osrmResponse mirrors the subset of the OSRM route response we consume.
// Geometry is kept raw so the GeoJSON reaches storage untouched.
type osrmResponse struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Routes  []types.RouteAlternative `json:"routes"`
}

// profileFor maps a transit mode onto an OSRM routing profile. Bus routes
// degrade to the driving profile.
func profileFor(mode types.TransitMode) string {
	switch mode {
	case types.TransitBike:
		return "cycling"
	case types.TransitWalk:
		return "walking"
	default:
		return "driving"
	}
}

// coordString serializes waypoints the way OSRM wants them: "lng,lat;lng,lat".
func coordString(waypoints []types.Waypoint) string {
	parts := make([]string, 0, len(waypoints))
	for _, wp := range waypoints {
		parts = append(parts,
			strconv.FormatFloat(wp.Lng, 'f', -1, 64)+","+strconv.FormatFloat(wp.Lat, 'f', -1, 64))
	}
	return strings.Join(parts, ";")
}

// ComputeRoute requests a route over the waypoint sequence. Fewer than two
// waypoints is types.ErrInsufficientWaypoints; any provider-side failure
// (transport, non-2xx, non-Ok code, zero routes) is types.ErrRouteUnavailable
// with no partial data.
func (c *OSRMClient) ComputeRoute(ctx context.Context, waypoints []types.Waypoint, mode types.TransitMode) ([]types.RouteAlternative, error) {
	ctx, span := otel.Tracer("RoutingProvider").Start(ctx, "ComputeRoute", trace.WithAttributes(
		attribute.Int("route.waypoints", len(waypoints)),
		attribute.String("route.mode", string(mode)),
	))
	defer span.End()

	if len(waypoints) < 2 {
		span.SetStatus(codes.Error, "Not enough waypoints")
		return nil, types.ErrInsufficientWaypoints
	}

	profile := profileFor(mode)
	endpoint := fmt.Sprintf("%s/route/v1/%s/%s", c.baseURL, profile, coordString(waypoints))

	q := url.Values{}
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	q.Set("steps", "true")
	q.Set("annotations", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to build request")
		return nil, fmt.Errorf("building route request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	m := metrics.Get()
	m.RouteRequestsTotal.Add(ctx, 1)
	start := time.Now()

	resp, err := c.client.Do(req)
	m.RouteDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		m.RouteErrorsTotal.Add(ctx, 1)
		c.logger.WarnContext(ctx, "Route request failed", slog.Any("error", err), slog.String("profile", profile))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Route request failed")
		return nil, fmt.Errorf("%w: %v", types.ErrRouteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		m.RouteErrorsTotal.Add(ctx, 1)
		c.logger.WarnContext(ctx, "Route request rejected",
			slog.Int("status", resp.StatusCode), slog.String("profile", profile))
		span.SetStatus(codes.Error, "Route request rejected")
		return nil, fmt.Errorf("%w: provider returned status %d", types.ErrRouteUnavailable, resp.StatusCode)
	}

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		m.RouteErrorsTotal.Add(ctx, 1)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Malformed route response")
		return nil, fmt.Errorf("%w: decoding response: %v", types.ErrRouteUnavailable, err)
	}

	if body.Code != "Ok" || len(body.Routes) == 0 {
		m.RouteErrorsTotal.Add(ctx, 1)
		c.logger.WarnContext(ctx, "Route computation failed",
			slog.String("code", body.Code), slog.String("message", body.Message))
		span.SetStatus(codes.Error, "Route computation failed")
		return nil, fmt.Errorf("%w: provider code %q", types.ErrRouteUnavailable, body.Code)
	}

	span.SetAttributes(attribute.Int("route.alternatives", len(body.Routes)))
	span.SetStatus(codes.Ok, "Route computed")
	return body.Routes, nil
}
