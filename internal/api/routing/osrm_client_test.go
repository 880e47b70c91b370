package routing

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koinbeefs/IntelliTravel/app/observability/metrics"
	"github.com/koinbeefs/IntelliTravel/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	m.Run()
}

var testWaypoints = []types.Waypoint{
	{Lat: 48.8566, Lng: 2.3522},
	{Lat: 48.8606, Lng: 2.3376},
}

const osrmOkBody = `{
	"code": "Ok",
	"routes": [{
		"geometry": {"type": "LineString", "coordinates": [[2.3522, 48.8566], [2.3376, 48.8606]]},
		"legs": [{
			"distance": 1850.4,
			"duration": 312.7,
			"steps": [
				{"name": "Rue de Rivoli", "distance": 900.1, "duration": 150.5},
				{"name": "Avenue de l'Opera", "distance": 950.3, "duration": 162.2}
			]
		}],
		"distance": 1850.4,
		"duration": 312.7
	}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *OSRMClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOSRMClient(srv.URL, 2*time.Second, slog.Default())
}

func TestComputeRoute_Success(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(osrmOkBody))
	})

	routes, err := client.ComputeRoute(context.Background(), testWaypoints, types.TransitCar)
	require.NoError(t, err)
	require.Len(t, routes, 1)

	assert.Equal(t, "/route/v1/driving/2.3522,48.8566;2.3376,48.8606", gotPath)
	assert.Contains(t, gotQuery, "overview=full")
	assert.Contains(t, gotQuery, "geometries=geojson")
	assert.Contains(t, gotQuery, "steps=true")
	assert.Contains(t, gotQuery, "annotations=true")

	route := routes[0]
	assert.InDelta(t, 1850.4, route.Distance, 0.001)
	assert.InDelta(t, 312.7, route.Duration, 0.001)
	require.Len(t, route.Legs, 1)
	require.Len(t, route.Legs[0].Steps, 2)
	assert.Equal(t, "Rue de Rivoli", route.Legs[0].Steps[0].Name)
	assert.JSONEq(t,
		`{"type": "LineString", "coordinates": [[2.3522, 48.8566], [2.3376, 48.8606]]}`,
		string(route.Geometry), "geometry passes through untouched")
}

func TestComputeRoute_ProfileMapping(t *testing.T) {
	tests := []struct {
		mode    types.TransitMode
		profile string
	}{
		{types.TransitCar, "driving"},
		{types.TransitBike, "cycling"},
		{types.TransitWalk, "walking"},
		{types.TransitBus, "driving"},
	}
	for _, tc := range tests {
		t.Run(string(tc.mode), func(t *testing.T) {
			var gotPath string
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Write([]byte(osrmOkBody))
			})

			_, err := client.ComputeRoute(context.Background(), testWaypoints, tc.mode)
			require.NoError(t, err)
			assert.Contains(t, gotPath, "/route/v1/"+tc.profile+"/")
		})
	}
}

func TestComputeRoute_TooFewWaypoints(t *testing.T) {
	client := NewOSRMClient("http://localhost:1", time.Second, slog.Default())

	_, err := client.ComputeRoute(context.Background(), testWaypoints[:1], types.TransitCar)
	assert.ErrorIs(t, err, types.ErrInsufficientWaypoints)

	_, err = client.ComputeRoute(context.Background(), nil, types.TransitCar)
	assert.ErrorIs(t, err, types.ErrInsufficientWaypoints)
}

func TestComputeRoute_ProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http 500",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "no route found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"code": "NoRoute", "message": "Impossible route between points", "routes": []}`))
			},
		},
		{
			name: "ok code with empty routes",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"code": "Ok", "routes": []}`))
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"code": "Ok", "routes": [`))
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, tc.handler)
			routes, err := client.ComputeRoute(context.Background(), testWaypoints, types.TransitCar)
			assert.ErrorIs(t, err, types.ErrRouteUnavailable)
			assert.Nil(t, routes, "no partial data on failure")
		})
	}
}

func TestComputeRoute_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(osrmOkBody))
	})
	client.client.Timeout = 20 * time.Millisecond

	_, err := client.ComputeRoute(context.Background(), testWaypoints, types.TransitCar)
	assert.ErrorIs(t, err, types.ErrRouteUnavailable)
}
