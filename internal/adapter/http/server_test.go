package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/floodwatch-map-service/internal/adapter/http"
	"github.com/couchcryptid/floodwatch-map-service/internal/domain"
	"github.com/couchcryptid/floodwatch-map-service/internal/geoselect"
	"github.com/couchcryptid/floodwatch-map-service/internal/session"
	"github.com/couchcryptid/floodwatch-map-service/internal/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type fakeService struct {
	mapView    session.MapView
	detail     session.DetailView
	transition geoselect.Transition
	err        error

	events    []geoselect.Event
	refreshed int
	closed    int
	opened    []domain.StationRef
	ranges    []timeseries.Range
	setRanges []timeseries.Range
	selected  []domain.StationRef
}

func (f *fakeService) MapView() session.MapView       { return f.mapView }
func (f *fakeService) DetailView() session.DetailView { return f.detail }

func (f *fakeService) Dispatch(_ context.Context, ev geoselect.Event) (geoselect.Transition, session.MapView, error) {
	f.events = append(f.events, ev)
	return f.transition, f.mapView, f.err
}

func (f *fakeService) RefreshSnapshot(_ context.Context) error {
	f.refreshed++
	return f.err
}

func (f *fakeService) OpenDetail(_ context.Context, ref domain.StationRef, r timeseries.Range) (session.DetailView, error) {
	f.opened = append(f.opened, ref)
	f.ranges = append(f.ranges, r)
	return f.detail, f.err
}

func (f *fakeService) SetRange(_ context.Context, r timeseries.Range) (session.DetailView, error) {
	f.setRanges = append(f.setRanges, r)
	return f.detail, f.err
}

func (f *fakeService) SelectStation(_ context.Context, ref domain.StationRef) (session.DetailView, error) {
	f.selected = append(f.selected, ref)
	return f.detail, f.err
}

func (f *fakeService) CloseDetail(_ context.Context) error {
	f.closed++
	return f.err
}

func newTestServer(svc *fakeService, readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", svc, &mockReadiness{err: readyErr}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func do(t *testing.T, srv *httpadapter.Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(t, newTestServer(&fakeService{}, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	rec := do(t, newTestServer(&fakeService{}, nil), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, newTestServer(&fakeService{}, fmt.Errorf("station snapshot has not loaded yet")), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(&fakeService{}, nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestGetMap(t *testing.T) {
	svc := &fakeService{mapView: session.MapView{State: session.StatePopulated, Stations: 4, Version: 7}}
	rec := do(t, newTestServer(svc, nil), http.MethodGet, "/api/map", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "populated", body["state"])
	assert.InDelta(t, 4, body["station_count"], 0)
}

func TestPostEvent(t *testing.T) {
	tests := []struct {
		name string
		body string
		want geoselect.Event
	}{
		{name: "click", body: `{"type":"click","province_id":13}`, want: geoselect.ProvinceClicked{Province: 13}},
		{name: "hover", body: `{"type":"hover","province_id":30}`, want: geoselect.ProvinceHovered{Province: 30}},
		{name: "hover end", body: `{"type":"hover_end","province_id":30}`, want: geoselect.ProvinceHoverEnded{Province: 30}},
		{name: "zoom", body: `{"type":"zoom","zoom":8}`, want: geoselect.ZoomChanged{Zoom: 8}},
		{name: "map click", body: `{"type":"map_click","lat":14.1,"lon":100.6}`, want: geoselect.MapClicked{At: domain.Geo{Lat: 14.1, Lon: 100.6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := do(t, newTestServer(svc, nil), http.MethodPost, "/api/map/events", tt.body)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			require.Len(t, svc.events, 1)
			assert.Equal(t, tt.want, svc.events[0])
		})
	}
}

func TestPostEvent_Response(t *testing.T) {
	svc := &fakeService{
		transition: geoselect.Transition{
			Reframe:   &geoselect.Viewport{Zoom: 11, Padding: 50},
			Cleared:   geoselect.ClearInvariant,
			Violation: fmt.Errorf("click on province 99: %w", domain.ErrUnknownProvince),
		},
		mapView: session.MapView{State: session.StatePopulated},
	}
	rec := do(t, newTestServer(svc, nil), http.MethodPost, "/api/map/events", `{"type":"click","province_id":99}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Map       session.MapView    `json:"map"`
		Reframe   geoselect.Viewport `json:"reframe"`
		Cleared   string             `json:"cleared"`
		Violation string             `json:"violation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 11, body.Reframe.Zoom)
	assert.Equal(t, "invariant", body.Cleared)
	assert.Contains(t, body.Violation, "province not in boundary set")
	assert.Equal(t, session.StatePopulated, body.Map.State)
}

func TestPostEvent_BadRequests(t *testing.T) {
	for _, body := range []string{
		`not json`,
		`{"type":"teleport"}`,
		`{"type":"zoom"}`,
		`{"type":"map_click","lat":14}`,
	} {
		svc := &fakeService{}
		rec := do(t, newTestServer(svc, nil), http.MethodPost, "/api/map/events", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Empty(t, svc.events, body)
	}
}

func TestPostRefresh(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, newTestServer(svc, nil), http.MethodPost, "/api/map/refresh", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, svc.refreshed)
}

func TestSelectStation(t *testing.T) {
	svc := &fakeService{detail: session.DetailView{Open: true, StationName: "Khlong Rangsit"}}
	rec := do(t, newTestServer(svc, nil), http.MethodPost, "/api/stations/station:12/select", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.selected, 1)
	assert.Equal(t, domain.StationRef{Scheme: domain.SchemeStation, ID: 12}, svc.selected[0])
	assert.Contains(t, rec.Body.String(), "Khlong Rangsit")
}

func TestOpenDetail(t *testing.T) {
	svc := &fakeService{detail: session.DetailView{Open: true, Range: timeseries.RangeWeek}}

	rec := do(t, newTestServer(svc, nil), http.MethodPost, "/api/stations/location:28/detail?range=7days", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, svc.opened, 1)
	assert.Equal(t, domain.StationRef{Scheme: domain.SchemeLocation, ID: 28}, svc.opened[0])
	assert.Equal(t, timeseries.RangeWeek, svc.ranges[0])

	rec = do(t, newTestServer(svc, nil), http.MethodPost, "/api/stations/12/detail", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, timeseries.RangeAll, svc.ranges[1], "range defaults to all")
}

func TestChartIsReadOnly(t *testing.T) {
	ref := domain.StationRef{Scheme: domain.SchemeStation, ID: 12}
	svc := &fakeService{detail: session.DetailView{Open: true, Ref: ref, StationName: "Khlong Rangsit"}}

	rec := do(t, newTestServer(svc, nil), http.MethodGet, "/api/stations/station:12/chart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Khlong Rangsit")

	rec = do(t, newTestServer(svc, nil), http.MethodGet, "/api/stations/station:13/chart", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "another station is open")

	svc.detail = session.DetailView{}
	rec = do(t, newTestServer(svc, nil), http.MethodGet, "/api/stations/station:12/chart", "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "nothing open")

	assert.Empty(t, svc.opened)
	assert.Empty(t, svc.setRanges)
}

func TestSetRange(t *testing.T) {
	svc := &fakeService{detail: session.DetailView{Open: true, Range: timeseries.RangeDay}}

	rec := do(t, newTestServer(svc, nil), http.MethodPut, "/api/stations/detail/range?range=1day", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []timeseries.Range{timeseries.RangeDay}, svc.setRanges)
	assert.Empty(t, svc.opened, "range change never reopens")

	svc = &fakeService{err: session.ErrNoDetail}
	rec = do(t, newTestServer(svc, nil), http.MethodPut, "/api/stations/detail/range?range=7days", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, newTestServer(&fakeService{}, nil), http.MethodPut, "/api/stations/detail/range?range=forever", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStationRoutes_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
	}{
		{name: "bad ref", method: http.MethodGet, target: "/api/stations/nope/chart"},
		{name: "bad scheme", method: http.MethodPost, target: "/api/stations/sensor:1/select"},
		{name: "bad detail ref", method: http.MethodPost, target: "/api/stations/0x/detail"},
		{name: "bad range", method: http.MethodPost, target: "/api/stations/12/detail?range=forever"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := do(t, newTestServer(svc, nil), tt.method, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.opened)
			assert.Empty(t, svc.selected)
		})
	}
}

func TestCloseDetail(t *testing.T) {
	svc := &fakeService{}
	rec := do(t, newTestServer(svc, nil), http.MethodDelete, "/api/stations/detail", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, svc.closed)
}

func TestServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "unknown station", err: fmt.Errorf("select station:9: %w", session.ErrNoStation), want: http.StatusNotFound},
		{name: "stopped", err: session.ErrStopped, want: http.StatusServiceUnavailable},
		{name: "navigation failure", err: errors.New("broker down"), want: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			rec := do(t, newTestServer(svc, nil), http.MethodPost, "/api/stations/9/select", "")
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.err.Error(), body["error"])
		})
	}
}
