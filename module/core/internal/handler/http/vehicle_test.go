package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/geometry"
)

type mockLocationService struct {
	ingestFn         func(ctx context.Context, report *domain.PositionReport) error
	getLatestFn      func(ctx context.Context, vehicleID string) (*domain.PositionReport, error)
	getHistoryFn     func(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionReport, error)
	getAllVehiclesFn func(ctx context.Context) ([]domain.Vehicle, error)
}

func (m *mockLocationService) Ingest(ctx context.Context, report *domain.PositionReport) error {
	return m.ingestFn(ctx, report)
}

func (m *mockLocationService) GetLatest(ctx context.Context, vehicleID string) (*domain.PositionReport, error) {
	return m.getLatestFn(ctx, vehicleID)
}

func (m *mockLocationService) GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionReport, error) {
	return m.getHistoryFn(ctx, query)
}

func (m *mockLocationService) GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error) {
	return m.getAllVehiclesFn(ctx)
}

func setupRouter(svc locationService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewVehicleHandler(svc)
	h.Register(r.Group(""))
	return r
}

func TestIngestPosition_Success(t *testing.T) {
	var got *domain.PositionReport
	svc := &mockLocationService{
		ingestFn: func(_ context.Context, report *domain.PositionReport) error {
			got = report
			return nil
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	body := `{"vehicle_id":"TRK-7","driver_id":"DRV-1","load_id":"LOAD-9","latitude":0,"longitude":-122.68,"speed":61.5,"timestamp":1715003456}`
	req, _ := http.NewRequest("POST", "/positions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	if got == nil {
		t.Fatal("expected Ingest to be called")
	}
	if got.ShipmentID != "LOAD-9" || got.Location.Lat != 0 || got.Location.Lon != -122.68 {
		t.Errorf("unexpected report: %+v", got)
	}
	if got.Speed == nil || *got.Speed != 61.5 {
		t.Errorf("expected speed 61.5, got %v", got.Speed)
	}
	if !got.Timestamp.Equal(time.Unix(1715003456, 0)) {
		t.Errorf("unexpected timestamp %v", got.Timestamp)
	}
}

func TestIngestPosition_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing vehicle", `{"driver_id":"DRV-1","latitude":45,"longitude":-122,"timestamp":1715003456}`},
		{"missing latitude", `{"vehicle_id":"TRK-7","driver_id":"DRV-1","longitude":-122,"timestamp":1715003456}`},
		{"latitude out of range", `{"vehicle_id":"TRK-7","driver_id":"DRV-1","latitude":91,"longitude":-122,"timestamp":1715003456}`},
		{"negative speed", `{"vehicle_id":"TRK-7","driver_id":"DRV-1","latitude":45,"longitude":-122,"speed":-1,"timestamp":1715003456}`},
		{"missing timestamp", `{"vehicle_id":"TRK-7","driver_id":"DRV-1","latitude":45,"longitude":-122}`},
		{"not json", `latitude=45`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockLocationService{
				ingestFn: func(_ context.Context, _ *domain.PositionReport) error {
					t.Fatal("Ingest must not be called")
					return nil
				},
			}
			r := setupRouter(svc)
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/positions", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestIngestPosition_DatastoreUnavailable(t *testing.T) {
	svc := &mockLocationService{
		ingestFn: func(_ context.Context, _ *domain.PositionReport) error {
			return domain.ErrDatastoreUnavailable
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	body := `{"vehicle_id":"TRK-7","driver_id":"DRV-1","latitude":45,"longitude":-122,"timestamp":1715003456}`
	req, _ := http.NewRequest("POST", "/positions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestGetLatestLocation_Success(t *testing.T) {
	ts := time.Unix(1715003456, 0)
	svc := &mockLocationService{
		getLatestFn: func(_ context.Context, vehicleID string) (*domain.PositionReport, error) {
			if vehicleID != "TRK-7" {
				t.Fatalf("unexpected vehicleID: %s", vehicleID)
			}
			return &domain.PositionReport{
				VehicleID: "TRK-7",
				DriverID:  "DRV-1",
				Location:  geometry.Point{Lat: 45.52, Lon: -122.68},
				Timestamp: ts,
			}, nil
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/vehicles/TRK-7/location", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp locationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.VehicleID != "TRK-7" {
		t.Errorf("expected TRK-7, got %s", resp.VehicleID)
	}
	if resp.Latitude != 45.52 {
		t.Errorf("expected 45.52, got %f", resp.Latitude)
	}
	if resp.Timestamp != 1715003456 {
		t.Errorf("expected 1715003456, got %d", resp.Timestamp)
	}
}

func TestGetLatestLocation_NotFound(t *testing.T) {
	svc := &mockLocationService{
		getLatestFn: func(_ context.Context, _ string) (*domain.PositionReport, error) {
			return nil, domain.ErrNotFound
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/vehicles/UNKNOWN/location", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetHistory_Success(t *testing.T) {
	ts1 := time.Unix(1715000000, 0)
	ts2 := time.Unix(1715005000, 0)
	svc := &mockLocationService{
		getHistoryFn: func(_ context.Context, query *domain.HistoryQuery) ([]domain.PositionReport, error) {
			if query.VehicleID != "TRK-7" {
				t.Fatalf("unexpected vehicleID: %s", query.VehicleID)
			}
			return []domain.PositionReport{
				{VehicleID: "TRK-7", Location: geometry.Point{Lat: 45.5, Lon: -122.6}, Timestamp: ts1},
				{VehicleID: "TRK-7", Location: geometry.Point{Lat: 45.6, Lon: -122.7}, Timestamp: ts2},
			}, nil
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/vehicles/TRK-7/history?start=1715000000&end=1715009999", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []locationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp))
	}
	if resp[1].Timestamp != 1715005000 {
		t.Errorf("expected 1715005000, got %d", resp[1].Timestamp)
	}
}

func TestGetHistory_InvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"invalid start", "start=abc&end=1715009999"},
		{"invalid end", "start=1715000000&end=abc"},
		{"missing both", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&mockLocationService{})
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/vehicles/TRK-7/history?"+tt.query, nil)
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestGetHistory_ServiceError(t *testing.T) {
	svc := &mockLocationService{
		getHistoryFn: func(_ context.Context, _ *domain.HistoryQuery) ([]domain.PositionReport, error) {
			return nil, errors.New("db error")
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/vehicles/TRK-7/history?start=1715000000&end=1715009999", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "db error") {
		t.Error("internal error details must not leak")
	}
}

func TestGetAllVehicles_Success(t *testing.T) {
	svc := &mockLocationService{
		getAllVehiclesFn: func(_ context.Context) ([]domain.Vehicle, error) {
			return []domain.Vehicle{
				{VehicleID: "TRK-7"},
				{VehicleID: "TRK-8"},
			}, nil
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/vehicles", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp []domain.Vehicle
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(resp))
	}
	if resp[0].VehicleID != "TRK-7" {
		t.Errorf("expected TRK-7, got %s", resp[0].VehicleID)
	}
}

func TestGetAllVehicles_DatastoreUnavailable(t *testing.T) {
	svc := &mockLocationService{
		getAllVehiclesFn: func(_ context.Context) ([]domain.Vehicle, error) {
			return nil, domain.ErrDatastoreUnavailable
		},
	}

	r := setupRouter(svc)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/vehicles", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
