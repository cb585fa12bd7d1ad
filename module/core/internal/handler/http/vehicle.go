package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/geometry"
)

type locationService interface {
	Ingest(ctx context.Context, report *domain.PositionReport) error
	GetLatest(ctx context.Context, vehicleID string) (*domain.PositionReport, error)
	GetHistory(ctx context.Context, query *domain.HistoryQuery) ([]domain.PositionReport, error)
	GetAllVehicles(ctx context.Context) ([]domain.Vehicle, error)
}

type positionRequest struct {
	VehicleID string   `json:"vehicle_id" binding:"required"`
	DriverID  string   `json:"driver_id" binding:"required"`
	LoadID    string   `json:"load_id"`
	Latitude  *float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" binding:"required,min=-180,max=180"`
	Speed     *float64 `json:"speed" binding:"omitempty,min=0"`
	Heading   *float64 `json:"heading" binding:"omitempty,min=0,max=360"`
	Accuracy  *float64 `json:"accuracy" binding:"omitempty,min=0"`
	Altitude  *float64 `json:"altitude"`
	Timestamp int64    `json:"timestamp" binding:"required,gt=0"`
}

type locationResponse struct {
	VehicleID  string   `json:"vehicle_id"`
	DriverID   string   `json:"driver_id"`
	ShipmentID string   `json:"load_id,omitempty"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Speed      *float64 `json:"speed,omitempty"`
	Heading    *float64 `json:"heading,omitempty"`
	Timestamp  int64    `json:"timestamp"`
}

type VehicleHandler struct {
	locationSvc locationService
}

func NewVehicleHandler(locationSvc locationService) *VehicleHandler {
	return &VehicleHandler{locationSvc: locationSvc}
}

func (h *VehicleHandler) Register(r *gin.RouterGroup) {
	r.POST("/positions", h.IngestPosition)
	r.GET("/vehicles", h.GetAllVehicles)
	r.GET("/vehicles/:vehicle_id/location", h.GetLatestLocation)
	r.GET("/vehicles/:vehicle_id/history", h.GetHistory)
}

func (h *VehicleHandler) IngestPosition(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := &domain.PositionReport{
		VehicleID:  req.VehicleID,
		DriverID:   req.DriverID,
		ShipmentID: req.LoadID,
		Location:   geometry.Point{Lat: *req.Latitude, Lon: *req.Longitude},
		Speed:      req.Speed,
		Heading:    req.Heading,
		Accuracy:   req.Accuracy,
		Altitude:   req.Altitude,
		Timestamp:  time.Unix(req.Timestamp, 0),
	}

	if err := h.locationSvc.Ingest(c.Request.Context(), report); err != nil {
		writeError(c, err, "failed to ingest position")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *VehicleHandler) GetAllVehicles(c *gin.Context) {
	vehicles, err := h.locationSvc.GetAllVehicles(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to fetch vehicles")
		return
	}

	c.JSON(http.StatusOK, vehicles)
}

func (h *VehicleHandler) GetLatestLocation(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")

	p, err := h.locationSvc.GetLatest(c.Request.Context(), vehicleID)
	if err != nil {
		writeError(c, err, "failed to fetch location")
		return
	}

	c.JSON(http.StatusOK, toLocationResponse(p))
}

func (h *VehicleHandler) GetHistory(c *gin.Context) {
	vehicleID := c.Param("vehicle_id")

	start, ok := unixParam(c, "start")
	if !ok {
		return
	}
	end, ok := unixParam(c, "end")
	if !ok {
		return
	}

	query := &domain.HistoryQuery{
		VehicleID: vehicleID,
		Start:     start,
		End:       end,
	}

	positions, err := h.locationSvc.GetHistory(c.Request.Context(), query)
	if err != nil {
		writeError(c, err, "failed to fetch history")
		return
	}

	results := make([]locationResponse, len(positions))
	for i := range positions {
		results[i] = toLocationResponse(&positions[i])
	}
	c.JSON(http.StatusOK, results)
}

func toLocationResponse(p *domain.PositionReport) locationResponse {
	return locationResponse{
		VehicleID:  p.VehicleID,
		DriverID:   p.DriverID,
		ShipmentID: p.ShipmentID,
		Latitude:   p.Location.Lat,
		Longitude:  p.Location.Lon,
		Speed:      p.Speed,
		Heading:    p.Heading,
		Timestamp:  p.Timestamp.Unix(),
	}
}
