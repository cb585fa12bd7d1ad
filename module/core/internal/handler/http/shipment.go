package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/geometry"
)

type crossingService interface {
	HandleStateCrossing(ctx context.Context, in *domain.CrossingInput) ([]domain.ComplianceCheckItem, error)
	AddFuel(ctx context.Context, shipmentID, state string, gallons float64, toll decimal.Decimal) error
}

type routeService interface {
	AnalyzeRouteCompliance(ctx context.Context, loadID string) (*domain.RouteCompliance, error)
}

type crossingRequest struct {
	DriverID    string   `json:"driver_id"`
	VehicleID   string   `json:"vehicle_id"`
	FromState   string   `json:"from_state" binding:"omitempty,len=2"`
	ToState     string   `json:"to_state" binding:"required,len=2"`
	Latitude    *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Longitude   *float64 `json:"lng" binding:"required,min=-180,max=180"`
	WeightLbs   *float64 `json:"weight" binding:"omitempty,min=0"`
	IsHazmat    *bool    `json:"is_hazmat"`
	IsOversized *bool    `json:"is_oversized"`
	Timestamp   int64    `json:"timestamp" binding:"omitempty,gt=0"`
}

type crossingResponse struct {
	LoadID string                       `json:"load_id"`
	Checks []domain.ComplianceCheckItem `json:"checks"`
}

type fuelRequest struct {
	Gallons float64         `json:"gallons" binding:"min=0"`
	Toll    decimal.Decimal `json:"toll"`
}

type ShipmentHandler struct {
	crossingSvc crossingService
	routeSvc    routeService
}

func NewShipmentHandler(crossingSvc crossingService, routeSvc routeService) *ShipmentHandler {
	return &ShipmentHandler{crossingSvc: crossingSvc, routeSvc: routeSvc}
}

func (h *ShipmentHandler) Register(r *gin.RouterGroup) {
	r.POST("/shipments/:load_id/crossings", h.RecordCrossing)
	r.GET("/shipments/:load_id/compliance", h.GetRouteCompliance)
	r.POST("/shipments/:load_id/mileage/:state/fuel", h.AddFuel)
}

func (h *ShipmentHandler) RecordCrossing(c *gin.Context) {
	var req crossingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := &domain.CrossingInput{
		LoadID:      c.Param("load_id"),
		DriverID:    req.DriverID,
		VehicleID:   req.VehicleID,
		FromState:   req.FromState,
		ToState:     req.ToState,
		Location:    geometry.Point{Lat: *req.Latitude, Lon: *req.Longitude},
		WeightLbs:   req.WeightLbs,
		IsHazmat:    req.IsHazmat,
		IsOversized: req.IsOversized,
	}
	if req.Timestamp > 0 {
		in.Timestamp = time.Unix(req.Timestamp, 0)
	}

	checks, err := h.crossingSvc.HandleStateCrossing(c.Request.Context(), in)
	if err != nil {
		writeError(c, err, "failed to record crossing")
		return
	}

	c.JSON(http.StatusOK, crossingResponse{LoadID: in.LoadID, Checks: checks})
}

func (h *ShipmentHandler) GetRouteCompliance(c *gin.Context) {
	result, err := h.routeSvc.AnalyzeRouteCompliance(c.Request.Context(), c.Param("load_id"))
	if err != nil {
		writeError(c, err, "failed to analyze route")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ShipmentHandler) AddFuel(c *gin.Context) {
	var req fuelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.crossingSvc.AddFuel(c.Request.Context(), c.Param("load_id"), c.Param("state"), req.Gallons, req.Toll)
	if err != nil {
		writeError(c, err, "failed to record fuel")
		return
	}

	c.Status(http.StatusNoContent)
}
