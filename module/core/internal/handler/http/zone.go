package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
	"github.com/nandanugg/fleet-compliance/module/core/geometry"
)

type zoneService interface {
	Create(ctx context.Context, z *domain.Zone) error
	List(ctx context.Context) ([]domain.Zone, error)
}

type zoneRequest struct {
	Name         string           `json:"name" binding:"required"`
	Kind         string           `json:"kind" binding:"required,oneof=circle polygon"`
	Center       *geometry.Point  `json:"center" binding:"required_if=Kind circle"`
	RadiusMeters float64          `json:"radius_meters"`
	Vertices     []geometry.Point `json:"vertices" binding:"required_if=Kind polygon"`
	StateCode    string           `json:"state_code" binding:"omitempty,len=2"`
	AlertOnEnter bool             `json:"alert_on_enter"`
	AlertOnExit  bool             `json:"alert_on_exit"`
	Active       *bool            `json:"active"`
}

type zoneResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Kind         string           `json:"kind"`
	Center       *geometry.Point  `json:"center,omitempty"`
	RadiusMeters float64          `json:"radius_meters,omitempty"`
	Vertices     []geometry.Point `json:"vertices,omitempty"`
	StateCode    string           `json:"state_code,omitempty"`
	AlertOnEnter bool             `json:"alert_on_enter"`
	AlertOnExit  bool             `json:"alert_on_exit"`
	Active       bool             `json:"active"`
}

type ZoneHandler struct {
	zoneSvc zoneService
}

func NewZoneHandler(zoneSvc zoneService) *ZoneHandler {
	return &ZoneHandler{zoneSvc: zoneSvc}
}

func (h *ZoneHandler) Register(r *gin.RouterGroup) {
	r.GET("/zones", h.ListZones)
	r.POST("/zones", h.CreateZone)
}

func (h *ZoneHandler) CreateZone(c *gin.Context) {
	var req zoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	z := &domain.Zone{
		Name:         req.Name,
		StateCode:    req.StateCode,
		AlertOnEnter: req.AlertOnEnter,
		AlertOnExit:  req.AlertOnExit,
		Active:       req.Active == nil || *req.Active,
	}
	switch geometry.ShapeKind(req.Kind) {
	case geometry.KindCircle:
		z.Shape = geometry.Circle{Center: *req.Center, RadiusMeters: req.RadiusMeters}
	case geometry.KindPolygon:
		z.Shape = geometry.Polygon{Vertices: req.Vertices}
	}

	if err := h.zoneSvc.Create(c.Request.Context(), z); err != nil {
		writeError(c, err, "failed to create zone")
		return
	}

	c.JSON(http.StatusCreated, toZoneResponse(z))
}

func (h *ZoneHandler) ListZones(c *gin.Context) {
	zones, err := h.zoneSvc.List(c.Request.Context())
	if err != nil {
		writeError(c, err, "failed to fetch zones")
		return
	}

	results := make([]zoneResponse, len(zones))
	for i := range zones {
		results[i] = toZoneResponse(&zones[i])
	}
	c.JSON(http.StatusOK, results)
}

func toZoneResponse(z *domain.Zone) zoneResponse {
	resp := zoneResponse{
		ID:           z.ID,
		Name:         z.Name,
		StateCode:    z.StateCode,
		AlertOnEnter: z.AlertOnEnter,
		AlertOnExit:  z.AlertOnExit,
		Active:       z.Active,
	}
	switch s := z.Shape.(type) {
	case geometry.Circle:
		center := s.Center
		resp.Kind = string(geometry.KindCircle)
		resp.Center = &center
		resp.RadiusMeters = s.RadiusMeters
	case geometry.Polygon:
		resp.Kind = string(geometry.KindPolygon)
		resp.Vertices = s.Vertices
	}
	return resp
}
