package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/fleet-compliance/module/core/domain"
)

type iftaService interface {
	Report(ctx context.Context, query *domain.IFTAQuery) ([]domain.IFTARow, error)
}

type driverService interface {
	Score(ctx context.Context, driverID string, start, end time.Time) (*domain.DriverScore, error)
}

type ReportHandler struct {
	iftaSvc   iftaService
	driverSvc driverService
}

func NewReportHandler(iftaSvc iftaService, driverSvc driverService) *ReportHandler {
	return &ReportHandler{iftaSvc: iftaSvc, driverSvc: driverSvc}
}

func (h *ReportHandler) Register(r *gin.RouterGroup) {
	r.GET("/ifta", h.GetIFTAReport)
	r.GET("/drivers/:driver_id/score", h.GetDriverScore)
}

func (h *ReportHandler) GetIFTAReport(c *gin.Context) {
	start, ok := unixParam(c, "start")
	if !ok {
		return
	}
	end, ok := unixParam(c, "end")
	if !ok {
		return
	}

	rows, err := h.iftaSvc.Report(c.Request.Context(), &domain.IFTAQuery{
		VehicleID: c.Query("vehicle_id"),
		Start:     start,
		End:       end,
	})
	if err != nil {
		writeError(c, err, "failed to build ifta report")
		return
	}

	c.JSON(http.StatusOK, rows)
}

func (h *ReportHandler) GetDriverScore(c *gin.Context) {
	start, ok := unixParam(c, "start")
	if !ok {
		return
	}
	end, ok := unixParam(c, "end")
	if !ok {
		return
	}

	score, err := h.driverSvc.Score(c.Request.Context(), c.Param("driver_id"), start, end)
	if err != nil {
		writeError(c, err, "failed to score driver")
		return
	}

	c.JSON(http.StatusOK, score)
}
