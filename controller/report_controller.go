package controller

import (
	"context"
	"net/http"
	"time"

	"moldcare-backend/middelware"
	"moldcare-backend/models"
	"moldcare-backend/services"
	"moldcare-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ctx           context.Context
	reportService *services.ReportService
	logger        logger.Logger
}

func NewReportController(ctx context.Context, reportService *services.ReportService, log logger.Logger) *ReportController {
	return &ReportController{
		ctx:           ctx,
		reportService: reportService,
		logger:        log,
	}
}

// Finalize handles POST /api/v1/reports/generate/:id
// @Summary Finalize the report of a completed service request
// @Description Store findings, work performed and recommendations on the request
// @Tags Reports
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service request ID"
// @Param request body models.FinalizeReportRequest true "Report content"
// @Success 200 {object} models.APIResponse "Report finalized"
// @Failure 400 {object} models.APIResponse "Bad Request - Request not completed"
// @Router /reports/generate/{id} [post]
func (h *ReportController) Finalize(c *gin.Context) {
	var req models.FinalizeReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	actor := middelware.CurrentUser(c)
	sr, err := h.reportService.Finalize(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Report finalized successfully",
		Data:    sr,
	})
}

// Preview handles GET /api/v1/reports/preview/:id
// @Summary Preview the report of a service request
// @Description Clients can preview their own requests once a report exists
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service request ID"
// @Success 200 {object} models.APIResponse "Report preview"
// @Failure 403 {object} models.APIResponse "Forbidden - No report or not the owner"
// @Router /reports/preview/{id} [get]
func (h *ReportController) Preview(c *gin.Context) {
	actor := middelware.CurrentUser(c)
	preview, err := h.reportService.Preview(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    preview,
	})
}

// ExportCSV handles GET /api/v1/reports/export/csv
// @Summary Export service requests as CSV
// @Tags Reports
// @Security BearerAuth
// @Produce text/csv
// @Param status query string false "Filter by status"
// @Param from query string false "Created-at lower bound (RFC3339 or 2006-01-02)"
// @Param to query string false "Created-at upper bound (RFC3339 or 2006-01-02)"
// @Success 200 {file} binary "CSV attachment"
// @Router /reports/export/csv [get]
func (h *ReportController) ExportCSV(c *gin.Context) {
	status := models.RequestStatus(c.Query("status"))
	from := parseDateParam(c.Query("from"))
	to := parseDateParam(c.Query("to"))

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="service-requests.csv"`)

	if err := h.reportService.ExportCSV(c.Request.Context(), c.Writer, status, from, to); err != nil {
		h.logger.Errorf("CSV export failed: %v", err)
		c.Status(http.StatusInternalServerError)
	}
}

// ClientReports handles GET /api/v1/reports/client/:clientId
// @Summary List the generated reports of a client
// @Tags Reports
// @Security BearerAuth
// @Produce json
// @Param clientId path string true "Client ID"
// @Success 200 {object} models.APIResponse "Reports retrieved"
// @Failure 403 {object} models.APIResponse "Forbidden - Not your reports"
// @Router /reports/client/{clientId} [get]
func (h *ReportController) ClientReports(c *gin.Context) {
	actor := middelware.CurrentUser(c)
	reports, err := h.reportService.ClientReports(c.Request.Context(), actor, c.Param("clientId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    gin.H{"reports": reports},
	})
}

func parseDateParam(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
