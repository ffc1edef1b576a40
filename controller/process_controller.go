package controller

import (
	"context"
	"net/http"
	"strconv"

	"moldcare-backend/middelware"
	"moldcare-backend/models"
	"moldcare-backend/services"
	"moldcare-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

type ProcessController struct {
	ctx            context.Context
	requestService *services.ServiceRequestService
	reportService  *services.ReportService
	logger         logger.Logger
}

func NewProcessController(ctx context.Context, requestService *services.ServiceRequestService, reportService *services.ReportService, log logger.Logger) *ProcessController {
	return &ProcessController{
		ctx:            ctx,
		requestService: requestService,
		reportService:  reportService,
		logger:         log,
	}
}

func stepParam(c *gin.Context) (int, bool) {
	step, err := strconv.Atoi(c.Param("n"))
	if err != nil || step < 1 || step > models.ProcessStepCount {
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Message: "Step number must be between 1 and " + strconv.Itoa(models.ProcessStepCount),
		})
		return 0, false
	}
	return step, true
}

// CompleteStep handles PUT /api/v1/process-tracking/:id/steps/:n/complete
// @Summary Mark a process step as completed
// @Description Completing a step also moves the request to the step's mapped status
// @Tags Process Tracking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service request ID"
// @Param n path int true "Step number (1-5)"
// @Success 200 {object} models.APIResponse "Step completed"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid step number"
// @Router /process-tracking/{id}/steps/{n}/complete [put]
func (h *ProcessController) CompleteStep(c *gin.Context) {
	step, ok := stepParam(c)
	if !ok {
		return
	}

	actor := middelware.CurrentUser(c)
	sr, err := h.requestService.CompleteStep(c.Request.Context(), actor, c.Param("id"), step)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Step completed successfully",
		Data:    sr,
	})
}

// UncompleteStep handles PUT /api/v1/process-tracking/:id/steps/:n/uncomplete
// @Summary Revert a completed process step
// @Tags Process Tracking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service request ID"
// @Param n path int true "Step number (1-5)"
// @Success 200 {object} models.APIResponse "Step reverted"
// @Failure 400 {object} models.APIResponse "Bad Request - Step not completed"
// @Router /process-tracking/{id}/steps/{n}/uncomplete [put]
func (h *ProcessController) UncompleteStep(c *gin.Context) {
	step, ok := stepParam(c)
	if !ok {
		return
	}

	actor := middelware.CurrentUser(c)
	sr, err := h.requestService.UncompleteStep(c.Request.Context(), actor, c.Param("id"), step)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Step reverted successfully",
		Data:    sr,
	})
}

// AddStepComment handles POST /api/v1/process-tracking/:id/steps/:n/comments
// @Summary Add a comment to a process step
// @Tags Process Tracking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service request ID"
// @Param n path int true "Step number (1-5)"
// @Param request body models.StepCommentRequest true "Comment content"
// @Success 200 {object} models.APIResponse "Comment added"
// @Router /process-tracking/{id}/steps/{n}/comments [post]
func (h *ProcessController) AddStepComment(c *gin.Context) {
	step, ok := stepParam(c)
	if !ok {
		return
	}

	var req models.StepCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	actor := middelware.CurrentUser(c)
	sr, err := h.requestService.AddStepComment(c.Request.Context(), actor, c.Param("id"), step, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Comment added successfully",
		Data:    sr,
	})
}

// GeneratePDF handles GET /api/v1/process-tracking/:id/generate-pdf
// @Summary Generate the service report PDF
// @Description Stream the rendered report; the request is stamped report_generated
// @Tags Process Tracking
// @Security BearerAuth
// @Produce application/pdf
// @Param id path string true "Service request ID"
// @Success 200 {file} binary "PDF document"
// @Failure 403 {object} models.APIResponse "Forbidden - Not the owner"
// @Failure 404 {object} models.APIResponse "Not Found"
// @Router /process-tracking/{id}/generate-pdf [get]
func (h *ProcessController) GeneratePDF(c *gin.Context) {
	actor := middelware.CurrentUser(c)
	pdfBytes, sr, err := h.reportService.GeneratePDF(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="report-`+sr.RequestID+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
