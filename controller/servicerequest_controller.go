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

type ServiceRequestController struct {
	ctx            context.Context
	requestService *services.ServiceRequestService
	uploadService  *services.UploadService
	logger         logger.Logger
}

func NewServiceRequestController(ctx context.Context, requestService *services.ServiceRequestService, uploadService *services.UploadService, log logger.Logger) *ServiceRequestController {
	return &ServiceRequestController{
		ctx:            ctx,
		requestService: requestService,
		uploadService:  uploadService,
		logger:         log,
	}
}

// Create handles POST /api/v1/service-requests
// @Summary Submit a new service request
// @Description Create a service request with all process steps initialized
// @Tags Service Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateServiceRequest true "Service request details"
// @Success 201 {object} models.APIResponse "Service request created"
// @Failure 400 {object} models.APIResponse "Bad Request - Invalid request data"
// @Router /service-requests [post]
func (h *ServiceRequestController) Create(c *gin.Context) {
	var req models.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	actor := middelware.CurrentUser(c)
	sr, err := h.requestService.Create(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Message: "Service request created successfully",
		Data:    sr,
	})
}

// List handles GET /api/v1/service-requests
// @Summary List service requests
// @Description Clients see their own requests, admins see all non-deleted ones
// @Tags Service Requests
// @Security BearerAuth
// @Produce json
// @Param status query string false "Filter by status"
// @Param priority query string false "Filter by priority"
// @Param isOverdue query bool false "Filter by overdue flag"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page (max 100)"
// @Param sortBy query string false "Sort field (created_at, priority, status)"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} models.APIResponse "Service requests retrieved"
// @Router /service-requests [get]
func (h *ServiceRequestController) List(c *gin.Context) {
	filter := &models.ServiceRequestFilter{
		Status:    models.RequestStatus(c.Query("status")),
		Priority:  models.RequestPriority(c.Query("priority")),
		SortBy:    c.DefaultQuery("sortBy", "created_at"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if raw := c.Query("isOverdue"); raw != "" {
		overdue, err := strconv.ParseBool(raw)
		if err == nil {
			filter.IsOverdue = &overdue
		}
	}

	actor := middelware.CurrentUser(c)
	requests, pagination, err := h.requestService.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: gin.H{
			"requests":   requests,
			"pagination": pagination,
		},
	})
}

// Stats handles GET /api/v1/service-requests/stats
// @Summary Aggregate service request statistics
// @Tags Service Requests
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse "Statistics retrieved"
// @Failure 403 {object} models.APIResponse "Forbidden - Admin only"
// @Router /service-requests/stats [get]
func (h *ServiceRequestController) Stats(c *gin.Context) {
	stats, err := h.requestService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}

// Get handles GET /api/v1/service-requests/:id
// @Summary Get a service request
// @Tags Service Requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service request ID"
// @Success 200 {object} models.APIResponse "Service request retrieved"
// @Failure 403 {object} models.APIResponse "Forbidden - Not the owner"
// @Failure 404 {object} models.APIResponse "Not Found"
// @Router /service-requests/{id} [get]
func (h *ServiceRequestController) Get(c *gin.Context) {
	actor := middelware.CurrentUser(c)
	sr, err := h.requestService.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    sr,
	})
}

// UpdateStatus handles PUT /api/v1/service-requests/:id/status
// @Summary Update the status of a service request
// @Description Append a status history entry with the elapsed duration
// @Tags Service Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service request ID"
// @Param request body models.UpdateStatusRequest true "New status"
// @Success 200 {object} models.APIResponse "Status updated"
// @Failure 400 {object} models.APIResponse "Bad Request - Unknown status"
// @Router /service-requests/{id}/status [put]
func (h *ServiceRequestController) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	actor := middelware.CurrentUser(c)
	sr, err := h.requestService.UpdateStatus(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Status updated successfully",
		Data:    sr,
	})
}

// BulkUpdateStatus handles PUT /api/v1/service-requests/bulk/status
// @Summary Update the status of multiple service requests
// @Description Apply a status to many requests; partial failures are reported per item
// @Tags Service Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.BulkStatusRequest true "IDs and new status"
// @Success 200 {object} models.APIResponse "Bulk update processed"
// @Router /service-requests/bulk/status [put]
func (h *ServiceRequestController) BulkUpdateStatus(c *gin.Context) {
	var req models.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	actor := middelware.CurrentUser(c)
	results := h.requestService.BulkUpdateStatus(c.Request.Context(), actor, &req)

	updated := 0
	for _, r := range results {
		if r.OK {
			updated++
		}
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Bulk status update processed: " + strconv.Itoa(updated) + " of " + strconv.Itoa(len(results)) + " updated",
		Data:    gin.H{"results": results},
	})
}

// AddNote handles POST /api/v1/service-requests/:id/notes
// @Summary Add a note to a service request
// @Tags Service Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service request ID"
// @Param request body models.AddNoteRequest true "Note content"
// @Success 200 {object} models.APIResponse "Note added"
// @Router /service-requests/{id}/notes [post]
func (h *ServiceRequestController) AddNote(c *gin.Context) {
	var req models.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	actor := middelware.CurrentUser(c)
	sr, err := h.requestService.AddNote(c.Request.Context(), actor, c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Note added successfully",
		Data:    sr,
	})
}

// UploadAttachments handles POST /api/v1/service-requests/:id/attachments
// @Summary Upload attachments to a service request
// @Description Multipart upload, up to 5 files of 10MB each
// @Tags Service Requests
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Service request ID"
// @Param files formData file true "Files to attach"
// @Param category formData string false "Attachment category"
// @Success 200 {object} models.APIResponse "Files attached"
// @Failure 400 {object} models.APIResponse "Bad Request - File rejected"
// @Router /service-requests/{id}/attachments [post]
func (h *ServiceRequestController) UploadAttachments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.logger.Error("Failed to parse multipart form:", err)
		c.JSON(http.StatusBadRequest, models.APIResponse{
			Success: false,
			Message: "Invalid multipart form",
			Error:   err.Error(),
		})
		return
	}

	files := form.File["files"]
	if err := h.uploadService.ValidateFiles(files); err != nil {
		respondError(c, err)
		return
	}

	category := models.AttachmentCategory(c.PostForm("category"))
	if !models.ValidCategory(category) {
		category = models.CategoryOther
	}

	actor := middelware.CurrentUser(c)
	attachments := make([]models.Attachment, 0, len(files))
	for _, file := range files {
		att, err := h.uploadService.StoreFile(file, category, actor.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		attachments = append(attachments, *att)
	}

	sr, err := h.requestService.AttachFiles(c.Request.Context(), actor, c.Param("id"), attachments)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Files attached successfully",
		Data:    sr,
	})
}

// Assign handles PUT /api/v1/service-requests/:id/assign
// @Summary Assign a service request to a technician
// @Tags Service Requests
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Service request ID"
// @Param request body models.AssignRequest true "Assignee"
// @Success 200 {object} models.APIResponse "Request assigned"
// @Router /service-requests/{id}/assign [put]
func (h *ServiceRequestController) Assign(c *gin.Context) {
	var req models.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Failed to bind JSON:", err)
		respondBindingError(c, err)
		return
	}

	actor := middelware.CurrentUser(c)
	sr, err := h.requestService.Assign(c.Request.Context(), actor, c.Param("id"), req.AssigneeID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Service request assigned successfully",
		Data:    sr,
	})
}

// Archive handles PUT /api/v1/service-requests/:id/archive
// @Summary Archive a service request
// @Tags Service Requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service request ID"
// @Success 200 {object} models.APIResponse "Request archived"
// @Router /service-requests/{id}/archive [put]
func (h *ServiceRequestController) Archive(c *gin.Context) {
	actor := middelware.CurrentUser(c)
	sr, err := h.requestService.Archive(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Service request archived successfully",
		Data:    sr,
	})
}

// Delete handles DELETE /api/v1/service-requests/:id
// @Summary Soft delete a service request
// @Description The record is flagged deleted and disappears from listings
// @Tags Service Requests
// @Security BearerAuth
// @Produce json
// @Param id path string true "Service request ID"
// @Success 200 {object} models.APIResponse "Request deleted"
// @Router /service-requests/{id} [delete]
func (h *ServiceRequestController) Delete(c *gin.Context) {
	actor := middelware.CurrentUser(c)
	if err := h.requestService.SoftDelete(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Service request deleted successfully",
	})
}
