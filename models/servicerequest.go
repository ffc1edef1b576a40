package models

import "time"

// RequestStatus is the legacy single-value lifecycle status
type RequestStatus string

const (
	RequestStatusReceived   RequestStatus = "received"
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
)

// RequestPriority represents how urgent a service request is
type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityMedium RequestPriority = "medium"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

// AttachmentCategory classifies an uploaded file
type AttachmentCategory string

const (
	CategoryInvoice  AttachmentCategory = "invoice"
	CategoryPhoto    AttachmentCategory = "photo"
	CategoryDocument AttachmentCategory = "document"
	CategoryReport   AttachmentCategory = "report"
	CategoryOther    AttachmentCategory = "other"
)

// ProcessStepCount is the fixed number of tracked work phases
const ProcessStepCount = 5

// ProcessStepNames are the display labels of the 5 work phases, indexed by step-1
var ProcessStepNames = [ProcessStepCount]string{
	"Request Received",
	"Initial Inspection",
	"Diagnosis & Quotation",
	"Repair & Maintenance",
	"Final Testing & Delivery",
}

// StepStatusMapping maps a completed step (1-based) to the legacy status it implies
var StepStatusMapping = map[int]RequestStatus{
	1: RequestStatusReceived,
	2: RequestStatusInProgress,
	3: RequestStatusInProgress,
	4: RequestStatusInProgress,
	5: RequestStatusCompleted,
}

// StepComment is one entry of a process step's comment thread
type StepComment struct {
	Content    string    `json:"content" dynamodbav:"content"`
	AuthorID   string    `json:"author_id" dynamodbav:"author_id"`
	AuthorName string    `json:"author_name" dynamodbav:"author_name"`
	Timestamp  time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// ProcessStep is one of the 5 fixed work phases of a service request.
// All 5 steps exist from creation time; there is no lazy initialization.
type ProcessStep struct {
	Name            string        `json:"name" dynamodbav:"name"`
	Completed       bool          `json:"completed" dynamodbav:"completed"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty" dynamodbav:"completed_at,omitempty"`
	CompletedBy     string        `json:"completed_by,omitempty" dynamodbav:"completed_by,omitempty"`
	CompletedByName string        `json:"completed_by_name,omitempty" dynamodbav:"completed_by_name,omitempty"`
	Comments        []StepComment `json:"comments" dynamodbav:"comments"`
}

// StatusHistoryEntry is one append-only audit record of a status change
type StatusHistoryEntry struct {
	Status        RequestStatus `json:"status" dynamodbav:"status"`
	ChangedBy     string        `json:"changed_by" dynamodbav:"changed_by"`
	ChangedByName string        `json:"changed_by_name" dynamodbav:"changed_by_name"`
	ChangedAt     time.Time     `json:"changed_at" dynamodbav:"changed_at"`
	Notes         string        `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	DurationMs    int64         `json:"duration" dynamodbav:"duration"` // elapsed ms since previous entry (or receivedAt)
}

// Attachment is the metadata of one uploaded file
type Attachment struct {
	FileName     string             `json:"file_name" dynamodbav:"file_name"`
	OriginalName string             `json:"original_name" dynamodbav:"original_name"`
	MimeType     string             `json:"mime_type" dynamodbav:"mime_type"`
	Size         int64              `json:"size" dynamodbav:"size"`
	Path         string             `json:"path" dynamodbav:"path"`
	UploadedBy   string             `json:"uploaded_by" dynamodbav:"uploaded_by"`
	UploadedAt   time.Time          `json:"uploaded_at" dynamodbav:"uploaded_at"`
	Category     AttachmentCategory `json:"category" dynamodbav:"category"`
}

// RequestNote is a free-text comment on the request, independent of step comments
type RequestNote struct {
	Content    string    `json:"content" dynamodbav:"content"`
	AuthorID   string    `json:"author_id" dynamodbav:"author_id"`
	AuthorName string    `json:"author_name" dynamodbav:"author_name"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}

// ServiceRequest is one client-submitted maintenance ticket
type ServiceRequest struct {
	ID        string `json:"id" dynamodbav:"id"`
	RequestID string `json:"request_id" dynamodbav:"request_id"` // SR-YYYYMM-####, immutable

	// Owner snapshot, taken at creation time, never synced with later profile edits
	ClientID      string `json:"client_id" dynamodbav:"client_id"`
	ClientName    string `json:"client_name" dynamodbav:"client_name"`
	ClientEmail   string `json:"client_email" dynamodbav:"client_email"`
	ClientCompany string `json:"client_company,omitempty" dynamodbav:"client_company,omitempty"`

	ServiceType         string          `json:"service_type" dynamodbav:"service_type"`
	MachineModel        string          `json:"machine_model,omitempty" dynamodbav:"machine_model,omitempty"`
	MachineSerialNumber string          `json:"machine_serial_number,omitempty" dynamodbav:"machine_serial_number,omitempty"`
	ProblemDescription  string          `json:"problem_description" dynamodbav:"problem_description"`
	Priority            RequestPriority `json:"priority" dynamodbav:"priority"`

	CurrentStatus RequestStatus                 `json:"current_status" dynamodbav:"current_status"`
	ProcessSteps  [ProcessStepCount]ProcessStep `json:"process_steps" dynamodbav:"process_steps"`
	StatusHistory []StatusHistoryEntry          `json:"status_history" dynamodbav:"status_history"`

	ReceivedAt   time.Time  `json:"received_at" dynamodbav:"received_at"`
	PendingAt    *time.Time `json:"pending_at,omitempty" dynamodbav:"pending_at,omitempty"`
	InProgressAt *time.Time `json:"in_progress_at,omitempty" dynamodbav:"in_progress_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" dynamodbav:"completed_at,omitempty"`

	SLATargetHours     int        `json:"sla_target" dynamodbav:"sla_target"`
	IsOverdue          bool       `json:"is_overdue" dynamodbav:"is_overdue"`
	TotalDurationHours float64    `json:"total_duration,omitempty" dynamodbav:"total_duration,omitempty"`

	AssignedTo     string     `json:"assigned_to,omitempty" dynamodbav:"assigned_to,omitempty"`
	AssignedToName string     `json:"assigned_to_name,omitempty" dynamodbav:"assigned_to_name,omitempty"`
	AssignedAt     *time.Time `json:"assigned_at,omitempty" dynamodbav:"assigned_at,omitempty"`

	Attachments []Attachment  `json:"attachments" dynamodbav:"attachments"`
	Notes       []RequestNote `json:"notes" dynamodbav:"notes"`

	ReportGenerated   bool       `json:"report_generated" dynamodbav:"report_generated"`
	ReportGeneratedAt *time.Time `json:"report_generated_at,omitempty" dynamodbav:"report_generated_at,omitempty"`
	ReportPdfPath     string     `json:"report_pdf_path,omitempty" dynamodbav:"report_pdf_path,omitempty"`

	Findings        []string `json:"findings" dynamodbav:"findings"`
	WorkPerformed   []string `json:"work_performed" dynamodbav:"work_performed"`
	Recommendations []string `json:"recommendations" dynamodbav:"recommendations"`

	IsDeleted  bool       `json:"is_deleted" dynamodbav:"is_deleted"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at,omitempty"`
	IsArchived bool       `json:"is_archived" dynamodbav:"is_archived"`
	ArchivedAt *time.Time `json:"archived_at,omitempty" dynamodbav:"archived_at,omitempty"`
	ArchivedBy string     `json:"archived_by,omitempty" dynamodbav:"archived_by,omitempty"`

	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`

	// Optimistic concurrency token, incremented on every full-document save
	Version int64 `json:"version" dynamodbav:"version"`
}

// ValidStatus reports whether s is one of the four legacy statuses
func ValidStatus(s RequestStatus) bool {
	switch s {
	case RequestStatusReceived, RequestStatusPending, RequestStatusInProgress, RequestStatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority
func ValidPriority(p RequestPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// ValidCategory reports whether c is a known attachment category
func ValidCategory(c AttachmentCategory) bool {
	switch c {
	case CategoryInvoice, CategoryPhoto, CategoryDocument, CategoryReport, CategoryOther:
		return true
	}
	return false
}

// CreateServiceRequest is the request body for POST /service-requests
type CreateServiceRequest struct {
	ServiceType         string          `json:"service_type" validate:"required"`
	ProblemDescription  string          `json:"problem_description" validate:"required"`
	MachineModel        string          `json:"machine_model,omitempty"`
	MachineSerialNumber string          `json:"machine_serial_number,omitempty"`
	Priority            RequestPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent"`
}

// UpdateStatusRequest is the request body for PUT /service-requests/:id/status
type UpdateStatusRequest struct {
	Status RequestStatus `json:"status" validate:"required,oneof=received pending in_progress completed"`
	Notes  string        `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// BulkStatusRequest is the request body for PUT /service-requests/bulk/status
type BulkStatusRequest struct {
	IDs    []string      `json:"ids" validate:"required,min=1"`
	Status RequestStatus `json:"status" validate:"required,oneof=received pending in_progress completed"`
	Notes  string        `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// AddNoteRequest is the request body for POST /service-requests/:id/notes
type AddNoteRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// StepCommentRequest is the request body for POST /process-tracking/:id/steps/:n/comments
type StepCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// AssignRequest is the request body for PUT /service-requests/:id/assign
type AssignRequest struct {
	AssigneeID string `json:"assignee_id" validate:"required"`
}

// FinalizeReportRequest is the request body for POST /reports/generate/:id
type FinalizeReportRequest struct {
	Findings        []string `json:"findings,omitempty"`
	WorkPerformed   []string `json:"work_performed,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}

// ServiceRequestFilter narrows a service request listing
type ServiceRequestFilter struct {
	ClientID  string
	Status    RequestStatus
	Priority  RequestPriority
	IsOverdue *bool
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// RequestStats is the payload of GET /service-requests/stats
type RequestStats struct {
	Total              int            `json:"total"`
	ByStatus           map[string]int `json:"by_status"`
	Overdue            int            `json:"overdue"`
	Archived           int            `json:"archived"`
	AvgCompletionHours float64        `json:"avg_completion_hours"`
}
