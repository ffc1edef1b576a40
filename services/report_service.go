package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"moldcare-backend/models"
	"moldcare-backend/repository"
	"strings"
	"time"

	"moldcare-backend/utils/logger"

	"github.com/jung-kurt/gofpdf"
)

// ReportService renders service report PDFs, finalizes report metadata and
// exports listings.
type ReportService struct {
	repo   repository.ServiceRequestRepositoryInterface
	config *models.Config
	logger logger.Logger
}

// NewReportService creates a new report service
func NewReportService(repo repository.ServiceRequestRepositoryInterface, cfg *models.Config, log logger.Logger) *ReportService {
	return &ReportService{
		repo:   repo,
		config: cfg,
		logger: log,
	}
}

func (s *ReportService) load(ctx context.Context, actor *models.User, id string) (*models.ServiceRequest, error) {
	sr, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrRequestNotFound) && strings.HasPrefix(id, "SR-") {
		sr, err = s.repo.GetByRequestID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, repository.ErrRequestNotFound) {
			return nil, NewNotFoundError("Service request not found")
		}
		return nil, NewInternalError("Failed to load service request", err)
	}
	if sr.IsDeleted {
		return nil, NewNotFoundError("Service request not found")
	}
	if !actor.IsAdmin() && sr.ClientID != actor.ID {
		return nil, NewForbiddenError("You do not have access to this report")
	}
	return sr, nil
}

// GeneratePDF renders the full service report and returns the bytes. As a
// side effect the request is stamped report_generated.
func (s *ReportService) GeneratePDF(ctx context.Context, actor *models.User, id string) ([]byte, *models.ServiceRequest, error) {
	sr, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, nil, err
	}

	pdfBytes, err := renderReportPDF(sr, time.Now())
	if err != nil {
		return nil, nil, NewInternalError("Failed to render PDF", err)
	}

	now := time.Now()
	sr.ReportGenerated = true
	sr.ReportGeneratedAt = &now
	if err := s.repo.Save(ctx, sr); err != nil {
		// The document has been rendered; the bookkeeping stamp is best-effort
		s.logger.Warnf("Failed to stamp report generation on %s: %v", sr.RequestID, err)
	}

	s.logger.Infof("Report PDF generated for %s by %s", sr.RequestID, actor.ID)
	return pdfBytes, sr, nil
}

// Finalize stores the free-text report lists on a completed request. Omitted
// lists keep their previously stored values.
func (s *ReportService) Finalize(ctx context.Context, actor *models.User, id string, req *models.FinalizeReportRequest) (*models.ServiceRequest, error) {
	sr, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if sr.CurrentStatus != models.RequestStatusCompleted {
		return nil, NewBusinessError("Report can only be finalized for a completed service request")
	}

	if req.Findings != nil {
		sr.Findings = req.Findings
	}
	if req.WorkPerformed != nil {
		sr.WorkPerformed = req.WorkPerformed
	}
	if req.Recommendations != nil {
		sr.Recommendations = req.Recommendations
	}

	now := time.Now()
	sr.ReportGenerated = true
	sr.ReportGeneratedAt = &now

	if err := s.repo.Save(ctx, sr); err != nil {
		return nil, NewInternalError("Failed to save report", err)
	}

	s.logger.Infof("Report finalized for %s by %s", sr.RequestID, actor.ID)
	return sr, nil
}

// Preview returns the structured report projection. A client may only preview
// their own request once a report exists; admins bypass both gates.
func (s *ReportService) Preview(ctx context.Context, actor *models.User, id string) (map[string]interface{}, error) {
	sr, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() && !sr.ReportGenerated {
		return nil, NewForbiddenError("No report has been generated for this service request yet")
	}

	return map[string]interface{}{
		"request_id":          sr.RequestID,
		"client_name":         sr.ClientName,
		"client_company":      sr.ClientCompany,
		"service_type":        sr.ServiceType,
		"machine_model":       sr.MachineModel,
		"problem_description": sr.ProblemDescription,
		"current_status":      sr.CurrentStatus,
		"process_steps":       sr.ProcessSteps,
		"findings":            sr.Findings,
		"work_performed":      sr.WorkPerformed,
		"recommendations":     sr.Recommendations,
		"received_at":         sr.ReceivedAt,
		"completed_at":        sr.CompletedAt,
		"total_duration":      sr.TotalDurationHours,
		"report_generated":    sr.ReportGenerated,
		"report_generated_at": sr.ReportGeneratedAt,
	}, nil
}

// ClientReports lists the generated reports of one client
func (s *ReportService) ClientReports(ctx context.Context, actor *models.User, clientID string) ([]*models.ServiceRequest, error) {
	if !actor.IsAdmin() && actor.ID != clientID {
		return nil, NewForbiddenError("You may only list your own reports")
	}

	all, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, NewInternalError("Failed to list reports", err)
	}

	reports := make([]*models.ServiceRequest, 0, len(all))
	for _, sr := range all {
		if sr.IsDeleted || !sr.ReportGenerated {
			continue
		}
		reports = append(reports, sr)
	}
	return reports, nil
}

// ExportCSV streams all non-deleted requests matching the filters as CSV
func (s *ReportService) ExportCSV(ctx context.Context, w io.Writer, status models.RequestStatus, from, to *time.Time) error {
	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return NewInternalError("Failed to load service requests", err)
	}

	cw := csv.NewWriter(w)
	header := []string{
		"request_id", "client_name", "client_company", "service_type",
		"machine_model", "priority", "status", "received_at", "completed_at",
		"total_duration_hours", "is_overdue", "report_generated",
	}
	if err := cw.Write(header); err != nil {
		return NewInternalError("Failed to write CSV", err)
	}

	for _, sr := range all {
		if sr.IsDeleted {
			continue
		}
		if status != "" && sr.CurrentStatus != status {
			continue
		}
		if from != nil && sr.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && sr.CreatedAt.After(*to) {
			continue
		}

		completedAt := ""
		if sr.CompletedAt != nil {
			completedAt = sr.CompletedAt.Format(time.RFC3339)
		}
		row := []string{
			sr.RequestID,
			sr.ClientName,
			sr.ClientCompany,
			sr.ServiceType,
			sr.MachineModel,
			string(sr.Priority),
			string(sr.CurrentStatus),
			sr.ReceivedAt.Format(time.RFC3339),
			completedAt,
			fmt.Sprintf("%.2f", sr.TotalDurationHours),
			fmt.Sprintf("%t", sr.IsOverdue),
			fmt.Sprintf("%t", sr.ReportGenerated),
		}
		if err := cw.Write(row); err != nil {
			return NewInternalError("Failed to write CSV", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return NewInternalError("Failed to flush CSV", err)
	}
	return nil
}

// renderReportPDF lays out the service report document
func renderReportPDF(sr *models.ServiceRequest, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Service Report %s", sr.RequestID), false)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Service Report")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Request ID: %s", sr.RequestID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format("2006-01-02 15:04:05")))
	pdf.Ln(10)

	// Client block
	sectionTitle(pdf, "Client Information")
	keyValue(pdf, "Name", sr.ClientName)
	keyValue(pdf, "Email", sr.ClientEmail)
	keyValue(pdf, "Company", sr.ClientCompany)
	pdf.Ln(4)

	// Service block
	sectionTitle(pdf, "Service Details")
	keyValue(pdf, "Service Type", sr.ServiceType)
	keyValue(pdf, "Machine Model", sr.MachineModel)
	keyValue(pdf, "Serial Number", sr.MachineSerialNumber)
	keyValue(pdf, "Priority", string(sr.Priority))
	keyValue(pdf, "Problem", sr.ProblemDescription)
	pdf.Ln(4)

	// Process steps
	sectionTitle(pdf, "Process Steps")
	for i, step := range sr.ProcessSteps {
		marker := "[ ]"
		if step.Completed {
			marker = "[x]"
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("%s Step %d: %s", marker, i+1, step.Name))
		pdf.Ln(5)

		pdf.SetFont("Helvetica", "", 9)
		if step.Completed && step.CompletedAt != nil {
			pdf.Cell(0, 5, fmt.Sprintf("    Completed %s by %s",
				step.CompletedAt.Format("2006-01-02 15:04"), step.CompletedByName))
			pdf.Ln(4)
		}
		for _, c := range step.Comments {
			pdf.MultiCell(0, 5, fmt.Sprintf("    %s (%s): %s",
				c.AuthorName, c.Timestamp.Format("2006-01-02 15:04"), c.Content), "", "L", false)
		}
		pdf.Ln(2)
	}
	pdf.Ln(2)

	// Report lists
	if len(sr.Findings) > 0 {
		sectionTitle(pdf, "Findings")
		bulletList(pdf, sr.Findings)
	}
	if len(sr.WorkPerformed) > 0 {
		sectionTitle(pdf, "Work Performed")
		bulletList(pdf, sr.WorkPerformed)
	}
	if len(sr.Recommendations) > 0 {
		sectionTitle(pdf, "Recommendations")
		bulletList(pdf, sr.Recommendations)
	}

	// Status summary
	sectionTitle(pdf, "Status Summary")
	keyValue(pdf, "Current Status", string(sr.CurrentStatus))
	keyValue(pdf, "Created", sr.CreatedAt.Format("2006-01-02 15:04"))
	if sr.CompletedAt != nil {
		keyValue(pdf, "Completed", sr.CompletedAt.Format("2006-01-02 15:04"))
		keyValue(pdf, "Total Duration", fmt.Sprintf("%.1f hours", sr.TotalDurationHours))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(7)
}

func keyValue(pdf *gofpdf.Fpdf, key, value string) {
	if value == "" {
		value = "-"
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.Cell(40, 5, key)
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, value, "", "L", false)
}

func bulletList(pdf *gofpdf.Fpdf, items []string) {
	pdf.SetFont("Helvetica", "", 9)
	for _, item := range items {
		pdf.MultiCell(0, 5, "  - "+item, "", "L", false)
	}
	pdf.Ln(2)
}
