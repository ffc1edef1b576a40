package services

import (
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"moldcare-backend/models"
	"moldcare-backend/utils/logger"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// categoryDirs maps an attachment category to its subdirectory of the upload root
var categoryDirs = map[models.AttachmentCategory]string{
	models.CategoryInvoice:  "invoices",
	models.CategoryPhoto:    "photos",
	models.CategoryDocument: "documents",
	models.CategoryReport:   "reports",
	models.CategoryOther:    "documents",
}

// allowedExtensions are the upload types the API accepts
var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".pdf": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".csv": true, ".txt": true,
}

var allowedMimePrefixes = []string{
	"image/",
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument",
	"application/vnd.ms-excel",
	"text/csv",
	"text/plain",
}

// UploadService stores attachment files on local disk under categorized directories
type UploadService struct {
	config *models.Config
	logger logger.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(cfg *models.Config, log logger.Logger) *UploadService {
	return &UploadService{
		config: cfg,
		logger: log,
	}
}

// ValidateFiles checks count, size, extension and mime type before anything is written
func (s *UploadService) ValidateFiles(files []*multipart.FileHeader) error {
	if len(files) == 0 {
		return NewValidationError("No files provided")
	}
	if len(files) > s.config.MaxUploadFiles {
		return NewValidationError(fmt.Sprintf("At most %d files per upload", s.config.MaxUploadFiles))
	}

	maxBytes := s.config.MaxUploadSizeMB * 1024 * 1024
	for _, f := range files {
		if f.Size > maxBytes {
			return NewValidationError(fmt.Sprintf("File %s exceeds the %dMB limit", f.Filename, s.config.MaxUploadSizeMB))
		}
		ext := strings.ToLower(filepath.Ext(f.Filename))
		if !allowedExtensions[ext] {
			return NewValidationError(fmt.Sprintf("File type %s is not allowed", ext))
		}
		if !mimeAllowed(f.Header.Get("Content-Type")) {
			return NewValidationError(fmt.Sprintf("Content type %s is not allowed", f.Header.Get("Content-Type")))
		}
	}
	return nil
}

func mimeAllowed(contentType string) bool {
	for _, prefix := range allowedMimePrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return false
}

// StoreFile writes one uploaded file into the category directory and returns
// its attachment metadata. Collisions are avoided by the timestamp+random
// suffix in the generated name, not by locking.
func (s *UploadService) StoreFile(file *multipart.FileHeader, category models.AttachmentCategory, uploadedBy string) (*models.Attachment, error) {
	dir := filepath.Join(s.config.UploadDir, categoryDirs[category])
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, NewInternalError("Failed to prepare upload directory", err)
	}

	name := GenerateStoredFileName(file.Filename, time.Now())
	dst := filepath.Join(dir, name)

	src, err := file.Open()
	if err != nil {
		return nil, NewInternalError("Failed to read uploaded file", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return nil, NewInternalError("Failed to store uploaded file", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return nil, NewInternalError("Failed to store uploaded file", err)
	}

	s.logger.Infof("Stored attachment %s (%d bytes) as %s", file.Filename, file.Size, dst)

	return &models.Attachment{
		FileName:     name,
		OriginalName: file.Filename,
		MimeType:     file.Header.Get("Content-Type"),
		Size:         file.Size,
		Path:         dst,
		UploadedBy:   uploadedBy,
		UploadedAt:   time.Now(),
		Category:     category,
	}, nil
}

// GenerateStoredFileName builds `<original-basename>-<timestamp>-<random><ext>`
func GenerateStoredFileName(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = sanitizeBaseName(base)
	return fmt.Sprintf("%s-%d-%d%s", base, now.UnixMilli(), rand.Intn(1_000_000_000), ext)
}

func sanitizeBaseName(base string) string {
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
