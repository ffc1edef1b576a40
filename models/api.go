package models

// APIResponse is the envelope returned by every JSON endpoint
type APIResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"` // Human-readable message
	Data    interface{}  `json:"data,omitempty"`    // Any response data (map, struct, list, etc.)
	User    interface{}  `json:"user,omitempty"`    // Auth endpoints return the user here
	Errors  []FieldError `json:"errors,omitempty"`  // Field-level validation errors
	Error   string       `json:"error,omitempty"`   // Raw underlying error text (500s)
}

// FieldError holds one field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Pagination describes a slice of a listing
type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// BulkItemResult reports the outcome of one item of a bulk operation
type BulkItemResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
