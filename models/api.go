package models

// APIResponse is the generic envelope used by the reference HTTP surface and
// the credential exchange wire format.
type APIResponse struct {
	Status  string      `json:"status"`            // "success" or "error"
	Code    int         `json:"code"`              // HTTP status code
	Message string      `json:"message,omitempty"` // Human-readable message
	Data    interface{} `json:"data,omitempty"`    // Response payload
	Error   *APIError   `json:"error,omitempty"`   // Detailed error info (nil on success)
}

// APIError holds detailed error information.
type APIError struct {
	Type    string `json:"type,omitempty"`    // e.g. "AuthenticationError", "ValidationError"
	Details string `json:"details,omitempty"` // More context about the error
	Field   string `json:"field,omitempty"`   // For validation errors
}
