package models

// ErrorDetail carries a human-readable message and the numeric status.
type ErrorDetail struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// ErrorResponse is the canonical error envelope for every non-2xx
// response: {"error": {"message": ..., "status": ...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// NewErrorResponse builds the canonical error envelope.
func NewErrorResponse(status int, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Message: message, Status: status}}
}
