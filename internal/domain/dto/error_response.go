package dto

// ErrorResponse is the standardized JSON error envelope returned by every
// failing endpoint.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Message string `json:"message" example:"invalid date format"` // Human-readable description
	Detail  string `json:"detail,omitempty"`                      // Underlying error detail, if safe to expose
}

// NewErrorResponse builds an ErrorResponse from a message and an optional
// underlying error.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	return resp
}
