package models

import "time"

// ErrorResponse is the error envelope shared by handlers and middleware
type ErrorResponse struct {
	Success      bool   `json:"success"`
	Error        string `json:"error"`
	Message      string `json:"message"`
	RequestID    string `json:"request_id"`
	Timestamp    string `json:"timestamp"`
	ErrorDetails string `json:"error_details,omitempty"`
}

// NewErrorResponse builds an error envelope stamped with the current UTC time
func NewErrorResponse(code, message, requestID string) ErrorResponse {
	return ErrorResponse{
		Success:   false,
		Error:     code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// TrialActionRequest is the body of the admin trial endpoint
type TrialActionRequest struct {
	Action         string `json:"action" binding:"required"`
	UserID         string `json:"userId" binding:"required"`
	AdditionalDays int    `json:"additionalDays"`
	Plan           string `json:"plan"`
	Reason         string `json:"reason"`
}

// Trial action names accepted by the admin trial endpoint
const (
	TrialActionExtend       = "extend_trial"
	TrialActionConvert      = "convert_to_paid"
	TrialActionSendReminder = "send_reminder"
	TrialActionEnd          = "end_trial"
)

// StoreStatusRequest toggles a store's active flag
type StoreStatusRequest struct {
	IsActive *bool  `json:"isActive" binding:"required"`
	Reason   string `json:"reason"`
}
