package types

import (
	"github.com/go-playground/validator/v10"
)

// StartInterviewRequest is the body of POST /api/interview/start
type StartInterviewRequest struct {
	Profile CandidateProfile `json:"profile"`
}

// MessageRequest is the body of POST /api/interview/message
type MessageRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// FinalizeInterviewRequest is the body of POST /api/interview/finalize
type FinalizeInterviewRequest struct {
	SessionID        string  `json:"sessionId" validate:"required"`
	CompletionReason *string `json:"completionReason,omitempty"`
	DurationSeconds  *int    `json:"durationSeconds,omitempty" validate:"omitempty,gte=0"`
}

// Validate validates the MessageRequest using the validator.
func (r *MessageRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the FinalizeInterviewRequest using the validator.
func (r *FinalizeInterviewRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
