package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/interview-planner/internal/interview"
)

// ErrBadRequest indicates a body that could not be decoded
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return fmt.Sprintf("bad request: %s", e.Message)
}

// ErrUnauthorized indicates a missing or invalid credential
type ErrUnauthorized struct{}

func (e *ErrUnauthorized) Error() string {
	return "unauthorized"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		notFound       *interview.ErrSessionNotFound
		reportNotFound *interview.ErrReportNotFound
		validation     *interview.ErrValidation
		fieldErrors    validator.ValidationErrors
		badRequest     *ErrBadRequest
		unauthorized   *ErrUnauthorized
	)
	switch {
	case errors.As(err, &notFound), errors.As(err, &reportNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &fieldErrors), errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// validationError turns validator output into the first failing field
func validationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return &interview.ErrValidation{Field: fe.Field(), Message: describeTag(fe)}
	}
	return err
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}
