package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/interview-planner/internal/interview"
	"github.com/jonathan/interview-planner/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"session not found", &interview.ErrSessionNotFound{SessionID: "x"}, http.StatusNotFound},
		{"report not found", &interview.ErrReportNotFound{SessionID: "x"}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("ctx: %w", &interview.ErrSessionNotFound{}), http.StatusNotFound},
		{"validation", &interview.ErrValidation{Field: "message", Message: "must not be blank"}, http.StatusBadRequest},
		{"bad request", &ErrBadRequest{Message: "invalid JSON body"}, http.StatusBadRequest},
		{"unauthorized", &ErrUnauthorized{}, http.StatusUnauthorized},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestValidationError(t *testing.T) {
	req := types.MessageRequest{Message: "hi"}
	err := validationError(req.Validate())

	var v *interview.ErrValidation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "SessionID", v.Field)
	assert.Equal(t, "is required", v.Message)
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))

	plain := errors.New("plain")
	assert.Equal(t, plain, validationError(plain))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "unauthorized", (&ErrUnauthorized{}).Error())
	assert.Equal(t, "bad request: invalid JSON body", (&ErrBadRequest{Message: "invalid JSON body"}).Error())
}
