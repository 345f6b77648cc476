package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     MessageRequest
		wantErr bool
	}{
		{"valid", MessageRequest{SessionID: "s1", Message: "hello"}, false},
		{"missing session", MessageRequest{Message: "hello"}, true},
		{"missing message", MessageRequest{SessionID: "s1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFinalizeInterviewRequest_Validate(t *testing.T) {
	zero, negative := 0, -1

	assert.NoError(t, (&FinalizeInterviewRequest{SessionID: "s1"}).Validate())
	assert.NoError(t, (&FinalizeInterviewRequest{SessionID: "s1", DurationSeconds: &zero}).Validate())
	assert.Error(t, (&FinalizeInterviewRequest{SessionID: "s1", DurationSeconds: &negative}).Validate())
	assert.Error(t, (&FinalizeInterviewRequest{}).Validate())
}
