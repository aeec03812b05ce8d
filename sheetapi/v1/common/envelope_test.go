package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "empty body", body: "", wantErr: ""},
		{name: "plain ok", body: `{"status":"ok"}`, wantErr: ""},
		{name: "status error with message", body: `{"status":"error","message":"нет доступа"}`, wantErr: "нет доступа"},
		{name: "error field string", body: `{"error":"bad request"}`, wantErr: "bad request"},
		{name: "error field null", body: `{"error":null,"records":[]}`, wantErr: ""},
		{name: "legacy html", body: `<html>moved</html>`, wantErr: ""},
		{name: "legacy plain text", body: `Done`, wantErr: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckError("testOp", []byte(tt.body))
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeJSONEmptyPayload(t *testing.T) {
	var payload struct {
		Records []string `json:"records"`
	}
	// {} with no records is "no data", not an error.
	require.NoError(t, DecodeJSON("records", []byte(`{}`), &payload))
	assert.Empty(t, payload.Records)
}

func TestDecodeJSONBadShape(t *testing.T) {
	var payload struct {
		Records []string `json:"records"`
	}
	err := DecodeJSON("records", []byte(`{"records":"not-a-list"}`), &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "records")
}
