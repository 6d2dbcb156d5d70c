package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "herdbook/internal/errors"
)

type sampleRequest struct {
	Filename string         `json:"filename" validate:"required,filename"`
	Format   string         `json:"format" validate:"omitempty,exportformat"`
	Target   string         `json:"target" validate:"omitempty,saledate"`
	Columns  []sampleColumn `json:"columns" validate:"omitempty,dive"`
}

type sampleColumn struct {
	Key string `json:"key" validate:"required"`
}

func TestValidatorDecodeJSON(t *testing.T) {
	v := NewValidator(testLogger())

	tests := []struct {
		name       string
		body       string
		wantErr    bool
		wantCode   string
		wantFields []string
	}{
		{name: "valid", body: `{"filename":"herd","format":"xlsx","target":"2026-11-02"}`},
		{name: "empty body", body: ``, wantErr: true, wantCode: "VALIDATION_FAILED"},
		{name: "malformed", body: `{"filename":`, wantErr: true, wantCode: "INVALID_REQUEST"},
		{name: "missing filename", body: `{}`, wantErr: true, wantCode: "VALIDATION_FAILED", wantFields: []string{"filename"}},
		{name: "path in filename", body: `{"filename":"../etc/passwd"}`, wantErr: true, wantCode: "VALIDATION_FAILED", wantFields: []string{"filename"}},
		{name: "bad format", body: `{"filename":"herd","format":"pdf"}`, wantErr: true, wantCode: "VALIDATION_FAILED", wantFields: []string{"format"}},
		{name: "bad date", body: `{"filename":"herd","target":"soon"}`, wantErr: true, wantCode: "VALIDATION_FAILED", wantFields: []string{"target"}},
		{name: "column without key", body: `{"filename":"herd","columns":[{"key":""}]}`, wantErr: true, wantCode: "VALIDATION_FAILED", wantFields: []string{"columns[0].key"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst sampleRequest
			err := v.DecodeJSON(req, &dst)

			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "herd", dst.Filename)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantCode, apiErr.ErrorCode)

			if len(tt.wantFields) > 0 {
				details, ok := apiErr.Details.(apierrors.ValidationErrors)
				require.True(t, ok)
				fields := make([]string, 0, len(details.Errors))
				for _, e := range details.Errors {
					fields = append(fields, e.Field)
				}
				assert.Equal(t, tt.wantFields, fields)
			}
		})
	}
}

func TestValidatorDecodeJSONBodyTooLarge(t *testing.T) {
	v := NewValidator(testLogger())
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"filename":"aaaaaaaaaaaaaaaaaaaa"}`))
	req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, 8)

	var dst sampleRequest
	err := v.DecodeJSON(req, &dst)

	var maxErr *http.MaxBytesError
	assert.ErrorAs(t, err, &maxErr)
}

func TestContentTypeValidator(t *testing.T) {
	h := ContentTypeValidator(testErrorHandler(), "application/json")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		contentType string
		wantStatus  int
	}{
		{"json", http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{"missing", http.MethodPost, "", http.StatusUnsupportedMediaType},
		{"form", http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"get skipped", http.MethodGet, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
