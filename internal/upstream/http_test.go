package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/w2-intake/internal/fields"
	"github.com/a3tai/w2-intake/internal/logging"
)

func testW2Data() *fields.W2Data {
	return &fields.W2Data{
		EIN:                "12-3456789",
		SSN:                "123-45-6789",
		Wages:              "39500.00",
		FederalTaxWithheld: "4200.00",
	}
}

func TestHTTPSubmitter_Submit(t *testing.T) {
	const secret = "test-secret"

	var reportedBody fields.W2Data
	var uploadedID, uploadedName, uploadedContent string

	report := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, secret, r.Header.Get(HeaderAPISecret))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reportedBody))
		json.NewEncoder(w).Encode(map[string]string{"id": "data-123"})
	}))
	defer report.Close()

	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, secret, r.Header.Get(HeaderAPISecret))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		uploadedID = r.FormValue("unique_id")
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		uploadedName = header.Filename
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		uploadedContent = string(content)
		json.NewEncoder(w).Encode(map[string]string{"file_id": "file-456"})
	}))
	defer upload.Close()

	s := NewHTTPSubmitter(report.URL, upload.URL, secret, 5*time.Second, logging.Discard())

	result, err := s.Submit(context.Background(), testW2Data(), "w2.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	assert.Equal(t, "data-123", result.DataID)
	assert.Equal(t, "file-456", result.FileID)

	// The report payload uses the wire field names verbatim.
	assert.Equal(t, "12-3456789", reportedBody.EIN)
	assert.Equal(t, "4200.00", reportedBody.FederalTaxWithheld)

	// The upload is tagged with the id the report call returned.
	assert.Equal(t, "data-123", uploadedID)
	assert.Equal(t, "w2.pdf", uploadedName)
	assert.Equal(t, "pdf bytes", uploadedContent)
}

func TestHTTPSubmitter_Submit_ReportFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", http.StatusServiceUnavailable)
			},
		},
		{
			name: "invalid json body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "missing id",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := httptest.NewServer(tt.handler)
			defer report.Close()

			uploadCalled := false
			upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				uploadCalled = true
			}))
			defer upload.Close()

			s := NewHTTPSubmitter(report.URL, upload.URL, "secret", 5*time.Second, logging.Discard())

			_, err := s.Submit(context.Background(), testW2Data(), "w2.pdf", strings.NewReader("x"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUpstream), "error should wrap ErrUpstream, got %v", err)
			assert.False(t, uploadCalled, "a failed report must abort before the upload")
		})
	}
}

func TestHTTPSubmitter_Submit_UploadFailure(t *testing.T) {
	report := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "data-123"})
	}))
	defer report.Close()

	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage down", http.StatusBadGateway)
	}))
	defer upload.Close()

	s := NewHTTPSubmitter(report.URL, upload.URL, "secret", 5*time.Second, logging.Discard())

	_, err := s.Submit(context.Background(), testW2Data(), "w2.pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
}

func TestHTTPSubmitter_Submit_UnreachableEndpoint(t *testing.T) {
	s := NewHTTPSubmitter("http://127.0.0.1:1/report", "http://127.0.0.1:1/upload", "secret", time.Second, logging.Discard())

	_, err := s.Submit(context.Background(), testW2Data(), "w2.pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
}

func TestHTTPSubmitter_Submit_AgainstMockAPI(t *testing.T) {
	const secret = "mock-secret"

	mux := http.NewServeMux()
	NewMockAPI(secret, logging.Discard()).Register(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	s := NewHTTPSubmitter(server.URL+"/mock/report", server.URL+"/mock/upload", secret, 5*time.Second, logging.Discard())

	result, err := s.Submit(context.Background(), testW2Data(), "w2.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.NotEmpty(t, result.DataID)
	assert.NotEmpty(t, result.FileID)
	assert.NotEqual(t, result.DataID, result.FileID)
}

func TestHTTPSubmitter_Submit_WrongSecretAgainstMockAPI(t *testing.T) {
	mux := http.NewServeMux()
	NewMockAPI("right-secret", logging.Discard()).Register(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	s := NewHTTPSubmitter(server.URL+"/mock/report", server.URL+"/mock/upload", "wrong-secret", 5*time.Second, logging.Discard())

	_, err := s.Submit(context.Background(), testW2Data(), "w2.pdf", strings.NewReader("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstream))
}
