package upstream

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/phuslu/log"
)

// MockAPI is an HTTP rendition of the third-party services, useful for
// local development and handler tests. It enforces the same shared-secret
// authentication the real endpoints use and returns generated ids.
type MockAPI struct {
	secret string
	logger *log.Logger
}

// NewMockAPI creates a mock third-party API handler.
func NewMockAPI(secret string, logger *log.Logger) *MockAPI {
	return &MockAPI{secret: secret, logger: logger}
}

// Register mounts the mock endpoints on the given mux.
func (m *MockAPI) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /mock/report", m.handleReport)
	mux.HandleFunc("POST /mock/upload", m.handleUpload)
}

// handleReport receives W-2 data and returns a unique id.
func (m *MockAPI) handleReport(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) {
		return
	}

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload) == 0 {
		m.logger.Warn().Msg("mock report called with empty or invalid data")
		writeMockJSON(w, http.StatusBadRequest, map[string]string{"error": "Request data is required."})
		return
	}

	id := uuid.NewString()
	m.logger.Info().Str("id", id).Msg("mock report generated id")
	writeMockJSON(w, http.StatusOK, map[string]string{"id": id})
}

// handleUpload receives a unique id and a file and returns a file id.
func (m *MockAPI) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !m.authorized(w, r) {
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeMockJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid multipart request."})
		return
	}

	if r.FormValue("unique_id") == "" {
		m.logger.Warn().Msg("mock upload called without unique_id")
		writeMockJSON(w, http.StatusBadRequest, map[string]string{"error": "unique_id is required."})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		m.logger.Warn().Msg("mock upload called without file")
		writeMockJSON(w, http.StatusBadRequest, map[string]string{"error": "file is required."})
		return
	}
	defer file.Close()

	if header.Size == 0 {
		writeMockJSON(w, http.StatusBadRequest, map[string]string{"error": "Uploaded file is empty."})
		return
	}

	fileID := uuid.NewString()
	m.logger.Info().
		Str("filename", header.Filename).
		Int64("size", header.Size).
		Str("file_id", fileID).
		Msg("mock upload generated file id")
	writeMockJSON(w, http.StatusOK, map[string]string{"file_id": fileID})
}

// authorized validates the shared secret header, writing a 401 on failure.
func (m *MockAPI) authorized(w http.ResponseWriter, r *http.Request) bool {
	secret := r.Header.Get(HeaderAPISecret)
	if secret == "" {
		writeMockJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized: Missing secret key."})
		return false
	}
	if secret != m.secret {
		writeMockJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized: Invalid secret key."})
		return false
	}
	return true
}

func writeMockJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
