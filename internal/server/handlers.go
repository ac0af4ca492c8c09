package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/a3tai/w2-intake/internal/pdf"
	"github.com/a3tai/w2-intake/internal/pipeline"
	"github.com/a3tai/w2-intake/internal/store"
)

// uploadResponse is the success body for a processed W-2.
type uploadResponse struct {
	Message string            `json:"message"`
	DataID  string            `json:"dataId"`
	FileID  string            `json:"fileId"`
	Fields  map[string]string `json:"extractedFields"`
}

// errorResponse is the body for every failure.
type errorResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missingFields,omitempty"`
}

// handleUpload accepts a multipart W-2 PDF upload and runs it through
// the pipeline. The file part is handed to the pipeline as a stream so
// the spooler, not the multipart parser, decides what stays in memory.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// Bound the whole request body; the pipeline separately enforces the
	// configured file size on the declared length.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFileSize+1<<20)

	part, err := filePart(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	upload := pdf.Upload{
		Filename:    part.FileName(),
		ContentType: part.Header.Get("Content-Type"),
		Size:        r.ContentLength,
		Body:        part,
	}

	result, err := s.pipeline.Process(r.Context(), upload)
	if err != nil {
		var perr *pipeline.Error
		if errors.As(err, &perr) {
			writeError(w, perr.Kind.HTTPStatus(), perr.Message, perr.Fields)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Message: "W-2 processed and reported successfully",
		DataID:  result.DataID,
		FileID:  result.FileID,
		Fields:  result.Fields,
	})
}

// filePart walks the multipart stream until the file part, without
// buffering the document.
func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errors.New("request must be multipart/form-data with a 'file' part")
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil, errors.New("missing 'file' part in upload")
		}
		if err != nil {
			return nil, errors.New("malformed multipart request")
		}
		if part.FormName() == "file" {
			return part, nil
		}
		// Skip unrelated form fields.
		part.Close()
	}
}

// handleListSubmissions returns recorded submissions, newest first.
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "submission history is disabled", nil)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	subs, err := s.history.List(limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list submissions")
		writeError(w, http.StatusInternalServerError, "failed to list submissions", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

// handleGetSubmission returns one recorded submission by id.
func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "submission history is disabled", nil)
		return
	}

	sub, err := s.history.Get(r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "submission not found", nil)
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load submission")
		writeError(w, http.StatusInternalServerError, "failed to load submission", nil)
		return
	}

	writeJSON(w, http.StatusOK, sub)
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": s.cfg.ServiceName,
		"version": s.cfg.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string, missing []string) {
	writeJSON(w, status, errorResponse{Error: message, MissingFields: missing})
}
