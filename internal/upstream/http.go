package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/phuslu/log"

	"github.com/a3tai/w2-intake/internal/fields"
	"github.com/a3tai/w2-intake/internal/pdf"
)

// HTTPSubmitter reports data and uploads files to real third-party
// endpoints over HTTP, authenticating with a pre-shared secret header.
type HTTPSubmitter struct {
	client    *http.Client
	reportURL string
	uploadURL string
	secret    string
	logger    *log.Logger
}

// NewHTTPSubmitter creates a submitter for the given endpoints.
func NewHTTPSubmitter(reportURL, uploadURL, secret string, timeout time.Duration, logger *log.Logger) *HTTPSubmitter {
	return &HTTPSubmitter{
		client:    &http.Client{Timeout: timeout},
		reportURL: reportURL,
		uploadURL: uploadURL,
		secret:    secret,
		logger:    logger,
	}
}

// Submit reports the extracted fields, then uploads the original file
// tagged with the returned data id. Any non-200 response or transport
// failure aborts the sequence with ErrUpstream.
func (s *HTTPSubmitter) Submit(ctx context.Context, data *fields.W2Data, filename string, file io.Reader) (*Result, error) {
	dataID, err := s.reportData(ctx, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("data_id", dataID).Msg("data reported to third-party API")

	fileID, err := s.uploadFile(ctx, dataID, filename, file)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("file_id", fileID).Msg("file uploaded to third-party API")

	return &Result{DataID: dataID, FileID: fileID}, nil
}

// reportData POSTs the field payload as JSON and returns the identifier
// from the response body.
func (s *HTTPSubmitter) reportData(ctx context.Context, data *fields.W2Data) (string, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("failed to encode report payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.reportURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build report request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderAPISecret, s.secret)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: data reporting call failed: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: data reporting returned status %d", ErrUpstream, resp.StatusCode)
	}

	var reply struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("%w: invalid data reporting response: %v", ErrUpstream, err)
	}
	if reply.ID == "" {
		return "", fmt.Errorf("%w: data reporting response missing id", ErrUpstream)
	}

	return reply.ID, nil
}

// uploadFile POSTs the original document as a multipart form, streamed
// through a pipe so large files never need a second in-memory copy.
func (s *HTTPSubmitter) uploadFile(ctx context.Context, dataID, filename string, file io.Reader) (string, error) {
	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(form, dataID, filename, file)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL, pr)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set(HeaderAPISecret, s.secret)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: file upload call failed: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: file upload returned status %d", ErrUpstream, resp.StatusCode)
	}

	var reply struct {
		FileID string `json:"file_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("%w: invalid file upload response: %v", ErrUpstream, err)
	}
	if reply.FileID == "" {
		return "", fmt.Errorf("%w: file upload response missing file_id", ErrUpstream)
	}

	return reply.FileID, nil
}

// writeUploadForm writes the multipart body: the data id followed by the
// document itself.
func writeUploadForm(form *multipart.Writer, dataID, filename string, file io.Reader) error {
	if err := form.WriteField("unique_id", dataID); err != nil {
		return err
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", pdf.MediaType)
	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}

	return form.Close()
}
