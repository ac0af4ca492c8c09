package upstream

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/a3tai/w2-intake/internal/fields"
)

// StubSubmitter is the in-process stand-in for the third-party services.
// It honors the exact Submitter contract but generates identifiers
// locally, so the service runs without upstream credentials.
type StubSubmitter struct {
	logger *log.Logger
}

// NewStubSubmitter creates an in-process submitter.
func NewStubSubmitter(logger *log.Logger) *StubSubmitter {
	return &StubSubmitter{logger: logger}
}

// Submit drains the document and returns freshly generated identifiers.
func (s *StubSubmitter) Submit(ctx context.Context, data *fields.W2Data, filename string, file io.Reader) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Consume the document like a real upload would.
	size, err := io.Copy(io.Discard, file)
	if err != nil {
		return nil, err
	}

	result := &Result{
		DataID: uuid.NewString(),
		FileID: uuid.NewString(),
	}

	s.logger.Info().
		Str("filename", filename).
		Int64("size", size).
		Str("data_id", result.DataID).
		Str("file_id", result.FileID).
		Msg("stub upstream accepted submission")

	return result, nil
}
