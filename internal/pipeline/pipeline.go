package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	"github.com/a3tai/w2-intake/internal/config"
	"github.com/a3tai/w2-intake/internal/fields"
	"github.com/a3tai/w2-intake/internal/pdf"
	"github.com/a3tai/w2-intake/internal/store"
	"github.com/a3tai/w2-intake/internal/upstream"
)

// Recorder persists pipeline outcomes. It is optional; a nil Recorder
// disables history.
type Recorder interface {
	Record(sub *store.Submission) error
}

// Result is the successful outcome of a pipeline run: the identifiers
// the third-party services produced plus the fields that were reported.
type Result struct {
	DataID string
	FileID string
	Fields fields.Fields
}

// Pipeline sequences upload validation, spooling, text extraction,
// field extraction and validation, and upstream submission, translating
// each stage's failure into the domain taxonomy and guaranteeing
// cleanup of any temporary storage. Stages take explicit inputs and
// return explicit outputs, so the sequence could later run behind a
// queue boundary without changing stage contracts.
type Pipeline struct {
	spooler       *pdf.Spooler
	textExtractor *pdf.TextExtractor
	extractor     *fields.Extractor
	required      []string
	submitter     upstream.Submitter
	recorder      Recorder
	maxFileSize   int64
	logger        *log.Logger
}

// New creates a pipeline wired for W-2 documents.
func New(cfg *config.Config, submitter upstream.Submitter, recorder Recorder, logger *log.Logger) *Pipeline {
	return &Pipeline{
		spooler:       pdf.NewSpooler(cfg.MemoryThreshold, cfg.ChunkSize, cfg.TempDir),
		textExtractor: pdf.NewTextExtractor(),
		extractor:     fields.NewExtractor(fields.W2Rules()...),
		required:      fields.W2Required(),
		submitter:     submitter,
		recorder:      recorder,
		maxFileSize:   cfg.MaxFileSize,
		logger:        logger,
	}
}

// Process runs one upload through the full stage sequence. It returns
// either a Result or a *Error; no other error type escapes.
func (p *Pipeline) Process(ctx context.Context, u pdf.Upload) (*Result, error) {
	id := uuid.NewString()
	logger := p.logger

	result, err := p.process(ctx, id, u)

	p.record(id, u, result, err)

	if err != nil {
		var perr *Error
		if !errors.As(err, &perr) {
			perr = failed(KindInternal, "unexpected pipeline failure", err)
		}
		logger.Warn().
			Str("submission", id).
			Str("filename", u.Filename).
			Str("kind", perr.Kind.String()).
			Msg("pipeline failed")
		return nil, perr
	}

	logger.Info().
		Str("submission", id).
		Str("filename", u.Filename).
		Str("data_id", result.DataID).
		Str("file_id", result.FileID).
		Msg("pipeline completed")
	return result, nil
}

func (p *Pipeline) process(ctx context.Context, id string, u pdf.Upload) (*Result, error) {
	logger := p.logger

	// Stage: validate declared name and type before reading any bytes.
	if err := pdf.ValidateUpload(u, p.maxFileSize); err != nil {
		return nil, failed(KindInputValidation, "upload rejected", err)
	}
	logger.Debug().Str("submission", id).Str("filename", u.Filename).Msg("upload validated")

	// Stage: materialize the body, spooling large uploads to disk.
	doc, err := p.spooler.Spool(u)
	if err != nil {
		return nil, failed(KindRead, "failed to read upload", err)
	}
	defer func() {
		if cleanupErr := doc.Cleanup(); cleanupErr != nil {
			logger.Warn().Str("submission", id).Err(cleanupErr).Msg("failed to clean up temp storage")
		}
	}()
	if doc.Size() == 0 {
		return nil, failed(KindInputValidation, "upload rejected", errors.New("uploaded file is empty"))
	}
	logger.Debug().
		Str("submission", id).
		Int64("size", doc.Size()).
		Bool("spooled", doc.Spooled()).
		Msg("upload materialized")

	// Stage: extract the document text page by page.
	text, err := p.textExtractor.ExtractText(doc)
	if err != nil {
		if errors.Is(err, pdf.ErrUnparsable) {
			return nil, failed(KindUnparsable, "failed to parse PDF", err)
		}
		return nil, failed(KindInternal, "text extraction failed", err)
	}
	logger.Debug().Str("submission", id).Int("text_length", len(text)).Msg("text extracted")

	// Stage: apply field rules; non-matching rules just omit their field.
	extracted := p.extractor.Extract(text)
	logger.Debug().Str("submission", id).Int("fields_found", len(extracted)).Msg("fields extracted")

	// Stage: require the full W-2 field set, reporting every gap at once.
	if err := fields.Validate(extracted, p.required); err != nil {
		return nil, missingFieldsError(err)
	}
	data, err := fields.BuildW2Data(extracted)
	if err != nil {
		return nil, missingFieldsError(err)
	}
	logger.Debug().Str("submission", id).Msg("fields validated")

	// Stage: report the data and upload the original document upstream.
	submitted, err := p.submitter.Submit(ctx, data, u.Filename, doc.Reader())
	if err != nil {
		if errors.Is(err, upstream.ErrUpstream) {
			return nil, failed(KindUpstream, "third-party call failed", err)
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, failed(KindUpstream, "third-party call aborted", err)
		}
		return nil, failed(KindInternal, "submission failed", err)
	}

	return &Result{
		DataID: submitted.DataID,
		FileID: submitted.FileID,
		Fields: data.ToFields(),
	}, nil
}

// missingFieldsError converts a fields validation error into the domain
// taxonomy, preserving the complete offending-field list.
func missingFieldsError(err error) *Error {
	perr := failed(KindMissingFields, "required fields missing from document", err)
	var mfe *fields.MissingFieldsError
	if errors.As(err, &mfe) {
		perr.Fields = mfe.Fields
	}
	return perr
}

// record persists the outcome when history is enabled. Recording
// failures are logged and never affect the request result.
func (p *Pipeline) record(id string, u pdf.Upload, result *Result, err error) {
	if p.recorder == nil {
		return
	}

	sub := &store.Submission{
		ID:        id,
		Filename:  u.Filename,
		Size:      u.Size,
		CreatedAt: time.Now(),
	}

	if err != nil {
		sub.Status = store.StatusFailed
		sub.Error = err.Error()
		var perr *Error
		if errors.As(err, &perr) {
			sub.FailureKind = perr.Kind.String()
		} else {
			sub.FailureKind = KindInternal.String()
		}
	} else {
		sub.Status = store.StatusSucceeded
		sub.Fields = result.Fields
		sub.DataID = result.DataID
		sub.FileID = result.FileID
	}

	if recordErr := p.recorder.Record(sub); recordErr != nil {
		p.logger.Warn().Str("submission", id).Err(recordErr).Msg("failed to record submission history")
	}
}
