package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// Document is a fully-materialized upload ready for text extraction.
// Small uploads live in memory; large ones are backed by a request-scoped
// temp file. Both representations expose the same random-access view so
// the extractor is agnostic to which path produced them.
type Document struct {
	data     []byte
	file     *os.File
	tempPath string
	size     int64
}

// ReaderAt returns a random-access view over the document bytes.
func (d *Document) ReaderAt() io.ReaderAt {
	if d.file != nil {
		return d.file
	}
	return bytes.NewReader(d.data)
}

// Reader returns a fresh seekable reader over the full document.
func (d *Document) Reader() *io.SectionReader {
	return io.NewSectionReader(d.ReaderAt(), 0, d.size)
}

// Size returns the total document length in bytes.
func (d *Document) Size() int64 {
	return d.size
}

// Spooled reports whether the document is backed by a temp file.
func (d *Document) Spooled() bool {
	return d.tempPath != ""
}

// TempPath returns the backing temp file path, or empty for in-memory documents.
func (d *Document) TempPath() string {
	return d.tempPath
}

// Cleanup releases the document's backing storage. It is safe to call on
// every exit path, including after a failed spool, and is idempotent.
func (d *Document) Cleanup() error {
	if d.file == nil {
		d.data = nil
		return nil
	}

	closeErr := d.file.Close()
	removeErr := os.Remove(d.tempPath)
	d.file = nil
	if closeErr != nil {
		return closeErr
	}
	if removeErr != nil && !os.IsNotExist(removeErr) {
		return removeErr
	}
	return nil
}

// Spooler materializes upload bodies using one of two strategies selected
// purely by the declared size: whole-buffer below the threshold, bounded
// chunk copies into a temp file above it (or when the size is unknown).
type Spooler struct {
	threshold int64
	chunkSize int64
	tempDir   string
}

// NewSpooler creates a spooler with the given memory threshold, chunk size
// and scratch directory.
func NewSpooler(threshold, chunkSize int64, tempDir string) *Spooler {
	return &Spooler{
		threshold: threshold,
		chunkSize: chunkSize,
		tempDir:   tempDir,
	}
}

// ShouldSpool decides the reading strategy from the declared size alone.
// Unknown sizes are spooled so memory stays bounded.
func (s *Spooler) ShouldSpool(declaredSize int64) bool {
	return declaredSize < 0 || declaredSize > s.threshold
}

// Spool reads the upload body to completion and returns a Document.
// I/O failures surface as errors after the upload itself was validated,
// so callers classify them as server-side read failures. Partial temp
// files are removed before returning an error.
func (s *Spooler) Spool(u Upload) (*Document, error) {
	if u.Body == nil {
		return nil, fmt.Errorf("upload body is nil")
	}

	if s.ShouldSpool(u.Size) {
		return s.spoolToDisk(u.Body)
	}
	return s.bufferInMemory(u.Body)
}

// bufferInMemory reads the whole body in one operation.
func (s *Spooler) bufferInMemory(body io.Reader) (*Document, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to buffer upload: %w", err)
	}
	return &Document{data: data, size: int64(len(data))}, nil
}

// spoolToDisk copies the body into a temp file one chunk at a time,
// never holding more than a single chunk in memory.
func (s *Spooler) spoolToDisk(body io.Reader) (*Document, error) {
	tempFile, err := os.CreateTemp(s.tempDir, "w2-upload-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	chunk := make([]byte, s.chunkSize)
	written, err := io.CopyBuffer(tempFile, body, chunk)
	if err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return nil, fmt.Errorf("failed to spool upload to disk: %w", err)
	}

	// Rewind so the document can be read back from the start.
	if _, err := tempFile.Seek(0, io.SeekStart); err != nil {
		tempFile.Close()
		os.Remove(tempFile.Name())
		return nil, fmt.Errorf("failed to rewind temp file: %w", err)
	}

	return &Document{
		file:     tempFile,
		tempPath: tempFile.Name(),
		size:     written,
	}, nil
}
