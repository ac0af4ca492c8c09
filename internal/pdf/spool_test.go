package pdf

import (
	"bytes"
	"crypto/rand"
	"errors"
	"io"
	"os"
	"testing"
)

func TestSpooler_ShouldSpool(t *testing.T) {
	s := NewSpooler(1024, 64, t.TempDir())

	tests := []struct {
		name         string
		declaredSize int64
		want         bool
	}{
		{"below threshold", 512, false},
		{"at threshold", 1024, false},
		{"above threshold", 1025, true},
		{"unknown size", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ShouldSpool(tt.declaredSize); got != tt.want {
				t.Errorf("ShouldSpool(%d) = %v, want %v", tt.declaredSize, got, tt.want)
			}
		})
	}
}

func TestSpooler_Spool_InMemory(t *testing.T) {
	s := NewSpooler(1024, 64, t.TempDir())
	content := []byte("small document content")

	doc, err := s.Spool(Upload{Filename: "w2.pdf", Size: int64(len(content)), Body: bytes.NewReader(content)})
	if err != nil {
		t.Fatalf("Spool() error: %v", err)
	}
	defer doc.Cleanup()

	if doc.Spooled() {
		t.Error("small upload should stay in memory")
	}
	if doc.Size() != int64(len(content)) {
		t.Errorf("Size() = %d, want %d", doc.Size(), len(content))
	}

	got, err := io.ReadAll(doc.Reader())
	if err != nil {
		t.Fatalf("reading document: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("document content does not match input")
	}
}

func TestSpooler_Spool_ToDisk(t *testing.T) {
	tempDir := t.TempDir()
	s := NewSpooler(1024, 64, tempDir)

	// Larger than the threshold and not a multiple of the chunk size.
	content := make([]byte, 5000)
	if _, err := rand.Read(content); err != nil {
		t.Fatalf("generating content: %v", err)
	}

	doc, err := s.Spool(Upload{Filename: "w2.pdf", Size: int64(len(content)), Body: bytes.NewReader(content)})
	if err != nil {
		t.Fatalf("Spool() error: %v", err)
	}

	if !doc.Spooled() {
		t.Fatal("large upload should be spooled to disk")
	}
	if doc.TempPath() == "" {
		t.Fatal("spooled document should report its temp path")
	}
	if _, err := os.Stat(doc.TempPath()); err != nil {
		t.Fatalf("temp file should exist while document is live: %v", err)
	}

	// Chunked disk copies must be byte-for-byte identical to the input.
	got, err := io.ReadAll(doc.Reader())
	if err != nil {
		t.Fatalf("reading document: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Error("spooled content does not match input")
	}

	if err := doc.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error: %v", err)
	}
	if _, err := os.Stat(doc.TempPath()); !os.IsNotExist(err) {
		t.Error("temp file should be removed after Cleanup")
	}

	// A second cleanup is a no-op.
	if err := doc.Cleanup(); err != nil {
		t.Errorf("second Cleanup() should be a no-op, got %v", err)
	}
}

func TestSpooler_Spool_UnknownSizeGoesToDisk(t *testing.T) {
	s := NewSpooler(1024, 64, t.TempDir())
	content := []byte("short body with unknown declared length")

	doc, err := s.Spool(Upload{Filename: "w2.pdf", Size: -1, Body: bytes.NewReader(content)})
	if err != nil {
		t.Fatalf("Spool() error: %v", err)
	}
	defer doc.Cleanup()

	if !doc.Spooled() {
		t.Error("unknown-size upload should be spooled to disk")
	}
	if doc.Size() != int64(len(content)) {
		t.Errorf("Size() = %d, want %d", doc.Size(), len(content))
	}
}

func TestSpooler_Spool_ReaderIsRepeatable(t *testing.T) {
	s := NewSpooler(1024, 64, t.TempDir())
	content := []byte("read me twice")

	doc, err := s.Spool(Upload{Filename: "w2.pdf", Size: int64(len(content)), Body: bytes.NewReader(content)})
	if err != nil {
		t.Fatalf("Spool() error: %v", err)
	}
	defer doc.Cleanup()

	first, _ := io.ReadAll(doc.Reader())
	second, _ := io.ReadAll(doc.Reader())
	if !bytes.Equal(first, second) {
		t.Error("each Reader() call should yield the full document")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestSpooler_Spool_ReadFailureCleansUpTempFile(t *testing.T) {
	tempDir := t.TempDir()
	s := NewSpooler(1024, 64, tempDir)

	_, err := s.Spool(Upload{Filename: "w2.pdf", Size: -1, Body: failingReader{}})
	if err == nil {
		t.Fatal("Spool() should fail when the body read fails")
	}

	entries, readErr := os.ReadDir(tempDir)
	if readErr != nil {
		t.Fatalf("reading temp dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("partial temp files should be removed, found %d entries", len(entries))
	}
}

func TestSpooler_Spool_NilBody(t *testing.T) {
	s := NewSpooler(1024, 64, t.TempDir())
	if _, err := s.Spool(Upload{Filename: "w2.pdf", Size: 10}); err == nil {
		t.Fatal("Spool() should reject a nil body")
	}
}
