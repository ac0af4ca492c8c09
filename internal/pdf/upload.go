package pdf

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
)

const (
	// Extension is the only accepted upload file extension
	Extension = ".pdf"
	// MediaType is the only accepted upload content type
	MediaType = "application/pdf"
)

// Upload describes an inbound document before any bytes have been read.
// Size is the declared length indicator; a negative value means unknown.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ValidateUpload checks the declared filename extension, content type and
// size. It runs before any bytes are buffered or spooled and has no side
// effects. Any mismatch is a client input error.
func ValidateUpload(u Upload, maxFileSize int64) error {
	if u.Filename == "" {
		return fmt.Errorf("filename is required")
	}

	if ext := strings.ToLower(filepath.Ext(u.Filename)); ext != Extension {
		return fmt.Errorf("file extension must be %s, got %q", Extension, ext)
	}

	if u.ContentType != "" {
		mediaType, _, err := mime.ParseMediaType(u.ContentType)
		if err != nil {
			return fmt.Errorf("invalid content type %q", u.ContentType)
		}
		if mediaType != MediaType {
			return fmt.Errorf("content type must be %s, got %q", MediaType, mediaType)
		}
	}

	if u.Size == 0 {
		return fmt.Errorf("uploaded file is empty")
	}

	if maxFileSize > 0 && u.Size > maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)", u.Size, maxFileSize)
	}

	return nil
}
