package fields

import (
	"fmt"
	"strings"
)

// MissingFieldsError reports every required field that is absent or
// empty after extraction, in one error. The document parsed fine; it
// just did not contain the expected data.
type MissingFieldsError struct {
	Fields []string
}

// Error implements the error interface.
func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields in PDF: %s", strings.Join(e.Fields, ", "))
}

// Validate confirms every required field is present with a non-empty
// value. On failure it returns a MissingFieldsError carrying the
// complete list of offending field names, never just the first.
func Validate(extracted Fields, required []string) error {
	var missing []string
	for _, name := range required {
		if value, ok := extracted[name]; !ok || value == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}
