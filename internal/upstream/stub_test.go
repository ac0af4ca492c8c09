package upstream

import (
	"context"
	"strings"
	"testing"

	"github.com/a3tai/w2-intake/internal/fields"
	"github.com/a3tai/w2-intake/internal/logging"
)

func TestStubSubmitter_Submit(t *testing.T) {
	s := NewStubSubmitter(logging.Discard())

	data := &fields.W2Data{EIN: "12-3456789", SSN: "123-45-6789", Wages: "1.00", FederalTaxWithheld: "1.00"}
	result, err := s.Submit(context.Background(), data, "w2.pdf", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Submit() error: %v", err)
	}

	if result.DataID == "" || result.FileID == "" {
		t.Error("stub should generate both identifiers")
	}
	if result.DataID == result.FileID {
		t.Error("identifiers should be distinct")
	}
}

func TestStubSubmitter_Submit_CanceledContext(t *testing.T) {
	s := NewStubSubmitter(logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := &fields.W2Data{EIN: "12-3456789", SSN: "123-45-6789", Wages: "1.00", FederalTaxWithheld: "1.00"}
	if _, err := s.Submit(ctx, data, "w2.pdf", strings.NewReader("x")); err == nil {
		t.Fatal("Submit() should fail when the context is already canceled")
	}
}
