// Package testutil builds real PDF documents for tests.
package testutil

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
)

// Values used by the complete fixture. Tests that assert on extracted
// fields compare against these.
const (
	EIN                = "12-3456789"
	SSN                = "123-45-6789"
	Wages              = "39500.00"
	FederalTaxWithheld = "4200.00"
)

// W2Document describes the labeled lines to render. An empty field is
// left out of the document entirely. ExtraPages appends pages of filler
// text, used to grow the file past spooling thresholds.
type W2Document struct {
	EIN                string
	SSN                string
	Wages              string
	FederalTaxWithheld string
	ExtraPages         int
}

// CompleteW2 is a document carrying every required field.
func CompleteW2() W2Document {
	return W2Document{
		EIN:                EIN,
		SSN:                SSN,
		Wages:              "39,500.00",
		FederalTaxWithheld: "4,200.00",
	}
}

// Bytes renders the document to PDF bytes.
func (d W2Document) Bytes(t *testing.T) []byte {
	t.Helper()

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(10, 10, 10)
	doc.SetAutoPageBreak(true, 10)
	doc.AddPage()
	doc.SetFont("Arial", "B", 14)
	doc.Cell(0, 10, "Form W-2 Wage and Tax Statement")
	doc.Ln(12)
	doc.SetFont("Arial", "", 11)

	line := func(label, value string) {
		if value == "" {
			return
		}
		doc.Cell(0, 8, fmt.Sprintf("%s: %s", label, value))
		doc.Ln(8)
	}

	line("EIN", d.EIN)
	line("SSN", d.SSN)
	line("Wages", d.Wages)
	line("Federal tax withheld", d.FederalTaxWithheld)

	filler := strings.Repeat("supplemental statement text ", 40)
	for i := 0; i < d.ExtraPages; i++ {
		doc.AddPage()
		doc.SetFont("Arial", "", 11)
		for j := 0; j < 25; j++ {
			doc.MultiCell(0, 6, filler, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("failed to render test PDF: %v", err)
	}
	return buf.Bytes()
}

// NotAPDF returns bytes that no PDF parser will accept.
func NotAPDF() []byte {
	return []byte("this is plain text, not a PDF document")
}
