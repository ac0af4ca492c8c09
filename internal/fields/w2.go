package fields

import "strings"

// Field names extracted from W-2 documents.
const (
	FieldEIN                = "ein"
	FieldSSN                = "ssn"
	FieldWages              = "wages"
	FieldFederalTaxWithheld = "federal_tax_withheld"
)

// W2Rules returns the extraction rules for the standard W-2 text layout.
// Each rule anchors on the labels that appear near the value on the form
// and allows up to 20 characters of filler between label and value.
func W2Rules() []Rule {
	return []Rule{
		// EIN in XX-XXXXXXX form near an employer identification label.
		NewPatternRule(FieldEIN,
			`(?i)(?:EIN|Employer.{0,20}ID|Federal.{0,20}ID).{0,20}(\d{2}-\d{7})`),

		// SSN in XXX-XX-XXXX form near a social security label.
		NewPatternRule(FieldSSN,
			`(?i)(?:SSN|Social.{0,20}Security|Employee.{0,20}SSN).{0,20}(\d{3}-\d{2}-\d{4})`),

		// Box 1 wages, a monetary amount with optional thousands separators.
		// The label gap is lazy so the amount is captured in full instead
		// of a greedy gap swallowing all but its last digit.
		NewPatternRule(FieldWages,
			`(?i)(?:Box.{0,5}1|Wages).{0,20}?\$?([\d,]+\.?\d{0,2})`).
			WithNormalizer(stripCommas),

		// Box 2 federal income tax withheld.
		NewPatternRule(FieldFederalTaxWithheld,
			`(?i)(?:Box.{0,5}2|Federal.{0,20}tax|Tax.{0,20}withheld).{0,20}?\$?([\d,]+\.?\d{0,2})`).
			WithNormalizer(stripCommas),
	}
}

// W2Required returns the field names that must be present for a W-2
// document to be accepted.
func W2Required() []string {
	return []string{FieldEIN, FieldSSN, FieldWages, FieldFederalTaxWithheld}
}

// stripCommas removes thousands separators from monetary values.
func stripCommas(value string) string {
	return strings.ReplaceAll(value, ",", "")
}
