package fields

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// W2Data is the typed payload reported to third-party services. Values
// stay strings end to end; identifiers and amounts are forwarded
// verbatim, never interpreted.
type W2Data struct {
	EIN                string `json:"ein" validate:"required,len=10"`
	SSN                string `json:"ssn" validate:"required,len=11"`
	Wages              string `json:"wages" validate:"required,numeric"`
	FederalTaxWithheld string `json:"federal_tax_withheld" validate:"required,numeric"`
}

// payloadFieldNames maps struct field names back to their wire names for
// error reporting.
var payloadFieldNames = map[string]string{
	"EIN":                FieldEIN,
	"SSN":                FieldSSN,
	"Wages":              FieldWages,
	"FederalTaxWithheld": FieldFederalTaxWithheld,
}

var payloadValidator = validator.New(validator.WithRequiredStructEnabled())

// BuildW2Data assembles the typed payload from extracted fields and
// checks each value is well-formed. Malformed values are reported the
// same way as missing ones, with the full offending list.
func BuildW2Data(extracted Fields) (*W2Data, error) {
	data := &W2Data{
		EIN:                extracted[FieldEIN],
		SSN:                extracted[FieldSSN],
		Wages:              extracted[FieldWages],
		FederalTaxWithheld: extracted[FieldFederalTaxWithheld],
	}

	if err := payloadValidator.Struct(data); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			invalid := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				name := payloadFieldNames[fe.StructField()]
				if name == "" {
					name = fe.StructField()
				}
				invalid = append(invalid, name)
			}
			return nil, &MissingFieldsError{Fields: invalid}
		}
		return nil, err
	}

	return data, nil
}

// ToFields converts the payload back into the generic field mapping,
// used when echoing extracted values to the caller.
func (d *W2Data) ToFields() Fields {
	return Fields{
		FieldEIN:                d.EIN,
		FieldSSN:                d.SSN,
		FieldWages:              d.Wages,
		FieldFederalTaxWithheld: d.FederalTaxWithheld,
	}
}
