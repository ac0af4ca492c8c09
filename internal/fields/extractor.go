package fields

// Fields maps a field name to its extracted value. A name absent from
// the map means the field was not found, which is distinct from an
// empty value.
type Fields map[string]string

// Extractor applies an ordered set of rules against extracted text.
// Rules are independent of each other; the output keyed by field name
// does not depend on rule order.
type Extractor struct {
	rules []Rule
}

// NewExtractor creates an extractor over the given rules.
func NewExtractor(rules ...Rule) *Extractor {
	return &Extractor{rules: rules}
}

// Extract applies every rule to the full text. A rule that does not
// match simply leaves its field out of the result; extraction itself
// never fails.
func (e *Extractor) Extract(text string) Fields {
	result := make(Fields, len(e.rules))
	for _, rule := range e.rules {
		if value, ok := rule.Find(text); ok {
			result[rule.Name()] = value
		}
	}
	return result
}
