package fields

import "regexp"

// Rule locates a single named field inside extracted document text.
// Implementations must be deterministic: the same text always yields the
// same value. PatternRule is the only strategy in use today; positional
// or grammar-based strategies can be added behind the same interface
// without touching the pipeline.
type Rule interface {
	// Name returns the field name this rule produces.
	Name() string
	// Find returns the field value and whether the rule matched.
	Find(text string) (string, bool)
}

// PatternRule locates a field with a regular expression. The first
// occurrence in document order wins, and the first capture group is the
// field value. An optional normalizer canonicalizes the raw match.
type PatternRule struct {
	name      string
	pattern   *regexp.Regexp
	normalize func(string) string
}

// NewPatternRule compiles a pattern rule. The pattern must contain at
// least one capture group; panics on an invalid expression since rules
// are declared statically.
func NewPatternRule(name, pattern string) *PatternRule {
	return &PatternRule{
		name:    name,
		pattern: regexp.MustCompile(pattern),
	}
}

// WithNormalizer sets a canonicalization step applied to matched values.
func (r *PatternRule) WithNormalizer(fn func(string) string) *PatternRule {
	r.normalize = fn
	return r
}

// Name returns the field name this rule produces.
func (r *PatternRule) Name() string {
	return r.name
}

// Find applies the pattern against the full text and returns the first
// match in document order.
func (r *PatternRule) Find(text string) (string, bool) {
	matches := r.pattern.FindStringSubmatch(text)
	if matches == nil || len(matches) < 2 {
		return "", false
	}

	value := matches[1]
	if r.normalize != nil {
		value = r.normalize(value)
	}
	return value, true
}
