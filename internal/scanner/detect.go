package scanner

import "regexp"

// formTagPatterns match opening tags of form-associated elements. The
// table stays data-driven so new signals are one line to add and each
// pattern is independently testable. Tag-opening syntax only; nesting
// is deliberately not validated.
var formTagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<form[\s/>]`),
	regexp.MustCompile(`(?i)<input[\s/>]`),
	regexp.MustCompile(`(?i)<select[\s/>]`),
	regexp.MustCompile(`(?i)<textarea[\s/>]`),
	regexp.MustCompile(`(?i)<button[\s/>]`),
	regexp.MustCompile(`(?i)<label[\s/>]`),
}

// HasFormElements reports whether the HTML contains interactive form
// elements. Empty input never has forms.
func HasFormElements(html string) bool {
	if html == "" {
		return false
	}
	for _, pattern := range formTagPatterns {
		if pattern.MatchString(html) {
			return true
		}
	}
	return false
}
