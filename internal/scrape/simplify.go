package scrape

import (
	"regexp"
	"strings"
)

// descriptorWords modify an ingredient without identifying it. They are
// dropped from the retry query when the full name finds nothing.
var descriptorWords = map[string]bool{
	"fresh":    true,
	"raw":      true,
	"organic":  true,
	"boneless": true,
	"skinless": true,
	"trimmed":  true,
	"chopped":  true,
	"diced":    true,
	"minced":   true,
	"sliced":   true,
	"shredded": true,
	"grated":   true,
	"peeled":   true,
	"frozen":   true,
	"large":    true,
	"small":    true,
	"medium":   true,
}

var (
	parenthetical   = regexp.MustCompile(`\([^)]*\)`)
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9 ]+`)
)

// SimplifyQuery degrades a search query for the empty-result retry:
// parenthetical segments go first, then punctuation, then descriptor
// words, and whitespace is collapsed. If everything would be stripped
// the cleaned query is returned unsimplified so the retry still has
// something to search for.
func SimplifyQuery(query string) string {
	cleaned := strings.ToLower(query)
	cleaned = parenthetical.ReplaceAllString(cleaned, " ")
	cleaned = nonAlphanumeric.ReplaceAllString(cleaned, " ")

	fields := strings.Fields(cleaned)
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if !descriptorWords[f] {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return strings.Join(fields, " ")
	}
	return strings.Join(kept, " ")
}
