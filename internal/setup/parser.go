package setup

import (
	"regexp"
	"strings"
	"unicode"
)

// SentinelConfigured is returned by Parse when the agent confirmed setup but
// no concrete language list could be recovered from the wording.
const SentinelConfigured = "Configuration Completed"

// Confirmation phrases checked as literal case-insensitive substrings.
var confirmationPhrases = []string{
	"setup is complete",
	"setup complete",
	"thanks! setup is complete",
	"great! i can now translate",
	"perfect! now i can help you with",
	"excellent! i'm ready to translate",
	"configuration successful",
}

// Looser confirmation shapes checked after the literals.
var confirmationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`now we speak\s+[a-z]+`),
	regexp.MustCompile(`(?s)ready for\s+[a-z]+.*translation`),
	regexp.MustCompile(`send your message and i'll translate`),
	regexp.MustCompile(`send your message and i will translate`),
	regexp.MustCompile(`(?s)thanks.*setup.*complete.*now.*speak.*send.*message`),
}

// extraction is one pattern in the ordered language-list extraction pipeline.
// Earlier entries are more specific and win over later, looser ones; the
// ordering is load-bearing and must not be rearranged.
type extraction struct {
	re      *regexp.Regexp
	combine bool // join two capture groups as "A, B"
}

var extractions = []extraction{
	{re: regexp.MustCompile(`(?i)now we speak\s+([^.\n!?]+)`)},
	{re: regexp.MustCompile(`(?is)thanks.*setup.*complete.*now we speak\s+([^.\n!?]+)`)},
	{re: regexp.MustCompile(`(?i)translate\s+(?:between\s+)?([A-Z][a-z]+(?:,\s*[A-Z][a-z]+)+)`)},
	{re: regexp.MustCompile(`(?i)help you with\s+([A-Z][a-z]+(?:,\s*[A-Z][a-z]+)*)`)},
	{re: regexp.MustCompile(`(?i)ready to translate\s+([A-Z][a-z]+(?:,\s*[A-Z][a-z]+)*)`)},
	{re: regexp.MustCompile(`(?i)ready for\s+([A-Z][a-z]+(?:,\s*[A-Z][a-z]+)*)\s+translation`)},
	{re: regexp.MustCompile(`(?is)(?:setup is complete|setup complete|thanks!|great!|perfect!|excellent!|ready for).*?([A-Z][a-z]+(?:,\s*[A-Z][a-z]+)+)`)},
	{re: regexp.MustCompile(`(?is)setup complete.*?ready to translate.*?between\s+([A-Z][a-z]+)\s+and\s+([A-Z][a-z]+)`), combine: true},
	{re: regexp.MustCompile(`(?i)between\s+([A-Z][a-z]+)\s+and\s+([A-Z][a-z]+)`), combine: true},
}

var (
	trailingSentence = regexp.MustCompile(`(?s)[.!?].*$`)
	listSeparator    = regexp.MustCompile(`[,;]|\s+and\s+`)
)

// Words that regularly leak into a captured list from the surrounding
// sentence. A Title-Case token survives the filter: there is no canonical
// language whitelist, so "And" the language beats "and" the conjunction.
var excludedWords = map[string]struct{}{
	"send": {}, "your": {}, "message": {}, "text": {}, "can": {},
	"help": {}, "translate": {}, "between": {}, "with": {}, "for": {},
}

// Parse reports whether the agent reply is a setup confirmation and, if so,
// the confirmed language list joined with ", ". When the reply confirms setup
// but no languages can be extracted, the SentinelConfigured value stands in.
func Parse(text string) (bool, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return false, ""
	}

	if !isConfirmation(strings.ToLower(text)) {
		return false, ""
	}

	raw := extractList(text)
	if raw == "" {
		return true, SentinelConfigured
	}

	names := filterNames(raw)
	if len(names) == 0 {
		return true, SentinelConfigured
	}
	return true, strings.Join(names, ", ")
}

func isConfirmation(lowered string) bool {
	for _, phrase := range confirmationPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	for _, re := range confirmationPatterns {
		if re.MatchString(lowered) {
			return true
		}
	}
	return false
}

// extractList runs the ordered extraction pipeline, stopping at the first
// pattern that yields a candidate list string.
func extractList(text string) string {
	for _, ex := range extractions {
		m := ex.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		var candidate string
		if ex.combine {
			candidate = m[1] + ", " + m[2]
		} else {
			candidate = m[1]
		}
		candidate = trailingSentence.ReplaceAllString(candidate, "")
		candidate = strings.Trim(candidate, ".,:; ")
		if candidate == "" || strings.Contains(strings.ToLower(candidate), "no languages") {
			return ""
		}
		return candidate
	}
	return ""
}

func filterNames(raw string) []string {
	var names []string
	for _, part := range listSeparator.Split(raw, -1) {
		name := strings.Trim(strings.TrimSpace(part), ".,:; ")
		if len(name) <= 1 {
			continue
		}
		if _, common := excludedWords[strings.ToLower(name)]; common && !isTitleCase(name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

func isTitleCase(s string) bool {
	r := []rune(s)
	return len(r) > 0 && unicode.IsUpper(r[0])
}
