package boilerplate

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
)

// Config toggles the filter and extends it with caller-supplied patterns.
// Paragraphs containing a protected keyword are never removed, whatever
// else they match.
type Config struct {
	Enabled           bool
	CustomPatterns    []string
	ProtectedKeywords []string
}

func DefaultConfig() Config {
	return Config{
		Enabled: true,
		ProtectedKeywords: []string{
			"insider", "not public", "13f", "material nonpublic",
		},
	}
}

// Result is the cleaned text plus removal statistics.
type Result struct {
	Text              string
	CharsRemoved      int
	SectionsRemoved   int
	ParagraphsRemoved int
}

// Section headers that open a boilerplate block. Matching is anchored: the
// header must start the line.
var sectionBoilerplateRe = regexp.MustCompile(`(?i)^(?:` +
	`important\s+disclosures?` +
	`|disclosure\s+appendix` +
	`|regulatory\s+disclosures?` +
	`|analyst\s+certifications?` +
	`|general\s+disclosures?` +
	`|required\s+disclosures?` +
	`|legal\s+disclosures?` +
	`|distribution\s+of\s+ratings` +
	`|valuation\s+methodology\s+(?:and\s+)?risk` +
	`)`)

// Paragraph-level discard patterns: disclaimers, filing artifacts and
// legalese that add no retrieval value.
var paraDiscardPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)not\s+an?\s+offer\s+to\s+sell`),
	regexp.MustCompile(`(?i)past\s+performance\s+(?:is\s+)?not\s+(?:necessarily\s+)?(?:indicative|a\s+guarantee)`),
	regexp.MustCompile(`(?i)this\s+(?:report|document|research)\s+(?:is|was)\s+prepared\s+(?:by|for)`),
	regexp.MustCompile(`(?i)(?:all|any)\s+(?:rights?\s+)?reserved`),
	regexp.MustCompile(`(?i)forward[- ]looking\s+statements?`),
	regexp.MustCompile(`(?i)safe\s+harbor\s+(?:statement|provision)`),
	regexp.MustCompile(`(?i)(?:sox|sarbanes[- ]oxley)\s+(?:section|certification)`),
	regexp.MustCompile(`(?i)xbrl\s+(?:instance|taxonomy|viewer)`),
	regexp.MustCompile(`(?i)edgar\s+(?:filing|header|submission)`),
	regexp.MustCompile(`(?i)pursuant\s+to\s+(?:section|rule)\s+\d`),
	regexp.MustCompile(`(?i)(?:the\s+)?securities\s+and\s+exchange\s+commission\s+has\s+not`),
	regexp.MustCompile(`(?i)this\s+communication\s+is\s+(?:not\s+)?(?:intended|directed)`),
}

var paragraphSplitRe = regexp.MustCompile(`\n{2,}`)

// Filter removes boilerplate from financial documents in two passes:
// section-level (from a boilerplate header to the next substantive header)
// and paragraph-level (regex match against individual paragraphs). A
// disabled filter returns the input untouched.
type Filter struct {
	config Config
	extra  []*regexp.Regexp
}

func NewFilter(config Config) *Filter {
	extra := make([]*regexp.Regexp, 0, len(config.CustomPatterns))
	for _, p := range config.CustomPatterns {
		extra = append(extra, regexp.MustCompile(`(?i)`+p))
	}
	return &Filter{config: config, extra: extra}
}

func (f *Filter) Filter(text string) Result {
	if !f.config.Enabled {
		return Result{Text: text}
	}

	originalLen := len(text)

	text, sectionsRemoved := f.stripSections(text)
	text, paragraphsRemoved := f.stripParagraphs(text)

	charsRemoved := originalLen - len(text)
	if charsRemoved > 0 {
		slog.Debug("boilerplate removed",
			"chars", charsRemoved,
			"sections", sectionsRemoved,
			"paragraphs", paragraphsRemoved)
	}

	return Result{
		Text:              text,
		CharsRemoved:      charsRemoved,
		SectionsRemoved:   sectionsRemoved,
		ParagraphsRemoved: paragraphsRemoved,
	}
}

// stripSections drops everything from a boilerplate header line until the
// next line that looks like a substantive header: non-empty, starting with
// an uppercase character and under 120 chars.
func (f *Filter) stripSections(text string) (string, int) {
	lines := strings.Split(text, "\n")
	output := make([]string, 0, len(lines))
	skipping := false
	removed := 0

	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if sectionBoilerplateRe.MatchString(stripped) {
			skipping = true
			removed++
			continue
		}

		if skipping && stripped != "" && len(stripped) < 120 {
			if first := []rune(stripped)[0]; unicode.IsUpper(first) {
				skipping = false
			}
		}

		if skipping {
			continue
		}

		output = append(output, line)
	}

	return strings.Join(output, "\n"), removed
}

func (f *Filter) stripParagraphs(text string) (string, int) {
	paragraphs := paragraphSplitRe.Split(text, -1)
	kept := make([]string, 0, len(paragraphs))
	removed := 0

	allPatterns := append(append([]*regexp.Regexp{}, paraDiscardPatterns...), f.extra...)

	for _, para := range paragraphs {
		if f.isProtected(para) {
			kept = append(kept, para)
			continue
		}

		discard := false
		for _, p := range allPatterns {
			if p.MatchString(para) {
				discard = true
				break
			}
		}
		if discard {
			removed++
			continue
		}

		kept = append(kept, para)
	}

	return strings.Join(kept, "\n\n"), removed
}

func (f *Filter) isProtected(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range f.config.ProtectedKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
