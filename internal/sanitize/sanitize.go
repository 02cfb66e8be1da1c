package sanitize

import "regexp"

// Document text is untrusted input that ends up inside LLM prompts. These
// patterns cover the common prompt-injection families seen in scraped and
// uploaded documents; matches are replaced, never dropped, so surrounding
// financial content survives.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(?:all\s+)?previous\s+instructions`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+a`),
	regexp.MustCompile(`(?im)^\s*system\s*:.*$`),
	regexp.MustCompile(`(?is)<\s*system\s*>.*?<\s*/\s*system\s*>`),
	regexp.MustCompile(`(?im)^\s*assistant\s*:.*$`),
	regexp.MustCompile(`(?i)forget\s+(?:everything|your)`),
	regexp.MustCompile(`(?i)new\s+instructions\s*:`),
	regexp.MustCompile(`(?i)override\s+your\s+(?:instructions|rules)`),
}

const redacted = "[REDACTED]"

// DocumentText replaces prompt-injection attempts in document text with a
// redaction marker. Clean text passes through unchanged.
func DocumentText(text string) string {
	for _, p := range injectionPatterns {
		text = p.ReplaceAllString(text, redacted)
	}
	return text
}
