package transcript

import (
	"log/slog"
	"regexp"
	"strings"
)

// SectionType classifies a speaker turn within an earnings call.
type SectionType string

const (
	SectionPreparedRemarks SectionType = "prepared_remarks"
	SectionQA              SectionType = "qa"
	// SectionOperator is reserved for explicit "Operator" lines; current
	// detection never assigns it.
	SectionOperator SectionType = "operator"
)

// Section is a single speaker turn. Character offsets index into the full
// transcript text; StartChar is the start of the attribution line.
type Section struct {
	Speaker   string
	Role      string
	Type      SectionType
	Text      string
	StartChar int
	EndChar   int
}

// ParsedTranscript is the result of parsing an earnings transcript.
type ParsedTranscript struct {
	Sections     []Section
	HasQA        bool
	SpeakerCount int
}

// Speaker attribution line formats seen in the wild:
//
//	"Tim Cook -- Chief Executive Officer"
//	"Tim Cook - CEO"
//	"Tim Cook, Chief Executive Officer"
var speakerRe = regexp.MustCompile(`(?m)^([A-Z][a-zA-Z.\-' ]+ [A-Z][a-zA-Z.\-' ]+)\s*[-–—,]+\s*(.+)$`)

var qaBoundaryRe = regexp.MustCompile(`(?im)^(?:question[- ]?and[- ]?answer|q\s*&\s*a|q&a\s+session)`)

// Parse splits an earnings transcript into speaker-attributed sections. A
// transcript with no recognizable speaker lines yields an empty section
// list; the caller treats the whole text as a single chunk.
func Parse(text string) ParsedTranscript {
	if strings.TrimSpace(text) == "" {
		return ParsedTranscript{}
	}

	// Everything at or past the Q&A boundary is classified as Q&A. With no
	// boundary present the cutoff sits at end-of-text and nothing qualifies.
	qaStart := len(text)
	qaLoc := qaBoundaryRe.FindStringIndex(text)
	if qaLoc != nil {
		qaStart = qaLoc[0]
	}

	speakerMatches := speakerRe.FindAllStringSubmatchIndex(text, -1)
	if len(speakerMatches) == 0 {
		return ParsedTranscript{}
	}

	sections := make([]Section, 0, len(speakerMatches))
	speakersSeen := make(map[string]struct{})

	for i, m := range speakerMatches {
		speaker := strings.TrimSpace(text[m[2]:m[3]])
		role := strings.TrimSpace(text[m[4]:m[5]])

		start := m[1]
		end := len(text)
		if i+1 < len(speakerMatches) {
			end = speakerMatches[i+1][0]
		}

		body := strings.TrimSpace(text[start:end])
		if body == "" {
			continue
		}

		sectionType := SectionPreparedRemarks
		if m[0] >= qaStart {
			sectionType = SectionQA
		}

		speakersSeen[speaker] = struct{}{}
		sections = append(sections, Section{
			Speaker:   speaker,
			Role:      role,
			Type:      sectionType,
			Text:      body,
			StartChar: m[0],
			EndChar:   end,
		})
	}

	slog.Debug("parsed transcript",
		"turns", len(sections), "speakers", len(speakersSeen), "has_qa", qaLoc != nil)

	return ParsedTranscript{
		Sections:     sections,
		HasQA:        qaLoc != nil,
		SpeakerCount: len(speakersSeen),
	}
}
