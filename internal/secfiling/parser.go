package secfiling

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Matches "ITEM 1.", "ITEM 1A.", "Item 7 -", "ITEM 7A. ", etc. at the start
// of a line. The trailing class accepts period, whitespace, hyphen, en dash
// and em dash as the delimiter between the item number and its title.
var itemRe = regexp.MustCompile(`(?im)^ITEM\s+(\d+[A-Za-z]?)[.\s\-–—]`)

// Standard Form 10-K item taxonomy, used to label detected sections.
var itemTitles = map[string]string{
	"1":  "Business",
	"1A": "Risk Factors",
	"1B": "Unresolved Staff Comments",
	"2":  "Properties",
	"3":  "Legal Proceedings",
	"4":  "Mine Safety Disclosures",
	"5":  "Market for Common Equity",
	"6":  "Reserved",
	"7":  "MD&A",
	"7A": "Quantitative and Qualitative Disclosures About Market Risk",
	"8":  "Financial Statements",
	"9":  "Changes in and Disagreements With Accountants",
	"9A": "Controls and Procedures",
	"9B": "Other Information",
	"10": "Directors, Executive Officers and Corporate Governance",
	"11": "Executive Compensation",
	"12": "Security Ownership",
	"13": "Certain Relationships and Related Transactions",
	"14": "Principal Accountant Fees and Services",
	"15": "Exhibits and Financial Statement Schedules",
}

// Section is a detected ITEM section within an SEC filing. Page numbers are
// 0-based and inclusive; character offsets index into the concatenated
// filing text.
type Section struct {
	Title      string
	ItemNumber string
	StartPage  int
	EndPage    int
	StartChar  int
	EndChar    int
}

// ParsedFiling is the result of section detection over a filing.
type ParsedFiling struct {
	TotalPages  int
	TotalChars  int
	Sections    []Section
	HasSections bool
}

// Parse detects ITEM sections in an SEC filing from per-page text. Pages are
// joined with a blank line before scanning so that offsets are stable across
// page boundaries. A filing with no recognizable ITEM markers is not an
// error: the result simply reports HasSections=false and the caller falls
// back to generic chunking.
func Parse(pageTexts []string) ParsedFiling {
	if len(pageTexts) == 0 {
		return ParsedFiling{}
	}

	fullText := strings.Join(pageTexts, "\n\n")
	totalChars := len(fullText)

	// Starting offset of each page within the joined text.
	pageOffsets := make([]int, 0, len(pageTexts))
	offset := 0
	for _, pt := range pageTexts {
		pageOffsets = append(pageOffsets, offset)
		offset += len(pt) + 2 // the \n\n separator
	}

	matches := itemRe.FindAllStringSubmatchIndex(fullText, -1)
	if len(matches) == 0 {
		return ParsedFiling{
			TotalPages: len(pageTexts),
			TotalChars: totalChars,
		}
	}

	sections := make([]Section, 0, len(matches))
	for i, m := range matches {
		startChar := m[0]
		itemNum := strings.ToUpper(fullText[m[2]:m[3]])

		endChar := totalChars
		if i+1 < len(matches) {
			endChar = matches[i+1][0]
		}

		title := "Item " + itemNum
		if label, ok := itemTitles[itemNum]; ok {
			title = fmt.Sprintf("Item %s. %s", itemNum, label)
		}

		sections = append(sections, Section{
			Title:      title,
			ItemNumber: itemNum,
			StartPage:  charToPage(startChar, pageOffsets),
			EndPage:    charToPage(endChar-1, pageOffsets),
			StartChar:  startChar,
			EndChar:    endChar,
		})
	}

	slog.Debug("detected sections in SEC filing", "sections", len(sections), "pages", len(pageTexts))

	return ParsedFiling{
		TotalPages:  len(pageTexts),
		TotalChars:  totalChars,
		Sections:    sections,
		HasSections: true,
	}
}

// charToPage maps a character offset to the 0-based page containing it:
// the highest page whose start offset does not exceed the character offset.
func charToPage(charOffset int, pageOffsets []int) int {
	for i := len(pageOffsets) - 1; i >= 0; i-- {
		if charOffset >= pageOffsets[i] {
			return i
		}
	}
	return 0
}
