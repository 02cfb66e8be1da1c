package scoring

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Header phrases that mark a page as high value in financial documents.
var highValueHeadersRe = regexp.MustCompile(`(?i)(?:` +
	`executive\s+summary` +
	`|investment\s+(?:thesis|summary|conclusion)` +
	`|key\s+(?:findings|takeaways|drivers|risks)` +
	`|financial\s+(?:summary|highlights|overview)` +
	`|valuation` +
	`|price\s+target` +
	`|recommendation` +
	`|conclusion` +
	`|risk\s+factors?` +
	`|catalysts?` +
	`|earnings` +
	`|revenue` +
	`|guidance` +
	`|outlook` +
	`|management\s+discussion` +
	`|md\s*&\s*a` +
	`)`)

// Table-like content: a line with two pipes, two tabs, or a line that is
// only a decimal number. The last alternative also fires on ordinary
// standalone numbers; that imprecision is accepted.
var tableIndicatorRe = regexp.MustCompile(`(?m)(?:\|.*\||\t.*\t|^\s*\d+[.,]\d+\s*$)`)

// ScoredPage is a page with its importance score. Scores are unclamped and
// can be negative.
type ScoredPage struct {
	PageIndex int
	Text      string
	Score     float64
}

// ScorePage scores a single page for importance. The signals are additive
// and independent:
//
//	+3.0  high-value headers (executive summary, thesis, valuation, ...)
//	+2.0  table-like content
//	+1.5  digit density above 5%
//	+1.0  first two pages or last page
//	-2.0  very short pages (<200 chars: covers, disclaimers)
func ScorePage(text string, pageIndex, totalPages int) float64 {
	score := 0.0

	if highValueHeadersRe.MatchString(text) {
		score += 3.0
	}

	if tableIndicatorRe.MatchString(text) {
		score += 2.0
	}

	digits := 0
	for _, r := range text {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	total := len(text)
	if total == 0 {
		total = 1
	}
	if float64(digits)/float64(total) > 0.05 {
		score += 1.5
	}

	if pageIndex < 2 || pageIndex == totalPages-1 {
		score += 1.0
	}

	if len(strings.TrimSpace(text)) < 200 {
		score -= 2.0
	}

	return score
}

// SelectPages scores every page and keeps at most maxPages of them. The
// first two pages and the last page are always kept so document framing
// survives the budget; the remaining slots go to the highest-scoring pages.
// A maxPages < 0 means no limit. The result is in ascending page order.
func SelectPages(pageTexts []string, maxPages int) []ScoredPage {
	total := len(pageTexts)
	scored := make([]ScoredPage, 0, total)
	for i, text := range pageTexts {
		scored = append(scored, ScoredPage{
			PageIndex: i,
			Text:      text,
			Score:     ScorePage(text, i, total),
		})
	}

	if maxPages >= 0 && maxPages < total {
		mustInclude := make(map[int]struct{})
		if total > 0 {
			mustInclude[0] = struct{}{}
		}
		if total > 1 {
			mustInclude[1] = struct{}{}
		}
		if total > 2 {
			mustInclude[total-1] = struct{}{}
		}

		remaining := make([]ScoredPage, 0, total)
		for _, s := range scored {
			if _, ok := mustInclude[s.PageIndex]; !ok {
				remaining = append(remaining, s)
			}
		}
		sort.SliceStable(remaining, func(i, j int) bool {
			return remaining[i].Score > remaining[j].Score
		})

		budget := maxPages - len(mustInclude)
		selected := mustInclude
		for i := 0; i < budget && i < len(remaining); i++ {
			selected[remaining[i].PageIndex] = struct{}{}
		}

		kept := scored[:0]
		for _, s := range scored {
			if _, ok := selected[s.PageIndex]; ok {
				kept = append(kept, s)
			}
		}
		scored = kept
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].PageIndex < scored[j].PageIndex
	})

	slog.Debug("page scoring complete", "selected", len(scored), "total", total)
	return scored
}
