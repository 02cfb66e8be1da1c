package scoring

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pad extends text past the 200-char minimum so the short-page penalty does
// not interfere with the signal under test.
func pad(text string) string {
	if len(text) >= 250 {
		return text
	}
	return text + strings.Repeat(" This is additional content to reach the minimum page length.", 5)
}

func TestScorePage_HighValueHeaders(t *testing.T) {
	headers := []string{
		"Executive Summary\n\nKey findings from our analysis.",
		"Valuation\n\nOur DCF model implies fair value of $195 per share.",
		"Risk Factors\n\nForeign exchange headwinds remain a concern.",
		"Investment Thesis\n\nWe remain constructive on the shares.",
		"Guidance\n\nManagement raised full-year guidance.",
		"MD&A\n\nDiscussion and analysis of quarterly results.",
	}
	for _, h := range headers {
		t.Run(strings.SplitN(h, "\n", 2)[0], func(t *testing.T) {
			score := ScorePage(pad(h), 5, 20)
			assert.GreaterOrEqual(t, score, 3.0)
		})
	}
}

func TestScorePage_TableBonus(t *testing.T) {
	text := pad("| Year | Revenue | EPS |\n|---|---|---|\n| 2024 | $395B | $6.97 |")
	assert.GreaterOrEqual(t, ScorePage(text, 5, 20), 2.0)
}

func TestScorePage_StandaloneDecimalCountsAsTable(t *testing.T) {
	// Known heuristic imprecision: a lone decimal value trips the table
	// indicator even outside a table.
	text := pad("some prose\n46.2\nmore prose without structure at all")
	assert.GreaterOrEqual(t, ScorePage(text, 5, 20), 2.0)
}

func TestScorePage_DigitDensityBonus(t *testing.T) {
	text := pad("Revenue: $94,932,000,000. EPS: $6.97. P/E: 28.4x. Shares: 15,408,095,000.")
	assert.GreaterOrEqual(t, ScorePage(text, 5, 20), 1.5)
}

func TestScorePage_PositionBonuses(t *testing.T) {
	text := pad("Generic content without any special markers or buzzwords here.")
	assert.GreaterOrEqual(t, ScorePage(text, 0, 20), 1.0)
	assert.GreaterOrEqual(t, ScorePage(text, 1, 20), 1.0)
	assert.GreaterOrEqual(t, ScorePage(text, 19, 20), 1.0)
}

func TestScorePage_MiddlePageScoresZero(t *testing.T) {
	// All-lowercase, no digits, no tables, >=200 chars, interior page.
	text := strings.Repeat("a", 250)
	assert.Equal(t, 0.0, ScorePage(text, 10, 20))
}

func TestScorePage_ShortPagePenalty(t *testing.T) {
	score := ScorePage("Cover page.", 5, 20)
	assert.LessOrEqual(t, score, -2.0)
}

func TestScorePage_Cumulative(t *testing.T) {
	text := pad("Executive Summary\n\n" +
		"| Metric | Value |\n|---|---|\n" +
		"| Revenue | $94,932,000,000 |\n" +
		"| EPS | $6.97 |\n" +
		"| Net Income | $25,010,000,000 |")
	score := ScorePage(text, 0, 20)
	assert.GreaterOrEqual(t, score, 5.0)
}

func TestSelectPages_NoLimitReturnsAll(t *testing.T) {
	pages := []string{pad("one"), pad("two"), pad("three")}
	selected := SelectPages(pages, -1)
	assert.Len(t, selected, 3)
}

func TestSelectPages_LimitAboveTotalReturnsAll(t *testing.T) {
	pages := []string{pad("one"), pad("two")}
	selected := SelectPages(pages, 10)
	assert.Len(t, selected, 2)
}

func TestSelectPages_MustIncludeFraming(t *testing.T) {
	pages := make([]string, 20)
	for i := range pages {
		pages[i] = pad(fmt.Sprintf("filler content for page %c without markers", 'a'+i))
	}
	// A high-value interior page should win a budget slot.
	pages[10] = pad("Executive Summary\n\nRevenue and valuation with 1234567890 digits 9876543210.")

	selected := SelectPages(pages, 5)
	require.Len(t, selected, 5)

	indices := make([]int, 0, len(selected))
	for _, s := range selected {
		indices = append(indices, s.PageIndex)
	}
	assert.Contains(t, indices, 0)
	assert.Contains(t, indices, 1)
	assert.Contains(t, indices, 19)
	assert.Contains(t, indices, 10)

	// Ascending page order.
	for i := 1; i < len(indices); i++ {
		assert.Greater(t, indices[i], indices[i-1])
	}
}

func TestSelectPages_ExactBudget(t *testing.T) {
	pages := make([]string, 10)
	for i := range pages {
		pages[i] = pad("interior page content without any scoring signal words")
	}
	selected := SelectPages(pages, 4)
	assert.Len(t, selected, 4)
}

func TestSelectPages_TwoPages(t *testing.T) {
	pages := []string{pad("first"), pad("second")}
	selected := SelectPages(pages, 1)
	// Both pages are must-include; the budget cannot shrink below them.
	assert.Len(t, selected, 2)
}
