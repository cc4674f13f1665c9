package telegram

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/selenkaonchain/spreadbot/internal/models"
)

var urlPattern = regexp.MustCompile(`https?://\S+`)

// CleanQuestion strips embedded URLs from a market question and collapses
// leftover whitespace.
func CleanQuestion(question string) string {
	cleaned := urlPattern.ReplaceAllString(question, "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// MarketLink builds the canonical Polymarket link for an observed market,
// carrying the referral code. Markets without an event slug fall back to the
// site root.
func MarketLink(m models.Observation, referralCode string) string {
	if m.EventSlug != "" {
		return fmt.Sprintf("https://polymarket.com/event/%s?via=%s", m.EventSlug, referralCode)
	}
	return fmt.Sprintf("https://polymarket.com?via=%s", referralCode)
}

// FormatAlert renders one alert as the outbound message body. Nested markets
// get their group item title appended to the cleaned question.
func FormatAlert(a models.Alert, referralCode string) string {
	title := CleanQuestion(a.Market.Question)
	if a.Market.GroupItemTitle != "" {
		title = fmt.Sprintf("%s - %s", title, a.Market.GroupItemTitle)
	}

	return fmt.Sprintf(
		"== LIVE SPREAD ALERT ==\n\n"+
			"%s\n"+
			"Spread: %.4f (%.1f%%)\n"+
			"Volume: $%s\n\n"+
			" %s",
		title,
		a.Market.Spread, a.Market.Spread*100,
		humanize.CommafWithDigits(a.Market.Volume, 0),
		MarketLink(a.Market, referralCode),
	)
}
