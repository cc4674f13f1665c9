package telegram

import (
	"strings"
	"testing"

	"github.com/selenkaonchain/spreadbot/internal/models"
)

func TestCleanQuestion(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no urls",
			in:   "Will X happen?",
			want: "Will X happen?",
		},
		{
			name: "embedded url stripped",
			in:   "Will X happen? https://example.com/spam details",
			want: "Will X happen? details",
		},
		{
			name: "http url stripped",
			in:   "See http://example.com now",
			want: "See now",
		},
		{
			name: "whitespace collapsed",
			in:   "  Will   X  happen?  ",
			want: "Will X happen?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanQuestion(tt.in); got != tt.want {
				t.Errorf("CleanQuestion(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarketLink(t *testing.T) {
	m := models.Observation{ID: "m1", EventSlug: "will-x-happen"}
	got := MarketLink(m, "selenka")
	want := "https://polymarket.com/event/will-x-happen?via=selenka"
	if got != want {
		t.Errorf("MarketLink = %q, want %q", got, want)
	}
}

func TestMarketLink_FallbackWithoutSlug(t *testing.T) {
	m := models.Observation{ID: "m1"}
	got := MarketLink(m, "selenka")
	want := "https://polymarket.com?via=selenka"
	if got != want {
		t.Errorf("MarketLink = %q, want %q", got, want)
	}
}

func TestFormatAlert(t *testing.T) {
	alert := models.Alert{
		Market: models.Observation{
			ID:        "m1",
			Question:  "Will X happen? https://spam.example",
			Volume:    150000,
			Spread:    0.30,
			EventSlug: "will-x-happen",
		},
		Score: 3750,
	}

	msg := FormatAlert(alert, "selenka")

	if !strings.HasPrefix(msg, "== LIVE SPREAD ALERT ==") {
		t.Errorf("unexpected header:\n%s", msg)
	}
	if strings.Contains(msg, "spam.example") {
		t.Error("embedded URL not stripped from title")
	}
	if !strings.Contains(msg, "Spread: 0.3000 (30.0%)") {
		t.Errorf("spread line missing:\n%s", msg)
	}
	if !strings.Contains(msg, "Volume: $150,000") {
		t.Errorf("volume line missing:\n%s", msg)
	}
	if !strings.Contains(msg, "https://polymarket.com/event/will-x-happen?via=selenka") {
		t.Errorf("market link missing:\n%s", msg)
	}
}

func TestFormatAlert_NestedMarketTitle(t *testing.T) {
	alert := models.Alert{
		Market: models.Observation{
			ID:             "m1",
			Question:       "Who wins the primary?",
			GroupItemTitle: "Candidate A",
			Volume:         200000,
			Spread:         0.10,
		},
	}

	msg := FormatAlert(alert, "selenka")
	if !strings.Contains(msg, "Who wins the primary? - Candidate A") {
		t.Errorf("group item title not appended:\n%s", msg)
	}
}
