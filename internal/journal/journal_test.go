package journal

import (
	"testing"
	"time"

	"github.com/selenkaonchain/spreadbot/internal/models"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test journal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func testAlert(id string, score float64, detectedAt time.Time) models.Alert {
	return models.Alert{
		Market: models.Observation{
			ID:        id,
			Question:  "Will X happen?",
			Volume:    150000,
			BestBid:   0.30,
			BestAsk:   0.60,
			Spread:    0.30,
			EventSlug: "will-x-happen",
		},
		Score:       score,
		VolumeDelta: 50000,
		PriceMove:   0.25,
		DetectedAt:  detectedAt,
	}
}

func TestJournal_RecordAndRecent(t *testing.T) {
	j := newTestJournal(t)
	now := time.Now()

	if err := j.Record(testAlert("m1", 3750, now), now); err != nil {
		t.Fatalf("Record: %v", err)
	}

	alerts, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	a := alerts[0]
	if a.Market.ID != "m1" || a.Score != 3750 {
		t.Errorf("alert = %+v", a)
	}
	if a.Market.EventSlug != "will-x-happen" {
		t.Errorf("event slug = %q", a.Market.EventSlug)
	}
	if !a.DetectedAt.Equal(now) {
		t.Errorf("detected at = %v, want %v", a.DetectedAt, now)
	}
}

func TestJournal_RecentOrdersNewestFirst(t *testing.T) {
	j := newTestJournal(t)
	base := time.Now()

	for i := 0; i < 5; i++ {
		a := testAlert(string(rune('a'+i)), float64(i), base)
		if err := j.Record(a, base.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	alerts, err := j.Recent(3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(alerts) != 3 {
		t.Fatalf("got %d alerts, want 3", len(alerts))
	}
	if alerts[0].Market.ID != "e" || alerts[2].Market.ID != "c" {
		t.Errorf("order = [%s %s %s], want newest first",
			alerts[0].Market.ID, alerts[1].Market.ID, alerts[2].Market.ID)
	}
}

func TestJournal_RecentEmpty(t *testing.T) {
	j := newTestJournal(t)
	alerts, err := j.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("got %d alerts, want 0", len(alerts))
	}
}
