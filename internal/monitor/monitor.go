// Package monitor drives one polling cycle end to end: fetch, normalize,
// evaluate, track, rank, and hand off alerts for delivery.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/selenkaonchain/spreadbot/internal/detector"
	"github.com/selenkaonchain/spreadbot/internal/logger"
	"github.com/selenkaonchain/spreadbot/internal/models"
	"github.com/selenkaonchain/spreadbot/internal/tracker"
)

// Fetcher supplies the raw market records for one cycle.
type Fetcher interface {
	FetchMarkets(ctx context.Context) ([]json.RawMessage, error)
}

// Notifier accepts the cycle's ranked alerts. It must not block.
type Notifier interface {
	Notify(alerts []models.Alert)
}

type Monitor struct {
	fetcher   Fetcher
	store     *tracker.Store
	detector  *detector.Detector
	notifier  Notifier
	maxAlerts int
}

func New(fetcher Fetcher, store *tracker.Store, det *detector.Detector, notifier Notifier, maxAlerts int) *Monitor {
	if maxAlerts < 1 {
		maxAlerts = 1
	}
	return &Monitor{
		fetcher:   fetcher,
		store:     store,
		detector:  det,
		notifier:  notifier,
		maxAlerts: maxAlerts,
	}
}

// RunOnce executes one polling cycle. A fetch failure aborts the cycle before
// any snapshot is written. Each record is evaluated against the snapshot from
// the previous cycle before the store is updated, and the store is updated
// for every valid record so persistence counters advance even for markets
// that do not qualify. The full snapshot map is flushed once at the end.
func (m *Monitor) RunOnce(ctx context.Context) error {
	startTime := time.Now()

	records, err := m.fetcher.FetchMarkets(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch markets: %w", err)
	}
	logger.Debug("Fetched %d raw market records", len(records))

	var alerts []models.Alert
	skipped := 0
	for _, record := range records {
		obs, err := detector.Normalize(record)
		if err != nil {
			skipped++
			logger.Debug("Skipping record: %v", err)
			continue
		}

		// Evaluation must see the prior cycle's snapshot, never the
		// one written below.
		alert, live := m.detector.Evaluate(obs, m.store.Get(obs.ID))
		m.store.Update(obs)

		if live {
			alerts = append(alerts, alert)
		}
	}

	if err := m.store.Save(); err != nil {
		return fmt.Errorf("failed to persist market state: %w", err)
	}

	logger.Info("Cycle processed %d records (%d skipped, %d tracked, %d live) in %v",
		len(records), skipped, m.store.Len(), len(alerts), time.Since(startTime))

	if len(alerts) == 0 {
		logger.Info("No live markets this cycle")
		return nil
	}

	selected := rank(alerts, m.maxAlerts)
	m.notifier.Notify(selected)
	return nil
}

// rank orders alerts by descending score, breaking ties by market id so
// repeated runs over identical input select identically, and truncates to
// the configured bound.
func rank(alerts []models.Alert, max int) []models.Alert {
	sort.Slice(alerts, func(i, j int) bool {
		if alerts[i].Score != alerts[j].Score {
			return alerts[i].Score > alerts[j].Score
		}
		return alerts[i].Market.ID < alerts[j].Market.ID
	})
	if len(alerts) > max {
		alerts = alerts[:max]
	}
	return alerts
}
