// Package detector normalizes raw market records and decides which markets
// currently show a live spread condition.
package detector

import (
	"time"

	"github.com/selenkaonchain/spreadbot/internal/models"
)

// Config holds the gate thresholds applied to every observation.
type Config struct {
	MinVolume         float64
	MinSpread         float64
	MaxSpread         float64
	MinVolumeDelta    float64
	MinPriceMove      float64
	PersistenceCycles int
}

func DefaultConfig() Config {
	return Config{
		MinVolume:         100000,
		MinSpread:         0.05,
		MaxSpread:         0.5,
		MinVolumeDelta:    0,
		MinPriceMove:      0,
		PersistenceCycles: 1,
	}
}

type Detector struct {
	config Config
}

func New(config Config) *Detector {
	return &Detector{config: config}
}

// Evaluate decides whether an observed market is live given its prior
// snapshot. A market seen for the first time (nil prior) has no delta and is
// never live. All gates must pass:
//
//  1. volume delta >= MinVolumeDelta
//  2. L1 quote movement (|Δbid| + |Δask|) >= MinPriceMove
//  3. prior persistence >= PersistenceCycles
//  4. volume >= MinVolume
//  5. spread within [MinSpread, MaxSpread]
//
// The score is volumeDelta * priceMove * spread; any factor at zero nulls
// the score, and a zero score is reported as not live.
func (d *Detector) Evaluate(obs models.Observation, prior *models.Snapshot) (models.Alert, bool) {
	if prior == nil {
		return models.Alert{}, false
	}

	volumeDelta := obs.Volume - prior.Volume
	priceMove := abs(obs.BestBid-prior.BestBid) + abs(obs.BestAsk-prior.BestAsk)

	if volumeDelta < d.config.MinVolumeDelta {
		return models.Alert{}, false
	}
	if priceMove < d.config.MinPriceMove {
		return models.Alert{}, false
	}
	if prior.Persistence < d.config.PersistenceCycles {
		return models.Alert{}, false
	}
	if obs.Volume < d.config.MinVolume {
		return models.Alert{}, false
	}
	if obs.Spread < d.config.MinSpread || obs.Spread > d.config.MaxSpread {
		return models.Alert{}, false
	}

	score := volumeDelta * priceMove * obs.Spread
	if score == 0 {
		return models.Alert{}, false
	}

	return models.Alert{
		Market:      obs,
		Score:       score,
		VolumeDelta: volumeDelta,
		PriceMove:   priceMove,
		DetectedAt:  time.Now(),
	}, true
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
