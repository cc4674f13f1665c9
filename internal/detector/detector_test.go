package detector

import (
	"math"
	"testing"

	"github.com/selenkaonchain/spreadbot/internal/models"
)

func baseObservation() models.Observation {
	return models.Observation{
		ID:       "517310",
		Question: "Will X happen?",
		Volume:   150000,
		BestBid:  0.30,
		BestAsk:  0.60,
		Spread:   0.30,
	}
}

func basePrior() *models.Snapshot {
	return &models.Snapshot{
		Volume:      100000,
		BestBid:     0.40,
		BestAsk:     0.45,
		Persistence: 2,
	}
}

func TestEvaluate_FirstSightingIsNeverLive(t *testing.T) {
	d := New(DefaultConfig())
	if _, live := d.Evaluate(baseObservation(), nil); live {
		t.Error("market with no prior snapshot must not be live")
	}
}

func TestEvaluate_WorkedExample(t *testing.T) {
	// volume_delta = 50000, price_move = 0.10 + 0.15 = 0.25, spread = 0.30
	// score = 50000 * 0.25 * 0.30 = 3750
	d := New(DefaultConfig())
	alert, live := d.Evaluate(baseObservation(), basePrior())
	if !live {
		t.Fatal("expected live market")
	}
	if math.Abs(alert.Score-3750) > 1e-9 {
		t.Errorf("score = %f, want 3750", alert.Score)
	}
	if math.Abs(alert.VolumeDelta-50000) > 1e-9 {
		t.Errorf("volume delta = %f, want 50000", alert.VolumeDelta)
	}
	if math.Abs(alert.PriceMove-0.25) > 1e-9 {
		t.Errorf("price move = %f, want 0.25", alert.PriceMove)
	}
}

func TestEvaluate_SpreadAboveMaxIsNotLive(t *testing.T) {
	d := New(DefaultConfig())
	obs := baseObservation()
	obs.BestAsk = 0.96
	obs.Spread = 0.66
	if _, live := d.Evaluate(obs, basePrior()); live {
		t.Error("spread 0.66 above max 0.5 must not be live")
	}
}

func TestEvaluate_SingleGateFailures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinVolumeDelta = 1000
	cfg.MinPriceMove = 0.01
	cfg.PersistenceCycles = 2

	tests := []struct {
		name   string
		mutate func(obs *models.Observation, prior *models.Snapshot)
	}{
		{
			name: "volume delta below threshold",
			mutate: func(obs *models.Observation, prior *models.Snapshot) {
				obs.Volume = prior.Volume + 500
			},
		},
		{
			name: "price move below threshold",
			mutate: func(obs *models.Observation, prior *models.Snapshot) {
				obs.BestBid = prior.BestBid
				obs.BestAsk = prior.BestAsk + 0.005
				obs.Spread = obs.BestAsk - obs.BestBid
			},
		},
		{
			name: "persistence below threshold",
			mutate: func(obs *models.Observation, prior *models.Snapshot) {
				prior.Persistence = 1
			},
		},
		{
			name: "volume below floor",
			mutate: func(obs *models.Observation, prior *models.Snapshot) {
				obs.Volume = 99999
				prior.Volume = obs.Volume - 50000
			},
		},
		{
			name: "spread below band",
			mutate: func(obs *models.Observation, prior *models.Snapshot) {
				obs.Spread = 0.04
			},
		},
		{
			name: "spread above band",
			mutate: func(obs *models.Observation, prior *models.Snapshot) {
				obs.Spread = 0.51
			},
		},
	}

	d := New(cfg)

	// Baseline passes every gate.
	obs, prior := baseObservation(), basePrior()
	if _, live := d.Evaluate(obs, prior); !live {
		t.Fatal("baseline observation must be live with tightened config")
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, prior := baseObservation(), basePrior()
			tt.mutate(&obs, prior)
			if _, live := d.Evaluate(obs, prior); live {
				t.Error("expected not live after failing one gate")
			}
		})
	}
}

func TestEvaluate_ZeroScoreIsNotLive(t *testing.T) {
	// Default MinVolumeDelta and MinPriceMove are 0, so an unchanged market
	// nominally passes those gates with deltas of exactly zero. The
	// multiplicative score nulls it.
	d := New(DefaultConfig())
	prior := basePrior()
	obs := baseObservation()
	obs.Volume = prior.Volume
	obs.BestBid = prior.BestBid
	obs.BestAsk = prior.BestAsk
	obs.Spread = 0.30

	if _, live := d.Evaluate(obs, prior); live {
		t.Error("zero volume delta and price move must yield not live")
	}
}

func TestEvaluate_DecreasedVolumeIsNotLive(t *testing.T) {
	d := New(DefaultConfig())
	obs := baseObservation()
	obs.Volume = 90000
	if _, live := d.Evaluate(obs, basePrior()); live {
		t.Error("negative volume delta must fail the delta gate")
	}
}
