// Package models defines the core domain entities: observations, snapshots, and alerts.
package models

import (
	"errors"
	"time"
)

// Observation is a single market as seen in one polling cycle. It is built
// fresh from a raw Gamma API record each cycle and discarded after evaluation.
type Observation struct {
	ID             string  `json:"id"`
	Question       string  `json:"question"`
	Volume         float64 `json:"volume"`
	BestBid        float64 `json:"best_bid"`
	BestAsk        float64 `json:"best_ask"`
	Spread         float64 `json:"spread"`
	EventSlug      string  `json:"event_slug,omitempty"`
	GroupItemTitle string  `json:"group_item_title,omitempty"`
}

// Validate checks observation field constraints.
func (o *Observation) Validate() error {
	if o.ID == "" {
		return errors.New("observation ID must not be empty")
	}
	if o.Volume < 0 {
		return errors.New("volume must not be negative")
	}
	if o.Spread < o.BestAsk-o.BestBid {
		return errors.New("spread must be at least best_ask - best_bid")
	}
	return nil
}

// Snapshot is the persisted last-observed state of one market. A snapshot is
// created on first sighting with Persistence 1 and mutated on every later
// sighting; it is never deleted. If a market drops out of the feed and later
// reappears, Persistence continues from the stored value.
type Snapshot struct {
	Volume      float64   `json:"volume"`
	BestBid     float64   `json:"best_bid"`
	BestAsk     float64   `json:"best_ask"`
	LastSeen    time.Time `json:"last_seen"`
	Persistence int       `json:"persistence"`
}

// Alert is one market that passed every live gate in a cycle, together with
// the components that produced its score.
type Alert struct {
	Market Observation

	Score       float64
	VolumeDelta float64
	PriceMove   float64

	DetectedAt time.Time
}
