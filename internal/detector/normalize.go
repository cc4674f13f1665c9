package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/selenkaonchain/spreadbot/internal/models"
)

// The Gamma API is loose about scalar types: numeric fields arrive as JSON
// numbers or as quoted decimal strings, and ids as strings or numbers.
// flexFloat and flexString accept both forms and fail on anything else.

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return errors.New("empty numeric field")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("non-numeric string %q: %w", s, err)
		}
		*f = flexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

type rawEvent struct {
	Slug string `json:"slug"`
}

type rawMarket struct {
	ID             flexString `json:"id"`
	Question       string     `json:"question"`
	VolumeNum      *flexFloat `json:"volumeNum"`
	BestBid        *flexFloat `json:"bestBid"`
	BestAsk        *flexFloat `json:"bestAsk"`
	Spread         *flexFloat `json:"spread"`
	GroupItemTitle string     `json:"groupItemTitle"`
	Events         []rawEvent `json:"events"`
}

// Normalize converts one raw Gamma API record into a validated observation.
// A failure covers only that record; callers skip it and carry on with the
// rest of the batch.
//
// Absent quotes default conservatively: bid 0, ask 1, so a market with
// missing quote data shows the widest possible spread and never slips through
// as tight. The spread is the greater of the reported spread and ask-bid,
// guarding against an upstream value that understates the quoted spread.
func Normalize(record json.RawMessage) (models.Observation, error) {
	var raw rawMarket
	if err := json.Unmarshal(record, &raw); err != nil {
		return models.Observation{}, fmt.Errorf("malformed record: %w", err)
	}
	if raw.ID == "" {
		return models.Observation{}, errors.New("record has no id")
	}

	bid := 0.0
	if raw.BestBid != nil {
		bid = float64(*raw.BestBid)
	}
	ask := 1.0
	if raw.BestAsk != nil {
		ask = float64(*raw.BestAsk)
	}
	reported := 0.0
	if raw.Spread != nil {
		reported = float64(*raw.Spread)
	}
	spread := reported
	if ask-bid > spread {
		spread = ask - bid
	}

	volume := 0.0
	if raw.VolumeNum != nil {
		volume = float64(*raw.VolumeNum)
	}

	question := raw.Question
	if question == "" {
		question = "No title"
	}

	var eventSlug string
	if len(raw.Events) > 0 {
		eventSlug = raw.Events[0].Slug
	}

	obs := models.Observation{
		ID:             string(raw.ID),
		Question:       question,
		Volume:         volume,
		BestBid:        bid,
		BestAsk:        ask,
		Spread:         spread,
		EventSlug:      eventSlug,
		GroupItemTitle: raw.GroupItemTitle,
	}
	if err := obs.Validate(); err != nil {
		return models.Observation{}, fmt.Errorf("invalid record %s: %w", obs.ID, err)
	}
	return obs, nil
}
