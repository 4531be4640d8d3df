// Package presentation turns a predicted delivery duration into the content
// shown to the user.
package presentation

import (
	"fmt"
	"math"
)

const hoursPerDay = 24

// Tier is the severity bucket of a prediction.
type Tier string

// Tiers, from best to worst.
const (
	TierOnTime   Tier = "on-time"
	TierDelayed  Tier = "delayed"
	TierCritical Tier = "critical"
)

// Day thresholds. A prediction is on time for (0, onTimeMaxDays] days and
// delayed for (onTimeMaxDays, delayedMaxDays].
const (
	onTimeMaxDays  = 5
	delayedMaxDays = 8
)

// Scheme is the color pair of a tier.
type Scheme struct {
	Background string `json:"background_color"`
	Text       string `json:"text_color"`
}

type style struct {
	scheme      Scheme
	suggestions []string
}

var styles = map[Tier]style{ //nolint:gochecknoglobals // static display literals
	TierOnTime: {
		scheme: Scheme{Background: "#155724", Text: "#FBFDFC"},
		suggestions: []string{
			"✅ Delivery looks on time.",
			"✅ No major risks expected.",
			"📦 Continue monitoring agent performance for consistency.",
		},
	},
	TierDelayed: {
		scheme: Scheme{Background: "#B48B12", Text: "#0e0405"},
		suggestions: []string{
			"⚠️ Delivery slightly delayed.",
			"🚦 Avoid peak-hour orders for better efficiency.",
			"📍 Recheck routes & traffic conditions.",
		},
	},
	TierCritical: {
		scheme: Scheme{Background: "#721c24", Text: "#0e0405"},
		suggestions: []string{
			"❌ Delivery highly delayed!",
			"🚚 Consider reassigning to a different agent/vehicle.",
			"🌦️ Check traffic/weather conditions immediately.",
			"🛠️ Operational changes may be required.",
		},
	},
}

// Result is the display form of one prediction.
type Result struct {
	Hours          float64  `json:"hours"`
	Days           int      `json:"days"`
	RemainingHours int      `json:"remaining_hours"`
	Tier           Tier     `json:"tier"`
	Scheme         Scheme   `json:"scheme"`
	Suggestions    []string `json:"suggestions"`
}

// Bucketize splits pred hours into whole days and hours and picks the tier
// from the day count. Floor division is used for both parts so the hour
// remainder is always in [0, 24).
//
// A prediction under one day has days == 0 and lands in the critical tier.
func Bucketize(pred float64) Result {
	days := math.Floor(pred / hoursPerDay)
	rem := pred - days*hoursPerDay

	r := Result{
		Hours:          pred,
		Days:           int(days),
		RemainingHours: int(math.Floor(rem)),
		Tier:           tierFor(int(days)),
	}
	st := styles[r.Tier]
	r.Scheme = st.scheme
	r.Suggestions = append([]string(nil), st.suggestions...)
	return r
}

func tierFor(days int) Tier {
	switch {
	case days > 0 && days <= onTimeMaxDays:
		return TierOnTime
	case days > onTimeMaxDays && days <= delayedMaxDays:
		return TierDelayed
	default:
		return TierCritical
	}
}

// Summary renders the estimate line, e.g. "26.00 hours (~1 days 2 hours)".
func (r Result) Summary() string {
	return fmt.Sprintf("%.2f hours (~%d days %d hours)", r.Hours, r.Days, r.RemainingHours)
}

// Suggestions returns the static suggestion list of a tier.
func Suggestions(t Tier) []string {
	return append([]string(nil), styles[t].suggestions...)
}
