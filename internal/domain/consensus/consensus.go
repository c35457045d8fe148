// Package consensus reduces individual 0-5 preference ratings into group
// consensus signals. It is the only place the thresholds live: the trip
// views, the export bundle and the client preview endpoint all call Summarize.
package consensus

import "math"

// Band classifies how the group feels about an item.
type Band string

const (
	BandStrong   Band = "strong"
	BandDivisive Band = "divisive"
	BandNeutral  Band = "neutral"
)

// Rating scale and thresholds.
const (
	MinRating = 0
	MaxRating = 5

	// InterestedRating is the lowest rating that counts as interested.
	InterestedRating = 3
	// MustRating marks "must do" for activities and "must eat" for restaurants.
	MustRating = 5
	// WontRating marks "won't do".
	WontRating = 0

	// StrongMean is the unrounded mean at or above which an item is strong.
	StrongMean = 4.0

	// An item is divisive while fewer than DivisiveNumerator/DivisiveDenominator
	// of all trip participants (not just raters) are interested.
	DivisiveNumerator   = 3
	DivisiveDenominator = 5
)

// Summary is the consensus computed from the ratings of one item.
type Summary struct {
	Mean              float64 `json:"mean"`
	DisplayMean       float64 `json:"displayMean"`
	ParticipantCount  int     `json:"participantCount"`
	TotalParticipants int     `json:"totalParticipants"`
	InterestedCount   int     `json:"interestedCount"`
	MustCount         int     `json:"mustCount"`
	WontCount         int     `json:"wontCount"`
	Band              Band    `json:"band"`
}

// Rules describes the thresholds so clients can render them without
// re-deriving any of the logic.
type Rules struct {
	MinRating         int     `json:"minRating"`
	MaxRating         int     `json:"maxRating"`
	InterestedRating  int     `json:"interestedRating"`
	MustRating        int     `json:"mustRating"`
	WontRating        int     `json:"wontRating"`
	StrongMean        float64 `json:"strongMean"`
	DivisiveShare     float64 `json:"divisiveShare"`
	DisplayPrecision  int     `json:"displayPrecision"`
	UnratedMeanIsZero bool    `json:"unratedMeanIsZero"`
}

// CurrentRules returns the thresholds Summarize applies.
func CurrentRules() Rules {
	return Rules{
		MinRating:         MinRating,
		MaxRating:         MaxRating,
		InterestedRating:  InterestedRating,
		MustRating:        MustRating,
		WontRating:        WontRating,
		StrongMean:        StrongMean,
		DivisiveShare:     float64(DivisiveNumerator) / float64(DivisiveDenominator),
		DisplayPrecision:  1,
		UnratedMeanIsZero: true,
	}
}

// ValidRating reports whether v is on the 0-5 scale.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}

// DivisiveThreshold returns ceil(0.6 * totalParticipants) using integer
// arithmetic.
func DivisiveThreshold(totalParticipants int) int {
	if totalParticipants <= 0 {
		return 0
	}
	return (DivisiveNumerator*totalParticipants + DivisiveDenominator - 1) / DivisiveDenominator
}

// DisplayRound rounds a mean to one decimal place for presentation.
func DisplayRound(mean float64) float64 {
	return math.Round(mean*10) / 10
}

// Summarize computes the consensus for one item. ratings holds one value per
// participant who rated; totalParticipants is the trip's participant count
// and is raised to len(ratings) if smaller. Values are assumed validated.
// An unrated item has mean 0 and is always neutral.
func Summarize(ratings []int, totalParticipants int) Summary {
	n := len(ratings)
	if totalParticipants < n {
		totalParticipants = n
	}

	s := Summary{
		ParticipantCount:  n,
		TotalParticipants: totalParticipants,
	}

	sum := 0
	for _, r := range ratings {
		sum += r
		if r >= InterestedRating {
			s.InterestedCount++
		}
		if r == MustRating {
			s.MustCount++
		}
		if r == WontRating {
			s.WontCount++
		}
	}

	if n > 0 {
		s.Mean = float64(sum) / float64(n)
	}
	s.DisplayMean = DisplayRound(s.Mean)
	s.Band = classify(s.Mean, s.InterestedCount, totalParticipants)

	return s
}

func classify(mean float64, interested, totalParticipants int) Band {
	switch {
	case mean >= StrongMean:
		return BandStrong
	case interested > 0 && interested < DivisiveThreshold(totalParticipants):
		return BandDivisive
	default:
		return BandNeutral
	}
}
