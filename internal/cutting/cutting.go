// Package cutting plans how raw pipes and stored leftovers are cut into
// required pieces. All lengths are millimetres. Every physical cut loses
// KerfMM of material, so a piece of length L consumes L+KerfMM.
package cutting

import (
	"errors"
	"math"
)

const (
	// StandardRawLengthMM is the raw pipe length used by multi-size plans
	StandardRawLengthMM = 3600.0
	// KerfMM is lost per physical cut
	KerfMM = 3.0
	// ScrapSaveThresholdMM is the shortest remainder kept in inventory
	ScrapSaveThresholdMM = 100.0
	// ScrapUsableMinMM is the shortest remainder that can still yield,
	// alone or paired with another, a 700-800 mm piece later
	ScrapUsableMinMM = 350.0
	// LastPipeScrapMaxMM is the scrap allowed on the final pipe of a plan
	LastPipeScrapMaxMM = 75.0

	// MaxLengthMM bounds every length accepted from callers
	MaxLengthMM = 1000000.0
	// MaxPieces bounds the pieces a single plan may request
	MaxPieces = 10000
)

var (
	// ErrCutTooLong is returned when a piece fits neither a leftover nor a raw pipe
	ErrCutTooLong = errors.New("cut length exceeds raw pipe length")
	// ErrInvalidLength is returned for lengths that are not finite, not
	// positive, or above MaxLengthMM
	ErrInvalidLength = errors.New("invalid length")
	// ErrTooManyPieces is returned when a plan asks for more than MaxPieces
	ErrTooManyPieces = errors.New("too many pieces requested")
)

// ValidLength reports whether v is a finite length in (0, MaxLengthMM]
func ValidLength(v float64) bool {
	return !math.IsNaN(v) && v > 0 && v <= MaxLengthMM
}

// ScrapClass tells whether a remainder is worth keeping for future work
type ScrapClass string

const (
	Usable    ScrapClass = "USABLE"
	NotUsable ScrapClass = "NOT USABLE"
)

// ClassifyScrap classifies a remainder by future usability
func ClassifyScrap(mm float64) ScrapClass {
	if mm >= ScrapUsableMinMM {
		return Usable
	}
	return NotUsable
}

func isUsable(mm float64) bool {
	return mm >= ScrapUsableMinMM
}

// Round2 rounds to two decimals, the precision lengths are stored with
func Round2(v float64) float64 {
	// v*100 would overflow; such values carry no hundredths anyway.
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e15 {
		return v
	}
	return math.Round(v*100) / 100
}
