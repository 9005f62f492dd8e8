package trend

import "unicode/utf8"

// Lifecycle stages, derived solely from the numeric score.
const (
	StageNiche     = "Niche"
	StageEarly     = "Early"
	StageRising    = "Rising"
	StageExploding = "Exploding"
)

// Score computes the placeholder popularity heuristic for a trend name:
// (rune length * 7) mod 100. It is a pure function of the raw collected
// name, applied before normalization, and the exact multiplier and
// modulus are load-bearing: stage derivation and stored history depend
// on reproducing them.
func Score(name string) int {
	return utf8.RuneCountInString(name) * 7 % 100
}

// Stage maps a score onto the four lifecycle bands. Band lower bounds
// are exclusive: 75 is Rising, not Exploding.
func Stage(score int) string {
	switch {
	case score > 75:
		return StageExploding
	case score > 50:
		return StageRising
	case score > 25:
		return StageEarly
	default:
		return StageNiche
	}
}
