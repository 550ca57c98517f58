package trial

import "math"

// DefaultBonusMaxEUR is the payout for a hypothetical perfect session.
const DefaultBonusMaxEUR = 3.0

// Bonus converts a win count into the euro amount paid out: the win
// rate against the oracle maximum, scaled to maxEUR and snapped to the
// nearest 0.5 EUR. Ties round half to even, so 0.25 snaps down to 0.0
// and 0.75 snaps up to 1.0.
func Bonus(wins, maxWins int, maxEUR float64) float64 {
	if maxWins == 0 {
		return 0.0
	}
	raw := (float64(wins) / float64(maxWins)) * maxEUR
	return math.RoundToEven(raw/0.5) * 0.5
}
