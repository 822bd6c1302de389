package escrow

import "math"

// Figures are the derived presentation amounts for a deal.
type Figures struct {
	// Display is the card total: main_amount + fee. This is the one
	// canonical definition; older data with drifting amount semantics is
	// normalised through here.
	Display float64
	// Remaining is the outstanding hold, already clamped non-negative by
	// the store.
	Remaining float64
	// Release is what the seller receives when the remaining hold is paid
	// out: max(0, remaining - fee).
	Release float64
}

// Round2 rounds to two decimal places, half away from zero on the scaled
// value. Note that values like 10.005 have no exact binary representation
// (10.005 stores as 10.00499…), so Round2(10.005) == 10.00 — deterministic
// on every platform.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Recalc derives the display amount, remaining hold and release amount from
// a deal's stored money fields. Pure and deterministic.
func Recalc(mainAmount, fee, remaining float64) Figures {
	return Figures{
		Display:   Round2(mainAmount + fee),
		Remaining: Round2(remaining),
		Release:   Round2(math.Max(0, remaining-fee)),
	}
}
