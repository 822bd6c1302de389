package escrow

import "context"

// Fee schedule. Parties that both carry the affiliation badge in their bio
// pay the discounted fee; everyone else pays the standard one. Shifting a
// deal to a new buyer adds a flat surcharge on top of the recomputed fee.
const (
	StandardFee    = 2.0
	DiscountedFee  = 1.0
	ShiftSurcharge = 1.0
)

// BadgeChecker reports whether a handle carries the affiliation badge.
// Implementations are expected to degrade lookup failures to false.
type BadgeChecker interface {
	HasBadge(ctx context.Context, handle string) bool
}

// BadgeCheckerFunc adapts a function to the BadgeChecker interface.
type BadgeCheckerFunc func(ctx context.Context, handle string) bool

func (f BadgeCheckerFunc) HasBadge(ctx context.Context, handle string) bool {
	return f(ctx, handle)
}

// NoBadge is the fallback checker when no badge predicate is configured.
var NoBadge = BadgeCheckerFunc(func(context.Context, string) bool { return false })

// ComputeFee returns the deal fee for a buyer/seller badge pair.
func ComputeFee(buyerBadge, sellerBadge bool) float64 {
	if buyerBadge && sellerBadge {
		return DiscountedFee
	}
	return StandardFee
}
