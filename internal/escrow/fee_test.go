package escrow

import "testing"

func TestComputeFee(t *testing.T) {
	cases := []struct {
		buyer, seller bool
		want          float64
	}{
		{false, false, StandardFee},
		{true, false, StandardFee},
		{false, true, StandardFee},
		{true, true, DiscountedFee},
	}
	for _, c := range cases {
		if got := ComputeFee(c.buyer, c.seller); got != c.want {
			t.Fatalf("ComputeFee(%v, %v) = %v, want %v", c.buyer, c.seller, got, c.want)
		}
	}
}
