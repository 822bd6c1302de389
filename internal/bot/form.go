package bot

import (
	"regexp"
	"strings"
)

var (
	sellerLineRe = regexp.MustCompile(`(?mi)^\s*Seller\s*-\s*@?([A-Za-z0-9_]{1,32})`)
	buyerLineRe  = regexp.MustCompile(`(?mi)^\s*Buyer\s*-\s*@?([A-Za-z0-9_]{1,32})`)
	usernameRe   = regexp.MustCompile(`@([A-Za-z0-9_]{1,32})`)
)

// Form holds the parties extracted from a deal form message.
type Form struct {
	SellerHandle string
	BuyerHandle  string
}

// LooksLikeForm reports whether a message resembles a deal form at all. Used
// to cheaply gate the group text listener before full parsing.
func LooksLikeForm(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "seller -") || strings.Contains(lower, "buyer -")
}

// ParseForm extracts the seller and buyer handles from strict "Seller -" and
// "Buyer -" lines, falling back to the first two @mentions in order.
func ParseForm(text string) (Form, bool) {
	if text == "" {
		return Form{}, false
	}

	var seller, buyer string
	if m := sellerLineRe.FindStringSubmatch(text); m != nil {
		seller = m[1]
	}
	if m := buyerLineRe.FindStringSubmatch(text); m != nil {
		buyer = m[1]
	}

	if seller == "" || buyer == "" {
		handles := usernameRe.FindAllStringSubmatch(text, 2)
		if len(handles) >= 2 {
			seller, buyer = handles[0][1], handles[1][1]
		}
	}
	if seller == "" || buyer == "" {
		return Form{}, false
	}
	return Form{
		SellerHandle: strings.ToLower(seller),
		BuyerHandle:  strings.ToLower(buyer),
	}, true
}
