package escrow

import (
	"math/rand"
	"regexp"
	"strings"
)

const (
	dealIDPrefix   = "DL-"
	dealIDLength   = 6
	dealIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// DealIDPattern matches a deal identifier embedded in a card's "ID - DL-XXXXXX"
// line, case-insensitively.
var DealIDPattern = regexp.MustCompile(`(?i)\bID\s*-\s*(DL-[A-Z0-9]{6})\b`)

// NewDealID generates a fresh deal identifier. The 36^6 space makes
// collisions negligible; the store's uniqueness constraint catches the rest
// and callers retry.
func NewDealID() string {
	var b strings.Builder
	b.Grow(len(dealIDPrefix) + dealIDLength)
	b.WriteString(dealIDPrefix)
	for i := 0; i < dealIDLength; i++ {
		b.WriteByte(dealIDAlphabet[rand.Intn(len(dealIDAlphabet))])
	}
	return b.String()
}

// ExtractDealID pulls a deal identifier out of a replied-to card's text.
// Returns the upper-cased id, or "" when none is present.
func ExtractDealID(text string) string {
	m := DealIDPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}
