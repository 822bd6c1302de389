package bot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

// MaskName obscures a handle for public log channels, keeping just enough of
// the edges to stay recognisable to the owner.
func MaskName(name string) string {
	clean := strings.TrimLeft(name, "@")
	n := len(clean)
	switch {
	case n == 0:
		return "(unknown)"
	case n <= 2:
		return clean[:1] + strings.Repeat("*", n-1)
	case n <= 4:
		return clean[:1] + strings.Repeat("*", n-2) + clean[n-1:]
	default:
		return clean[:1] + strings.Repeat("*", n-4) + clean[n-3:]
	}
}

// CompactUSD renders an amount in short form: 1500 -> "1.5k$", 1000 -> "1k$",
// 2_300_000 -> "2.3m$". Amounts under a thousand keep their exact value.
func CompactUSD(amount float64) string {
	n := amount
	if n < 0 {
		n = 0
	}
	var s string
	switch {
	case n >= 1_000_000_000:
		s = fmt.Sprintf("%.1fb$", n/1_000_000_000)
	case n >= 1_000_000:
		s = fmt.Sprintf("%.1fm$", n/1_000_000)
	case n >= 1_000:
		s = fmt.Sprintf("%.1fk$", n/1_000)
	default:
		if n == math.Trunc(n) {
			return fmt.Sprintf("%d$", int64(n))
		}
		return fmt.Sprintf("%v$", n)
	}
	for _, suffix := range []string{".0b$", ".0m$", ".0k$"} {
		if strings.HasSuffix(s, suffix) {
			return s[:len(s)-4] + suffix[2:]
		}
	}
	return s
}

// trimZero renders a float without a trailing ".0" when it is integral.
func trimZero(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%v", v)
}

// formLink builds a t.me deep link to a message inside a private group. Bot
// API chat ids carry a -100 prefix that the link format omits.
func formLink(chatID, messageID int64) string {
	id := chatID
	if id < 0 {
		id = -id
	}
	const superPrefix = 1_000_000_000_000
	if id > superPrefix {
		id -= superPrefix
	}
	return fmt.Sprintf("https://t.me/c/%d/%d", id, messageID)
}
