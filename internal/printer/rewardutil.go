package printer

import (
	"math/big"
	"strings"
)

// FormatReward returns the reward with its digits grouped by thousands.
// Examples: "0", "999", "1,000", "1,000,000,000,000,000,000".
func FormatReward(r *big.Int) string {
	if r == nil {
		return "0"
	}

	s := r.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	if len(s) <= 3 {
		return sign + s
	}

	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}

	return sign + b.String()
}
