package transcription

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	microsPerSecond = 1_000_000
	microsPerDay    = 86_400 * microsPerSecond

	// maxOffsetSeconds keeps the microsecond total inside int64.
	maxOffsetSeconds = 9e12
)

var million = decimal.NewFromInt(microsPerSecond)

// FormatOffset renders an offset in seconds as H:MM:SS, with a .ffffff
// suffix when there is a sub-second part and an "N day(s), " prefix past
// 24 hours. The exact binary value of seconds is rounded half-to-even to
// the microsecond. Negative, NaN and infinite offsets render as zero.
func FormatOffset(seconds float64) string {
	total := exactSeconds(seconds).Mul(million).RoundBank(0).IntPart()

	days := total / microsPerDay
	rem := total % microsPerDay
	micros := rem % microsPerSecond
	secs := rem / microsPerSecond

	var b strings.Builder
	if days > 0 {
		unit := "days"
		if days == 1 {
			unit = "day"
		}
		fmt.Fprintf(&b, "%d %s, ", days, unit)
	}
	fmt.Fprintf(&b, "%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
	if micros != 0 {
		fmt.Fprintf(&b, ".%06d", micros)
	}
	return b.String()
}

// exactSeconds returns the full binary expansion of seconds. NewFromFloat
// would use the shortest decimal form, which turns values just off a
// half-microsecond into exact ties.
func exactSeconds(seconds float64) decimal.Decimal {
	if seconds != seconds || seconds <= 0 || seconds > maxOffsetSeconds {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(new(big.Float).SetFloat64(seconds).Text('f', 1100))
	if err != nil {
		return decimal.NewFromFloat(seconds)
	}
	return d
}

func trimText(s string) string {
	return strings.TrimSpace(s)
}
