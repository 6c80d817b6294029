package economy

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ncruces/go-strftime"
)

// FormatGDP renders a currency amount with a scale word, e.g. "$23.4 trillion".
func FormatGDP(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1e12:
		return sign + "$" + humanize.FtoaWithDigits(v/1e12, 2) + " trillion"
	case v >= 1e9:
		return sign + "$" + humanize.FtoaWithDigits(v/1e9, 2) + " billion"
	case v >= 1e6:
		return sign + "$" + humanize.FtoaWithDigits(v/1e6, 2) + " million"
	default:
		return sign + "$" + humanize.Comma(int64(math.Round(v)))
	}
}

// FormatPopulation renders a head count, e.g. "335.2 million" or "851,204".
func FormatPopulation(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "n/a"
	}
	switch {
	case p >= 1e9:
		return humanize.FtoaWithDigits(p/1e9, 2) + " billion"
	case p >= 1e6:
		return humanize.FtoaWithDigits(p/1e6, 1) + " million"
	default:
		return humanize.Comma(int64(math.Round(p)))
	}
}

// FormatPercentage renders a percent value with one decimal.
func FormatPercentage(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", v)
}

// FormatDate renders a simulated date for display.
func FormatDate(t time.Time) string {
	return strftime.Format("%b %d, %Y", t)
}
