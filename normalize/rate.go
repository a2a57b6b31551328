package normalize

import (
	"math"
	"strconv"
	"strings"
)

// SentinelRate ist der gespeicherte Platzhalter für "noch nicht berechnet".
// Eine echte Rate von 0 lässt sich davon nicht unterscheiden; sie wird wie
// im Altsystem überschrieben, sobald Zähler vorhanden sind.
const SentinelRate = "0%"

// NormalizeRate bringt eine Rate in die Form "<N.d>%".
// Reihenfolge: Platzhalter mit Zählern -> Ableitung, vorhandene Prozentangabe,
// numerische Umdeutung (< 1 als Anteil), Ableitung aus Zählern, "0%".
func NormalizeRate(stored any, numerator, denominator float64) string {
	if s, ok := stored.(string); ok {
		if s == SentinelRate {
			if derived, ok := DeriveRate(numerator, denominator); ok {
				return derived
			}
			return SentinelRate
		}
		if strings.Contains(s, "%") {
			return s
		}
	}
	if v, ok := toFloat(stored); ok {
		if v < 1 {
			v *= 100
		}
		return formatPercent(v)
	}
	if derived, ok := DeriveRate(numerator, denominator); ok {
		return derived
	}
	return SentinelRate
}

// DeriveRate berechnet min(n, d) / d * 100 mit einer Nachkommastelle.
func DeriveRate(numerator, denominator float64) (string, bool) {
	if denominator <= 0 || math.IsNaN(numerator) || math.IsNaN(denominator) {
		return "", false
	}
	n := math.Min(numerator, denominator)
	return formatPercent(n / denominator * 100), true
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
