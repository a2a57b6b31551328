package normalize

import (
	"strconv"
	"strings"
)

// RiskTiers ist die Anzahl der Risikostufen.
const RiskTiers = 3

// UnknownRiskLevel wird gesetzt, wenn keine Risikobeschreibung vorhanden ist.
const UnknownRiskLevel = "unknown"

var riskProbDefaults = [RiskTiers]string{"12.8%", "5.2%", "0.5%"}

// RiskProbDefault liefert die Standardwahrscheinlichkeit einer Stufe (1-basiert).
func RiskProbDefault(tier int) string {
	if tier < 1 || tier > RiskTiers {
		return SentinelRate
	}
	return riskProbDefaults[tier-1]
}

// NormalizeRiskLevel übernimmt den gespeicherten Text unverändert, auch frühere
// "unknown"-Markierungen. Nur fehlende Werte werden ergänzt.
func NormalizeRiskLevel(stored any) string {
	if stored == nil {
		return UnknownRiskLevel
	}
	if s, ok := textOf(stored); ok {
		return s
	}
	return UnknownRiskLevel
}

// NormalizeRiskProb bringt eine Wahrscheinlichkeit in die Form "<N.d>%".
// Werte zwischen 0 und 1 gelten als Anteil; 0 bleibt 0.
func NormalizeRiskProb(tier int, stored any) string {
	if s, ok := stored.(string); ok && strings.Contains(s, "%") {
		return s
	}
	v, ok := toFloat(stored)
	if !ok {
		return RiskProbDefault(tier)
	}
	if v > 0 && v < 1 {
		v *= 100
	}
	return formatPercent(v)
}

// RiskTier ist eine Stufe aus Beschreibung und Wahrscheinlichkeit.
type RiskTier struct {
	Level string
	Prob  string
}

// Risk enthält alle drei Stufen, Index 0 entspricht Stufe 1.
type Risk [RiskTiers]RiskTier

// RiskData ist die gruppierte Sicht auf die Risikostufen.
type RiskData struct {
	Levels        map[string]string `json:"levels"`
	Probabilities map[string]string `json:"probabilities"`
}

// NormalizeRisk liest die drei Stufen aus einem Detail-Dokument.
func NormalizeRisk(detail Row) Risk {
	var r Risk
	for i := 0; i < RiskTiers; i++ {
		tier := i + 1
		n := strconv.Itoa(tier)
		r[i] = RiskTier{
			Level: NormalizeRiskLevel(detail["risk_level_"+n]),
			Prob:  NormalizeRiskProb(tier, detail["risk_prob_"+n]),
		}
	}
	return r
}

// Data baut die gruppierte Sicht aus denselben Werten.
func (r Risk) Data() RiskData {
	d := RiskData{
		Levels:        make(map[string]string, RiskTiers),
		Probabilities: make(map[string]string, RiskTiers),
	}
	for i, t := range r {
		n := strconv.Itoa(i + 1)
		d.Levels["level_"+n] = t.Level
		d.Probabilities["prob_"+n] = t.Prob
	}
	return d
}
