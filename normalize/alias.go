package normalize

import "therapy-cards/models"

type scoreAlias struct {
	field   string
	value   func(models.Detail) *float64
	aliases []string
}

// scoreAliases bildet jeden Teil-Score auf seine Top-Level-Namen ab.
// Der erste Alias ist jeweils der kanonische externe Name.
var scoreAliases = []scoreAlias{
	{
		field:   "operation_difficulty_score",
		value:   func(d models.Detail) *float64 { return d.OperationDifficultyScore },
		aliases: []string{"complexity_score", "操作难度评分", "复杂度评分"},
	},
	{
		field:   "time_cost_score",
		value:   func(d models.Detail) *float64 { return d.TimeCostScore },
		aliases: []string{"time_investment_score", "time_cost_score", "时间成本评分"},
	},
	{
		field:   "life_interference_score",
		value:   func(d models.Detail) *float64 { return d.LifeInterferenceScore },
		aliases: []string{"life_interference_score", "生活干扰评分"},
	},
}

// AliasScores projiziert vorhandene Teil-Scores auf alle Aliasnamen.
// Fehlende Scores erzeugen keine Einträge.
func AliasScores(d models.Detail) map[string]float64 {
	out := map[string]float64{}
	for _, a := range scoreAliases {
		v := a.value(d)
		if v == nil {
			continue
		}
		for _, name := range a.aliases {
			out[name] = *v
		}
	}
	return out
}

// ScoreAliasNames liefert die Aliasnamen eines Detailfelds.
func ScoreAliasNames(field string) []string {
	for _, a := range scoreAliases {
		if a.field == field {
			return append([]string(nil), a.aliases...)
		}
	}
	return nil
}
