package normalize

// Spaltennamen der Importvorlage.
const (
	ColDisease      = "疾病"
	ColPlanName     = "方案名称"
	ColIntro        = "方案简介"
	ColDuration     = "治疗时间"
	ColCostRange    = "费用范围"
	ColBenefitGrade = "受益评级"
	ColBenefitScore = "受益评分"
	ColRiskGrade    = "风险评级"
	ColRiskScore    = "风险评分"
	ColConvGrade    = "便利度评级"
	ColConvScore    = "便利度评分"

	ColTotalPatients     = "总人数"
	ColEffectivePatients = "有效人数"
	ColCuredPatients     = "临床治愈人数"
	ColNoRelapsePatients = "未复发人数"
	ColEffectiveRate     = "有效率"
	ColCureRate          = "临床治愈率"
	ColNoRelapseRate     = "未复发率"

	ColRiskLevel1 = "一级风险表现"
	ColRiskLevel2 = "二级风险表现"
	ColRiskLevel3 = "三级风险表现"
	ColRiskProb1  = "一级风险概率和"
	ColRiskProb2  = "二级风险概率和"
	ColRiskProb3  = "三级风险概率和"

	ColFrequency           = "频次"
	ColSource              = "来源"
	ColOperationDifficulty = "操作难度评分"
	ColTimeCost            = "时间成本评分"
	ColLifeInterference    = "生活干扰评分"
)

// RequiredColumns müssen in jeder Importtabelle vorhanden sein.
var RequiredColumns = []string{ColDisease, ColPlanName, ColIntro, ColDuration, ColCostRange}

// TemplateColumns ist die Spaltenreihenfolge der Standardvorlage.
var TemplateColumns = []string{
	ColDisease, ColPlanName, ColIntro, ColDuration, ColCostRange,
	ColBenefitGrade, ColBenefitScore, ColRiskGrade, ColRiskScore, ColConvGrade, ColConvScore,
	ColTotalPatients, ColEffectivePatients, ColCuredPatients, ColNoRelapsePatients,
	ColEffectiveRate, ColCureRate, ColNoRelapseRate,
	ColRiskLevel1, ColRiskProb1, ColRiskLevel2, ColRiskProb2, ColRiskLevel3, ColRiskProb3,
	ColFrequency, ColSource,
	ColOperationDifficulty, ColTimeCost, ColLifeInterference,
}

// MissingColumns liefert die fehlenden Pflichtspalten in fester Reihenfolge.
func MissingColumns(headers []string) []string {
	have := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		have[h] = struct{}{}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := have[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}
