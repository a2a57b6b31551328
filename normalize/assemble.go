package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"therapy-cards/models"
)

// Standardwerte für fehlende Felder.
const (
	DefaultGrade     = "中"
	DefaultScore     = 5.0
	DefaultPlanName  = "unnamed plan"
	DefaultDisease   = "unspecified disease"
	DefaultUnknown   = "unknown"
	DefaultIntro     = "no intro"
	DefaultSource    = "unknown source"
	TemplateGeneral  = "general"
	CreationDateForm = "2006-01-02 15:04:05"
)

// AssembleInput enthält alles, was nicht aus der Zeile selbst stammt.
type AssembleInput struct {
	OwnerID  string
	Username string
	FileID   string
	Line     int
	Now      time.Time
}

// Assemble baut aus einer Tabellenzeile eine neue Karte.
// Die zurückgegebenen Warnungen betreffen einzelne Felder, die auf ihren
// Default zurückgefallen sind. err ist nur gesetzt, wenn die ganze Zeile
// verworfen werden muss.
func Assemble(row Row, in AssembleInput) (card models.Card, warnings []error, err error) {
	num := func(col string, def float64) float64 {
		v, cerr := ExtractNumber(row, col, def)
		if cerr != nil {
			warnings = append(warnings, atLine(cerr, in.Line))
		}
		return v
	}
	optional := func(col string) *float64 {
		v, cerr := optionalNumber(row, col)
		if cerr != nil {
			warnings = append(warnings, atLine(cerr, in.Line))
		}
		return v
	}

	summary := models.Summary{
		PlanName:          ExtractText(row, ColPlanName, DefaultPlanName),
		Disease:           ExtractText(row, ColDisease, DefaultDisease),
		BenefitGrade:      ExtractText(row, ColBenefitGrade, DefaultGrade),
		BenefitScore:      num(ColBenefitScore, DefaultScore),
		RiskGrade:         ExtractText(row, ColRiskGrade, DefaultGrade),
		RiskScore:         num(ColRiskScore, DefaultScore),
		TreatmentDuration: ExtractText(row, ColDuration, DefaultUnknown),
		CostRange:         ExtractText(row, ColCostRange, DefaultUnknown),
		ConvenienceGrade:  ExtractText(row, ColConvGrade, DefaultGrade),
		ConvenienceScore:  num(ColConvScore, DefaultScore),
	}

	detail := models.Detail{
		TotalPatients:     num(ColTotalPatients, 0),
		EffectivePatients: num(ColEffectivePatients, 0),
		CuredPatients:     num(ColCuredPatients, 0),
		NoRelapsePatients: num(ColNoRelapsePatients, 0),

		RiskLevel1: ExtractText(row, ColRiskLevel1, UnknownRiskLevel),
		RiskLevel2: ExtractText(row, ColRiskLevel2, UnknownRiskLevel),
		RiskLevel3: ExtractText(row, ColRiskLevel3, UnknownRiskLevel),
		RiskProb1:  ExtractText(row, ColRiskProb1, RiskProbDefault(1)),
		RiskProb2:  ExtractText(row, ColRiskProb2, RiskProbDefault(2)),
		RiskProb3:  ExtractText(row, ColRiskProb3, RiskProbDefault(3)),

		Frequency: ExtractText(row, ColFrequency, DefaultUnknown),
		Intro:     ExtractText(row, ColIntro, DefaultIntro),

		OperationDifficultyScore: optional(ColOperationDifficulty),
		TimeCostScore:            optional(ColTimeCost),
		LifeInterferenceScore:    optional(ColLifeInterference),
	}
	detail.EffectiveRate = ingestRate(row, ColEffectiveRate, detail.EffectivePatients, detail.TotalPatients)
	detail.CureRate = ingestRate(row, ColCureRate, detail.CuredPatients, detail.TotalPatients)
	detail.NoRelapseRate = ingestRate(row, ColNoRelapseRate, detail.NoRelapsePatients, detail.TotalPatients)

	mainDoc, err := json.Marshal(summary)
	if err != nil {
		return models.Card{}, warnings, fmt.Errorf("row %d: encode main_page: %w", in.Line, err)
	}
	detailDoc, err := json.Marshal(detail)
	if err != nil {
		return models.Card{}, warnings, fmt.Errorf("row %d: encode detail_page: %w", in.Line, err)
	}

	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}
	card = models.Card{
		ID:           uuid.NewString(),
		CreatedAt:    now,
		OwnerID:      in.OwnerID,
		Username:     in.Username,
		Uploader:     in.Username,
		FileID:       in.FileID,
		TemplateType: TemplateGeneral,
		DataSource:   ExtractText(row, ColSource, DefaultSource),
		PlanName:     summary.PlanName,
		Disease:      summary.Disease,
		MainPage:     mainDoc,
		DetailPage:   detailDoc,
	}
	return card, warnings, nil
}

// ingestRate übernimmt die Rate aus der Tabelle; nur der Platzhalter wird
// aus den Zählern berechnet.
func ingestRate(row Row, col string, numerator, denominator float64) string {
	rate := ExtractText(row, col, SentinelRate)
	if rate != SentinelRate {
		return rate
	}
	if derived, ok := DeriveRate(numerator, denominator); ok {
		return derived
	}
	return rate
}

func atLine(err error, line int) error {
	var cerr *CoercionError
	if errors.As(err, &cerr) {
		cerr.Line = line
	}
	return err
}
