package normalize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"therapy-cards/models"
)

// ViewOptions steuern die Ausgabe von Canonicalize.
type ViewOptions struct {
	ShowDetails bool
}

// CardView ist die kanonische Antwortform einer Karte. Jede Leseroute und der
// Backfill-Job erzeugen sie ausschließlich über Canonicalize.
type CardView struct {
	CardID       string         `json:"card_id"`
	UserID       string         `json:"user_id"`
	Username     string         `json:"username"`
	CreationDate string         `json:"creation_date"`
	TemplateType string         `json:"template_type"`
	DataSource   string         `json:"data_source"`
	Uploader     string         `json:"uploader"`
	MainPage     models.Summary `json:"main_page"`
	DetailPage   *models.Detail `json:"detail_page,omitempty"`

	NonRecurrenceCount    float64 `json:"non_recurrence_count"`
	NonRecurrenceCountStr string  `json:"non_recurrence_count_str"`
	NonRecurrenceRate     string  `json:"non_recurrence_rate"`

	EffectiveRate string `json:"effective_rate"`
	CureRate      string `json:"cure_rate"`

	RiskData          RiskData `json:"risk_data"`
	RiskLevel1Symptom string   `json:"risk_level_1_symptom"`
	RiskLevel1Rate    string   `json:"risk_level_1_rate"`
	RiskLevel2Symptom string   `json:"risk_level_2_symptom"`
	RiskLevel2Rate    string   `json:"risk_level_2_rate"`
	RiskLevel3Symptom string   `json:"risk_level_3_symptom"`
	RiskLevel3Rate    string   `json:"risk_level_3_rate"`

	// Scores enthält die Score-Aliase; sie werden auf oberster Ebene ausgegeben.
	Scores map[string]float64 `json:"-"`

	detail models.Detail
}

// Canonicalize bringt eine gespeicherte Karte in die feste Antwortform.
// Die Funktion ist idempotent und verändert weder Besitzer noch IDs.
func Canonicalize(card models.Card, opts ViewOptions) CardView {
	mainRow := decodeDocument(card.MainPage)
	detailRow := decodeDocument(card.DetailPage)

	risk := NormalizeRisk(detailRow)
	summary := canonicalSummary(mainRow)
	detail := canonicalDetail(detailRow, risk)

	templateType := card.TemplateType
	if templateType == "" {
		templateType = DefaultUnknown
	}
	dataSource := card.DataSource
	if dataSource == "" {
		dataSource = DefaultSource
	}
	uploader := card.Uploader
	if uploader == "" {
		uploader = card.Username
	}

	v := CardView{
		CardID:       card.ID,
		UserID:       card.OwnerID,
		Username:     card.Username,
		CreationDate: card.CreatedAt.UTC().Format(CreationDateForm),
		TemplateType: templateType,
		DataSource:   dataSource,
		Uploader:     uploader,
		MainPage:     summary,

		NonRecurrenceCount:    detail.NoRelapsePatients,
		NonRecurrenceCountStr: strconv.FormatFloat(detail.NoRelapsePatients, 'f', -1, 64),
		NonRecurrenceRate:     detail.NoRelapseRate,

		EffectiveRate: detail.EffectiveRate,
		CureRate:      detail.CureRate,

		RiskData:          risk.Data(),
		RiskLevel1Symptom: risk[0].Level,
		RiskLevel1Rate:    risk[0].Prob,
		RiskLevel2Symptom: risk[1].Level,
		RiskLevel2Rate:    risk[1].Prob,
		RiskLevel3Symptom: risk[2].Level,
		RiskLevel3Rate:    risk[2].Prob,

		Scores: AliasScores(detail),
		detail: detail,
	}
	if opts.ShowDetails {
		shown := detail
		count := detail.NoRelapsePatients
		shown.NonRecurrenceCount = &count
		shown.NonRecurrenceRate = detail.NoRelapseRate
		v.DetailPage = &shown
	}
	return v
}

func canonicalSummary(main Row) models.Summary {
	score := func(field string) float64 {
		v, _ := ExtractNumber(main, field, DefaultScore)
		return v
	}
	return models.Summary{
		PlanName:          ExtractText(main, "plan_name", DefaultPlanName),
		Disease:           ExtractText(main, "disease", DefaultDisease),
		BenefitGrade:      ExtractText(main, "benefit_grade", DefaultGrade),
		BenefitScore:      score("benefit_score"),
		RiskGrade:         ExtractText(main, "risk_grade", DefaultGrade),
		RiskScore:         score("risk_score"),
		TreatmentDuration: ExtractText(main, "treatment_duration", DefaultUnknown),
		CostRange:         ExtractText(main, "cost_range", DefaultUnknown),
		ConvenienceGrade:  ExtractText(main, "convenience_grade", DefaultGrade),
		ConvenienceScore:  score("convenience_score"),
	}
}

func canonicalDetail(detail Row, risk Risk) models.Detail {
	count := func(field string) float64 {
		v, _ := ExtractNumber(detail, field, 0)
		return v
	}
	optional := func(field string) *float64 {
		v, _ := optionalNumber(detail, field)
		return v
	}
	d := models.Detail{
		TotalPatients:     count("total_patients"),
		EffectivePatients: count("effective_patients"),
		CuredPatients:     count("cured_patients"),
		NoRelapsePatients: count("no_relapse_patients"),

		Frequency: ExtractText(detail, "frequency", DefaultUnknown),
		Intro:     ExtractText(detail, "intro", DefaultIntro),

		OperationDifficultyScore: optional("operation_difficulty_score"),
		TimeCostScore:            optional("time_cost_score"),
		LifeInterferenceScore:    optional("life_interference_score"),
	}
	d.EffectiveRate = NormalizeRate(detail["effective_rate"], d.EffectivePatients, d.TotalPatients)
	d.CureRate = NormalizeRate(detail["cure_rate"], d.CuredPatients, d.TotalPatients)
	d.NoRelapseRate = NormalizeRate(detail["no_relapse_rate"], d.NoRelapsePatients, d.TotalPatients)

	d.RiskLevel1, d.RiskProb1 = risk[0].Level, risk[0].Prob
	d.RiskLevel2, d.RiskProb2 = risk[1].Level, risk[1].Prob
	d.RiskLevel3, d.RiskProb3 = risk[2].Level, risk[2].Prob
	return d
}

// decodeDocument liefert ein leeres Dokument für fehlendes oder ungültiges JSON.
func decodeDocument(doc datatypes.JSON) Row {
	row := Row{}
	if len(bytes.TrimSpace(doc)) == 0 {
		return row
	}
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()
	if err := dec.Decode(&row); err != nil || row == nil {
		return Row{}
	}
	return row
}

// Document liefert die kanonischen Dokumente ohne die Aliasfelder.
func (v CardView) Document() (mainPage, detailPage datatypes.JSON) {
	mainPage, _ = json.Marshal(v.MainPage)
	detailPage, _ = json.Marshal(v.detail)
	return mainPage, detailPage
}

// Card baut aus der Sicht wieder einen speicherbaren Datensatz.
func (v CardView) Card() models.Card {
	mainPage, detailPage := v.Document()
	createdAt, _ := time.ParseInLocation(CreationDateForm, v.CreationDate, time.UTC)
	return models.Card{
		ID:           v.CardID,
		CreatedAt:    createdAt,
		OwnerID:      v.UserID,
		Username:     v.Username,
		Uploader:     v.Uploader,
		TemplateType: v.TemplateType,
		DataSource:   v.DataSource,
		PlanName:     v.MainPage.PlanName,
		Disease:      v.MainPage.Disease,
		MainPage:     mainPage,
		DetailPage:   detailPage,
	}
}

// MarshalJSON gibt die Score-Aliase neben den festen Feldern aus.
func (v CardView) MarshalJSON() ([]byte, error) {
	type plain CardView
	base, err := json.Marshal(plain(v))
	if err != nil {
		return nil, err
	}
	merged := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for name, score := range v.Scores {
		raw, err := json.Marshal(score)
		if err != nil {
			return nil, err
		}
		merged[name] = raw
	}
	return json.Marshal(merged)
}
