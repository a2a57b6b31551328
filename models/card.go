package models

import (
	"time"

	"gorm.io/datatypes"
)

// Card ist eine aus einer Tabellenzeile erzeugte Behandlungsplan-Karte.
// main_page und detail_page werden als JSON-Dokumente gespeichert, damit
// auch ältere oder unvollständige Datensätze unverändert gelesen werden können.
type Card struct {
	ID        string    `json:"card_id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID  string `json:"user_id" gorm:"index;not null"`
	Username string `json:"username"`
	Uploader string `json:"uploader"`
	FileID   string `json:"file_id" gorm:"index"`

	TemplateType string `json:"template_type" gorm:"default:'general'"`
	DataSource   string `json:"data_source"`

	// Kopien aus main_page für die Stichwortsuche
	PlanName string `json:"plan_name" gorm:"index"`
	Disease  string `json:"disease" gorm:"index"`

	MainPage   datatypes.JSON `json:"main_page" gorm:"type:jsonb"`
	DetailPage datatypes.JSON `json:"detail_page" gorm:"type:jsonb"`
}

// TableName gibt explizit den Tabellennamen an.
func (Card) TableName() string {
	return "treatment_cards"
}

// Summary ist die Hauptseite einer Karte.
type Summary struct {
	PlanName          string  `json:"plan_name"`
	Disease           string  `json:"disease"`
	BenefitGrade      string  `json:"benefit_grade"`
	BenefitScore      float64 `json:"benefit_score"`
	RiskGrade         string  `json:"risk_grade"`
	RiskScore         float64 `json:"risk_score"`
	TreatmentDuration string  `json:"treatment_duration"`
	CostRange         string  `json:"cost_range"`
	ConvenienceGrade  string  `json:"convenience_grade"`
	ConvenienceScore  float64 `json:"convenience_score"`
}

// Detail ist die Detailseite einer Karte.
type Detail struct {
	TotalPatients     float64 `json:"total_patients"`
	EffectivePatients float64 `json:"effective_patients"`
	CuredPatients     float64 `json:"cured_patients"`
	NoRelapsePatients float64 `json:"no_relapse_patients"`

	EffectiveRate string `json:"effective_rate"`
	CureRate      string `json:"cure_rate"`
	NoRelapseRate string `json:"no_relapse_rate"`

	RiskLevel1 string `json:"risk_level_1"`
	RiskLevel2 string `json:"risk_level_2"`
	RiskLevel3 string `json:"risk_level_3"`
	RiskProb1  string `json:"risk_prob_1"`
	RiskProb2  string `json:"risk_prob_2"`
	RiskProb3  string `json:"risk_prob_3"`

	Frequency string `json:"frequency"`
	Intro     string `json:"intro"`

	OperationDifficultyScore *float64 `json:"operation_difficulty_score,omitempty"`
	TimeCostScore            *float64 `json:"time_cost_score,omitempty"`
	LifeInterferenceScore    *float64 `json:"life_interference_score,omitempty"`

	// Aliasfelder für das Frontend, werden beim Lesen gesetzt
	NonRecurrenceCount *float64 `json:"non_recurrence_count,omitempty"`
	NonRecurrenceRate  string   `json:"non_recurrence_rate,omitempty"`
}
