package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"therapy-cards/normalize"
)

// TemplateFilename ist der Downloadname der Standardvorlage.
const TemplateFilename = "treatment_card_template.xlsx"

const templateSheet = "Sheet1"

// templateExample ist die Beispielzeile unter der Kopfzeile.
var templateExample = map[string]string{
	normalize.ColDisease:             "腰椎间盘突出症",
	normalize.ColPlanName:            "综合物理治疗方案",
	normalize.ColIntro:               "结合推拿、针灸、理疗等多种方式的综合治疗方案",
	normalize.ColDuration:            "45分钟",
	normalize.ColCostRange:           "300-500元/次",
	normalize.ColBenefitGrade:        "A",
	normalize.ColBenefitScore:        "8.5",
	normalize.ColRiskGrade:           "低风险",
	normalize.ColRiskScore:           "2.1",
	normalize.ColConvGrade:           "B",
	normalize.ColConvScore:           "7.5",
	normalize.ColTotalPatients:       "100",
	normalize.ColEffectivePatients:   "85",
	normalize.ColCuredPatients:       "60",
	normalize.ColNoRelapsePatients:   "75",
	normalize.ColEffectiveRate:       "85%",
	normalize.ColCureRate:            "60%",
	normalize.ColNoRelapseRate:       "75%",
	normalize.ColRiskLevel1:          "轻微疼痛",
	normalize.ColRiskProb1:           "5%",
	normalize.ColRiskLevel2:          "短期不适",
	normalize.ColRiskProb2:           "2%",
	normalize.ColRiskLevel3:          "无",
	normalize.ColRiskProb3:           "0%",
	normalize.ColFrequency:           "每周3次",
	normalize.ColSource:              "中国康复医学杂志",
	normalize.ColOperationDifficulty: "5",
	normalize.ColTimeCost:            "6",
	normalize.ColLifeInterference:    "3",
}

// BuildTemplate erzeugt die Standard-Importvorlage mit Kopfzeile und einer
// Beispielzeile.
func BuildTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, header := range normalize.TemplateColumns {
		headerCell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(templateSheet, headerCell, header); err != nil {
			return nil, fmt.Errorf("set header %s: %w", headerCell, err)
		}
		if err := f.SetCellStyle(templateSheet, headerCell, headerCell, headerStyle); err != nil {
			return nil, fmt.Errorf("set header style: %w", err)
		}

		exampleCell, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStr(templateSheet, exampleCell, templateExample[header]); err != nil {
			return nil, fmt.Errorf("set example %s: %w", exampleCell, err)
		}

		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		width := float64(len([]rune(templateExample[header]))*2 + 2)
		if width < 14 {
			width = 14
		}
		if width > 60 {
			width = 60
		}
		if err := f.SetColWidth(templateSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.SetPanes(templateSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}
