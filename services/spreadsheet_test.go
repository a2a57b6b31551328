package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"therapy-cards/normalize"
)

func TestReadSheetXLSX(t *testing.T) {
	data := buildXLSX(t, [][]string{
		{"疾病", "方案名称", "", "疾病"},
		{"失眠", "针灸", "ignored", "duplicate"},
		{"", "中药"},
	})

	sheet, err := ReadSheet("a.xlsx", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"疾病", "方案名称", "", "疾病"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)

	assert.Equal(t, 2, sheet.Rows[0].Line)
	assert.Equal(t, normalize.Row{"疾病": "失眠", "方案名称": "针灸"}, sheet.Rows[0].Values)

	assert.Equal(t, 3, sheet.Rows[1].Line)
	assert.Equal(t, normalize.Row{"疾病": "", "方案名称": "中药"}, sheet.Rows[1].Values)
}

func TestReadSheetNormalizesHeaders(t *testing.T) {
	csvData := "疾病 ,ｆｏｏ,方案名称\n" +
		",,\n" +
		"失眠,1,　针灸 \n"

	sheet, err := ReadSheet("a.csv", []byte(csvData))
	require.NoError(t, err)
	assert.Equal(t, []string{"疾病", "foo", "方案名称"}, sheet.Headers)
	require.Len(t, sheet.Rows, 1)
	assert.Equal(t, 3, sheet.Rows[0].Line)
	assert.Equal(t, "针灸", sheet.Rows[0].Values["方案名称"])
}

func TestReadSheetUnsupported(t *testing.T) {
	_, err := ReadSheet("a.xls", []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, SupportedUpload("a.pdf"))
	assert.True(t, SupportedUpload("A.XLSX"))
}

func TestReadSheetEmpty(t *testing.T) {
	sheet, err := ReadSheet("a.csv", nil)
	require.NoError(t, err)
	assert.Empty(t, sheet.Headers)
	assert.Empty(t, sheet.Rows)
}

func TestBuildTemplate(t *testing.T) {
	data, err := BuildTemplate()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, normalize.TemplateColumns, rows[0])

	sheet, err := ReadSheet(TemplateFilename, data)
	require.NoError(t, err)
	assert.Empty(t, normalize.MissingColumns(sheet.Headers))
	require.Len(t, sheet.Rows, 1)

	card, warnings, err := normalize.Assemble(sheet.Rows[0].Values, normalize.AssembleInput{OwnerID: "u"})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "综合物理治疗方案", card.PlanName)
}
