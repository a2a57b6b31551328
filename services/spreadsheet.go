package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"therapy-cards/normalize"
)

// ErrUnsupportedFormat wird für Dateien geliefert, die weder xlsx noch csv sind.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .xlsx or .csv")

// SheetRow ist eine Datenzeile mit ihrer Zeilennummer in der Datei
// (Kopfzeile = 1).
type SheetRow struct {
	Line   int
	Values normalize.Row
}

// Sheet ist die eingelesene erste Tabelle einer Datei.
type Sheet struct {
	Headers []string
	Rows    []SheetRow
}

// SupportedUpload prüft die Dateiendung eines Uploads.
func SupportedUpload(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

// ReadSheet liest die erste Tabelle einer xlsx- oder csv-Datei.
// Leere Zeilen werden übersprungen, Zeilennummern bleiben erhalten.
func ReadSheet(filename string, data []byte) (Sheet, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		records, err = readXLSX(data)
	case ".csv":
		records, err = readCSV(data)
	default:
		return Sheet{}, ErrUnsupportedFormat
	}
	if err != nil {
		return Sheet{}, err
	}
	return buildSheet(records), nil
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func buildSheet(records [][]string) Sheet {
	var sheet Sheet
	if len(records) == 0 {
		return sheet
	}
	sheet.Headers = make([]string, len(records[0]))
	for i, h := range records[0] {
		sheet.Headers[i] = normalizeHeader(h)
	}

	for i, record := range records[1:] {
		row := normalize.Row{}
		blank := true
		for col, header := range sheet.Headers {
			if header == "" {
				continue
			}
			if _, dup := row[header]; dup {
				continue
			}
			value := ""
			if col < len(record) {
				value = normalizeCell(record[col])
			}
			if value != "" {
				blank = false
			}
			row[header] = value
		}
		if blank {
			continue
		}
		sheet.Rows = append(sheet.Rows, SheetRow{Line: i + 2, Values: row})
	}
	return sheet
}

// normalizeHeader vereinheitlicht Spaltennamen, damit auch Vollbreiten-Zeichen
// und geschützte Leerzeichen die Pflichtspalten treffen.
func normalizeHeader(s string) string {
	out, _, _ := transform.String(norm.NFKC, s)
	return strings.TrimSpace(out)
}

// normalizeCell führt NFC-Normalisierung durch; der Inhalt bleibt sonst unverändert.
func normalizeCell(s string) string {
	out, _, _ := transform.String(norm.NFC, s)
	return strings.TrimSpace(out)
}
