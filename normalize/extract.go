// Package normalize enthält die reine Normalisierungslogik für Behandlungskarten:
// Feldextraktion aus Tabellenzeilen, Raten- und Risikoformatierung, Score-Aliase
// sowie die Kanonisierung gespeicherter Karten beim Lesen.
//
// Alle Funktionen sind seiteneffektfrei und dürfen parallel aufgerufen werden.
package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row ist eine lose typisierte Zeile: Tabellenzellen (string) oder ein
// dekodiertes JSON-Dokument (float64, json.Number, string, nil).
type Row map[string]any

// CoercionError beschreibt ein einzelnes Feld, das nicht in eine Zahl
// umgewandelt werden konnte. Der Wert wurde bereits durch den Default ersetzt,
// der Fehler ist nur eine Warnung.
type CoercionError struct {
	Line  int
	Field string
	Value any
	Err   error
}

func (e *CoercionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("row %d: field %q: cannot use %v as number, default applied", e.Line, e.Field, e.Value)
	}
	return fmt.Sprintf("field %q: cannot use %v as number, default applied", e.Field, e.Value)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// isMissing erkennt fehlende, leere und NaN-Werte.
func isMissing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(t)
		return s == "" || strings.EqualFold(s, "nan")
	case float64:
		return math.IsNaN(t)
	case float32:
		return math.IsNaN(float64(t))
	case json.Number:
		return strings.EqualFold(string(t), "nan")
	}
	return false
}

// Present meldet, ob das Feld einen verwertbaren (nicht leeren) Wert trägt.
func Present(row Row, field string) bool {
	v, ok := row[field]
	return ok && !isMissing(v)
}

// ExtractText liefert den Wert eines Textfelds oder def, wenn er fehlt.
// Zeichenketten werden unverändert zurückgegeben.
func ExtractText(row Row, field, def string) string {
	v, ok := row[field]
	if !ok || isMissing(v) {
		return def
	}
	if s, ok := textOf(v); ok {
		return s
	}
	return def
}

// ExtractNumber liefert den Wert eines Zahlenfelds. Bei fehlendem Wert wird def
// ohne Fehler zurückgegeben; bei nicht umwandelbarem Inhalt ebenfalls def, aber
// zusammen mit einem *CoercionError.
func ExtractNumber(row Row, field string, def float64) (float64, error) {
	v, ok := row[field]
	if !ok || isMissing(v) {
		return def, nil
	}
	f, err := parseNumber(v)
	if err != nil {
		return def, &CoercionError{Field: field, Value: v, Err: err}
	}
	return f, nil
}

// optionalNumber liefert nil für fehlende oder unbrauchbare Werte.
func optionalNumber(row Row, field string) (*float64, error) {
	if !Present(row, field) {
		return nil, nil
	}
	f, err := ExtractNumber(row, field, 0)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func textOf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case bool:
		return strconv.FormatBool(t), true
	case nil:
		return "", false
	}
	// Objekte und Listen aus alten Dokumenten bleiben als JSON-Text erhalten.
	if raw, err := json.Marshal(v); err == nil {
		return string(raw), true
	}
	return fmt.Sprint(v), true
}

func parseNumber(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, err
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, err
		}
		f = parsed
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number: %v", v)
	}
	return f, nil
}

// toFloat ist die fehlertolerante Variante für die Normalisierer.
func toFloat(v any) (float64, bool) {
	if isMissing(v) {
		return 0, false
	}
	f, err := parseNumber(v)
	return f, err == nil
}
