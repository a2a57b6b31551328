package services

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound wird geliefert, wenn eine Karte oder Datei fehlt oder einem
// anderen Benutzer gehört.
var ErrNotFound = errors.New("not found")

// ValidationError meldet fehlende Pflichtspalten einer Importtabelle.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required columns: " + strings.Join(e.Missing, ", ")
}

// StorageError kapselt Fehler aus Datenbank oder Objektspeicher.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
