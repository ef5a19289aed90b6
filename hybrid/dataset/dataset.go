// Package dataset records the outputs of a hybrid as (phase, real, imaginary)
// rows, and reads them back for comparison.
package dataset

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/alan-christopher/hybrid90/hybrid"
)

// ErrUnknownFormat is returned when a path's extension does not name a
// supported format.
var ErrUnknownFormat = errors.New("unknown dataset format")

// A Row is a single recorded output field.
type Row struct {
	// Phase is the nominal phase of the output port, in degrees.
	Phase int
	Real  float64
	Imag  float64
}

// Magnitude returns the amplitude of the field recorded in r.
func (r Row) Magnitude() float64 {
	return math.Hypot(r.Real, r.Imag)
}

// FromOutputs converts the outputs of a single transform into four rows,
// ordered and labelled by hybrid.Phases.
func FromOutputs(o hybrid.Outputs) []Row {
	rows := make([]Row, len(o))
	for i, v := range o {
		rows[i] = Row{Phase: hybrid.Phases[i], Real: real(v), Imag: imag(v)}
	}
	return rows
}

// Magnitudes returns the magnitude of each row, in order.
func Magnitudes(rows []Row) []float64 {
	m := make([]float64, len(rows))
	for i, r := range rows {
		m[i] = r.Magnitude()
	}
	return m
}

// A Sink durably records rows. Sinks are not safe for concurrent use.
type Sink interface {
	Write(rows ...Row) error
	Close() error
}

type format int

const (
	formatCSV format = iota
	formatFramed
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return formatCSV, nil
	case ".pb", ".bin":
		return formatFramed, nil
	}
	return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Create creates (or truncates) the file at path and returns a Sink writing to
// it in the format named by its extension: ".csv" or ".pb"/".bin".
func Create(path string) (Sink, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	switch f {
	case formatFramed:
		w := NewFramedWriter(file)
		w.c = file
		return w, nil
	default:
		w := NewCSVWriter(file)
		w.c = file
		return w, nil
	}
}

// Open reads every row from the file at path, in the format named by its
// extension.
func Open(path string) ([]Row, error) {
	f, err := formatOf(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var rows []Row
	switch f {
	case formatFramed:
		rows, err = ReadFramed(file)
	default:
		rows, err = ReadCSV(file)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}
