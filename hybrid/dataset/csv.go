package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var csvHeader = []string{"Phase", "Real", "Imaginary"}

// A CSVWriter writes rows as comma separated values under a
// "Phase,Real,Imaginary" header.
type CSVWriter struct {
	w      *csv.Writer
	c      io.Closer
	header bool
}

// NewCSVWriter returns a CSVWriter writing to w. The header is written along
// with the first rows, or on Close if no rows are written.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write implements the Sink interface.
func (c *CSVWriter) Write(rows ...Row) error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Phase),
			strconv.FormatFloat(r.Real, 'g', -1, 64),
			strconv.FormatFloat(r.Imag, 'g', -1, 64),
		}
		if err := c.w.Write(rec); err != nil {
			return err
		}
	}
	c.w.Flush()
	return c.w.Error()
}

// Close implements the Sink interface. It closes the underlying file, if the
// CSVWriter owns one.
func (c *CSVWriter) Close() error {
	err := c.writeHeader()
	c.w.Flush()
	if err == nil {
		err = c.w.Error()
	}
	if c.c != nil {
		if cerr := c.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (c *CSVWriter) writeHeader() error {
	if c.header {
		return nil
	}
	c.header = true
	return c.w.Write(csvHeader)
}

// ReadCSV reads rows from r. If the first record is a header, columns are
// located by name (case-insensitively); otherwise they are taken to be phase,
// real and imaginary, in that order. Phases may be written as integers or
// floats, e.g. "90" or "90.0".
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	cols := [3]int{0, 1, 2}
	var rows []Row
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && isHeader(rec) {
			if cols, err = headerColumns(rec); err != nil {
				return nil, err
			}
			continue
		}
		row, err := parseRecord(rec, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
}

func isHeader(rec []string) bool {
	if len(rec) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	return err != nil
}

func headerColumns(rec []string) ([3]int, error) {
	cols := [3]int{-1, -1, -1}
	for i, name := range rec {
		for j, want := range csvHeader {
			if strings.EqualFold(strings.TrimSpace(name), want) {
				cols[j] = i
			}
		}
	}
	for j, c := range cols {
		if c < 0 {
			return cols, fmt.Errorf("header %v is missing column %q", rec, csvHeader[j])
		}
	}
	return cols, nil
}

func parseRecord(rec []string, cols [3]int) (Row, error) {
	var vals [3]float64
	for j, c := range cols {
		if c >= len(rec) {
			return Row{}, fmt.Errorf("missing %s field: got %d fields", csvHeader[j], len(rec))
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[c]), 64)
		if err != nil {
			return Row{}, fmt.Errorf("parsing %s: %w", csvHeader[j], err)
		}
		vals[j] = v
	}
	if ph := vals[0]; ph != math.Trunc(ph) || math.Abs(ph) > math.MaxInt32 {
		return Row{}, fmt.Errorf("%s must be a whole number of degrees: got %v", csvHeader[0], ph)
	}
	return Row{Phase: int(vals[0]), Real: vals[1], Imag: vals[2]}, nil
}
