package main

import (
	"context"
	"math"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/alan-christopher/hybrid90/hybrid"
	"github.com/alan-christopher/hybrid90/hybrid/dataset"
	"github.com/alan-christopher/hybrid90/hybrid/field"
	"github.com/alan-christopher/hybrid90/hybrid/store"
)

func TestApplyCartesian(t *testing.T) {
	var got [][]float64
	applyCartesian(func(x []float64) {
		got = append(got, append([]float64(nil), x...))
	}, [][]float64{{1, 2}, {3}, {4, 5, 6}})
	want := [][]float64{
		{1, 3, 4}, {1, 3, 5}, {1, 3, 6},
		{2, 3, 4}, {2, 3, 5}, {2, 3, 6},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("applyCartesian visited %v, want %v", got, want)
	}
}

func TestParamsOf(t *testing.T) {
	got := paramsOf([]float64{1, 2, 3, 4, 5, 6})
	want := hybrid.Params{SignalLossDB: 1, LOLossDB: 2, PhaseSLO: 3, PhaseIQ: 4, ImbalanceIDB: 5, ImbalanceQDB: 6}
	if got != want {
		t.Errorf("paramsOf == %+v, want %+v", got, want)
	}
}

func TestDefaultInputs(t *testing.T) {
	for _, inp := range inputs {
		v, err := lookupInput(inp)
		if err != nil {
			t.Fatalf("lookupInput(%q): %v", inp, err)
		}
		if !reflect.DeepEqual(v, []float64{0}) {
			t.Errorf("lookupInput(%q) == %v, want [0]", inp, v)
		}
	}
}

func TestParseField(t *testing.T) {
	tcs := []struct {
		in      string
		want    complex128
		wantErr bool
	}{
		{in: "1+1i", want: 1 + 1i},
		{in: "1 - 1i", want: 1 - 1i},
		{in: "-0.5i", want: -0.5i},
		{in: "2", want: 2},
		{in: "one", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tcs {
		got, err := parseField(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseField(%q) error == %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("parseField(%q) == %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRun(t *testing.T) {
	pt := &Point{}
	rows, err := run(pt, field.Constant{Signal: 1 + 1i, LO: 1 - 1i}, 3)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(rows) != 12 {
		t.Fatalf("got %d rows, want 12", len(rows))
	}
	if pt.Samples != 3 {
		t.Errorf("Samples == %d, want 3", pt.Samples)
	}
	for _, m := range []float64{pt.Mag0, pt.Mag90, pt.Mag180, pt.Mag270} {
		if math.Abs(m-2) > 1e-12 {
			t.Errorf("mean magnitude == %v, want 2", m)
		}
	}

	if _, err := run(pt, field.Constant{}, 0); err == nil {
		t.Errorf("expected error for empty batch: got nil")
	}
}

func TestLine(t *testing.T) {
	tmpl := template.Must(template.New("line").Parse(lineTmpl()))
	pt := &Point{Params: hybrid.Params{SignalLossDB: 3}, Samples: 1, Mag0: 2, Mag90: 2, Mag180: 2, Mag270: 2}
	var b strings.Builder
	if err := tmpl.Execute(&b, pt); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got, want := b.String(), "3, 0, 0, 0, 0, 0, 1, 2, 2, 2, 2\n"; got != want {
		t.Errorf("line == %q, want %q", got, want)
	}
	if n := len(strings.Split(header(), ", ")); n != len(columns) {
		t.Errorf("header has %d columns, want %d", n, len(columns))
	}
}

func TestFileRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rec, err := newRecorder(context.Background(), path, "", "", zerolog.Nop())
	if err != nil {
		t.Fatalf("newRecorder: %v", err)
	}
	rows := dataset.FromOutputs(hybrid.Ideal(1+1i, 1-1i))
	for i := 0; i < 2; i++ {
		if err := rec.Record(hybrid.DefaultParams, rows); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, err := dataset.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(got) != 2*len(rows) {
		t.Errorf("got %d rows, want %d", len(got), 2*len(rows))
	}
}

func TestStoreRecorder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs.db")
	rec, err := newRecorder(ctx, "db", "sweep", path, zerolog.Nop())
	if err != nil {
		t.Fatalf("newRecorder: %v", err)
	}
	rows := dataset.FromOutputs(hybrid.Ideal(1+1i, 1-1i))
	for _, p := range []hybrid.Params{{}, {SignalLossDB: 1}} {
		if err := rec.Record(p, rows); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err := store.Open(ctx, path, zerolog.Nop())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	defer s.Close()
	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	for _, r := range runs {
		if r.Label != "sweep" || r.RowCount != len(rows) {
			t.Errorf("run %s: label %q with %d rows, want %q with %d", r.ID, r.Label, r.RowCount, "sweep", len(rows))
		}
	}
}

func TestNewRecorderUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if _, err := newRecorder(context.Background(), path, "", "", zerolog.Nop()); err == nil {
		t.Errorf("expected error for %s: got nil", path)
	}
}
