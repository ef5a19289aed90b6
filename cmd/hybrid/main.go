// hybrid runs the 90 degree hybrid model for each entry in the cartesian
// product of a collection of impairment parameters, e.g. signal insertion loss
// and I/Q phase imbalance, and outputs a CSV line of mean port magnitudes for
// each combination. The underlying output rows can also be recorded to a
// dataset file or a SQLite database for later comparison.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/template"

	flag "github.com/spf13/pflag"
	"gonum.org/v1/gonum/stat"

	"github.com/alan-christopher/hybrid90/hybrid"
	"github.com/alan-christopher/hybrid90/hybrid/dataset"
	"github.com/alan-christopher/hybrid90/hybrid/field"
	"github.com/alan-christopher/hybrid90/internal/config"
	"github.com/alan-christopher/hybrid90/internal/logger"
)

var (
	signalField = flag.String("signal", "1+1i", "The complex signal field presented to the hybrid.")
	loField     = flag.String("lo", "1-1i", "The complex local oscillator field presented to the hybrid.")

	ilSignal = flag.Float64Slice("il-signal", []float64{0}, "Signal arm insertion losses, in dB.")
	ilLO     = flag.Float64Slice("il-lo", []float64{0}, "LO arm insertion losses, in dB.")
	phaseSLO = flag.Float64Slice("phase-slo", []float64{0}, "Signal/LO phase imbalances, in radians.")
	phaseIQ  = flag.Float64Slice("phase-iq", []float64{0}, "I/Q phase imbalances, in radians.")
	ilImbI   = flag.Float64Slice("il-imb-i", []float64{0}, "I branch insertion loss imbalances, in dB.")
	ilImbQ   = flag.Float64Slice("il-imb-q", []float64{0}, "Q branch insertion loss imbalances, in dB.")

	samples    = flag.Int("samples", 0, "Simulated samples per combination. 0 transforms --signal and --lo exactly once.")
	phaseNoise = flag.Float64("phase-noise", 0, "Standard deviation of simulated phase noise, in radians.")
	ampNoise   = flag.Float64("amp-noise", 0, "Standard deviation of simulated relative amplitude noise.")
	seed       = flag.Uint64("seed", 0, "Seed for simulated samples. Defaults to HYBRID_SEED.")

	out      = flag.String("out", "", `Where to record output rows: a .csv or .pb file, a .db SQLite database, or "db" for HYBRID_DB_PATH.`)
	label    = flag.String("label", "", "Label for runs recorded to a database.")
	logLevel = flag.String("log-level", "", "Overrides HYBRID_LOG_LEVEL.")
)

var (
	inputs  = []string{"il-signal", "il-lo", "phase-slo", "phase-iq", "il-imb-i", "il-imb-q"}
	columns = []string{"SignalLossDB", "LOLossDB", "PhaseSLO", "PhaseIQ", "ImbalanceIDB",
		"ImbalanceQDB", "Samples", "Mag0", "Mag90", "Mag180", "Mag270"}
)

// A Point packages together the result of running a single parameterization
// for easy formatting.
type Point struct {
	hybrid.Params

	// Fields corresponding to results
	Samples                     int
	Mag0, Mag90, Mag180, Mag270 float64
}

func main() {
	flag.Parse()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hybrid: %v\n", err)
		os.Exit(2)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	if !flag.CommandLine.Changed("seed") {
		*seed = cfg.Seed
	}

	signal, err := parseField(*signalField)
	if err != nil {
		log.Fatal().Err(err).Msg("bad --signal")
	}
	lo, err := parseField(*loField)
	if err != nil {
		log.Fatal().Err(err).Msg("bad --lo")
	}
	if *samples < 0 {
		log.Fatal().Int("samples", *samples).Msg("--samples must be non-negative")
	}
	var args [][]float64
	for _, inp := range inputs {
		v, err := lookupInput(inp)
		if err != nil {
			log.Fatal().Err(err).Msg("BUG: unknown input")
		}
		args = append(args, v)
	}

	ctx := context.Background()
	rec, err := newRecorder(ctx, *out, *label, cfg.DatabasePath, log)
	if err != nil {
		log.Fatal().Err(err).Str("out", *out).Msg("could not open output")
	}

	fmt.Println(header())
	tmpl := template.Must(template.New("line").Parse(lineTmpl()))
	failures := 0
	applyCartesian(func(vals []float64) {
		pt := &Point{Params: paramsOf(vals)}
		src, n, err := newSource(signal, lo)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create field source")
		}
		rows, err := run(pt, src, n)
		if err == nil {
			err = rec.Record(pt.Params, rows)
		}
		if err != nil {
			log.Error().Err(err).Interface("params", pt.Params).Msg("running hybrid")
			failures++
			return
		}
		if err := tmpl.Execute(os.Stdout, pt); err != nil {
			log.Fatal().Err(err).Msg("BUG: could not fill in line template")
		}
	}, args)

	if err := rec.Close(); err != nil {
		log.Error().Err(err).Str("out", *out).Msg("closing output")
		failures++
	}
	if failures > 0 {
		os.Exit(1)
	}
}

func inpIndex(v string) int {
	for i, inp := range inputs {
		if inp == v {
			return i
		}
	}
	return -1
}

func paramsOf(vals []float64) hybrid.Params {
	return hybrid.Params{
		SignalLossDB: vals[inpIndex("il-signal")],
		LOLossDB:     vals[inpIndex("il-lo")],
		PhaseSLO:     vals[inpIndex("phase-slo")],
		PhaseIQ:      vals[inpIndex("phase-iq")],
		ImbalanceIDB: vals[inpIndex("il-imb-i")],
		ImbalanceQDB: vals[inpIndex("il-imb-q")],
	}
}

// parseField parses a complex field such as "1+1i", "-0.5i" or "2".
func parseField(s string) (complex128, error) {
	c, err := strconv.ParseComplex(strings.ReplaceAll(s, " ", ""), 128)
	if err != nil {
		return 0, fmt.Errorf("parsing field %q: %w", s, err)
	}
	return c, nil
}

// newSource returns the field source for one parameterization and the number
// of samples to draw from it. Every parameterization gets a freshly seeded
// source so that they all see identical input fields.
func newSource(signal, lo complex128) (field.Source, int, error) {
	if *samples == 0 {
		return field.Constant{Signal: signal, LO: lo}, 1, nil
	}
	src, err := field.NewSimulated(field.SimulatedOpts{
		Signal:         signal,
		LO:             lo,
		PhaseNoise:     *phaseNoise,
		AmplitudeNoise: *ampNoise,
		Seed:           *seed,
	})
	if err != nil {
		return nil, 0, err
	}
	return src, *samples, nil
}

func run(pt *Point, src field.Source, n int) ([]dataset.Row, error) {
	signal, lo, err := src.Next(n)
	if err != nil {
		return nil, err
	}
	outs, err := hybrid.TransformBatch(signal, lo, pt.Params)
	if err != nil {
		return nil, err
	}
	rows := make([]dataset.Row, 0, len(outs)*len(hybrid.Phases))
	var mags [len(hybrid.Phases)][]float64
	for _, o := range outs {
		rows = append(rows, dataset.FromOutputs(o)...)
		for i, m := range o.Magnitudes() {
			mags[i] = append(mags[i], m)
		}
	}
	pt.Samples = len(outs)
	pt.Mag0 = stat.Mean(mags[0], nil)
	pt.Mag90 = stat.Mean(mags[1], nil)
	pt.Mag180 = stat.Mean(mags[2], nil)
	pt.Mag270 = stat.Mean(mags[3], nil)
	return rows, nil
}

func header() string {
	return strings.Join(columns, ", ")
}

func lineTmpl() string {
	var els []string
	for _, c := range columns {
		els = append(els, "{{."+c+"}}")
	}
	return strings.Join(els, ", ") + "\n"
}

func lookupInput(name string) ([]float64, error) {
	return flag.CommandLine.GetFloat64Slice(name)
}

func applyCartesian(f func([]float64), args [][]float64) {
	for i := range args {
		if len(args[i]) == 1 {
			continue
		}
		l := make([][]float64, len(args))
		r := make([][]float64, len(args))
		copy(l, args)
		copy(r, args)
		l[i] = args[i][:1]
		r[i] = args[i][1:]
		applyCartesian(f, l)
		applyCartesian(f, r)
		return
	}
	x := make([]float64, 0, len(args))
	for _, a := range args {
		x = append(x, a[0])
	}
	f(x)
}
