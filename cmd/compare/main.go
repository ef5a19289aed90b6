// compare decides whether two recorded hybrid output datasets plausibly come
// from the same distribution. Each dataset is reduced to its output
// magnitudes and run through a battery of two-sample tests, e.g. Student's t
// and Kolmogorov-Smirnov, and one verdict is printed per test.
//
// Usage:
//
//	compare [flags] A B
//
// where A and B are .csv or .pb dataset files, or "path.db#run-id" for a run
// recorded to a SQLite database ("#run-id" uses HYBRID_DB_PATH).
package main

import (
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/alan-christopher/hybrid90/hybrid/compare"
	"github.com/alan-christopher/hybrid90/hybrid/dataset"
	"github.com/alan-christopher/hybrid90/internal/config"
	"github.com/alan-christopher/hybrid90/internal/logger"
)

var (
	list     = flag.Bool("list", false, "List the runs recorded in the database instead of comparing.")
	dbPath   = flag.String("db", "", "The database used by \"#run-id\" sources and --list. Defaults to HYBRID_DB_PATH.")
	logLevel = flag.String("log-level", "", "Overrides HYBRID_LOG_LEVEL.")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] A B\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "compare: %v\n", err)
		os.Exit(2)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	ctx := context.Background()

	if *list {
		if err := listRuns(ctx, os.Stdout, cfg.DatabasePath, log); err != nil {
			log.Fatal().Err(err).Str("db", cfg.DatabasePath).Msg("could not list runs")
		}
		return
	}
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	var mags [2][]float64
	for i, arg := range flag.Args() {
		src, err := parseSource(arg, cfg.DatabasePath)
		if err != nil {
			log.Fatal().Err(err).Msg("bad source")
		}
		rows, err := src.load(ctx, log)
		if err != nil {
			log.Fatal().Err(err).Str("source", arg).Msg("could not load dataset")
		}
		log.Debug().Str("source", arg).Int("rows", len(rows)).Msg("loaded dataset")
		mags[i] = dataset.Magnitudes(rows)
	}

	results := compare.Run(mags[0], mags[1])
	significant, applied := 0, 0
	for _, r := range results {
		fmt.Println(r)
		if r.Status == compare.Applied {
			applied++
		}
		if r.Significant() {
			significant++
		}
	}
	log.Info().
		Int("tests", len(results)).
		Int("applied", applied).
		Int("significant", significant).
		Msg("comparison complete")
}
