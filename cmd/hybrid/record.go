package main

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alan-christopher/hybrid90/hybrid"
	"github.com/alan-christopher/hybrid90/hybrid/dataset"
	"github.com/alan-christopher/hybrid90/hybrid/store"
)

// A recorder persists the rows produced for each parameterization.
type recorder interface {
	Record(p hybrid.Params, rows []dataset.Row) error
	Close() error
}

// newRecorder picks a recorder for out. An empty out discards rows, "db" and
// paths ending in .db or .sqlite save one run per parameterization, and
// anything else is handed to dataset.Create.
func newRecorder(ctx context.Context, out, label, dbPath string, log zerolog.Logger) (recorder, error) {
	if out == "" {
		return discard{}, nil
	}
	if out == "db" {
		out = dbPath
	}
	if isDatabase(out) {
		s, err := store.Open(ctx, out, log)
		if err != nil {
			return nil, err
		}
		return &storeRecorder{ctx: ctx, store: s, label: label, log: log}, nil
	}
	sink, err := dataset.Create(out)
	if err != nil {
		return nil, err
	}
	return fileRecorder{sink: sink}, nil
}

func isDatabase(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

type discard struct{}

func (discard) Record(hybrid.Params, []dataset.Row) error { return nil }
func (discard) Close() error { return nil }

// fileRecorder appends every parameterization's rows to a single file.
type fileRecorder struct {
	sink dataset.Sink
}

func (f fileRecorder) Record(_ hybrid.Params, rows []dataset.Row) error {
	return f.sink.Write(rows...)
}

func (f fileRecorder) Close() error {
	return f.sink.Close()
}

type storeRecorder struct {
	ctx   context.Context
	store *store.Store
	label string
	log   zerolog.Logger
}

func (s *storeRecorder) Record(p hybrid.Params, rows []dataset.Row) error {
	sink := store.NewSink(s.ctx, s.store, s.label, p)
	if err := sink.Write(rows...); err != nil {
		return err
	}
	if err := sink.Close(); err != nil {
		return err
	}
	s.log.Info().Str("run", sink.ID()).Str("label", s.label).Int("rows", len(rows)).Msg("recorded run")
	return nil
}

func (s *storeRecorder) Close() error {
	return s.store.Close()
}
