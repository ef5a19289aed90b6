package store

import (
	"context"

	"github.com/alan-christopher/hybrid90/hybrid"
	"github.com/alan-christopher/hybrid90/hybrid/dataset"
)

// A Sink adapts a Store to the dataset.Sink interface. Rows are buffered and
// saved as a single run on Close.
type Sink struct {
	ctx   context.Context
	store *Store
	run   Run
}

// NewSink returns a Sink which saves a run with the given label and params.
func NewSink(ctx context.Context, s *Store, label string, p hybrid.Params) *Sink {
	return &Sink{ctx: ctx, store: s, run: Run{Label: label, Params: p}}
}

// Write implements the dataset.Sink interface.
func (s *Sink) Write(rows ...dataset.Row) error {
	s.run.Rows = append(s.run.Rows, rows...)
	return nil
}

// Close implements the dataset.Sink interface. It does not close the Store.
func (s *Sink) Close() error {
	id, err := s.store.SaveRun(s.ctx, s.run)
	if err != nil {
		return err
	}
	s.run.ID = id
	return nil
}

// ID returns the id of the saved run, or "" before Close succeeds.
func (s *Sink) ID() string {
	return s.run.ID
}
