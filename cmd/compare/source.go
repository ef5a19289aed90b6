package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/alan-christopher/hybrid90/hybrid/dataset"
	"github.com/alan-christopher/hybrid90/hybrid/store"
)

// A source names a dataset: either a file, or a run in a database.
type source struct {
	path  string
	runID string
}

// parseSource splits "path#run-id" into a database source, defaulting the path
// to dbPath when only "#run-id" is given. Anything without a '#' is a file.
func parseSource(s, dbPath string) (source, error) {
	i := strings.LastIndex(s, "#")
	if i < 0 {
		if s == "" {
			return source{}, fmt.Errorf("empty source")
		}
		return source{path: s}, nil
	}
	src := source{path: s[:i], runID: s[i+1:]}
	if src.runID == "" {
		return source{}, fmt.Errorf("source %q: missing run id after '#'", s)
	}
	if src.path == "" {
		src.path = dbPath
	}
	return src, nil
}

func (s source) load(ctx context.Context, log zerolog.Logger) ([]dataset.Row, error) {
	if s.runID == "" {
		return dataset.Open(s.path)
	}
	st, err := store.OpenExisting(ctx, s.path, log)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Rows(ctx, s.runID)
}

func listRuns(ctx context.Context, w io.Writer, path string, log zerolog.Logger) error {
	st, err := store.OpenExisting(ctx, path, log)
	if err != nil {
		return err
	}
	defer st.Close()
	runs, err := st.Runs(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLABEL\tCREATED\tROWS\tIL_SIGNAL\tIL_LO\tPHASE_SLO\tPHASE_IQ\tIL_IMB_I\tIL_IMB_Q")
	for _, r := range runs {
		p := r.Params
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%g\t%g\t%g\t%g\t%g\t%g\n",
			r.ID, r.Label, r.CreatedAt.Format(time.RFC3339), r.RowCount,
			p.SignalLossDB, p.LOLossDB, p.PhaseSLO, p.PhaseIQ, p.ImbalanceIDB, p.ImbalanceQDB)
	}
	return tw.Flush()
}
