package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tcs := []struct {
		level  string
		debug  bool
		info   bool
		errors bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"", false, true, true},
		{"bogus", false, true, true},
		{"error", false, false, true},
	}
	for _, tc := range tcs {
		t.Run(tc.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(Config{Level: tc.level, Out: &buf})

			for _, c := range []struct {
				write func()
				want  bool
			}{
				{func() { log.Debug().Msg("d") }, tc.debug},
				{func() { log.Info().Msg("i") }, tc.info},
				{func() { log.Error().Msg("e") }, tc.errors},
			} {
				buf.Reset()
				c.write()
				if got := buf.Len() > 0; got != c.want {
					t.Errorf("logged == %v, want %v", got, c.want)
				}
			}
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Out: &buf})
	log.Info().Str("run", "abc").Msg("saved")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line %q is not JSON: %v", buf.String(), err)
	}
	for k, want := range map[string]any{"level": "info", "run": "abc", "message": "saved"} {
		if entry[k] != want {
			t.Errorf("entry[%q] == %v, want %v", k, entry[k], want)
		}
	}
	if _, ok := entry["time"]; !ok {
		t.Errorf("entry has no timestamp: %v", entry)
	}
}
