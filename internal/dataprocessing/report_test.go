package dataprocessing

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetclean/pkg/contracts/domain"
)

func captureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLogReporter_Levels(t *testing.T) {
	tests := []struct {
		kind          domain.DiagnosticKind
		warnUnmatched bool
		want          string
	}{
		{domain.DiagColumnNotFound, false, "WARN"},
		{domain.DiagValuesReplaced, false, "INFO"},
		{domain.DiagNoMatch, false, "DEBUG"},
		{domain.DiagNoMatch, true, "WARN"},
		{domain.DiagCellsTrimmed, false, "DEBUG"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			var buf bytes.Buffer
			r := NewLogReporter(captureLogger(&buf))
			r.WarnUnmatched = tt.warnUnmatched

			wrong, correct := domain.Text("acme"), domain.Text("ACME")
			r.Report(t.Context(), domain.Diagnostic{
				File:    "a.xlsx",
				Stage:   domain.StageCorrect,
				Kind:    tt.kind,
				Column:  "Market_brand",
				Count:   3,
				Wrong:   &wrong,
				Correct: &correct,
				Message: "msg",
			})

			var rec map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
			assert.Equal(t, tt.want, rec["level"])
			assert.Equal(t, "diagnostics", rec["component"])
			assert.Equal(t, "a.xlsx", rec["file"])
			assert.Equal(t, "Market_brand", rec["column"])
			assert.Equal(t, "acme", rec["wrong"])
			assert.Equal(t, "ACME", rec["correct"])
			assert.Equal(t, float64(3), rec["count"])
		})
	}
}

func TestMultiReporter(t *testing.T) {
	a, b := &Collector{}, &Collector{}
	r := MultiReporter(a, nil, b)

	r.Report(t.Context(), domain.Diagnostic{Kind: domain.DiagFillDown})

	assert.Len(t, a.Diagnostics(), 1)
	assert.Len(t, b.Diagnostics(), 1)
}
