package output

import (
	"encoding/json"

	"github.com/ablecalc/ablecalc/internal/report"
)

// JSONFormatter marshals the full report, monthly rows included.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(rep *report.Report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}
