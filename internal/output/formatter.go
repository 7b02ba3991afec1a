package output

import (
	"fmt"

	"github.com/ablecalc/ablecalc/internal/report"
)

// Formatter renders a projection report for one output target.
type Formatter interface {
	Name() string
	Format(rep *report.Report) ([]byte, error)
}

// ByName returns the formatter for a format flag value.
func ByName(name string) (Formatter, error) {
	switch name {
	case "table", "":
		return TableFormatter{}, nil
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	case "pdf":
		return PDFFormatter{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", name)
}
