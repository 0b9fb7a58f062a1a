package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/research-gate/internal/model"
)

const (
	formatJSON = "json"
	formatText = "text"
)

// evalFlags are the flags shared by the single-report commands.
type evalFlags struct {
	dimensions  int
	noFreshness bool
	format      string
	noColor     bool
	stdinFormat string
}

func (f *evalFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.dimensions, "dimensions", 0, "total research dimensions (default from config)")
	cmd.Flags().BoolVar(&f.noFreshness, "no-freshness", false, "skip the freshness criterion")
	cmd.Flags().StringVar(&f.format, "format", formatJSON, "output format: json or text")
	cmd.Flags().BoolVar(&f.noColor, "no-color", false, "disable colored text output")
	cmd.Flags().StringVar(&f.stdinFormat, "stdin-format", string(model.FormatJSON), "report format when reading from stdin: json or yaml")
}

// evalSettings are the resolved per-call evaluator inputs.
type evalSettings struct {
	totalDimensions int
	freshness       bool
}

// resolve applies config defaults for flags the user did not set.
func (f *evalFlags) resolve(cmd *cobra.Command) evalSettings {
	s := evalSettings{totalDimensions: f.dimensions, freshness: !f.noFreshness}
	if cfg != nil {
		if !cmd.Flags().Changed("dimensions") {
			s.totalDimensions = cfg.Evaluation.TotalDimensions
		}
		if !cmd.Flags().Changed("no-freshness") {
			s.freshness = cfg.Evaluation.FreshnessApplicable
		}
	}
	return s
}

func (f *evalFlags) validate() error {
	switch f.format {
	case formatJSON, formatText:
	default:
		return eris.Errorf("cmd: unsupported output format %q", f.format)
	}
	switch model.Format(strings.ToLower(f.stdinFormat)) {
	case model.FormatJSON, model.FormatYAML:
	default:
		return eris.Errorf("cmd: unsupported stdin format %q", f.stdinFormat)
	}
	return nil
}

// loadReport reads a report from path, or from stdin when path is "-".
func loadReport(path string, stdin io.Reader, stdinFormat string) (*model.Report, error) {
	if path == "-" {
		r, err := model.Read(stdin, model.Format(strings.ToLower(stdinFormat)))
		if err != nil {
			return nil, eris.Wrap(err, "cmd: read report from stdin")
		}
		return r, nil
	}
	return model.LoadFile(path)
}

// writeOutput encodes v as indented JSON, or hands off to text for the text format.
func writeOutput(w io.Writer, format string, v any, text func(io.Writer) error) error {
	if format == formatText {
		return text(w)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "cmd: encode output")
	}
	return nil
}

// noColor reports whether color should be disabled for this run.
func noColor(f *evalFlags) bool {
	return f.noColor || os.Getenv("NO_COLOR") != ""
}
