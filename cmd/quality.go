package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/research-gate/internal/quality"
	"github.com/sells-group/research-gate/internal/render"
)

var qualityFlags evalFlags

var qualityCmd = &cobra.Command{
	Use:   "quality <report>",
	Short: "Score a report on coverage, evidence, freshness and contradictions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := qualityFlags.validate(); err != nil {
			return err
		}
		report, err := loadReport(args[0], cmd.InOrStdin(), qualityFlags.stdinFormat)
		if err != nil {
			return err
		}

		s := qualityFlags.resolve(cmd)
		res := quality.Score(report, s.totalDimensions,
			quality.WithFreshness(s.freshness),
			quality.WithNow(time.Now()),
		)

		zap.L().Info("quality scored",
			zap.String("command", "quality"),
			zap.String("report", args[0]),
			zap.String("threshold", string(res.Threshold)),
			zap.Float64("average", res.Assessment.Average),
		)

		return writeOutput(cmd.OutOrStdout(), qualityFlags.format, res, func(w io.Writer) error {
			return render.Quality(w, res, noColor(&qualityFlags))
		})
	},
}

func init() {
	qualityFlags.register(qualityCmd)
	rootCmd.AddCommand(qualityCmd)
}
