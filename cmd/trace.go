package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/research-gate/internal/render"
	"github.com/sells-group/research-gate/internal/traceability"
)

var traceFlags evalFlags

var traceCmd = &cobra.Command{
	Use:   "trace <report>",
	Short: "Verify the answer claim traces to confident findings and listed sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := traceFlags.validate(); err != nil {
			return err
		}
		report, err := loadReport(args[0], cmd.InOrStdin(), traceFlags.stdinFormat)
		if err != nil {
			return err
		}

		res := traceability.Verify(report, traceability.WithNow(time.Now()))

		zap.L().Info("traceability verified",
			zap.String("command", "trace"),
			zap.String("report", args[0]),
			zap.String("status", string(res.Status)),
		)

		return writeOutput(cmd.OutOrStdout(), traceFlags.format, res, func(w io.Writer) error {
			return render.Traceability(w, res, noColor(&traceFlags))
		})
	},
}

func init() {
	traceFlags.register(traceCmd)
	rootCmd.AddCommand(traceCmd)
}
