package main

import (
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/research-gate/internal/gate"
	"github.com/sells-group/research-gate/internal/render"
)

var (
	gateFlags  evalFlags
	gateStrict bool
)

var gateCmd = &cobra.Command{
	Use:   "gate <report>",
	Short: "Run both evaluators and decide approve, review or reject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := gateFlags.validate(); err != nil {
			return err
		}
		report, err := loadReport(args[0], cmd.InOrStdin(), gateFlags.stdinFormat)
		if err != nil {
			return err
		}

		s := gateFlags.resolve(cmd)
		v := gate.Evaluate(report, s.totalDimensions,
			gate.WithFreshness(s.freshness),
			gate.WithNow(time.Now()),
		)

		zap.L().Info("gate evaluated",
			zap.String("command", "gate"),
			zap.String("report", args[0]),
			zap.String("decision", string(v.Decision)),
			zap.Strings("reasons", v.Reasons),
		)

		if err := writeOutput(cmd.OutOrStdout(), gateFlags.format, v, func(w io.Writer) error {
			return render.Verdict(w, v, noColor(&gateFlags))
		}); err != nil {
			return err
		}

		if gateStrict && !v.Passed() {
			return eris.Errorf("gate: report not approved (decision %s)", v.Decision)
		}
		return nil
	},
}

func init() {
	gateFlags.register(gateCmd)
	gateCmd.Flags().BoolVar(&gateStrict, "strict", false, "exit non-zero unless the report is approved")
	rootCmd.AddCommand(gateCmd)
}
