package main

import (
	"context"
	"encoding/json"
	"io"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/research-gate/internal/gate"
	"github.com/sells-group/research-gate/internal/model"
)

var (
	batchDimensions  int
	batchNoFreshness bool
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch <report>...",
	Short: "Gate many reports concurrently and emit JSON Lines",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		dims := cfg.Evaluation.TotalDimensions
		if cmd.Flags().Changed("dimensions") {
			dims = batchDimensions
		}
		freshness := cfg.Evaluation.FreshnessApplicable
		if cmd.Flags().Changed("no-freshness") {
			freshness = !batchNoFreshness
		}
		concurrency := batchConcurrency
		if concurrency <= 0 {
			concurrency = cfg.Batch.MaxConcurrentReports
		}

		_, err := processBatch(ctx, cmd.OutOrStdout(), args, concurrency, gateFile(dims, freshness, time.Now()))
		return err
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchDimensions, "dimensions", 0, "total research dimensions (default from config)")
	batchCmd.Flags().BoolVar(&batchNoFreshness, "no-freshness", false, "skip the freshness criterion")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max reports evaluated at once (default from config)")
	rootCmd.AddCommand(batchCmd)
}

// evaluateFunc gates the report stored at path.
type evaluateFunc func(ctx context.Context, path string) (*gate.Verdict, error)

// gateFile loads a report and gates it. Every report in a run shares now.
func gateFile(totalDimensions int, freshness bool, now time.Time) evaluateFunc {
	return func(_ context.Context, path string) (*gate.Verdict, error) {
		report, err := model.LoadFile(path)
		if err != nil {
			return nil, err
		}
		return gate.Evaluate(report, totalDimensions,
			gate.WithFreshness(freshness),
			gate.WithNow(now),
		), nil
	}
}

// batchLine is one JSON Lines record of batch output.
type batchLine struct {
	RunID    string        `json:"run_id"`
	Path     string        `json:"path"`
	Decision gate.Decision `json:"decision,omitempty"`
	Verdict  *gate.Verdict `json:"verdict,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// batchSummary counts outcomes of a batch run.
type batchSummary struct {
	RunID    string
	Approved int64
	Review   int64
	Rejected int64
	Failed   int64
}

// processBatch evaluates paths concurrently and writes one line per path in
// input order. A report that fails to load is recorded and never aborts the run.
func processBatch(ctx context.Context, w io.Writer, paths []string, concurrency int, evaluate evaluateFunc) (batchSummary, error) {
	summary := batchSummary{RunID: uuid.NewString()}
	if len(paths) == 0 {
		zap.L().Info("no reports to evaluate")
		return summary, nil
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	log := zap.L().With(zap.String("command", "batch"), zap.String("run_id", summary.RunID))
	log.Info("processing batch",
		zap.Int("reports", len(paths)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var approved, review, rejected, failed atomic.Int64
	lines := make([]batchLine, len(paths))

	for i, path := range paths {
		g.Go(func() error {
			line := batchLine{RunID: summary.RunID, Path: path}
			defer func() { lines[i] = line }()

			if err := gctx.Err(); err != nil {
				failed.Add(1)
				line.Error = eris.Wrap(err, "batch: canceled").Error()
				return nil
			}

			v, err := evaluate(gctx, path)
			if err != nil {
				failed.Add(1)
				line.Error = err.Error()
				log.Error("report evaluation failed", zap.String("report", path), zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			switch v.Decision {
			case gate.DecisionApprove:
				approved.Add(1)
			case gate.DecisionReview:
				review.Add(1)
			default:
				rejected.Add(1)
			}
			line.Decision = v.Decision
			line.Verdict = v
			log.Debug("report evaluated", zap.String("report", path), zap.String("decision", string(v.Decision)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, eris.Wrap(err, "batch processing")
	}

	enc := json.NewEncoder(w)
	for _, line := range lines {
		if err := enc.Encode(line); err != nil {
			return summary, eris.Wrap(err, "batch: write output")
		}
	}

	summary.Approved = approved.Load()
	summary.Review = review.Load()
	summary.Rejected = rejected.Load()
	summary.Failed = failed.Load()

	log.Info("batch complete",
		zap.Int64("approved", summary.Approved),
		zap.Int64("review", summary.Review),
		zap.Int64("rejected", summary.Rejected),
		zap.Int64("failed", summary.Failed),
	)
	return summary, nil
}
