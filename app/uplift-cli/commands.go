package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"causalUplift/business/uplift"
	"causalUplift/domain"
	"causalUplift/internal/repository/artifact"
	"causalUplift/internal/repository/chart"
	"causalUplift/internal/repository/csvfile"
	"causalUplift/internal/repository/predictor"
	"causalUplift/pkg/config"
	"causalUplift/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "uplift-cli",
		Short:         "Evaluates an uplift model by decile on a held-out test set",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, cfg)
			appCfg = cfg
			logger.InitWithWriter(cfg.App.Environment, cmd.ErrOrStderr())
			return cfg.Validate()
		},
	}
	reportCmd = &cobra.Command{
		Use:   "report",
		Short: "Splits, scores, ranks and writes the decile lift chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), appCfg, cmd.OutOrStdout())
		},
	}
	splitCmd = &cobra.Command{
		Use:   "split",
		Short: "Prints the reconstructed test partition size and digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd.Context(), appCfg, cmd.OutOrStdout())
		},
	}

	appCfg *config.Config

	flagInput       string
	flagResults     string
	flagRatio       float64
	flagSeed        int64
	flagLeak        []string
	flagPredictor   string
	flagModel       string
	flagMetricsFile string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagInput, "input", "", "path to the customer CSV (UPLIFT_INPUT_PATH)")
	pf.Float64Var(&flagRatio, "ratio", 0, "test partition ratio (UPLIFT_TEST_RATIO)")
	pf.Int64Var(&flagSeed, "seed", 0, "split seed (UPLIFT_SEED)")

	reportCmd.Flags().StringVar(&flagResults, "results", "", "directory for the chart (UPLIFT_RESULTS_DIR)")
	reportCmd.Flags().StringSliceVar(&flagLeak, "leak-columns", nil, "columns dropped on a schema mismatch (UPLIFT_LEAK_COLUMNS)")
	reportCmd.Flags().StringVar(&flagPredictor, "predictor", "", "linear or http (PREDICTOR_KIND)")
	reportCmd.Flags().StringVar(&flagModel, "model", "", "linear model artifact (PREDICTOR_MODEL_PATH)")
	reportCmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "write Prometheus metrics to this textfile after the run")

	rootCmd.AddCommand(reportCmd, splitCmd)
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("input") {
		cfg.Uplift.InputPath = flagInput
	}
	if changed("ratio") {
		cfg.Uplift.TestRatio = flagRatio
	}
	if changed("seed") {
		cfg.Uplift.Seed = flagSeed
	}
	if changed("results") {
		cfg.Uplift.ResultsDir = flagResults
	}
	if changed("leak-columns") {
		cfg.Uplift.LeakColumns = flagLeak
	}
	if changed("predictor") {
		cfg.Predictor.Kind = flagPredictor
	}
	if changed("model") {
		cfg.Predictor.ModelPath = flagModel
	}
}

func runReport(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := artifact.Open(ctx, artifact.FromConfig(cfg.Artifact, cfg.Uplift.ResultsDir))
	if err != nil {
		return err
	}
	model, err := predictor.FromConfig(cfg.Predictor)
	if err != nil {
		return err
	}

	svc := uplift.NewUpliftService(
		csvfile.NewDatasetRepository(),
		model,
		uplift.NewChartEmitter(chart.NewPNGRenderer(), store, cfg.Uplift.ChartKey),
		nil,
		uplift.ConfigFrom(cfg.Uplift),
	)

	report, err := svc.GenerateReport(ctx)
	if err != nil {
		return err
	}

	printReport(out, report)

	if flagMetricsFile != "" {
		if err := prometheus.WriteToTextfile(flagMetricsFile, prometheus.DefaultGatherer); err != nil {
			return fmt.Errorf("write metrics file: %w", err)
		}
	}
	return nil
}

func printReport(out io.Writer, report domain.UpliftReport) {
	fmt.Fprintf(out, "run %s: %d of %d records in test set (ratio %g, seed %d, scoring %s)\n",
		report.ID, report.TestSize, report.DatasetSize, report.TestRatio, report.Seed, report.ScoringMode)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "decile\tsize\ttreated\tcontrol\ttreated_rate\tcontrol_rate\tlift_%\t")
	for _, m := range report.Deciles {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s\t%s\t%s\t\n",
			m.Decile, m.Size, m.TreatedCount, m.ControlCount,
			formatValue(m.TreatedRate, 4), formatValue(m.ControlRate, 4), formatValue(m.LiftPercent, 2))
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "Chart saved to %s\n", report.ChartLocation)
}

func formatValue(v float64, prec int) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func runSplit(ctx context.Context, cfg *config.Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ds, err := csvfile.NewDatasetRepository().Load(ctx, cfg.Uplift.InputPath)
	if err != nil {
		return err
	}
	train, test, err := uplift.Split(ds, cfg.Uplift.TestRatio, cfg.Uplift.Seed)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "train=%d test=%d digest=%s\n", train.Len(), test.Len(), digest(test))
	return nil
}

// digest fingerprints the test partition in order, so two runs can be
// compared for reproducibility.
func digest(ds domain.Dataset) string {
	h := sha256.New()
	for _, rec := range ds.Records {
		for _, v := range rec.Values {
			io.WriteString(h, v)
			h.Write([]byte{0x1f})
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
