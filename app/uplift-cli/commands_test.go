//go:build !integration

package main

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"causalUplift/domain"
	"causalUplift/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixtures(t *testing.T, rows int) (csvPath, modelPath string) {
	t.Helper()
	dir := t.TempDir()

	var b strings.Builder
	b.WriteString("recency,history,treatment,conversion,spend,visit\n")
	for i := 0; i < rows; i++ {
		conv := 0
		if i%4 == 0 {
			conv = 1
		}
		fmt.Fprintf(&b, "%d,%d.5,%d,%d,%d,%d\n", i%12+1, i*3, i%2, conv, conv*20, conv)
	}
	csvPath = filepath.Join(dir, "customer_data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(b.String()), 0o644))

	modelPath = filepath.Join(dir, "uplift_model.json")
	require.NoError(t, os.WriteFile(modelPath, []byte(`{
		"features": ["recency", "history"],
		"treated": {"intercept": 0.2, "weights": [-0.08, 0.001]},
		"control": {"intercept": -0.3, "weights": [0.02, 0.0]}
	}`), 0o644))
	return csvPath, modelPath
}

func testConfig(csvPath, modelPath string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Environment: "test"},
		Uplift: config.UpliftConfig{
			InputPath:   csvPath,
			ResultsDir:  "results",
			TestRatio:   0.2,
			Seed:        42,
			LeakColumns: []string{"conversion", "spend", "visit"},
			ChartKey:    "uplift_decile_chart.png",
		},
		Predictor: config.PredictorConfig{Kind: config.PredictorLinear, ModelPath: modelPath},
		Artifact:  config.ArtifactConfig{Driver: "memory"},
	}
}

func TestRunReport(t *testing.T) {
	csvPath, modelPath := writeFixtures(t, 300)
	out := &bytes.Buffer{}

	require.NoError(t, runReport(context.Background(), testConfig(csvPath, modelPath), out))

	text := out.String()
	assert.Contains(t, text, "60 of 300 records")
	assert.Contains(t, text, "scoring declared")
	assert.Contains(t, text, "Chart saved to memory://uplift_decile_chart.png")
	assert.Equal(t, 1+1+domain.NumDeciles+1, strings.Count(text, "\n"))
}

func TestRunReport_MissingDataExitsTwo(t *testing.T) {
	_, modelPath := writeFixtures(t, 10)
	missing := filepath.Join(t.TempDir(), "customer_data.csv")

	err := runReport(context.Background(), testConfig(missing, modelPath), &bytes.Buffer{})
	require.Error(t, err)

	diag := &bytes.Buffer{}
	assert.Equal(t, 2, exitCode(err, diag))
	assert.Contains(t, diag.String(), missing)
}

func TestRunReport_OtherFailuresExitOne(t *testing.T) {
	csvPath, modelPath := writeFixtures(t, 30)

	// 30 rows leave 6 test records, too few for ten deciles
	err := runReport(context.Background(), testConfig(csvPath, modelPath), &bytes.Buffer{})
	require.ErrorIs(t, err, domain.ErrInsufficientData)

	assert.Equal(t, 1, exitCode(err, &bytes.Buffer{}))
}

func TestRunSplit_Reproducible(t *testing.T) {
	csvPath, modelPath := writeFixtures(t, 120)
	cfg := testConfig(csvPath, modelPath)

	first, second := &bytes.Buffer{}, &bytes.Buffer{}
	require.NoError(t, runSplit(context.Background(), cfg, first))
	require.NoError(t, runSplit(context.Background(), cfg, second))

	assert.Equal(t, first.String(), second.String())
	assert.True(t, strings.HasPrefix(first.String(), "train=96 test=24 digest="))

	cfg.Uplift.Seed = 43
	third := &bytes.Buffer{}
	require.NoError(t, runSplit(context.Background(), cfg, third))
	assert.NotEqual(t, first.String(), third.String())
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "20.00", formatValue(20, 2))
	assert.Equal(t, "n/a", formatValue(math.NaN(), 2))
}
