//go:build !integration

package uplift

import (
	"errors"
	"testing"

	"causalUplift/domain"
	"causalUplift/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "artifacts/customer_data.csv", cfg.InputPath)
	assert.Equal(t, 0.2, cfg.TestRatio)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, []string{"conversion", "spend", "visit"}, cfg.LeakColumns)
}

func TestConfig_Validate(t *testing.T) {
	cases := map[string]struct {
		mutate func(*Config)
		field  string
	}{
		"ratio zero":     {func(c *Config) { c.TestRatio = 0 }, "TestRatio"},
		"ratio one":      {func(c *Config) { c.TestRatio = 1 }, "TestRatio"},
		"negative seed":  {func(c *Config) { c.Seed = -3 }, "Seed"},
		"no input":       {func(c *Config) { c.InputPath = "" }, "InputPath"},
		"blank leak col": {func(c *Config) { c.LeakColumns = []string{""} }, "LeakColumns[0]"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			var cfgErr *domain.ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.field, cfgErr.Field)
		})
	}
}

func TestConfigFrom(t *testing.T) {
	src := config.UpliftConfig{
		InputPath:   "in.csv",
		ResultsDir:  "out",
		TestRatio:   0.25,
		Seed:        9,
		LeakColumns: []string{"conversion"},
	}

	cfg := ConfigFrom(src)
	src.LeakColumns[0] = "mutated"

	assert.Equal(t, "in.csv", cfg.InputPath)
	assert.Equal(t, 0.25, cfg.TestRatio)
	assert.Equal(t, int64(9), cfg.Seed)
	assert.Equal(t, []string{"conversion"}, cfg.LeakColumns)
}
