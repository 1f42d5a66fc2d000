package uplift

import (
	"errors"
	"fmt"

	"causalUplift/domain"
	"causalUplift/pkg/config"

	"github.com/go-playground/validator/v10"
)

// Config is everything one report generation needs besides its
// collaborators.
type Config struct {
	InputPath  string  `validate:"required"`
	ResultsDir string  `validate:"required"`
	TestRatio  float64 `validate:"gt=0,lt=1"`
	Seed       int64   `validate:"gte=0"`

	// outcome-bearing columns the scorer may strip on a schema mismatch
	LeakColumns []string `validate:"dive,required"`
}

const (
	defaultInputPath  = "artifacts/customer_data.csv"
	defaultResultsDir = "results"
	defaultTestRatio  = 0.2
	defaultSeed       = 42
)

func DefaultLeakColumns() []string {
	return []string{domain.ColumnConversion, domain.ColumnSpend, domain.ColumnVisit}
}

func DefaultConfig() Config {
	return Config{
		InputPath:   defaultInputPath,
		ResultsDir:  defaultResultsDir,
		TestRatio:   defaultTestRatio,
		Seed:        defaultSeed,
		LeakColumns: DefaultLeakColumns(),
	}
}

// ConfigFrom copies the environment settings into a run Config.
func ConfigFrom(c config.UpliftConfig) Config {
	return Config{
		InputPath:   c.InputPath,
		ResultsDir:  c.ResultsDir,
		TestRatio:   c.TestRatio,
		Seed:        c.Seed,
		LeakColumns: append([]string(nil), c.LeakColumns...),
	}
}

var validate = validator.New()

// Validate reports the first invalid field as a ConfigurationError.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := fe.Tag()
		if fe.Param() != "" {
			reason = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		return &domain.ConfigurationError{
			Field:  fe.Field(),
			Reason: fmt.Sprintf("failed %s (got %v)", reason, fe.Value()),
		}
	}

	return &domain.ConfigurationError{Field: "config", Reason: err.Error()}
}
