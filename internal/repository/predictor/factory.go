package predictor

import (
	"fmt"

	"causalUplift/business/uplift"
	"causalUplift/pkg/config"
)

// FromConfig builds the predictor named by cfg.Kind.
func FromConfig(cfg config.PredictorConfig) (uplift.Predictor, error) {
	switch cfg.Kind {
	case "", config.PredictorLinear:
		m, err := LoadLinearModel(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		return m, nil
	case config.PredictorHTTP:
		return NewHTTPPredictor(HTTPConfig{
			BaseURL:           cfg.URL,
			BasicAuthUsername: cfg.BasicAuthUsername,
			BasicAuthPassword: cfg.BasicAuthPassword,
			Timeout:           cfg.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown predictor kind %q", cfg.Kind)
	}
}
