package predictor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"causalUplift/domain"
)

// Coefficients of one logistic response model.
type Coefficients struct {
	Intercept float64   `json:"intercept"`
	Weights   []float64 `json:"weights"`
}

// LinearModel is a two-model uplift artifact: one logistic model fitted on
// treated subjects, one on control subjects. The uplift score of a row is
// P(convert | treated) - P(convert | control).
type LinearModel struct {
	Features []string     `json:"features"`
	Treated  Coefficients `json:"treated"`
	Control  Coefficients `json:"control"`
}

// LoadLinearModel reads a model artifact written as JSON.
func LoadLinearModel(path string) (*LinearModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	var m LinearModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model artifact: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *LinearModel) Validate() error {
	if len(m.Features) == 0 {
		return fmt.Errorf("model artifact declares no features")
	}
	if len(m.Treated.Weights) != len(m.Features) {
		return fmt.Errorf("treated model has %d weights for %d features", len(m.Treated.Weights), len(m.Features))
	}
	if len(m.Control.Weights) != len(m.Features) {
		return fmt.Errorf("control model has %d weights for %d features", len(m.Control.Weights), len(m.Features))
	}
	return nil
}

func (m *LinearModel) RequiredFeatures() []string {
	return append([]string(nil), m.Features...)
}

func (m *LinearModel) Predict(ctx context.Context, frame domain.FeatureFrame) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	idx := make([]int, len(m.Features))
	for i, f := range m.Features {
		idx[i] = frame.ColumnIndex(f)
		if idx[i] < 0 {
			return nil, fmt.Errorf("missing feature %q", f)
		}
	}

	scores := make([]float64, frame.Len())
	x := make([]float64, len(m.Features))
	for r := range frame.Rows {
		for i, col := range idx {
			v, err := frame.Float(r, col)
			if err != nil {
				return nil, fmt.Errorf("row %d feature %q: %w", r, m.Features[i], err)
			}
			x[i] = v
		}
		pTreated := sigmoid(dot(m.Treated.Weights, x) + m.Treated.Intercept)
		pControl := sigmoid(dot(m.Control.Weights, x) + m.Control.Intercept)
		scores[r] = pTreated - pControl
	}

	return scores, nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
