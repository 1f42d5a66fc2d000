package uplift

import (
	"context"
	"errors"
	"fmt"

	"causalUplift/domain"
	"causalUplift/pkg/logger"
)

// Predictor is the external scoring collaborator. It returns one uplift
// score per frame row, in row order.
type Predictor interface {
	Predict(ctx context.Context, frame domain.FeatureFrame) ([]float64, error)
}

// FeatureDeclarer is implemented by predictors that know their input
// contract. Leak-prone columns they do not declare are removed before the
// first call and no blind retry happens.
type FeatureDeclarer interface {
	RequiredFeatures() []string
}

type ScoreResult struct {
	Scores  []float64
	Mode    domain.ScoringMode
	Dropped []string
}

type ScorerAdapter struct {
	predictor   Predictor
	leakColumns []string
}

func NewScorerAdapter(predictor Predictor, leakColumns []string) *ScorerAdapter {
	if leakColumns == nil {
		leakColumns = DefaultLeakColumns()
	}
	return &ScorerAdapter{
		predictor:   predictor,
		leakColumns: leakColumns,
	}
}

// Score runs the predictor over the test set. A failed full-schema call is
// retried once without the leak-prone columns present in the data; a second
// failure becomes a ScoringError carrying the first error as its cause.
func (a *ScorerAdapter) Score(ctx context.Context, test domain.Dataset) (ScoreResult, error) {
	if a.predictor == nil {
		return ScoreResult{}, &domain.ScoringError{Cause: errors.New("no predictor configured")}
	}

	if d, ok := a.predictor.(FeatureDeclarer); ok {
		return a.scoreDeclared(ctx, test, d.RequiredFeatures())
	}

	scores, err := a.predict(ctx, test.Frame())
	if err == nil {
		return ScoreResult{Scores: scores, Mode: domain.ScoringModeFull}, nil
	}
	if ctx.Err() != nil {
		return ScoreResult{}, &domain.ScoringError{Cause: err}
	}

	dropped := presentColumns(test, a.leakColumns)
	if len(dropped) == 0 {
		return ScoreResult{}, &domain.ScoringError{Cause: err}
	}

	logger.Warn("Scoring failed on full schema, retrying without outcome columns",
		"run_id", RunIDFromContext(ctx),
		"error", err,
		"dropped", dropped,
	)
	ScoringFallbackTotal.WithLabelValues(string(domain.ScoringModeStripped)).Inc()

	scores, retryErr := a.predict(ctx, test.Frame(dropped...))
	if retryErr != nil {
		return ScoreResult{}, &domain.ScoringError{Cause: err, Retry: retryErr, Dropped: dropped}
	}

	return ScoreResult{Scores: scores, Mode: domain.ScoringModeStripped, Dropped: dropped}, nil
}

func (a *ScorerAdapter) scoreDeclared(ctx context.Context, test domain.Dataset, required []string) (ScoreResult, error) {
	want := make(map[string]struct{}, len(required))
	for _, c := range required {
		want[c] = struct{}{}
	}

	var dropped []string
	for _, c := range presentColumns(test, a.leakColumns) {
		if _, ok := want[c]; !ok {
			dropped = append(dropped, c)
		}
	}

	if len(dropped) > 0 {
		ScoringFallbackTotal.WithLabelValues(string(domain.ScoringModeDeclared)).Inc()
	}

	scores, err := a.predict(ctx, test.Frame(dropped...))
	if err != nil {
		return ScoreResult{}, &domain.ScoringError{Cause: err, Dropped: dropped}
	}

	return ScoreResult{Scores: scores, Mode: domain.ScoringModeDeclared, Dropped: dropped}, nil
}

func (a *ScorerAdapter) predict(ctx context.Context, frame domain.FeatureFrame) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	scores, err := a.predictor.Predict(ctx, frame)
	if err != nil {
		return nil, err
	}
	if len(scores) != frame.Len() {
		return nil, fmt.Errorf("predictor returned %d scores for %d rows", len(scores), frame.Len())
	}

	return scores, nil
}

// presentColumns keeps the candidates that exist in ds, in candidate order.
func presentColumns(ds domain.Dataset, candidates []string) []string {
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if ds.HasColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// Attach pairs each test record with its score.
func Attach(test domain.Dataset, scores []float64) ([]domain.ScoredRecord, error) {
	if len(scores) != test.Len() {
		return nil, fmt.Errorf("got %d scores for %d test records", len(scores), test.Len())
	}

	out := make([]domain.ScoredRecord, test.Len())
	for i, rec := range test.Records {
		out[i] = domain.ScoredRecord{Record: rec, UpliftScore: scores[i]}
	}
	return out, nil
}
