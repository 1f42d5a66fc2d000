//go:build !integration

package uplift

import (
	"context"
	"errors"
	"testing"

	"causalUplift/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScore_FullSchema(t *testing.T) {
	test := newDataset(30)
	p := &fakePredictor{}

	res, err := NewScorerAdapter(p, nil).Score(context.Background(), test)
	require.NoError(t, err)

	assert.Equal(t, domain.ScoringModeFull, res.Mode)
	assert.Empty(t, res.Dropped)
	assert.Len(t, res.Scores, 30)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, test.Columns, p.frames[0].Columns)
}

func TestScore_FallsBackWithoutLeakColumns(t *testing.T) {
	test := newDataset(30)
	p := &fakePredictor{rejectLeaks: true}

	res, err := NewScorerAdapter(p, nil).Score(context.Background(), test)
	require.NoError(t, err)

	assert.Equal(t, domain.ScoringModeStripped, res.Mode)
	assert.Equal(t, []string{domain.ColumnConversion, domain.ColumnSpend, domain.ColumnVisit}, res.Dropped)
	assert.Equal(t, 2, p.calls)
	assert.Equal(t, []string{"id", "recency", domain.ColumnTreatment}, p.frames[1].Columns)

	direct, err := (&fakePredictor{}).Predict(context.Background(), test.Frame(res.Dropped...))
	require.NoError(t, err)
	assert.Equal(t, direct, res.Scores)
}

func TestScore_OnlyPresentLeakColumnsDropped(t *testing.T) {
	test := newDataset(12)
	p := &fakePredictor{rejectLeaks: true}

	res, err := NewScorerAdapter(p, []string{domain.ColumnConversion, "not_there"}).Score(context.Background(), test)

	// spend and visit are still in the frame, so the retry fails too
	var scoringErr *domain.ScoringError
	require.True(t, errors.As(err, &scoringErr))
	assert.Equal(t, []string{domain.ColumnConversion}, scoringErr.Dropped)
	assert.Empty(t, res.Scores)
}

func TestScore_BothAttemptsFail(t *testing.T) {
	test := newDataset(12)
	p := &fakePredictor{alwaysFail: true}

	_, err := NewScorerAdapter(p, nil).Score(context.Background(), test)

	var scoringErr *domain.ScoringError
	require.True(t, errors.As(err, &scoringErr))
	assert.ErrorIs(t, err, domain.ErrScoring)
	assert.Contains(t, scoringErr.Cause.Error(), "call 1")
	require.Error(t, scoringErr.Retry)
	assert.Contains(t, scoringErr.Retry.Error(), "call 2")
	assert.Equal(t, 2, p.calls)
}

func TestScore_NoLeakColumnsNoRetry(t *testing.T) {
	test := newDataset(12).Frame(domain.ColumnConversion, domain.ColumnSpend, domain.ColumnVisit)
	ds := domain.Dataset{Columns: test.Columns}
	for _, row := range test.Rows {
		ds.Records = append(ds.Records, domain.Record{Values: row})
	}
	p := &fakePredictor{alwaysFail: true}

	_, err := NewScorerAdapter(p, nil).Score(context.Background(), ds)

	var scoringErr *domain.ScoringError
	require.True(t, errors.As(err, &scoringErr))
	assert.Nil(t, scoringErr.Retry)
	assert.Equal(t, 1, p.calls)
}

func TestScore_ScoreCountMismatchTriggersRetry(t *testing.T) {
	test := newDataset(12)
	p := &fakePredictor{shortBy: 1}

	_, err := NewScorerAdapter(p, nil).Score(context.Background(), test)

	var scoringErr *domain.ScoringError
	require.True(t, errors.As(err, &scoringErr))
	assert.Contains(t, scoringErr.Cause.Error(), "11 scores for 12 rows")
	assert.Equal(t, 2, p.calls)
}

func TestScore_DeclaredFeatures(t *testing.T) {
	test := newDataset(20)
	p := &declaringPredictor{
		fakePredictor: fakePredictor{rejectLeaks: true},
		features:      []string{"recency"},
	}

	res, err := NewScorerAdapter(p, nil).Score(context.Background(), test)
	require.NoError(t, err)

	assert.Equal(t, domain.ScoringModeDeclared, res.Mode)
	assert.Equal(t, []string{domain.ColumnConversion, domain.ColumnSpend, domain.ColumnVisit}, res.Dropped)
	assert.Equal(t, 1, p.calls)
}

func TestScore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &fakePredictor{}

	_, err := NewScorerAdapter(p, nil).Score(ctx, newDataset(12))

	assert.ErrorIs(t, err, domain.ErrScoring)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, p.calls)
}

func TestAttach(t *testing.T) {
	test := newDataset(3)

	scored, err := Attach(test, []float64{0.3, 0.2, 0.1})
	require.NoError(t, err)
	assert.Equal(t, 0.2, scored[1].UpliftScore)
	assert.Equal(t, test.Records[1].Values, scored[1].Values)

	_, err = Attach(test, []float64{0.1})
	assert.Error(t, err)
}
