package uplift

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"causalUplift/domain"
)

var testColumns = []string{"id", "recency", domain.ColumnTreatment, domain.ColumnConversion, domain.ColumnSpend, domain.ColumnVisit}

// newDataset builds n records. Treatment alternates; every third record
// converts. The id column carries the original row index.
func newDataset(n int) domain.Dataset {
	ds := domain.Dataset{Columns: append([]string(nil), testColumns...)}
	for i := 0; i < n; i++ {
		treatment := i % 2
		conversion := 0
		if i%3 == 0 {
			conversion = 1
		}
		ds.Records = append(ds.Records, domain.Record{
			Values: []string{
				strconv.Itoa(i),
				strconv.Itoa(i % 12),
				strconv.Itoa(treatment),
				strconv.Itoa(conversion),
				fmt.Sprintf("%.2f", float64(conversion)*12.5),
				strconv.Itoa(conversion),
			},
			Treatment:  treatment,
			Conversion: conversion,
		})
	}
	return ds
}

func ids(ds domain.Dataset) []string {
	out := make([]string, ds.Len())
	for i, r := range ds.Records {
		out[i] = r.Values[0]
	}
	return out
}

// fakePredictor scores a row by its recency value. When rejectLeaks is set it
// fails any frame that still carries an outcome column.
type fakePredictor struct {
	rejectLeaks bool
	alwaysFail  bool
	shortBy     int
	calls       int
	frames      []domain.FeatureFrame
}

func (p *fakePredictor) Predict(ctx context.Context, frame domain.FeatureFrame) ([]float64, error) {
	p.calls++
	p.frames = append(p.frames, frame)

	if p.alwaysFail {
		return nil, fmt.Errorf("model unavailable (call %d)", p.calls)
	}
	if p.rejectLeaks {
		for _, c := range frame.Columns {
			if c == domain.ColumnConversion || c == domain.ColumnSpend || c == domain.ColumnVisit {
				return nil, errors.New("feature names unseen at fit time: " + c)
			}
		}
	}

	col := frame.ColumnIndex("recency")
	scores := make([]float64, frame.Len()-p.shortBy)
	for i := range scores {
		v, err := frame.Float(i, col)
		if err != nil {
			return nil, err
		}
		scores[i] = v / 10
	}
	return scores, nil
}

// declaringPredictor accepts only its declared columns.
type declaringPredictor struct {
	fakePredictor
	features []string
}

func (p *declaringPredictor) RequiredFeatures() []string {
	return p.features
}

func scoredFrom(scores []float64) []domain.ScoredRecord {
	out := make([]domain.ScoredRecord, len(scores))
	for i, s := range scores {
		out[i] = domain.ScoredRecord{
			Record:      domain.Record{Values: []string{strconv.Itoa(i)}, Treatment: i % 2},
			UpliftScore: s,
		}
	}
	return out
}
