package uplift

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"causalUplift/domain"
)

const DefaultChartKey = "uplift_decile_chart.png"

// Renderer turns a finished metric table into an image.
type Renderer interface {
	Render(ctx context.Context, metrics []domain.DecileMetric) ([]byte, string, error)
}

// ArtifactStore persists report artifacts. Put overwrites an existing key.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (domain.Artifact, error)
	Get(ctx context.Context, key string) (domain.Artifact, io.ReadCloser, error)
}

type Emitter interface {
	Emit(ctx context.Context, metrics []domain.DecileMetric) (domain.Artifact, error)
}

// ChartEmitter hands the table to a Renderer and stores the image under a
// fixed key, replacing the previous run's chart.
type ChartEmitter struct {
	renderer Renderer
	store    ArtifactStore
	key      string
}

func NewChartEmitter(renderer Renderer, store ArtifactStore, key string) *ChartEmitter {
	if key == "" {
		key = DefaultChartKey
	}
	return &ChartEmitter{
		renderer: renderer,
		store:    store,
		key:      key,
	}
}

func (e *ChartEmitter) Key() string {
	return e.key
}

func (e *ChartEmitter) Emit(ctx context.Context, metrics []domain.DecileMetric) (domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, fmt.Errorf("context error: %w", err)
	}
	if err := CheckTable(metrics); err != nil {
		return domain.Artifact{}, err
	}

	// renderer works on its own copy
	table := append([]domain.DecileMetric(nil), metrics...)

	img, contentType, err := e.renderer.Render(ctx, table)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("render chart: %w", err)
	}

	artifact, err := e.store.Put(ctx, e.key, bytes.NewReader(img), contentType)
	if err != nil {
		return domain.Artifact{}, fmt.Errorf("store chart: %w", err)
	}

	return artifact, nil
}

// Latest opens the most recently emitted chart.
func (e *ChartEmitter) Latest(ctx context.Context) (domain.Artifact, io.ReadCloser, error) {
	return e.store.Get(ctx, e.key)
}
