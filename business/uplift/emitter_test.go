//go:build !integration

package uplift

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"testing"

	"causalUplift/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	got []domain.DecileMetric
	err error
}

func (r *fakeRenderer) Render(ctx context.Context, metrics []domain.DecileMetric) ([]byte, string, error) {
	if r.err != nil {
		return nil, "", r.err
	}
	r.got = metrics
	// scribble on the copy we were handed
	metrics[0].LiftPercent = -999
	return []byte(fmt.Sprintf("chart of %d", len(metrics))), "image/png", nil
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (domain.Artifact, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return domain.Artifact{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = body
	return domain.Artifact{Key: key, Location: "fake://" + key, ContentType: contentType, Size: int64(len(body))}, nil
}

func (s *fakeStore) Get(ctx context.Context, key string) (domain.Artifact, io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	body, ok := s.objects[key]
	if !ok {
		return domain.Artifact{}, nil, domain.ErrArtifactNotFound
	}
	return domain.Artifact{Key: key, Location: "fake://" + key}, io.NopCloser(bytes.NewReader(body)), nil
}

func table() []domain.DecileMetric {
	metrics := make([]domain.DecileMetric, domain.NumDeciles)
	for i := range metrics {
		metrics[i] = domain.DecileMetric{Decile: i + 1, LiftPercent: float64(5 - i), Size: 3}
	}
	metrics[7].LiftPercent = math.NaN()
	return metrics
}

func TestChartEmitter_StoresUnderFixedKey(t *testing.T) {
	store := newFakeStore()
	emitter := NewChartEmitter(&fakeRenderer{}, store, "")

	art, err := emitter.Emit(context.Background(), table())
	require.NoError(t, err)

	assert.Equal(t, DefaultChartKey, art.Key)
	assert.Equal(t, "fake://"+DefaultChartKey, art.Location)
	assert.Equal(t, "image/png", art.ContentType)

	_, body, err := emitter.Latest(context.Background())
	require.NoError(t, err)
	defer body.Close()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "chart of 10", string(raw))
}

func TestChartEmitter_RendererCannotAlterTable(t *testing.T) {
	metrics := table()
	renderer := &fakeRenderer{}

	_, err := NewChartEmitter(renderer, newFakeStore(), "c.png").Emit(context.Background(), metrics)
	require.NoError(t, err)

	assert.Equal(t, 5.0, metrics[0].LiftPercent)
	assert.Equal(t, -999.0, renderer.got[0].LiftPercent)
}

func TestChartEmitter_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewChartEmitter(&fakeRenderer{}, newFakeStore(), "").Emit(ctx, table()[:9])
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = NewChartEmitter(&fakeRenderer{err: boom}, newFakeStore(), "").Emit(ctx, table())
	assert.ErrorIs(t, err, boom)

	_, _, err = NewChartEmitter(&fakeRenderer{}, newFakeStore(), "").Latest(ctx)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}
