package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"causalUplift/domain"
)

type memoryObject struct {
	body []byte
	info domain.Artifact
}

type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, fmt.Errorf("context error: %w", err)
	}
	k, err := cleanKey(key)
	if err != nil {
		return domain.Artifact{}, err
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return domain.Artifact{}, err
	}

	info := domain.Artifact{
		Key:         k,
		Location:    "memory://" + k,
		ContentType: contentType,
		Size:        int64(len(body)),
		WrittenAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.objects[k] = memoryObject{body: body, info: info}
	s.mu.Unlock()

	return info, nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) (domain.Artifact, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, nil, fmt.Errorf("context error: %w", err)
	}
	k, err := cleanKey(key)
	if err != nil {
		return domain.Artifact{}, nil, err
	}

	s.mu.RLock()
	obj, ok := s.objects[k]
	s.mu.RUnlock()
	if !ok {
		return domain.Artifact{}, nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, key)
	}
	return obj.info, io.NopCloser(bytes.NewReader(obj.body)), nil
}

// Len reports how many keys are held.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
