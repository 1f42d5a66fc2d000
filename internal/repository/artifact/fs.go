package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"causalUplift/domain"
)

// FilesystemStore keeps artifacts as plain files under root. Writes go to a
// temp file first and are renamed into place, so readers never see a
// partially written chart.
type FilesystemStore struct {
	root string
}

func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		root = "results"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

func (s *FilesystemStore) Root() string {
	return s.root
}

func (s *FilesystemStore) pathFor(key string) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)), nil
}

func (s *FilesystemStore) Put(ctx context.Context, key string, r io.Reader, contentType string) (domain.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, fmt.Errorf("context error: %w", err)
	}
	dst, err := s.pathFor(key)
	if err != nil {
		return domain.Artifact{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return domain.Artifact{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return domain.Artifact{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return domain.Artifact{}, err
	}
	if err := tmp.Close(); err != nil {
		return domain.Artifact{}, err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return domain.Artifact{}, err
	}

	return domain.Artifact{
		Key:         key,
		Location:    dst,
		ContentType: contentType,
		Size:        size,
		WrittenAt:   time.Now().UTC(),
	}, nil
}

func (s *FilesystemStore) Get(ctx context.Context, key string) (domain.Artifact, io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artifact{}, nil, fmt.Errorf("context error: %w", err)
	}
	src, err := s.pathFor(key)
	if err != nil {
		return domain.Artifact{}, nil, err
	}
	f, err := os.Open(src)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Artifact{}, nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, key)
	}
	if err != nil {
		return domain.Artifact{}, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return domain.Artifact{}, nil, err
	}

	return domain.Artifact{
		Key:         key,
		Location:    src,
		ContentType: contentTypeFor(key),
		Size:        st.Size(),
		WrittenAt:   st.ModTime().UTC(),
	}, f, nil
}

func contentTypeFor(key string) string {
	switch filepath.Ext(key) {
	case ".png":
		return "image/png"
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	}
	return "application/octet-stream"
}
