package artifact

import (
	"context"
	"fmt"
	"path"
	"strings"

	"causalUplift/business/uplift"
	"causalUplift/pkg/config"
)

// Driver names an artifact storage backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local directory, default
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // tests
)

type Config struct {
	Driver Driver
	Root   string // fs only
	S3     S3Config
}

// Open returns the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (uplift.ArtifactStore, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		fs, err := NewFilesystemStore(cfg.Root)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case DriverS3:
		s3, err := NewS3Store(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		return s3, nil
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown artifact driver %s", cfg.Driver)
	}
}

// cleanKey rejects keys that would escape the store root.
func cleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return path.Clean(key), nil
}

// FromConfig maps the environment settings onto a store Config. Filesystem
// artifacts live under root.
func FromConfig(cfg config.ArtifactConfig, root string) Config {
	return Config{
		Driver: Driver(cfg.Driver),
		Root:   root,
		S3: S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			PathStyle:       cfg.S3PathStyle,
		},
	}
}
