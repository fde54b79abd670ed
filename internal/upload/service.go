package upload

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Service writes uploaded images into a flat directory on disk.
type Service interface {
	SaveImage(ctx context.Context, name string, contents []byte) (string, error)
}

type service struct {
	dir    string
	logger *zap.Logger
}

func NewService(dir string, logger *zap.Logger) (Service, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &service{dir: dir, logger: logger}, nil
}

func (s *service) SaveImage(ctx context.Context, name string, contents []byte) (string, error) {
	if name == "" {
		name = "temp"
	}
	// Strip any directory components a client may have sent.
	path := filepath.Join(s.dir, filepath.Base(name))

	if err := os.WriteFile(path, contents, 0o644); err != nil {
		s.logger.Error("failed to write uploaded file", zap.String("path", path), zap.Error(err))
		return "", err
	}
	s.logger.Debug("file stored", zap.String("path", path), zap.Int("bytes", len(contents)))
	return path, nil
}
