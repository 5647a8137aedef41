package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/models"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

const collectionFile = "videos.json"

// FileStore keeps one JSON document per owner at <dir>/<userId>/videos.json.
// Each mutation rewrites the whole document through a temp file and rename.
type FileStore struct {
	dir   string
	locks *keyedMutex
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{dir: dir, locks: newKeyedMutex()}, nil
}

func (s *FileStore) List(_ context.Context, owner Owner) ([]models.VideoSummary, error) {
	path, err := s.path(owner)
	if err != nil {
		return nil, err
	}
	return s.load(path)
}

func (s *FileStore) Add(_ context.Context, owner Owner, video models.VideoSummary) (models.VideoSummary, error) {
	path, err := s.path(owner)
	if err != nil {
		return models.VideoSummary{}, err
	}

	unlock := s.locks.Lock(owner.UserID)
	defer unlock()

	videos, err := s.load(path)
	if err != nil {
		return models.VideoSummary{}, err
	}
	videos, saved, err := appendVideo(videos, video)
	if err != nil {
		return models.VideoSummary{}, err
	}
	if err := s.write(path, videos); err != nil {
		return models.VideoSummary{}, err
	}
	return saved, nil
}

func (s *FileStore) Get(_ context.Context, owner Owner, key models.Key) (models.VideoSummary, error) {
	path, err := s.path(owner)
	if err != nil {
		return models.VideoSummary{}, err
	}
	videos, err := s.load(path)
	if err != nil {
		return models.VideoSummary{}, err
	}
	return findVideo(videos, key)
}

func (s *FileStore) Update(_ context.Context, owner Owner, video models.VideoSummary) (models.VideoSummary, error) {
	path, err := s.path(owner)
	if err != nil {
		return models.VideoSummary{}, err
	}

	unlock := s.locks.Lock(owner.UserID)
	defer unlock()

	videos, err := s.load(path)
	if err != nil {
		return models.VideoSummary{}, err
	}
	videos, updated, err := replaceVideo(videos, video)
	if err != nil {
		return models.VideoSummary{}, err
	}
	if err := s.write(path, videos); err != nil {
		return models.VideoSummary{}, err
	}
	return updated, nil
}

func (s *FileStore) Remove(_ context.Context, owner Owner, key models.Key) error {
	path, err := s.path(owner)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(owner.UserID)
	defer unlock()

	videos, err := s.load(path)
	if err != nil {
		return err
	}
	videos, err = removeVideo(videos, key)
	if err != nil {
		return err
	}
	return s.write(path, videos)
}

func (s *FileStore) Exists(_ context.Context, owner Owner, key models.Key) (bool, error) {
	path, err := s.path(owner)
	if err != nil {
		return false, err
	}
	videos, err := s.load(path)
	if err != nil {
		return false, err
	}
	return indexOf(videos, key) >= 0, nil
}

// Ping checks that the storage directory is still reachable.
func (s *FileStore) Ping(_ context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return apperr.Storage("stat storage directory", err)
	}
	if !info.IsDir() {
		return apperr.Storage("stat storage directory", fmt.Errorf("%s is not a directory", s.dir))
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}

// path resolves the owner's document, refusing ids that would escape dir.
func (s *FileStore) path(owner Owner) (string, error) {
	id := owner.UserID
	if id == "" || id == "." || id == ".." || filepath.Base(id) != id || filepath.IsAbs(id) {
		return "", apperr.InvalidRequest("Invalid user id: %q", id)
	}
	return filepath.Join(s.dir, id, collectionFile), nil
}

func (s *FileStore) load(path string) ([]models.VideoSummary, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.VideoSummary{}, nil
	}
	if err != nil {
		return nil, apperr.Storage("read saved videos", err)
	}

	var videos []models.VideoSummary
	if err := json.Unmarshal(data, &videos); err != nil {
		logger.Log.Error("Saved videos document is corrupt",
			zap.Error(err),
			zap.String("path", path),
		)
		return nil, apperr.Storage("decode saved videos", err)
	}
	if videos == nil {
		videos = []models.VideoSummary{}
	}
	return videos, nil
}

func (s *FileStore) write(path string, videos []models.VideoSummary) error {
	data, err := json.MarshalIndent(videos, "", "  ")
	if err != nil {
		return apperr.Storage("encode saved videos", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.Storage("create user directory", err)
	}

	tmp, err := os.CreateTemp(dir, collectionFile+".*.tmp")
	if err != nil {
		return apperr.Storage("write saved videos", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// No-op after a successful rename.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return apperr.Storage("write saved videos", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return apperr.Storage("write saved videos", err)
	}
	if err := tmp.Close(); err != nil {
		return apperr.Storage("write saved videos", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return apperr.Storage("write saved videos", err)
	}
	return nil
}
