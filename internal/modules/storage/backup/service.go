package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/blogd/blogd/internal/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service owns the backup directory and the optional S3 upload.
type Service struct {
	db       *gorm.DB
	dir      string
	uploader *s3Uploader
	now      func() time.Time
}

// NewService resolves dir and prepares the S3 client when cfg enables it.
func NewService(db *gorm.DB, dir string, cfg config.BackupConfig) (*Service, error) {
	s := &Service{
		db:  db,
		dir: config.ResolveRuntimePath(dir, defaultBackupDir),
		now: time.Now,
	}
	if cfg.S3.Enable {
		uploader, err := newS3Uploader(cfg.S3)
		if err != nil {
			return nil, err
		}
		s.uploader = uploader
	}
	return s, nil
}

// Create exports the database and keeps a copy under the backup directory.
func (s *Service) Create(ctx context.Context) (*backupArtifact, error) {
	var buf bytes.Buffer
	if err := Export(ctx, s.db, &buf); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}

	filename := backupFilename(s.now())
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}
	return &backupArtifact{Filename: filename, Path: path, Data: buf.Bytes()}, nil
}

// Run is the scheduled job: a local backup, then the S3 upload if configured.
func (s *Service) Run(ctx context.Context) error {
	artifact, err := s.Create(ctx)
	if err != nil {
		return err
	}
	zap.L().Info("backup created", zap.String("file", artifact.Filename), zap.Int("bytes", len(artifact.Data)))

	if s.uploader == nil {
		return nil
	}
	key := renderBackupObjectKey(s.uploader.keyTemplate, artifact.Filename, s.now())
	if err := s.uploader.Upload(ctx, key, artifact.Data); err != nil {
		return err
	}
	zap.L().Info("backup uploaded", zap.String("key", key))
	return nil
}

// List returns local backups, newest first.
func (s *Service) List() ([]backupItem, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []backupItem{}, nil
		}
		return nil, err
	}
	items := make([]backupItem, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".zip") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		items = append(items, backupItem{
			Filename: entry.Name(),
			Size:     formatSize(info.Size()),
			Created:  info.ModTime().UnixMilli(),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Created > items[j].Created })
	return items, nil
}

// Path resolves a stored backup. It returns os.ErrNotExist when absent.
func (s *Service) Path(filename string) (string, error) {
	name, err := cleanFilename(filename)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// RestoreFile restores the database from a stored backup.
func (s *Service) RestoreFile(ctx context.Context, filename string) error {
	path, err := s.Path(filename)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	return Restore(ctx, s.db, f, info.Size())
}

// Remove deletes a stored backup.
func (s *Service) Remove(filename string) error {
	path, err := s.Path(filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove backup: %w", err)
	}
	return nil
}
