package store

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// BackupConfig controls the periodic database backup loop.
type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// Backup copies the database file to dest. SQLite keeps the file
// consistent for readers, so a plain copy is sufficient here.
func (s *Store) Backup(dest string) error {
	src, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create backup file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("copy database: %w", err)
	}
	return nil
}

// CleanupBackups removes backup files older than retention and returns the
// number deleted.
func (s *Store) CleanupBackups(dir string, retention time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read backup dir: %w", err)
	}

	deleted := 0
	cutoff := time.Now().Add(-retention)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err == nil {
				deleted++
			}
		}
	}
	return deleted, nil
}

// RunBackupLoop performs periodic backups until ctx is canceled.
func (s *Store) RunBackupLoop(ctx context.Context, cfg BackupConfig, logger *zerolog.Logger) {
	if cfg.Path == "" {
		cfg.Path = "backups"
	}
	if cfg.IntervalHours <= 0 {
		cfg.IntervalHours = 24
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 14
	}

	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		logger.Error().Err(err).Msg("failed to create backup directory")
		return
	}

	interval := time.Duration(cfg.IntervalHours) * time.Hour
	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour

	// First backup after a short delay
	select {
	case <-time.After(1 * time.Minute):
		s.runBackupTask(cfg.Path, retention, logger)
	case <-ctx.Done():
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runBackupTask(cfg.Path, retention, logger)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Store) runBackupTask(dir string, retention time.Duration, logger *zerolog.Logger) {
	timestamp := time.Now().Format("20060102_150405")
	dest := filepath.Join(dir, fmt.Sprintf("planhebdo_%s.db", timestamp))

	logger.Info().Str("path", dest).Msg("starting database backup")
	if err := s.Backup(dest); err != nil {
		logger.Error().Err(err).Msg("backup failed")
		return
	}

	deleted, err := s.CleanupBackups(dir, retention)
	if err != nil {
		logger.Error().Err(err).Msg("backup cleanup failed")
	} else if deleted > 0 {
		logger.Info().Int("deleted", deleted).Msg("cleaned up old backups")
	}
}
