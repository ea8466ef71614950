package config

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// WatchShops loads shops.yaml, hands it to onUpdate, then polls the file's
// mtime in the background and pushes every parseable rewrite. A rewrite that
// fails to parse is logged and the previous roster stays active.
func WatchShops(ctx context.Context, path string, interval time.Duration, logger zerolog.Logger, onUpdate func(*ShopsConfig)) error {
	if path == "" {
		path = "configs/shops.yaml"
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}

	cfg, err := LoadShopsConfig(path)
	if err != nil {
		return err
	}
	onUpdate(cfg)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	w := &shopsWatcher{
		path:     path,
		lastMod:  info.ModTime(),
		logger:   logger,
		onUpdate: onUpdate,
	}
	go w.run(ctx, interval)
	return nil
}

type shopsWatcher struct {
	path     string
	lastMod  time.Time
	logger   zerolog.Logger
	onUpdate func(*ShopsConfig)
}

func (w *shopsWatcher) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

func (w *shopsWatcher) poll() {
	info, err := os.Stat(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("shops config stat error")
		return
	}
	if !info.ModTime().After(w.lastMod) {
		return
	}

	cfg, err := LoadShopsConfig(w.path)
	if err != nil {
		w.logger.Error().Err(err).Str("path", w.path).Msg("shops config reload error")
		return
	}
	w.lastMod = info.ModTime()
	w.onUpdate(cfg)
	w.logger.Info().Int("shops", len(cfg.Shops)).Str("path", w.path).Msg("shops config reloaded")
}
