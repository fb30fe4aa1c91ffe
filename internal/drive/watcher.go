package drive

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Watcher re-syncs a shared Drive folder on an interval, so freshly
// exported spreadsheets appear in the upload directory without anyone
// running the sync by hand.
type Watcher struct {
	service    *Service
	folderPath string
	destDir    string
	interval   time.Duration
}

// NewWatcher creates a watcher. Intervals under a minute are raised to a
// minute to stay inside Drive API quotas.
func NewWatcher(service *Service, folderPath, destDir string, interval time.Duration) *Watcher {
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Watcher{
		service:    service,
		folderPath: folderPath,
		destDir:    destDir,
		interval:   interval,
	}
}

// Run syncs once immediately, then on every tick until the context is
// cancelled. Sync failures are logged and retried on the next tick.
func (w *Watcher) Run(ctx context.Context) error {
	w.syncOnce()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.syncOnce()
		}
	}
}

func (w *Watcher) syncOnce() {
	result, err := w.service.SyncFolder(w.folderPath, w.destDir)
	if err != nil {
		log.Error().Err(err).Str("folder", w.folderPath).Msg("drive sync failed")
		return
	}
	if result.Downloaded > 0 {
		log.Info().
			Int("downloaded", result.Downloaded).
			Int("skipped", result.Skipped).
			Msg("drive folder synced")
	}
}
