package archive

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ashik5757/Minio-Private-Bucket/internal/logging"
)

// CleanStale removes archive files in dir older than the retention
// window. It backstops registry eviction: files orphaned by a crash or
// restart are not tracked by any task and would otherwise live forever.
//
// Returns the number of files removed.
func CleanStale(dir string, retention time.Duration, logger *logging.Logger) (int, error) {
	pattern := filepath.Join(dir, "*.zip")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-retention)
	cleaned := 0

	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(f); err != nil {
				logger.Warn().Str("file", f).Err(err).Msg("failed to remove stale archive")
			} else {
				cleaned++
			}
		}
	}

	if cleaned > 0 {
		logger.Info().Int("count", cleaned).Str("dir", dir).Msg("cleaned up stale archives")
	}
	return cleaned, nil
}
