package service

import (
	"context"
	"time"

	"github.com/impservers/impchat/internal/logger"
	"github.com/impservers/impchat/internal/middleware/metrics"
)

// Sweeper removes attachment blobs older than the retention window. It
// works from blob timestamps alone and never consults the message log, so
// a message can outlive its attachment. In-flight writes are invisible to
// List and therefore never touched.
type Sweeper struct {
	blobs     BlobStorage
	retention time.Duration
	lastStats SweepStats
}

// SweepStats tracks the outcome of the last sweep pass.
type SweepStats struct {
	RunAt          time.Time
	BlobsScanned   int
	BlobsDeleted   int
	BytesReclaimed int64
	Errors         []string
}

func NewSweeper(blobs BlobStorage, retention time.Duration) *Sweeper {
	return &Sweeper{blobs: blobs, retention: retention}
}

// StartBackgroundSweep runs the sweep on a ticker until ctx is cancelled.
func (s *Sweeper) StartBackgroundSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	logger.Log.Info("started attachment sweep", "interval", interval, "retention", s.retention)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := s.RunSweep(); err != nil {
					logger.Log.Error("attachment sweep failed", "error", err)
					continue
				}
				stats := s.LastStats()
				logger.Log.Info("attachment sweep completed",
					"scanned", stats.BlobsScanned,
					"deleted", stats.BlobsDeleted,
					"bytes_reclaimed", stats.BytesReclaimed,
					"errors", len(stats.Errors))
			case <-ctx.Done():
				logger.Log.Info("attachment sweep shutting down")
				return
			}
		}
	}()
}

// RunSweep executes one pass. Callable directly for tests and maintenance.
func (s *Sweeper) RunSweep() error {
	stats := SweepStats{RunAt: time.Now(), Errors: []string{}}

	blobs, err := s.blobs.List()
	if err != nil {
		return err
	}
	stats.BlobsScanned = len(blobs)

	cutoff := time.Now().Add(-s.retention)
	for _, blob := range blobs {
		if blob.ModTime.After(cutoff) {
			continue
		}
		if err := s.blobs.Delete(blob.Key); err != nil {
			stats.Errors = append(stats.Errors, "delete error: "+blob.Key+": "+err.Error())
			continue
		}
		stats.BlobsDeleted++
		stats.BytesReclaimed += blob.Size
		metrics.BlobsSwept.Inc()
	}

	s.lastStats = stats
	return nil
}

// LastStats returns the outcome of the most recent pass.
func (s *Sweeper) LastStats() SweepStats {
	return s.lastStats
}
