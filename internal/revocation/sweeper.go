package revocation

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when no positive interval is configured.
const DefaultSweepInterval = 10 * time.Minute

// Purger is a store that needs expired entries removed explicitly.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// RunSweeper calls Purge every interval until ctx is cancelled.
func RunSweeper(ctx context.Context, p Purger, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.Purge(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("revoked token purge failed", slog.String("error", err.Error()))
				continue
			}
			if n > 0 {
				logger.Debug("purged expired revocations", slog.Int64("count", n))
			}
		}
	}
}
