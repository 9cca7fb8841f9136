package server

import (
	"context"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
)

const refreshSweepInterval = time.Hour

type refreshTokenPurger interface {
	PurgeExpiredRefreshTokens(ctx context.Context) (int64, error)
}

// sweepRefreshTokens purges expired refresh tokens every interval until ctx
// is done. Failures are logged and retried on the next tick.
func sweepRefreshTokens(ctx context.Context, p refreshTokenPurger, every time.Duration, log logging.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.PurgeExpiredRefreshTokens(ctx); err != nil && ctx.Err() == nil {
				log.Warn(ctx, "refresh token sweep failed", "error", err)
			}
		}
	}
}
