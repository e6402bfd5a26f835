package database

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/simpletodo/api/internal/logging"
)

// Supervise pings the database on an interval and logs failures. database/sql
// re-establishes broken connections on the next use, so the supervisor only
// reports; it never touches in-flight requests. Returns when ctx is done.
func Supervise(ctx context.Context, db *bun.DB, logger *logging.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := db.PingContext(ctx); err != nil {
				healthy = false
				logger.Error("database ping failed", "error", err.Error())
				continue
			}
			if !healthy {
				healthy = true
				logger.Info("database connection restored")
			}
		}
	}
}
