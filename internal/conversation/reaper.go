package conversation

import (
	"context"
	"time"

	"weatherbot/core/logger"

	"log/slog"
)

// Run sweeps stale sessions until ctx is done. Expiry is cooperative: a
// session past the inactivity window is closed on the next sweep, not the
// exact deadline instant.
func (c *Controller) Run(ctx context.Context) {
	ticker := time.NewTicker(c.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweepExpired(ctx)
		}
	}
}

// sweepExpired closes every dialogue idle past the timeout window and
// notifies its user. Returns the number of sessions closed.
func (c *Controller) sweepExpired(ctx context.Context) int {
	expired := c.sessions.ExpiredSince(c.timeout)
	for _, userID := range expired {
		c.end(ctx, userID, "timeout")
		if err := c.send(userID, c.texts.Timeout); err != nil {
			logger.Warn(ctx, "service.conversation", "timeout.notify_fail",
				slog.String("status", "fail"),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
	}
	if len(expired) > 0 {
		logger.Info(ctx, "service.conversation", "sessions.swept",
			slog.String("status", "ok"),
			slog.Int("sessions_expired", len(expired)),
			slog.Int("sessions_active", c.sessions.ActiveCount()),
		)
	}
	return len(expired)
}
