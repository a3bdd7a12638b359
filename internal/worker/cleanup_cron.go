package worker

// cleanup_cron.go
// Background goroutine that periodically sweeps the session revocation list.
// Entries past their expiry can no longer be presented as valid tokens, so
// removing them only bounds table growth; the sweep never touches an entry
// before its expiry.

import (
	"context"
	"time"

	"github.com/mauropillox/chorilocal-sub000/internal/repository"

	"github.com/rs/zerolog/log"
)

const cleanupTickInterval = 15 * time.Minute

// StartCleanupCron launches the sweep goroutine. It respects the context for
// graceful shutdown and runs one sweep immediately at startup.
func StartCleanupCron(ctx context.Context, tokens repository.TokenRepository) {
	go func() {
		ticker := time.NewTicker(cleanupTickInterval)
		defer ticker.Stop()

		log.Info().Msg("cleanup_cron: started")
		sweep(ctx, tokens)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("cleanup_cron: shutting down")
				return
			case <-ticker.C:
				sweep(ctx, tokens)
			}
		}
	}()
}

func sweep(ctx context.Context, tokens repository.TokenRepository) {
	count, err := tokens.DeleteExpired(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("cleanup_cron: sweep failed")
		return
	}
	if count > 0 {
		log.Info().Int64("removed", count).Msg("cleanup_cron: expired tokens removed")
	}
}
