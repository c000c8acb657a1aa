package worker

// stock_alert_cron.go
// Background goroutine that periodically raises low-stock notifications.

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper performs one low-stock pass and reports how many alerts it raised.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// StartStockAlertCron runs one sweep immediately and then one per interval
// until ctx is cancelled.
func StartStockAlertCron(ctx context.Context, sweeper Sweeper, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.Info().Dur("interval", interval).Msg("stock_alert_cron: started")
		sweepOnce(ctx, sweeper)

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("stock_alert_cron: shutting down")
				return
			case <-ticker.C:
				sweepOnce(ctx, sweeper)
			}
		}
	}()
}

func sweepOnce(ctx context.Context, sweeper Sweeper) {
	n, err := sweeper.Sweep(ctx)
	if err != nil {
		log.Error().Err(err).Msg("stock_alert_cron: sweep failed")
		return
	}
	if n > 0 {
		log.Info().Int("alerts", n).Msg("stock_alert_cron: low stock alerts raised")
	}
}
