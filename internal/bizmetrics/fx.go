package bizmetrics

import (
	"context"
	"time"

	"github.com/smallbiznis/birracraft/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("biz.metrics",
	fx.Provide(NewPusher),
	fx.Provide(NewSnapshot),
	fx.Invoke(run),
)

func run(lc fx.Lifecycle, cfg config.Config, pusher Pusher, snapshot *Snapshot, db *gorm.DB, log *zap.Logger) {
	if pusher == nil {
		return
	}
	log = log.Named("biz.metrics")

	interval := cfg.Metrics.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info("starting business metrics pusher", zap.Duration("interval", interval))
			go func() {
				defer close(done)
				ticker := time.NewTicker(interval)
				defer ticker.Stop()

				for {
					pushOnce(ctx, snapshot, pusher, db, log)
					select {
					case <-ticker.C:
					case <-ctx.Done():
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

func pushOnce(ctx context.Context, snapshot *Snapshot, pusher Pusher, db *gorm.DB, log *zap.Logger) {
	pushCtx, cancel := context.WithTimeout(ctx, defaultPushTimeout)
	defer cancel()

	if err := snapshot.Refresh(pushCtx, db); err != nil {
		log.Warn("business metrics refresh failed", zap.Error(err))
		return
	}
	if err := pusher.Push(pushCtx, snapshot.Registry()); err != nil {
		log.Warn("business metrics push failed", zap.Error(err))
	}
}
