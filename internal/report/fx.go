package report

import (
	"context"
	"sync"

	"github.com/smallbiznis/birracraft/internal/config"
	"github.com/smallbiznis/birracraft/internal/report/queue"
	"github.com/smallbiznis/birracraft/internal/report/repository"
	"github.com/smallbiznis/birracraft/internal/report/service"
	"github.com/smallbiznis/birracraft/internal/report/worker"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(queue.New),
	fx.Provide(service.New),
)

// InProcessModule lets the queue fall back to memory because the worker
// shares the process with the API.
var InProcessModule = fx.Supply(queue.InProcess(true))

var WorkerModule = fx.Module("report.worker",
	fx.Provide(repository.New),
	fx.Provide(worker.New),
	fx.Invoke(runWorkers),
)

func runWorkers(lc fx.Lifecycle, cfg config.Config, w *worker.Worker) {
	n := cfg.Report.Workers
	if n <= 0 {
		n = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					w.Run(ctx)
				}()
			}
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
