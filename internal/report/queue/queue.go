package queue

import (
	"context"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/birracraft/internal/config"
	"github.com/smallbiznis/birracraft/internal/observability/metrics"
	"github.com/smallbiznis/birracraft/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrDecode marks payloads the worker can never process.
var ErrDecode = fmt.Errorf("report job: %w", metrics.ErrDecode)

var (
	ErrUnknownBackend = errors.New("unknown report queue backend")
	ErrNoBrokers      = errors.New("kafka report queue requires brokers")
	ErrNoRedis        = errors.New("redis report queue requires REDIS_ADDR")
	ErrNoConsumer     = errors.New("memory report queue needs a worker in the same process")
)

// InProcess is supplied by binaries that run the report worker alongside
// the API. Only they may use the memory backend.
type InProcess bool

type Params struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       config.Config
	Log       *zap.Logger
	Redis     *redis.Client `optional:"true"`
	InProcess InProcess     `optional:"true"`
}

// New selects the backend from config. Without an in-process worker a
// backend that nobody consumes fails startup.
func New(p Params) (domain.Queue, error) {
	q, err := build(p)
	if err != nil {
		return nil, err
	}
	p.Log.Info("report queue ready", zap.String("backend", q.Backend()))
	p.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return q.Close()
		},
	})
	return q, nil
}

func build(p Params) (domain.Queue, error) {
	cfg := p.Cfg.Report
	switch cfg.Backend {
	case config.QueueKafka:
		if len(cfg.KafkaBrokers) == 0 {
			return nil, ErrNoBrokers
		}
		return NewKafka(KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroupID,
		}), nil
	case config.QueueRedis, "":
		if p.Redis != nil {
			return NewRedis(p.Redis, cfg.RedisListKey), nil
		}
		if !p.InProcess {
			return nil, ErrNoRedis
		}
		p.Log.Warn("redis not configured, report jobs stay in process")
		return NewMemory(0), nil
	case BackendMemory:
		if !p.InProcess {
			return nil, ErrNoConsumer
		}
		return NewMemory(0), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
