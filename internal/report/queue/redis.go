package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/birracraft/internal/report/domain"
)

const (
	BackendRedis = "redis"

	defaultPollTimeout = 5 * time.Second
)

// RedisQueue is a list used as a FIFO: producers LPUSH, consumers BRPOP.
type RedisQueue struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration
}

func NewRedis(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key, pollTimeout: defaultPollTimeout}
}

func (q *RedisQueue) Backend() string { return BackendRedis }

func (q *RedisQueue) Enqueue(ctx context.Context, job domain.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, q.key, payload).Err()
}

func (q *RedisQueue) Dequeue(ctx context.Context) (*domain.Job, error) {
	res, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of %d elements", len(res))
	}
	return decodeJob([]byte(res[1]))
}

func (q *RedisQueue) Close() error { return nil }

func decodeJob(payload []byte) (*domain.Job, error) {
	var job domain.Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if job.ID == "" {
		return nil, fmt.Errorf("%w: missing job id", ErrDecode)
	}
	return &job, nil
}
