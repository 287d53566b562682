package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/smallbiznis/birracraft/internal/report/domain"
)

const BackendKafka = "kafka"

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// KafkaQueue publishes jobs keyed by id. The reader is created on the first
// Dequeue so API-only processes never join the consumer group.
type KafkaQueue struct {
	cfg    KafkaConfig
	writer *kafka.Writer

	mu     sync.Mutex
	reader *kafka.Reader
}

func NewKafka(cfg KafkaConfig) *KafkaQueue {
	return &KafkaQueue{
		cfg: cfg,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (q *KafkaQueue) Backend() string { return BackendKafka }

func (q *KafkaQueue) Enqueue(ctx context.Context, job domain.Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(job.ID),
		Value: payload,
		Time:  job.EnqueuedAt,
	})
}

func (q *KafkaQueue) Dequeue(ctx context.Context) (*domain.Job, error) {
	msg, err := q.consumer().ReadMessage(ctx)
	if err != nil {
		return nil, err
	}
	return decodeJob(msg.Value)
}

func (q *KafkaQueue) consumer() *kafka.Reader {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.reader == nil {
		q.reader = kafka.NewReader(kafka.ReaderConfig{
			Brokers:  q.cfg.Brokers,
			GroupID:  q.cfg.GroupID,
			Topic:    q.cfg.Topic,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  time.Second,
		})
	}
	return q.reader
}

func (q *KafkaQueue) Close() error {
	err := q.writer.Close()
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.reader != nil {
		if rerr := q.reader.Close(); err == nil {
			err = rerr
		}
	}
	return err
}
