package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const (
	// ReportJobLockPrefix namespaces report job claims in redis.
	ReportJobLockPrefix = "birracraft:report:job:"
	// ReportJobLockTTL bounds how long a claim outlives a crashed worker.
	// A successful job keeps its claim until expiry so a redelivered copy
	// of the same job is skipped.
	ReportJobLockTTL = 30 * time.Minute
)

var (
	ErrLockerDisabled = errors.New("lock client not configured")
	ErrEmptyJobID     = errors.New("report job id is empty")
)

// compare-and-delete so a claim is only released by its owner.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker hands out single-owner claims on report jobs.
type Locker struct {
	client *redis.Client
	script *redis.Script
}

// Claim is held by the worker that won a report job.
type Claim struct {
	JobID string
	key   string
	token string
}

func NewLocker(client *redis.Client) *Locker {
	if client == nil {
		return nil
	}
	return &Locker{
		client: client,
		script: redis.NewScript(releaseScript),
	}
}

func reportJobKey(jobID string) string {
	return ReportJobLockPrefix + jobID
}

// ClaimReportJob returns ok=false when another worker holds the job.
func (l *Locker) ClaimReportJob(ctx context.Context, jobID string) (*Claim, bool, error) {
	if l == nil || l.client == nil {
		return nil, false, ErrLockerDisabled
	}
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, false, ErrEmptyJobID
	}

	claim := &Claim{JobID: jobID, key: reportJobKey(jobID), token: uuid.NewString()}
	ok, err := l.client.SetNX(ctx, claim.key, claim.token, ReportJobLockTTL).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}
	return claim, true, nil
}

// Release gives a failed job back so a redelivery can retry it.
func (l *Locker) Release(ctx context.Context, claim *Claim) error {
	if l == nil || l.client == nil || claim == nil || claim.token == "" {
		return nil
	}
	return l.script.Run(ctx, l.client, []string{claim.key}, claim.token).Err()
}
