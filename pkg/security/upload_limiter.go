package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"careers-backend/pkg/redis"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const uploadQuotaWindow = 24 * time.Hour

// ErrQuotaUnavailable means the daily quota could not be enforced because
// Redis is not configured.
var ErrQuotaUnavailable = errors.New("upload quota: redis not configured")

// UploadLimiter caps how many files one candidate may upload per day using a
// Redis sliding window. Short bursts are handled by the HTTP rate limiter.
type UploadLimiter struct {
	maxPerDay int
}

// KEYS[1] = per-candidate zset
// ARGV[1] = limit, ARGV[2] = window ms, ARGV[3] = now ms, ARGV[4] = member
// Returns {1, 0} when recorded, {0, oldest_ms} when over the limit.
var uploadQuotaScript = goredis.NewScript(`
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', KEYS[1], 0, now - window)
if redis.call('ZCARD', KEYS[1]) >= limit then
    local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
    return {0, tonumber(oldest[2])}
end
redis.call('ZADD', KEYS[1], now, ARGV[4])
redis.call('PEXPIRE', KEYS[1], window)
return {1, 0}
`)

// NewUploadLimiter creates a daily upload quota; perDay <= 0 means 50.
func NewUploadLimiter(perDay int) *UploadLimiter {
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{maxPerDay: perDay}
}

// AllowUpload records one upload for candidateID if the quota allows it and
// returns the seconds until a slot frees up otherwise. Without Redis it
// allows the upload and returns ErrQuotaUnavailable; Redis errors deny.
func (ul *UploadLimiter) AllowUpload(ctx context.Context, candidateID string) (bool, int, error) {
	client := redis.Client()
	if client == nil {
		return true, 0, ErrQuotaUnavailable
	}

	now := time.Now()
	res, err := uploadQuotaScript.Run(ctx, client,
		[]string{"quota:upload:" + candidateID},
		ul.maxPerDay, uploadQuotaWindow.Milliseconds(), now.UnixMilli(), uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return false, int(time.Hour.Seconds()), fmt.Errorf("upload quota: %w", err)
	}
	if len(res) < 2 {
		return false, int(time.Hour.Seconds()), fmt.Errorf("upload quota: unexpected reply %v", res)
	}
	if res[0] == 1 {
		return true, 0, nil
	}

	return false, retryAfterSeconds(res[1], now), nil
}

func retryAfterSeconds(oldestMillis int64, now time.Time) int {
	freesAt := time.UnixMilli(oldestMillis).Add(uploadQuotaWindow)
	secs := int(freesAt.Sub(now).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}
