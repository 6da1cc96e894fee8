package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"careers-backend/pkg/redis"

	goredis "github.com/redis/go-redis/v9"
)

// ErrTrackerUnavailable is returned when attempts cannot be counted.
var ErrTrackerUnavailable = errors.New("login tracker: redis not configured")

// LoginTrackerConfig holds the admin lockout policy.
type LoginTrackerConfig struct {
	MaxAttempts   int
	AttemptWindow time.Duration
	BlockDuration time.Duration
	// TrackIP blocks the client address alongside the email.
	TrackIP bool
}

func DefaultLoginTrackerConfig() LoginTrackerConfig {
	return LoginTrackerConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
		TrackIP:       true,
	}
}

// LoginTracker counts failed admin logins in Redis and places temporary
// blocks on the email (and client IP) once the threshold is reached.
type LoginTracker struct {
	config LoginTrackerConfig
	logger *SecurityLogger
}

func NewLoginTracker(config LoginTrackerConfig, logger *SecurityLogger) *LoginTracker {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &LoginTracker{config: config, logger: logger}
}

const (
	attemptsKeyPrefix = "fail:admin-login:"
	blockKeyPrefix    = "blocked:admin-login:"
)

// KEYS[1] = attempts counter, KEYS[2..] = block keys
// ARGV[1] = attempt window seconds, ARGV[2] = max attempts, ARGV[3] = block seconds
// Returns the attempt count; block keys are set once it reaches ARGV[2].
var recordFailureScript = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
if count >= tonumber(ARGV[2]) then
    for i = 2, #KEYS do
        redis.call('SET', KEYS[i], '1', 'EX', ARGV[3])
    end
    redis.call('DEL', KEYS[1])
end
return count
`)

func (lt *LoginTracker) blockKeys(email, ip string) []string {
	keys := []string{blockKeyPrefix + "email:" + email}
	if lt.config.TrackIP && ip != "" {
		keys = append(keys, blockKeyPrefix+"ip:"+ip)
	}
	return keys
}

// IsBlocked reports whether the email or IP is under a block. Without Redis
// it reports false; the password is still required.
func (lt *LoginTracker) IsBlocked(ctx context.Context, email, ip string) (bool, error) {
	client := redis.Client()
	if client == nil {
		return false, nil
	}
	n, err := client.Exists(ctx, lt.blockKeys(email, ip)...).Result()
	if err != nil {
		return false, fmt.Errorf("check login block: %w", err)
	}
	return n > 0, nil
}

// RecordFailedAttempt counts one failure for email and reports whether it
// triggered a block.
func (lt *LoginTracker) RecordFailedAttempt(ctx context.Context, email, ip, userAgent, requestID string) (bool, int, error) {
	client := redis.Client()
	if client == nil {
		return false, 0, ErrTrackerUnavailable
	}

	keys := append([]string{attemptsKeyPrefix + email}, lt.blockKeys(email, ip)...)
	count, err := recordFailureScript.Run(ctx, client, keys,
		int(lt.config.AttemptWindow.Seconds()),
		lt.config.MaxAttempts,
		int(lt.config.BlockDuration.Seconds()),
	).Int()
	if err != nil {
		return false, 0, fmt.Errorf("record failed login: %w", err)
	}

	if count < lt.config.MaxAttempts {
		return false, count, nil
	}
	lt.logger.LogBlockCreated(ctx, "email", email, ip, requestID, int(lt.config.BlockDuration.Minutes()))
	return true, count, nil
}

// ClearAttempts resets the counter after a successful login. Active blocks
// are left to expire.
func (lt *LoginTracker) ClearAttempts(ctx context.Context, email, ip string) error {
	client := redis.Client()
	if client == nil {
		return nil
	}
	if err := client.Del(ctx, attemptsKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("clear login attempts: %w", err)
	}
	return nil
}
