package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/webnovauz/paint-management-backend/config"
)

const (
	documentNumberLayout   = "20060102150405"
	documentCounterTTL     = 2 * time.Minute
	maxDocumentNumberTries = 50
)

// FormatDocumentNumber renders prefix + YYYYMMDDHHMMSS.
func FormatDocumentNumber(prefix string, t time.Time) string {
	return prefix + t.Format(documentNumberLayout)
}

func withSuffix(base string, n int64) string {
	if n <= 1 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n-1)
}

// NextDocumentNumber allocates a time based document number.
// Numbers issued in the same second get a "-N" suffix from a redis counter;
// taken is consulted for every candidate so rows written without redis are respected too.
func NextDocumentNumber(ctx context.Context, prefix string, now time.Time, taken func(string) (bool, error)) (string, error) {
	base := FormatDocumentNumber(prefix, now)
	useCounter := config.GetRedisDB() != nil

	var n int64 = 1
	for i := 0; i < maxDocumentNumberTries; i++ {
		if useCounter {
			c, err := config.GetRedisCounter(ctx, "docnum:"+base, documentCounterTTL)
			if err != nil {
				config.LogError(config.GetLogger(), "utils", "NextDocumentNumber", "GetRedisCounter", base, err)
				useCounter = false
			} else {
				n = c
			}
		}
		candidate := withSuffix(base, n)
		exists, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		if !useCounter {
			n++
		}
	}
	return "", &IntegrityError{Message: "could not allocate document number for " + base}
}

// ObtainLock takes a short redis lock and returns its release func.
// Without redis the lock is skipped; the database constraints still apply.
func ObtainLock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, nil
	}
	lock, err := locker.Obtain(ctx, "lock:"+key, ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), int(ttl/(100*time.Millisecond))),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, &IntegrityError{Message: "resource is busy, try again", Err: err}
	}
	if err != nil {
		config.LogError(config.GetLogger(), "utils", "ObtainLock", "Obtain", key, err)
		return nil, err
	}
	return func() {
		// ctx may already be cancelled by the time the caller releases
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			config.LogError(config.GetLogger(), "utils", "ObtainLock", "Release", key, err)
		}
	}, nil
}
