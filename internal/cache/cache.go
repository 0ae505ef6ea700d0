// Package cache is the local, non-authoritative mirror of remote state.
// It survives restarts and serves reads when Postgres is unreachable.
// Last write wins; there is no atomicity across keys.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"upkeep/internal/api/models"
)

const opTimeout = 5 * time.Second

type Store struct {
	rdb    *redis.Client
	logger zerolog.Logger
}

func New(rdb *redis.Client, logger zerolog.Logger) *Store {
	return &Store{rdb: rdb, logger: logger}
}

// Read unmarshals the value at key into dest. A miss, a connection failure
// and a decode failure all come back as false: callers treat the cache as
// optional and fall through to the authoritative store.
func (slf *Store) Read(key string, dest any) bool {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := slf.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slf.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		slf.logger.Warn().Err(err).Str("key", key).Msg("Cache entry is corrupt, ignoring")
		return false
	}
	return true
}

// Write stores a fully-formed snapshot under key. Failures are logged and
// swallowed: a full or unreachable cache must never take the caller down.
func (slf *Store) Write(key string, value any) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		slf.logger.Warn().Err(err).Str("key", key).Msg("Cache value not serializable")
		return
	}
	if err := slf.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		slf.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// ReadJobs returns the mirrored job set, if one was ever written.
func (slf *Store) ReadJobs() ([]models.Job, bool) {
	var jobs []models.Job
	if !slf.Read(KeyJobs, &jobs) {
		return nil, false
	}
	return jobs, true
}

// WriteJobs mirrors the full synced job set. Always the whole collection,
// never a delta, so concurrent writers cannot interleave partial state.
func (slf *Store) WriteJobs(jobs []models.Job) {
	slf.Write(KeyJobs, jobs)

	high := make([]models.Job, 0)
	for _, j := range jobs {
		if j.Priority == models.JobPriorityHigh {
			high = append(high, j)
		}
	}
	slf.Write(KeyHighPriorityJobs, high)
}

// ReadPreferences returns the stored notification preferences for a user.
func (slf *Store) ReadPreferences(userID string) (models.NotificationPrefs, bool) {
	var prefs models.NotificationPrefs
	if !slf.Read(UserPrefsKey(userID), &prefs) {
		return models.NotificationPrefs{}, false
	}
	return prefs, true
}

// WritePreferences stores the notification preferences for a user.
func (slf *Store) WritePreferences(userID string, prefs models.NotificationPrefs) {
	slf.Write(UserPrefsKey(userID), prefs)
}
