package util

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TaskLock serialises skill executions per task id across processes.
// A nil *TaskLock or one without a client grants every lock.
type TaskLock struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewTaskLock(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *TaskLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskLock{rdb: rdb, ttl: ttl, logger: logger}
}

// Acquire tries to take the lock for taskID. It returns ok=false when another holder
// has it; release must be called once the work is done.
// When redis is unreachable the lock is granted so executions are not blocked.
func (l *TaskLock) Acquire(ctx context.Context, taskID string) (release func(), ok bool) {
	noop := func() {}
	if l == nil || l.rdb == nil {
		return noop, true
	}

	key := lockKey(taskID)
	token := uuid.NewString()

	acquired, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		l.logger.Warn("Redis lock check failed, allowing execution",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		return noop, true
	}

	if !acquired {
		l.logger.Info("Task execution already in progress",
			zap.String("task_id", taskID),
			zap.String("lock_key", key),
		)
		return noop, false
	}

	return func() {
		// The caller's ctx may already be done.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil {
			l.logger.Warn("Failed to release task lock",
				zap.String("task_id", taskID),
				zap.Error(err),
			)
		}
	}, true
}

func lockKey(taskID string) string {
	return fmt.Sprintf("lock:skill:%s", taskID)
}
