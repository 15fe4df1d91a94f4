package cache

import (
	"context"
	"encoding/json"
	"time"

	"taskmanager/internal/domain"
	"taskmanager/internal/logger"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const taskListTTL = 5 * time.Minute

// TaskListCache caches each user's unfiltered task list in Redis. Every
// method is a no-op when Redis was not configured or unreachable at startup,
// so the API keeps working without it.
type TaskListCache struct {
	client *redis.Client
}

// New connects to Redis at addr. An empty addr or a failed ping yields a
// disabled cache rather than an error.
func New(addr, password string, db int) *TaskListCache {
	if addr == "" {
		return &TaskListCache{}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, task list cache disabled", "error", err)
		return &TaskListCache{}
	}
	return &TaskListCache{client: client}
}

func key(userID uuid.UUID) string {
	return "tasks:" + userID.String()
}

// Get returns the cached list for userID, or ok=false on miss or error.
func (c *TaskListCache) Get(ctx context.Context, userID uuid.UUID) ([]*domain.Task, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var tasks []*domain.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		return nil, false
	}
	return tasks, true
}

func (c *TaskListCache) Set(ctx context.Context, userID uuid.UUID, tasks []*domain.Task) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	c.client.Set(ctx, key(userID), raw, taskListTTL)
}

// Invalidate drops the cached list after any mutation by userID.
func (c *TaskListCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, key(userID))
}
