package repository

import (
	"context"
	"edu_quiz_backend/internal/model"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const quizCachePrefix = "quiz:def:"

// QuizCache 将测验定义快照缓存到 Redis，写路径负责失效。
type QuizCache struct {
	rdb *redis.Client

	mu  sync.RWMutex
	ttl time.Duration
}

func NewQuizCache(rdb *redis.Client, ttlSeconds int) *QuizCache {
	return &QuizCache{
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}
}

// SetTTL 更新缓存时间，配置热更新时调用
func (c *QuizCache) SetTTL(ttlSeconds int) {
	c.mu.Lock()
	c.ttl = time.Duration(ttlSeconds) * time.Second
	c.mu.Unlock()
}

func (c *QuizCache) currentTTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ttl
}

func (c *QuizCache) enabled() bool {
	return c.rdb != nil && c.currentTTL() > 0
}

func (c *QuizCache) Get(ctx context.Context, quizID string) (*model.QuizDefinition, bool) {
	if !c.enabled() {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, quizCachePrefix+quizID).Bytes()
	if err != nil {
		return nil, false
	}

	var def model.QuizDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, false
	}
	return &def, true
}

func (c *QuizCache) Set(ctx context.Context, def *model.QuizDefinition) {
	if !c.enabled() {
		return
	}

	raw, err := json.Marshal(def)
	if err != nil {
		return
	}
	c.rdb.Set(ctx, quizCachePrefix+def.ID, raw, c.currentTTL())
}

func (c *QuizCache) Invalidate(ctx context.Context, quizID string) {
	if !c.enabled() {
		return
	}
	c.rdb.Del(ctx, quizCachePrefix+quizID)
}
