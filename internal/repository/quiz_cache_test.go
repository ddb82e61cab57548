package repository

import (
	"context"
	"edu_quiz_backend/internal/model"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func newCacheForTest(t *testing.T, ttlSeconds int) (*QuizCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewQuizCache(rdb, ttlSeconds), mr
}

func cachedDefinition(id string) *model.QuizDefinition {
	q := model.QuizQuestion{
		QuestionType: model.QuestionTypeMultipleChoice,
		Content:      "1+1=?",
		Points:       2,
	}
	q.ID = "q1"
	q.Options, _ = json.Marshal([]string{"1", "2"})
	q.CorrectOptions, _ = json.Marshal([]int{1})

	def := &model.QuizDefinition{
		Quiz:      model.Quiz{Title: "缓存测试", PassingScore: 60, IsPublished: true},
		Questions: []model.QuizQuestion{q},
	}
	def.ID = id
	return def
}

func TestQuizCacheRoundtrip(t *testing.T) {
	cache, _ := newCacheForTest(t, 300)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "quiz-1")
	require.False(t, ok)

	def := cachedDefinition("quiz-1")
	cache.Set(ctx, def)

	got, ok := cache.Get(ctx, "quiz-1")
	require.True(t, ok)
	require.Equal(t, def.Title, got.Title)
	require.Len(t, got.Questions, 1)
	require.Equal(t, def.Questions[0].OptionList(), got.Questions[0].OptionList())
}

func TestQuizCacheSetsTTL(t *testing.T) {
	cache, mr := newCacheForTest(t, 300)
	ctx := context.Background()

	cache.Set(ctx, cachedDefinition("quiz-1"))

	require.Equal(t, 300*time.Second, mr.TTL(quizCachePrefix+"quiz-1"))

	// 过期后不再命中
	mr.FastForward(301 * time.Second)
	_, ok := cache.Get(ctx, "quiz-1")
	require.False(t, ok)
}

func TestQuizCacheInvalidate(t *testing.T) {
	cache, _ := newCacheForTest(t, 300)
	ctx := context.Background()

	cache.Set(ctx, cachedDefinition("quiz-1"))
	cache.Invalidate(ctx, "quiz-1")

	_, ok := cache.Get(ctx, "quiz-1")
	require.False(t, ok)
}

func TestQuizCacheDisabled(t *testing.T) {
	// ttl 为 0 表示不缓存
	cache, mr := newCacheForTest(t, 0)
	ctx := context.Background()

	cache.Set(ctx, cachedDefinition("quiz-1"))
	require.Empty(t, mr.Keys())
	_, ok := cache.Get(ctx, "quiz-1")
	require.False(t, ok)

	// 热更新打开缓存后生效
	cache.SetTTL(60)
	cache.Set(ctx, cachedDefinition("quiz-1"))
	_, ok = cache.Get(ctx, "quiz-1")
	require.True(t, ok)
}

func TestQuizCacheNilClient(t *testing.T) {
	cache := NewQuizCache(nil, 300)
	ctx := context.Background()

	cache.Set(ctx, cachedDefinition("quiz-1"))
	_, ok := cache.Get(ctx, "quiz-1")
	require.False(t, ok)
	cache.Invalidate(ctx, "quiz-1")
}
