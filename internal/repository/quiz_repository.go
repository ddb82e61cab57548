package repository

import (
	"context"
	"edu_quiz_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type QuizRepository struct {
	DB    *gorm.DB
	cache *QuizCache
}

func NewQuizRepository(db *gorm.DB, rdb *redis.Client, cacheSeconds int) *QuizRepository {
	return &QuizRepository{
		DB:    db,
		cache: NewQuizCache(rdb, cacheSeconds),
	}
}

// SetCacheTTL 更新定义缓存时间，配置热更新时调用
func (r *QuizRepository) SetCacheTTL(ttlSeconds int) {
	r.cache.SetTTL(ttlSeconds)
}

func (r *QuizRepository) CreateQuiz(quiz *model.Quiz, questions []model.QuizQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(quiz).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].QuizID = quiz.ID
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *QuizRepository) FindQuizByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.WithContext(ctx).First(&quiz, "id = ?", id).Error
	return &quiz, err
}

func (r *QuizRepository) ListQuestions(ctx context.Context, quizID string) ([]model.QuizQuestion, error) {
	var qs []model.QuizQuestion
	err := r.DB.WithContext(ctx).Where("quiz_id = ?", quizID).Order("`order` asc, created_at asc").Find(&qs).Error
	return qs, err
}

// GetQuizDefinition 读取测验定义快照，优先命中 Redis 缓存。
func (r *QuizRepository) GetQuizDefinition(ctx context.Context, quizID string) (*model.QuizDefinition, error) {
	if def, ok := r.cache.Get(ctx, quizID); ok {
		return def, nil
	}

	quiz, err := r.FindQuizByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := r.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	def := &model.QuizDefinition{Quiz: *quiz, Questions: questions}
	r.cache.Set(ctx, def)
	return def, nil
}

// SetPublished 更新发布状态并使缓存中的定义快照失效。
func (r *QuizRepository) SetPublished(ctx context.Context, quizID string, published bool) error {
	res := r.DB.Model(&model.Quiz{}).Where("id = ?", quizID).Update("is_published", published)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.cache.Invalidate(ctx, quizID)
	return nil
}

type QuizListRow struct {
	model.Quiz
	QuestionCount int `json:"questionCount"`
	AttemptCount  int `json:"attemptCount"`
}

func (r *QuizRepository) ListQuizzes(page, limit int) ([]QuizListRow, int64, error) {
	var total int64
	if err := r.DB.Model(&model.Quiz{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []QuizListRow
	query := r.DB.Table("quizzes q").
		Select("q.*, " +
			"(SELECT COUNT(*) FROM quiz_questions qq WHERE qq.quiz_id = q.id AND qq.deleted_at IS NULL) as question_count, " +
			"(SELECT COUNT(*) FROM quiz_attempts a WHERE a.quiz_id = q.id AND a.deleted_at IS NULL) as attempt_count").
		Where("q.deleted_at IS NULL")

	if limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	err := query.Order("q.created_at desc").Scan(&rows).Error
	return rows, total, err
}
