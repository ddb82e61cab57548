package repository

import (
	"context"
	"edu_quiz_backend/internal/model"
	"edu_quiz_backend/internal/util"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AttemptRepository 是作答记录的唯一持久化入口。并发保证：
//   - StartAttempt 在事务内对 (quiz,user) 的全部作答行加 FOR UPDATE，
//     配合 (quiz_id,user_id,attempt_number) 唯一索引兜底，保证同一时刻
//     至多一条 in_progress 且 attempt_number 连续不重复；
//   - Complete 通过 status 条件更新实现 CAS，completed 只会被写入一次；
//   - UpdateAnswers 行锁内读改写，按题目粒度 last-write-wins。
type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// StartAttempt 在 (quiz,user) 串行化点内执行 build。build 收到按 attempt_number
// 升序排列的既有作答，create 为 true 表示返回的是待落库的新记录，否则视为续答。
// 并发创建触发唯一索引冲突时重试，落败方拿到胜出方已创建的记录。
func (r *AttemptRepository) StartAttempt(ctx context.Context, quizID string, userID uint, build func(existing []model.QuizAttempt) (*model.QuizAttempt, bool, error)) (*model.QuizAttempt, bool, error) {
	var (
		result  *model.QuizAttempt
		created bool
	)

	const maxRetries = 3
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		lastErr = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var existing []model.QuizAttempt
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("quiz_id = ? AND user_id = ?", quizID, userID).
				Order("attempt_number asc").
				Find(&existing).Error
			if err != nil {
				return err
			}

			attempt, create, err := build(existing)
			if err != nil {
				return err
			}

			if !create {
				result, created = attempt, false
				return nil
			}

			if err := tx.Create(attempt).Error; err != nil {
				return err
			}
			result, created = attempt, true
			return nil
		})

		if lastErr == nil {
			return result, created, nil
		}
		if !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
			return nil, false, lastErr
		}
		// 唯一索引冲突：另一请求刚创建了同号作答，重读后返回它
	}
	return nil, false, lastErr
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*model.QuizAttempt, error) {
	var attempt model.QuizAttempt
	err := r.DB.WithContext(ctx).First(&attempt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAttemptNotFound
	}
	return &attempt, err
}

func (r *AttemptRepository) ListByQuizAndUser(ctx context.Context, quizID string, userID uint) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	err := r.DB.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		Order("attempt_number asc").
		Find(&attempts).Error
	return attempts, err
}

// UpdateAnswers 在行锁内执行 merge 并持久化答案列，保证并发保存互不丢失。
func (r *AttemptRepository) UpdateAnswers(ctx context.Context, attemptID string, merge func(*model.QuizAttempt) error) (*model.QuizAttempt, error) {
	var result *model.QuizAttempt
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attempt model.QuizAttempt
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&attempt, "id = ?", attemptID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrAttemptNotFound
		}
		if err != nil {
			return err
		}

		if err := merge(&attempt); err != nil {
			return err
		}

		if err := tx.Model(&attempt).Update("answers", attempt.Answers).Error; err != nil {
			return err
		}
		result = &attempt
		return nil
	})
	return result, err
}

// Complete 将 in_progress 作答一次性置为 completed 并写入评分结果。
// status 条件更新是提交竞态的裁决点：RowsAffected 为 0 即已被并发提交抢先。
func (r *AttemptRepository) Complete(ctx context.Context, attempt *model.QuizAttempt) error {
	res := r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).
		Where("id = ? AND status = ?", attempt.ID, model.AttemptStatusInProgress).
		Updates(map[string]interface{}{
			"status":              model.AttemptStatusCompleted,
			"answers":             attempt.Answers,
			"submitted_at":        attempt.SubmittedAt,
			"time_spent_seconds":  attempt.TimeSpentSeconds,
			"points_earned":       attempt.PointsEarned,
			"total_points":        attempt.TotalPoints,
			"correct_answers":     attempt.CorrectAnswers,
			"total_questions":     attempt.TotalQuestions,
			"score":               attempt.Score,
			"passed":              attempt.Passed,
			"time_expired":        attempt.TimeExpired,
			"pending_review_json": attempt.PendingReviewJSON,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).Where("id = ?", attempt.ID).Count(&count)
		if count == 0 {
			return util.ErrAttemptNotFound
		}
		return util.ErrAttemptCompleted
	}
	return nil
}

func (r *AttemptRepository) ListByQuiz(ctx context.Context, quizID string, page, limit int) ([]model.QuizAttempt, int64, error) {
	var total int64
	query := r.DB.WithContext(ctx).Model(&model.QuizAttempt{}).Where("quiz_id = ?", quizID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attempts []model.QuizAttempt
	offset := (page - 1) * limit
	err := r.DB.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&attempts).Error
	return attempts, total, err
}
