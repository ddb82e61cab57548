package service

import (
	"context"
	"edu_quiz_backend/internal/model"
)

// QuizCatalog 提供测验定义的只读访问。评分始终使用评分时刻的定义，
// 不在开始作答时固定快照。
type QuizCatalog interface {
	GetQuizDefinition(ctx context.Context, quizID string) (*model.QuizDefinition, error)
}

// AttemptLedger 是作答记录的持久化接口，实现方必须提供：
//   - StartAttempt 的 per-(quiz,user) 串行化（防止并发开始产生重复记录）；
//   - Complete 的一次性状态翻转（并发提交只有一方成功）；
//   - UpdateAnswers 的原子读改写。
type AttemptLedger interface {
	StartAttempt(ctx context.Context, quizID string, userID uint, build func(existing []model.QuizAttempt) (*model.QuizAttempt, bool, error)) (*model.QuizAttempt, bool, error)
	FindByID(ctx context.Context, id string) (*model.QuizAttempt, error)
	ListByQuizAndUser(ctx context.Context, quizID string, userID uint) ([]model.QuizAttempt, error)
	UpdateAnswers(ctx context.Context, attemptID string, merge func(*model.QuizAttempt) error) (*model.QuizAttempt, error)
	Complete(ctx context.Context, attempt *model.QuizAttempt) error
}
