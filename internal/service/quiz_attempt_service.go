package service

import (
	"context"
	"edu_quiz_backend/internal/model"
	"edu_quiz_backend/internal/util"
	"edu_quiz_backend/pkg/logger"
	"edu_quiz_backend/pkg/monitoring"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuizAttemptService 承载作答生命周期：开始/续答、增量保存、提交评分。
// 服务本身无状态，每次调用都重读台账，持久化与并发保证由 AttemptLedger 提供。
type QuizAttemptService struct {
	Catalog QuizCatalog
	Ledger  AttemptLedger
}

func NewQuizAttemptService(catalog QuizCatalog, ledger AttemptLedger) *QuizAttemptService {
	return &QuizAttemptService{Catalog: catalog, Ledger: ledger}
}

// definition 读取测验定义。只把记录不存在映射成 ErrQuizNotFound，
// 存储层故障原样上抛。
func (s *QuizAttemptService) definition(ctx context.Context, quizID string) (*model.QuizDefinition, error) {
	def, err := s.Catalog.GetQuizDefinition(ctx, quizID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuizNotFound
	}
	return def, err
}

// AttemptResult 是提交接口的完整返回：作答记录加评分汇总。
type AttemptResult struct {
	Attempt *model.QuizAttempt `json:"attempt"`
	GradeSummary
	TimeExpired bool `json:"timeExpired"`
}

// StartAttempt 开始或续答。已有 in_progress 记录时原样返回（含既有展示顺序），
// 达到次数上限时返回 ErrMaxAttemptsReached。
func (s *QuizAttemptService) StartAttempt(ctx context.Context, quizID string, userID uint) (*model.QuizAttempt, error) {
	def, err := s.definition(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !def.IsPublished {
		return nil, util.ErrQuizNotPublished
	}

	attempt, created, err := s.Ledger.StartAttempt(ctx, quizID, userID, func(existing []model.QuizAttempt) (*model.QuizAttempt, bool, error) {
		maxNumber := 0
		for i := range existing {
			if existing[i].Status == model.AttemptStatusInProgress {
				// 开始操作对已打开的作答幂等：直接续答
				return &existing[i], false, nil
			}
			if existing[i].AttemptNumber > maxNumber {
				maxNumber = existing[i].AttemptNumber
			}
		}

		// 未提交的 in_progress 记录同样占用次数额度
		if def.MaxAttempts != nil && len(existing) >= *def.MaxAttempts {
			return nil, false, util.ErrMaxAttemptsReached
		}

		attempt := &model.QuizAttempt{
			QuizID:        quizID,
			UserID:        userID,
			AttemptNumber: maxNumber + 1,
			Status:        model.AttemptStatusInProgress,
			StartedAt:     time.Now(),
			Answers:       json.RawMessage("{}"),
		}
		// 展示顺序以 attemptID 为种子，ID 必须在落库前确定
		attempt.ID = model.GenerateUUID()
		if err := attempt.SetPresentation(derivePresentation(def, attempt.ID)); err != nil {
			return nil, false, err
		}
		return attempt, true, nil
	})
	if err != nil {
		return nil, err
	}

	if created {
		monitoring.AttemptsStarted.Inc()
		logger.Log.Info("quiz attempt started",
			zap.String("quizId", quizID),
			zap.Uint("userId", userID),
			zap.Int("attemptNumber", attempt.AttemptNumber))
	}
	return attempt, nil
}

// GetAttempt 返回当前 in_progress 作答，否则返回最近一次作答；从未作答返回 nil。
func (s *QuizAttemptService) GetAttempt(ctx context.Context, quizID string, userID uint) (*model.QuizAttempt, error) {
	attempts, err := s.Ledger.ListByQuizAndUser(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}
	if len(attempts) == 0 {
		return nil, nil
	}
	for i := range attempts {
		if attempts[i].Status == model.AttemptStatusInProgress {
			return &attempts[i], nil
		}
	}
	return &attempts[len(attempts)-1], nil
}

func (s *QuizAttemptService) ListAttempts(ctx context.Context, quizID string, userID uint) ([]model.QuizAttempt, error) {
	return s.Ledger.ListByQuizAndUser(ctx, quizID, userID)
}

// SaveProgress 将部分答案合并进 in_progress 作答。单题校验失败只丢弃该题。
func (s *QuizAttemptService) SaveProgress(ctx context.Context, attemptID string, userID uint, incoming IncomingAnswers) (*model.QuizAttempt, error) {
	attempt, err := s.Ledger.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}

	def, err := s.definition(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	return s.Ledger.UpdateAnswers(ctx, attemptID, func(a *model.QuizAttempt) error {
		if a.Status != model.AttemptStatusInProgress {
			return util.ErrAttemptCompleted
		}
		merged := mergeAnswers(def, a.AnswerMap(), incoming)
		return a.SetAnswerMap(merged)
	})
}

// SubmitAttempt 执行提交：合并最终答案、计时、评分、一次性转入 completed。
// 重复提交返回 ErrAttemptCompleted，不会重新评分。
func (s *QuizAttemptService) SubmitAttempt(ctx context.Context, attemptID string, userID uint, finalAnswers IncomingAnswers, clientElapsedSeconds *int) (*AttemptResult, error) {
	attempt, err := s.Ledger.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.Status != model.AttemptStatusInProgress {
		return nil, util.ErrAttemptCompleted
	}

	// 评分使用评分时刻的测验定义
	def, err := s.definition(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	answers := mergeAnswers(def, attempt.AnswerMap(), finalAnswers)

	now := time.Now()
	// 服务端开始时间优先；客户端上报的耗时不可信，仅作缺省回退
	timeSpent := 0
	if !attempt.StartedAt.IsZero() {
		timeSpent = int(now.Sub(attempt.StartedAt).Seconds())
	} else if clientElapsedSeconds != nil && *clientElapsedSeconds >= 0 {
		timeSpent = *clientElapsedSeconds
	}

	// 超时不丢弃答案，只打标记；硬截止由外部计时器负责
	timeExpired := false
	if def.TimeLimitMinutes != nil && timeSpent > *def.TimeLimitMinutes*60 {
		timeExpired = true
	}

	summary := gradeAttempt(def, answers)

	if err := attempt.SetAnswerMap(answers); err != nil {
		return nil, err
	}
	attempt.SubmittedAt = &now
	attempt.TimeSpentSeconds = timeSpent
	attempt.PointsEarned = summary.PointsEarned
	attempt.TotalPoints = summary.TotalPoints
	attempt.CorrectAnswers = summary.CorrectAnswers
	attempt.TotalQuestions = summary.TotalQuestions
	score := summary.Score
	passed := summary.Passed
	attempt.Score = &score
	attempt.Passed = &passed
	attempt.TimeExpired = timeExpired
	if len(summary.PendingReview) > 0 {
		raw, err := json.Marshal(summary.PendingReview)
		if err != nil {
			return nil, err
		}
		attempt.PendingReviewJSON = raw
	}

	if err := s.Ledger.Complete(ctx, attempt); err != nil {
		return nil, err
	}
	attempt.Status = model.AttemptStatusCompleted

	monitoring.ObserveSubmission(passed)
	logger.Log.Info("quiz attempt submitted",
		zap.String("quizId", attempt.QuizID),
		zap.Uint("userId", userID),
		zap.Int("attemptNumber", attempt.AttemptNumber),
		zap.Float64("score", score),
		zap.Bool("passed", passed),
		zap.Bool("timeExpired", timeExpired))

	return &AttemptResult{
		Attempt:      attempt,
		GradeSummary: summary,
		TimeExpired:  timeExpired,
	}, nil
}
