package service

import (
	"context"
	"edu_quiz_backend/internal/model"
	"edu_quiz_backend/internal/util"
	"time"
)

// StudentQuestionView 是学生视角的单题视图。作答期间隐藏答案与解析，
// 提交后回填判定结果、标准答案和解析。
type StudentQuestionView struct {
	ID           string   `json:"id"`
	QuestionType string   `json:"questionType"`
	Content      string   `json:"content"`
	Options      []string `json:"options,omitempty"`
	Points       float64  `json:"points"`

	Answer         *model.AnswerValue `json:"answer,omitempty"`
	CorrectOptions []string           `json:"correctOptions,omitempty"`
	Explanation    *string            `json:"explanation,omitempty"`
}

// StudentQuizView 是学生视角的测验详情，题目与选项按当前作答的展示顺序排列。
type StudentQuizView struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description"`
	PassingScore     float64               `json:"passingScore"`
	TimeLimitMinutes *int                  `json:"timeLimitMinutes"`
	MaxAttempts      *int                  `json:"maxAttempts"`
	AttemptsUsed     int                   `json:"attemptsUsed"`
	Status           string                `json:"status"` // pending, in_progress, completed
	AttemptID        string                `json:"attemptId,omitempty"`
	AttemptNumber    int                   `json:"attemptNumber,omitempty"`
	RemainingSeconds *int                  `json:"remainingSeconds,omitempty"`
	Score            *float64              `json:"score,omitempty"`
	Passed           *bool                 `json:"passed,omitempty"`
	Questions        []StudentQuestionView `json:"questions"`
}

// StudentQuizView 组装学生测验详情。有作答记录时沿用其固定展示顺序，
// 从未作答时按题目自然顺序返回。
func (s *QuizAttemptService) StudentQuizView(ctx context.Context, quizID string, userID uint) (*StudentQuizView, error) {
	def, err := s.definition(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !def.IsPublished {
		return nil, util.ErrQuizNotPublished
	}

	attempts, err := s.Ledger.ListByQuizAndUser(ctx, quizID, userID)
	if err != nil {
		return nil, err
	}

	view := &StudentQuizView{
		ID:               def.ID,
		Title:            def.Title,
		Description:      def.Description,
		PassingScore:     def.PassingScore,
		TimeLimitMinutes: def.TimeLimitMinutes,
		MaxAttempts:      def.MaxAttempts,
		AttemptsUsed:     len(attempts),
		Status:           "pending",
	}

	var attempt *model.QuizAttempt
	for i := range attempts {
		if attempts[i].Status == model.AttemptStatusInProgress {
			attempt = &attempts[i]
			break
		}
	}
	if attempt == nil && len(attempts) > 0 {
		attempt = &attempts[len(attempts)-1]
	}

	completed := false
	var answers map[string]model.AnswerValue
	if attempt != nil {
		view.Status = attempt.Status
		view.AttemptID = attempt.ID
		view.AttemptNumber = attempt.AttemptNumber
		view.Score = attempt.Score
		view.Passed = attempt.Passed
		completed = attempt.Status == model.AttemptStatusCompleted
		answers = attempt.AnswerMap()

		if !completed && def.TimeLimitMinutes != nil {
			remaining := *def.TimeLimitMinutes*60 - int(time.Since(attempt.StartedAt).Seconds())
			if remaining < 0 {
				remaining = 0
			}
			view.RemainingSeconds = &remaining
		}
	}

	view.Questions = buildQuestionViews(def, attempt, answers, completed)
	return view, nil
}

func buildQuestionViews(def *model.QuizDefinition, attempt *model.QuizAttempt, answers map[string]model.AnswerValue, completed bool) []StudentQuestionView {
	questionOrder := make([]string, 0, len(def.Questions))
	var optionOrders map[string][]int
	if attempt != nil {
		if p := attempt.Presentation(); p != nil {
			questionOrder = p.QuestionOrder
			optionOrders = p.OptionOrders
		}
	}
	if len(questionOrder) == 0 {
		for i := range def.Questions {
			questionOrder = append(questionOrder, def.Questions[i].ID)
		}
	}

	views := make([]StudentQuestionView, 0, len(questionOrder))
	for _, questionID := range questionOrder {
		q := def.QuestionByID(questionID)
		if q == nil {
			// 定义在作答期间被修改，跳过已不存在的题目
			continue
		}

		opts := q.OptionList()
		if order, ok := optionOrders[q.ID]; ok && len(order) == len(opts) {
			reordered := make([]string, len(opts))
			for i, idx := range order {
				reordered[i] = opts[idx]
			}
			opts = reordered
		}

		qv := StudentQuestionView{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Content:      q.Content,
			Options:      opts,
			Points:       q.Points,
		}

		// 学生自己的作答始终可见（续答需要回显），答案与解析提交后才可见
		if ans, ok := answers[q.ID]; ok {
			ansCopy := ans
			qv.Answer = &ansCopy
		}

		if completed {
			correctSet := q.CorrectIndexSet()
			all := q.OptionList()
			for idx := range all {
				if correctSet[idx] {
					qv.CorrectOptions = append(qv.CorrectOptions, all[idx])
				}
			}
			explanation := q.Explanation
			qv.Explanation = &explanation
		}

		views = append(views, qv)
	}
	return views
}
