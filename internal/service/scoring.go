package service

import (
	"edu_quiz_backend/internal/model"
	"math"
)

// GradeSummary 是一次提交的评分结果汇总。
type GradeSummary struct {
	PointsEarned   float64  `json:"pointsEarned"`
	TotalPoints    float64  `json:"totalPoints"`
	CorrectAnswers int      `json:"correctAnswers"`
	TotalQuestions int      `json:"totalQuestions"`
	Score          float64  `json:"score"`
	Passed         bool     `json:"passed"`
	PendingReview  []string `json:"pendingReview,omitempty"` // 待人工评阅的题目 ID
}

// gradeAttempt 对答案集合评分并就地写回每题的判定结果。纯函数式评分：
// 同一 (定义, 答案) 输入永远得到相同输出。
//
// 规则：
//   - multiple_choice：答案等于正确选项文本得满分，否则 0 分；
//   - multiple_select：选中集合与正确集合完全一致得满分，多选或漏选均为 0 分；
//   - short_answer：不参与自动评分，不计入 totalPoints/pointsEarned，
//     已作答的标记 NeedsManualReview 交由教师评阅；
//   - 未作答按 0 分计，不视为错误。
func gradeAttempt(def *model.QuizDefinition, answers map[string]model.AnswerValue) GradeSummary {
	summary := GradeSummary{
		TotalQuestions: len(def.Questions),
	}

	for i := range def.Questions {
		q := &def.Questions[i]

		if !q.AutoGradable() {
			if ans, ok := answers[q.ID]; ok {
				ans.NeedsManualReview = true
				ans.Correct = nil
				ans.PointsAwarded = 0
				answers[q.ID] = ans
				summary.PendingReview = append(summary.PendingReview, q.ID)
			}
			continue
		}

		summary.TotalPoints += q.Points

		ans, answered := answers[q.ID]
		correct := answered && isCorrect(q, &ans)

		if answered {
			passedCopy := correct
			ans.Correct = &passedCopy
			ans.PointsAwarded = 0
			if correct {
				ans.PointsAwarded = q.Points
			}
			answers[q.ID] = ans
		}

		if correct {
			summary.PointsEarned += q.Points
			summary.CorrectAnswers++
		}
	}

	if summary.TotalPoints > 0 {
		summary.Score = round2(summary.PointsEarned / summary.TotalPoints * 100)
	}
	summary.Passed = summary.Score >= def.PassingScore

	return summary
}

func isCorrect(q *model.QuizQuestion, ans *model.AnswerValue) bool {
	opts := q.OptionList()
	correctSet := q.CorrectIndexSet()

	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice:
		for idx := range correctSet {
			if idx >= 0 && idx < len(opts) && ans.Text == opts[idx] {
				return true
			}
		}
		return false

	case model.QuestionTypeMultipleSelect:
		// 严格集合相等：基数一致且成员一致，无部分得分
		correctTexts := make(map[string]bool, len(correctSet))
		for idx := range correctSet {
			if idx >= 0 && idx < len(opts) {
				correctTexts[opts[idx]] = true
			}
		}
		if len(ans.Selections) != len(correctTexts) {
			return false
		}
		for _, sel := range ans.Selections {
			if !correctTexts[sel] {
				return false
			}
		}
		return true
	}

	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
