package service

import (
	"edu_quiz_backend/internal/model"
	"edu_quiz_backend/internal/util"
	"edu_quiz_backend/pkg/logger"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
)

// IncomingAnswers 是保存/提交接口的原始答案载荷：questionID → 原始 JSON 值。
// multiple_choice 接受选项文本或选项下标，multiple_select 接受字符串数组，
// short_answer 接受字符串。
type IncomingAnswers map[string]json.RawMessage

// mergeAnswers 将 incoming 合并进 current（按题目粒度浅覆盖）。单题校验失败
// 只丢弃该题并记录日志，不影响其余题目的保存。null 值表示清除该题已存答案。
func mergeAnswers(def *model.QuizDefinition, current map[string]model.AnswerValue, incoming IncomingAnswers) map[string]model.AnswerValue {
	for questionID, raw := range incoming {
		q := def.QuestionByID(questionID)
		if q == nil {
			logger.Log.Warn("dropping answer for unknown question",
				zap.String("quizId", def.ID), zap.String("questionId", questionID))
			continue
		}

		if isJSONNull(raw) {
			delete(current, questionID)
			continue
		}

		value, err := normalizeAnswer(q, raw)
		if err != nil {
			logger.Log.Warn("dropping invalid answer",
				zap.String("quizId", def.ID), zap.String("questionId", questionID), zap.Error(err))
			continue
		}
		if value == nil {
			// 空 short_answer 视为未作答
			delete(current, questionID)
			continue
		}
		current[questionID] = *value
	}
	return current
}

// normalizeAnswer 按题型将原始 JSON 值规整为规范形态。返回 (nil, nil) 表示
// 合法但等价于清除答案（如空白的 short_answer）。
func normalizeAnswer(q *model.QuizQuestion, raw json.RawMessage) (*model.AnswerValue, error) {
	switch q.QuestionType {
	case model.QuestionTypeMultipleChoice:
		return normalizeChoice(q, raw)
	case model.QuestionTypeMultipleSelect:
		return normalizeSelect(q, raw)
	case model.QuestionTypeShortAnswer:
		return normalizeShortAnswer(raw)
	default:
		return nil, util.ErrInvalidAnswer
	}
}

func normalizeChoice(q *model.QuizQuestion, raw json.RawMessage) (*model.AnswerValue, error) {
	opts := q.OptionList()

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		for _, opt := range opts {
			if opt == text {
				return &model.AnswerValue{Text: text}, nil
			}
		}
		return nil, util.ErrInvalidAnswer
	}

	// 选项下标也可接受，规整为选项文本
	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		if idx >= 0 && idx < len(opts) {
			return &model.AnswerValue{Text: opts[idx]}, nil
		}
		return nil, util.ErrInvalidAnswer
	}

	return nil, util.ErrInvalidAnswer
}

func normalizeSelect(q *model.QuizQuestion, raw json.RawMessage) (*model.AnswerValue, error) {
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, util.ErrInvalidAnswer
	}

	universe := make(map[string]bool)
	for _, opt := range q.OptionList() {
		universe[opt] = true
	}

	// 去重并剔除选项集合之外的值
	seen := make(map[string]bool, len(values))
	normalized := make([]string, 0, len(values))
	for _, v := range values {
		if !universe[v] || seen[v] {
			continue
		}
		seen[v] = true
		normalized = append(normalized, v)
	}

	return &model.AnswerValue{Selections: normalized}, nil
}

func normalizeShortAnswer(raw json.RawMessage) (*model.AnswerValue, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, util.ErrInvalidAnswer
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}
	return &model.AnswerValue{Text: trimmed}, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
