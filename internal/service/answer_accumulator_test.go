package service

import (
	"edu_quiz_backend/internal/model"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeAnswersChoiceByTextAndIndex(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 1, []string{"red", "green", "blue"}, 0),
		choiceQuestion("q2", 1, []string{"red", "green", "blue"}, 0),
	)

	merged := mergeAnswers(def, map[string]model.AnswerValue{}, IncomingAnswers{
		"q1": rawJSON(t, "green"),
		"q2": rawJSON(t, 2), // 下标规整为选项文本
	})

	require.Equal(t, "green", merged["q1"].Text)
	require.Equal(t, "blue", merged["q2"].Text)
}

func TestMergeAnswersInvalidDroppedWithoutAborting(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 1, []string{"a", "b"}, 0),
		choiceQuestion("q2", 1, []string{"a", "b"}, 0),
	)

	merged := mergeAnswers(def, map[string]model.AnswerValue{}, IncomingAnswers{
		"q1":      rawJSON(t, "not-an-option"),
		"q2":      rawJSON(t, "b"),
		"unknown": rawJSON(t, "a"),
	})

	// 非法答案与未知题目被丢弃，合法答案照常保存
	require.Len(t, merged, 1)
	require.Equal(t, "b", merged["q2"].Text)
}

func TestMergeAnswersChoiceIndexOutOfRange(t *testing.T) {
	def := testDefinition(choiceQuestion("q1", 1, []string{"a", "b"}, 0))

	merged := mergeAnswers(def, map[string]model.AnswerValue{}, IncomingAnswers{
		"q1": rawJSON(t, 5),
	})
	require.Empty(t, merged)
}

func TestMergeAnswersSelectDedupeAndFilter(t *testing.T) {
	def := testDefinition(selectQuestion("q1", 1, []string{"a", "b", "c"}, []int{0}))

	merged := mergeAnswers(def, map[string]model.AnswerValue{}, IncomingAnswers{
		"q1": rawJSON(t, []string{"a", "a", "ghost", "c"}),
	})

	require.Equal(t, []string{"a", "c"}, merged["q1"].Selections)
}

func TestMergeAnswersShortAnswerTrimAndClear(t *testing.T) {
	def := testDefinition(essayQuestion("q1", 1))

	merged := mergeAnswers(def, map[string]model.AnswerValue{}, IncomingAnswers{
		"q1": rawJSON(t, "  some text  "),
	})
	require.Equal(t, "some text", merged["q1"].Text)

	// 空白字符串等价于清除答案
	merged = mergeAnswers(def, merged, IncomingAnswers{
		"q1": rawJSON(t, "   "),
	})
	require.Empty(t, merged)
}

func TestMergeAnswersNullClearsStoredAnswer(t *testing.T) {
	def := testDefinition(choiceQuestion("q1", 1, []string{"a", "b"}, 0))

	current := map[string]model.AnswerValue{"q1": {Text: "a"}}
	merged := mergeAnswers(def, current, IncomingAnswers{
		"q1": json.RawMessage("null"),
	})
	require.Empty(t, merged)
}

func TestMergeAnswersOverwritesPerQuestion(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 1, []string{"a", "b"}, 0),
		choiceQuestion("q2", 1, []string{"a", "b"}, 0),
	)

	current := map[string]model.AnswerValue{
		"q1": {Text: "a"},
		"q2": {Text: "a"},
	}
	merged := mergeAnswers(def, current, IncomingAnswers{
		"q2": rawJSON(t, "b"),
	})

	// 题目粒度覆盖：未提及的题保持原值
	require.Equal(t, "a", merged["q1"].Text)
	require.Equal(t, "b", merged["q2"].Text)
}
