package service

import (
	"edu_quiz_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGradeAttemptMixedAnswers(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 2, []string{"a", "b", "c"}, 1),
		selectQuestion("q2", 3, []string{"x", "y", "z"}, []int{0, 2}),
		choiceQuestion("q3", 5, []string{"yes", "no"}, 0),
	)

	answers := map[string]model.AnswerValue{
		"q1": {Text: "b"},
		"q2": {Selections: []string{"z", "x"}},
		"q3": {Text: "no"},
	}

	summary := gradeAttempt(def, answers)

	require.Equal(t, 5.0, summary.PointsEarned)
	require.Equal(t, 10.0, summary.TotalPoints)
	require.Equal(t, 2, summary.CorrectAnswers)
	require.Equal(t, 3, summary.TotalQuestions)
	require.Equal(t, 50.0, summary.Score)
	require.False(t, summary.Passed)

	// 判定结果写回每题
	require.NotNil(t, answers["q1"].Correct)
	require.True(t, *answers["q1"].Correct)
	require.Equal(t, 2.0, answers["q1"].PointsAwarded)
	require.False(t, *answers["q3"].Correct)
	require.Equal(t, 0.0, answers["q3"].PointsAwarded)
}

func TestGradeAttemptPassingBoundary(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 3, []string{"a", "b"}, 0),
		choiceQuestion("q2", 2, []string{"a", "b"}, 0),
	)
	def.PassingScore = 60

	answers := map[string]model.AnswerValue{
		"q1": {Text: "a"},
		"q2": {Text: "b"},
	}

	summary := gradeAttempt(def, answers)

	require.Equal(t, 60.0, summary.Score)
	require.True(t, summary.Passed, "score equal to passing score must pass")
}

func TestGradeAttemptSelectExtraOptionScoresZero(t *testing.T) {
	def := testDefinition(
		selectQuestion("q1", 4, []string{"a", "b", "c", "d"}, []int{0, 1}),
	)

	cases := map[string][]string{
		"extra selection":   {"a", "b", "c"},
		"missing selection": {"a"},
		"wrong selection":   {"c", "d"},
	}
	for name, selections := range cases {
		answers := map[string]model.AnswerValue{"q1": {Selections: selections}}
		summary := gradeAttempt(def, answers)
		require.Zero(t, summary.PointsEarned, name)
		require.False(t, *answers["q1"].Correct, name)
	}

	// 顺序无关，集合一致即满分
	answers := map[string]model.AnswerValue{"q1": {Selections: []string{"b", "a"}}}
	summary := gradeAttempt(def, answers)
	require.Equal(t, 4.0, summary.PointsEarned)
}

func TestGradeAttemptUnansweredCountsMissed(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 2, []string{"a", "b"}, 0),
		choiceQuestion("q2", 2, []string{"a", "b"}, 0),
	)

	answers := map[string]model.AnswerValue{"q1": {Text: "a"}}
	summary := gradeAttempt(def, answers)

	require.Equal(t, 2.0, summary.PointsEarned)
	require.Equal(t, 4.0, summary.TotalPoints)
	require.Equal(t, 50.0, summary.Score)
	// 未作答的题不写判定结果
	_, ok := answers["q2"]
	require.False(t, ok)
}

func TestGradeAttemptShortAnswerExcludedFromAutoScore(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 2, []string{"a", "b"}, 0),
		essayQuestion("q2", 10),
	)

	answers := map[string]model.AnswerValue{
		"q1": {Text: "a"},
		"q2": {Text: "my essay"},
	}
	summary := gradeAttempt(def, answers)

	require.Equal(t, 2.0, summary.TotalPoints, "short_answer points must not inflate the denominator")
	require.Equal(t, 100.0, summary.Score)
	require.Equal(t, []string{"q2"}, summary.PendingReview)
	require.True(t, answers["q2"].NeedsManualReview)
	require.Nil(t, answers["q2"].Correct)
}

func TestGradeAttemptOnlyShortAnswers(t *testing.T) {
	def := testDefinition(essayQuestion("q1", 5))
	def.PassingScore = 60

	summary := gradeAttempt(def, map[string]model.AnswerValue{"q1": {Text: "text"}})

	require.Zero(t, summary.TotalPoints)
	require.Zero(t, summary.Score)
	require.False(t, summary.Passed)
}

func TestGradeAttemptDeterministic(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 2, []string{"a", "b"}, 1),
		selectQuestion("q2", 3, []string{"x", "y"}, []int{0}),
	)

	answers := func() map[string]model.AnswerValue {
		return map[string]model.AnswerValue{
			"q1": {Text: "b"},
			"q2": {Selections: []string{"x"}},
		}
	}

	first := gradeAttempt(def, answers())
	second := gradeAttempt(def, answers())
	require.Equal(t, first, second)
}

func TestGradeAttemptScoreRounding(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 1, []string{"a", "b"}, 0),
		choiceQuestion("q2", 1, []string{"a", "b"}, 0),
		choiceQuestion("q3", 1, []string{"a", "b"}, 0),
	)

	answers := map[string]model.AnswerValue{"q1": {Text: "a"}}
	summary := gradeAttempt(def, answers)

	require.Equal(t, 33.33, summary.Score)
	require.GreaterOrEqual(t, summary.Score, 0.0)
	require.LessOrEqual(t, summary.Score, 100.0)
}
