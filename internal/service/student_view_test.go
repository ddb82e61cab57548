package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStudentQuizViewHidesAnswersWhileInProgress(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 2, []string{"a", "b", "c"}, 1),
		essayQuestion("q2", 5),
	)
	svc, _ := newAttemptService(def)

	attempt, err := svc.StartAttempt(context.Background(), def.ID, 7)
	require.NoError(t, err)
	_, err = svc.SaveProgress(context.Background(), attempt.ID, 7, IncomingAnswers{
		"q1": rawJSON(t, "a"),
	})
	require.NoError(t, err)

	view, err := svc.StudentQuizView(context.Background(), def.ID, 7)
	require.NoError(t, err)

	require.Equal(t, "in_progress", view.Status)
	require.Equal(t, attempt.ID, view.AttemptID)
	require.Len(t, view.Questions, 2)

	q1 := view.Questions[0]
	require.Nil(t, q1.CorrectOptions, "answer key must stay hidden before submit")
	require.Nil(t, q1.Explanation)
	// 自己的作答回显，供续答恢复
	require.NotNil(t, q1.Answer)
	require.Equal(t, "a", q1.Answer.Text)
}

func TestStudentQuizViewRevealsResultsAfterSubmit(t *testing.T) {
	def := testDefinition(choiceQuestion("q1", 2, []string{"a", "b"}, 1))
	svc, _ := newAttemptService(def)

	attempt, err := svc.StartAttempt(context.Background(), def.ID, 7)
	require.NoError(t, err)
	_, err = svc.SubmitAttempt(context.Background(), attempt.ID, 7, IncomingAnswers{
		"q1": rawJSON(t, "b"),
	}, nil)
	require.NoError(t, err)

	view, err := svc.StudentQuizView(context.Background(), def.ID, 7)
	require.NoError(t, err)

	require.Equal(t, "completed", view.Status)
	require.NotNil(t, view.Score)
	require.Equal(t, 100.0, *view.Score)

	q1 := view.Questions[0]
	require.Equal(t, []string{"b"}, q1.CorrectOptions)
	require.NotNil(t, q1.Answer)
	require.True(t, *q1.Answer.Correct)
}

func TestStudentQuizViewUsesPersistedPresentation(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 1, []string{"a", "b", "c", "d"}, 0),
		choiceQuestion("q2", 1, []string{"a", "b", "c", "d"}, 0),
		choiceQuestion("q3", 1, []string{"a", "b", "c", "d"}, 0),
	)
	def.ShuffleQuestions = true
	def.ShuffleOptions = true
	svc, _ := newAttemptService(def)

	attempt, err := svc.StartAttempt(context.Background(), def.ID, 7)
	require.NoError(t, err)
	expected := attempt.Presentation()

	first, err := svc.StudentQuizView(context.Background(), def.ID, 7)
	require.NoError(t, err)
	second, err := svc.StudentQuizView(context.Background(), def.ID, 7)
	require.NoError(t, err)

	gotOrder := make([]string, len(first.Questions))
	for i, q := range first.Questions {
		gotOrder[i] = q.ID
	}
	require.Equal(t, expected.QuestionOrder, gotOrder)

	// 刷新不换顺序
	for i := range first.Questions {
		require.Equal(t, first.Questions[i].ID, second.Questions[i].ID)
		require.Equal(t, first.Questions[i].Options, second.Questions[i].Options)
	}
}

func TestStudentQuizViewWithoutAttempt(t *testing.T) {
	def := testDefinition(
		choiceQuestion("q1", 1, []string{"a", "b"}, 0),
		choiceQuestion("q2", 1, []string{"a", "b"}, 0),
	)
	svc, _ := newAttemptService(def)

	view, err := svc.StudentQuizView(context.Background(), def.ID, 7)
	require.NoError(t, err)

	require.Equal(t, "pending", view.Status)
	require.Zero(t, view.AttemptsUsed)
	// 未开始作答时按定义顺序
	require.Equal(t, "q1", view.Questions[0].ID)
	require.Equal(t, "q2", view.Questions[1].ID)
}
