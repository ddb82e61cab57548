package model

import (
	"encoding/json"
	"time"
)

const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusCompleted  = "completed"
)

// AnswerValue 存储单题的作答内容。multiple_choice 和 short_answer 使用 Text，
// multiple_select 使用 Selections。评分相关字段在提交评分时写入，作答期间为空。
type AnswerValue struct {
	Text              string   `json:"text,omitempty"`
	Selections        []string `json:"selections,omitempty"`
	Correct           *bool    `json:"correct,omitempty"`
	PointsAwarded     float64  `json:"pointsAwarded,omitempty"`
	NeedsManualReview bool     `json:"needsManualReview,omitempty"`
}

// PresentationOrder 记录一次作答中题目与选项的固定展示顺序，创建后不再变化。
type PresentationOrder struct {
	QuestionOrder []string         `json:"questionOrder"`
	OptionOrders  map[string][]int `json:"optionOrders,omitempty"`
}

// swagger:model QuizAttempt
type QuizAttempt struct {
	UUIDBase
	QuizID            string          `gorm:"index:idx_attempt_quiz_user,priority:1;uniqueIndex:uk_attempt_number,priority:1;type:varchar(36)" json:"quizId"`
	UserID            uint            `gorm:"index:idx_attempt_quiz_user,priority:2;uniqueIndex:uk_attempt_number,priority:2;type:bigint unsigned" json:"userId"`
	AttemptNumber     int             `gorm:"uniqueIndex:uk_attempt_number,priority:3;not null" json:"attemptNumber"`
	Status            string          `gorm:"size:20;default:'in_progress'" json:"status"`
	Answers           json.RawMessage `gorm:"type:json" json:"answers,omitempty"`           // JSON: map[questionID]AnswerValue
	PresentationJSON  json.RawMessage `gorm:"type:json" json:"presentationOrder,omitempty"` // JSON: PresentationOrder
	StartedAt         time.Time       `json:"startedAt"`
	SubmittedAt       *time.Time      `json:"submittedAt"`
	TimeSpentSeconds  int             `gorm:"default:0" json:"timeSpentSeconds"`
	PointsEarned      float64         `gorm:"default:0" json:"pointsEarned"`
	TotalPoints       float64         `gorm:"default:0" json:"totalPoints"`
	CorrectAnswers    int             `gorm:"default:0" json:"correctAnswers"`
	TotalQuestions    int             `gorm:"default:0" json:"totalQuestions"`
	Score             *float64        `json:"score"`
	Passed            *bool           `json:"passed"`
	TimeExpired       bool            `gorm:"default:false" json:"timeExpired"`
	PendingReviewJSON json.RawMessage `gorm:"type:json" json:"pendingReview,omitempty"` // JSON: []string question ids
}

func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// AnswerMap decodes the Answers column; an empty column yields an empty map.
func (a *QuizAttempt) AnswerMap() map[string]AnswerValue {
	answers := make(map[string]AnswerValue)
	if len(a.Answers) > 0 {
		_ = json.Unmarshal(a.Answers, &answers)
	}
	return answers
}

func (a *QuizAttempt) SetAnswerMap(answers map[string]AnswerValue) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	a.Answers = raw
	return nil
}

func (a *QuizAttempt) Presentation() *PresentationOrder {
	if len(a.PresentationJSON) == 0 {
		return nil
	}
	var order PresentationOrder
	if err := json.Unmarshal(a.PresentationJSON, &order); err != nil {
		return nil
	}
	return &order
}

func (a *QuizAttempt) SetPresentation(order *PresentationOrder) error {
	raw, err := json.Marshal(order)
	if err != nil {
		return err
	}
	a.PresentationJSON = raw
	return nil
}
