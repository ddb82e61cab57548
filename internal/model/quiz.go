package model

import "encoding/json"

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeMultipleSelect = "multiple_select"
	QuestionTypeShortAnswer    = "short_answer"
)

// swagger:model Quiz
type Quiz struct {
	UUIDBase
	LessonID         string  `gorm:"index;type:varchar(36)" json:"lessonId"`
	Title            string  `gorm:"size:255;not null" json:"title"`
	Description      string  `gorm:"type:text" json:"description"`
	PassingScore     float64 `gorm:"default:60" json:"passingScore"` // 0-100
	TimeLimitMinutes *int    `json:"timeLimitMinutes"`               // nil = unlimited
	MaxAttempts      *int    `json:"maxAttempts"`                    // nil = unlimited
	ShuffleQuestions bool    `gorm:"default:false" json:"shuffleQuestions"`
	ShuffleOptions   bool    `gorm:"default:false" json:"shuffleOptions"`
	IsPublished      bool    `gorm:"default:false" json:"isPublished"`
	CreatorID        uint    `gorm:"index;type:bigint unsigned" json:"creatorId"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model QuizQuestion
type QuizQuestion struct {
	UUIDBase
	QuizID         string          `gorm:"index;type:varchar(36)" json:"quizId"`
	QuestionType   string          `gorm:"size:50;not null" json:"questionType"`
	Content        string          `gorm:"type:text;not null" json:"content"`
	Options        json.RawMessage `gorm:"type:json" json:"options,omitempty"`        // JSON: []string
	CorrectOptions json.RawMessage `gorm:"type:json" json:"correctOptions,omitempty"` // JSON: []int
	Points         float64         `gorm:"default:1" json:"points"`
	Explanation    string          `gorm:"type:text" json:"explanation"`
	Order          int             `gorm:"default:0" json:"order"`
}

func (QuizQuestion) TableName() string {
	return "quiz_questions"
}

// QuizDefinition 测验定义快照：测验配置加全部题目，按 Order 排序。
type QuizDefinition struct {
	Quiz
	Questions []QuizQuestion `json:"questions"`
}

// QuestionByID returns the question with the given id, or nil.
func (d *QuizDefinition) QuestionByID(id string) *QuizQuestion {
	for i := range d.Questions {
		if d.Questions[i].ID == id {
			return &d.Questions[i]
		}
	}
	return nil
}

// OptionList decodes the Options JSON column. short_answer questions have none.
func (q *QuizQuestion) OptionList() []string {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []string
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}

// CorrectIndexSet decodes the CorrectOptions JSON column into a set of option indices.
func (q *QuizQuestion) CorrectIndexSet() map[int]bool {
	if len(q.CorrectOptions) == 0 {
		return nil
	}
	var idxs []int
	if err := json.Unmarshal(q.CorrectOptions, &idxs); err != nil {
		return nil
	}
	set := make(map[int]bool, len(idxs))
	for _, i := range idxs {
		set[i] = true
	}
	return set
}

// AutoGradable reports whether the question can be scored without manual review.
func (q *QuizQuestion) AutoGradable() bool {
	return q.QuestionType == QuestionTypeMultipleChoice || q.QuestionType == QuestionTypeMultipleSelect
}
