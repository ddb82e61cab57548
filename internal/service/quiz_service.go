package service

import (
	"context"
	"edu_quiz_backend/internal/model"
	"edu_quiz_backend/internal/repository"
	"edu_quiz_backend/internal/util"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// QuizService 承载教师侧的测验目录维护与作答查阅。
type QuizService struct {
	Repo     *repository.QuizRepository
	Attempts *repository.AttemptRepository
}

func NewQuizService(repo *repository.QuizRepository, attempts *repository.AttemptRepository) *QuizService {
	return &QuizService{Repo: repo, Attempts: attempts}
}

type QuizQuestionReq struct {
	QuestionType   string   `json:"questionType" binding:"required"`
	Content        string   `json:"content" binding:"required"`
	Options        []string `json:"options"`
	CorrectOptions []int    `json:"correctOptions"`
	Points         float64  `json:"points"`
	Explanation    string   `json:"explanation"`
	Order          int      `json:"order"`
}

type QuizReq struct {
	LessonID         string            `json:"lessonId"`
	Title            string            `json:"title" binding:"required"`
	Description      string            `json:"description"`
	PassingScore     float64           `json:"passingScore"`
	TimeLimitMinutes *int              `json:"timeLimitMinutes"`
	MaxAttempts      *int              `json:"maxAttempts"`
	ShuffleQuestions bool              `json:"shuffleQuestions"`
	ShuffleOptions   bool              `json:"shuffleOptions"`
	IsPublished      bool              `json:"isPublished"`
	Questions        []QuizQuestionReq `json:"questions"`
}

func (s *QuizService) CreateQuiz(creatorID uint, req QuizReq) (*model.Quiz, error) {
	if req.PassingScore < 0 || req.PassingScore > 100 {
		return nil, errors.New("passingScore must be between 0 and 100")
	}
	if req.TimeLimitMinutes != nil && *req.TimeLimitMinutes <= 0 {
		return nil, errors.New("timeLimitMinutes must be positive")
	}
	if req.MaxAttempts != nil && *req.MaxAttempts <= 0 {
		return nil, errors.New("maxAttempts must be positive")
	}

	questions := make([]model.QuizQuestion, 0, len(req.Questions))
	for i, qReq := range req.Questions {
		q, err := buildQuestion(i, qReq)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}

	quiz := &model.Quiz{
		LessonID:         req.LessonID,
		Title:            req.Title,
		Description:      req.Description,
		PassingScore:     req.PassingScore,
		TimeLimitMinutes: req.TimeLimitMinutes,
		MaxAttempts:      req.MaxAttempts,
		ShuffleQuestions: req.ShuffleQuestions,
		ShuffleOptions:   req.ShuffleOptions,
		IsPublished:      req.IsPublished,
		CreatorID:        creatorID,
	}

	if err := s.Repo.CreateQuiz(quiz, questions); err != nil {
		return nil, err
	}
	return quiz, nil
}

func buildQuestion(i int, req QuizQuestionReq) (*model.QuizQuestion, error) {
	switch req.QuestionType {
	case model.QuestionTypeMultipleChoice:
		if len(req.Options) < 2 {
			return nil, fmt.Errorf("question %d: multiple_choice needs at least 2 options", i+1)
		}
		if len(req.CorrectOptions) != 1 {
			return nil, fmt.Errorf("question %d: multiple_choice needs exactly one correct option", i+1)
		}
	case model.QuestionTypeMultipleSelect:
		if len(req.Options) < 2 {
			return nil, fmt.Errorf("question %d: multiple_select needs at least 2 options", i+1)
		}
		if len(req.CorrectOptions) == 0 {
			return nil, fmt.Errorf("question %d: multiple_select needs at least one correct option", i+1)
		}
	case model.QuestionTypeShortAnswer:
		if len(req.Options) > 0 || len(req.CorrectOptions) > 0 {
			return nil, fmt.Errorf("question %d: short_answer takes no options", i+1)
		}
	default:
		return nil, fmt.Errorf("question %d: unknown question type %q", i+1, req.QuestionType)
	}

	for _, idx := range req.CorrectOptions {
		if idx < 0 || idx >= len(req.Options) {
			return nil, fmt.Errorf("question %d: correct option index %d out of range", i+1, idx)
		}
	}

	points := req.Points
	if points <= 0 {
		points = 1
	}

	q := &model.QuizQuestion{
		QuestionType: req.QuestionType,
		Content:      req.Content,
		Points:       points,
		Explanation:  req.Explanation,
		Order:        req.Order,
	}

	if len(req.Options) > 0 {
		raw, err := json.Marshal(req.Options)
		if err != nil {
			return nil, err
		}
		q.Options = raw
	}
	if len(req.CorrectOptions) > 0 {
		raw, err := json.Marshal(req.CorrectOptions)
		if err != nil {
			return nil, err
		}
		q.CorrectOptions = raw
	}
	return q, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, id string) (*model.QuizDefinition, error) {
	def, err := s.Repo.GetQuizDefinition(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	return def, nil
}

func (s *QuizService) ListQuizzes(page, limit int) ([]repository.QuizListRow, int64, error) {
	return s.Repo.ListQuizzes(page, limit)
}

func (s *QuizService) SetPublished(ctx context.Context, id string, published bool) error {
	err := s.Repo.SetPublished(ctx, id, published)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrQuizNotFound
	}
	return err
}

func (s *QuizService) ListQuizAttempts(ctx context.Context, quizID string, page, limit int) ([]model.QuizAttempt, int64, error) {
	return s.Attempts.ListByQuiz(ctx, quizID, page, limit)
}

// AttemptReview 是教师查阅单次作答的视图：按展示顺序附带题目定义与判定结果。
type AttemptReview struct {
	Attempt   *model.QuizAttempt           `json:"attempt"`
	Questions []model.QuizQuestion         `json:"questions"`
	Answers   map[string]model.AnswerValue `json:"answers"`
}

func (s *QuizService) GetAttemptReview(ctx context.Context, attemptID string) (*AttemptReview, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	def, err := s.Repo.GetQuizDefinition(ctx, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	return &AttemptReview{
		Attempt:   attempt,
		Questions: def.Questions,
		Answers:   attempt.AnswerMap(),
	}, nil
}
