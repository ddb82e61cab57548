package service

import (
	"edu_quiz_backend/internal/model"
	"hash/fnv"
	"math/rand"
)

// derivePresentation 为一次作答计算题目与选项的展示顺序。以 attemptID 为种子，
// 同一 attemptID 永远得到同一顺序；结果在创建作答时持久化，之后不再重新计算。
func derivePresentation(def *model.QuizDefinition, attemptID string) *model.PresentationOrder {
	rng := rand.New(rand.NewSource(presentationSeed(attemptID)))

	order := &model.PresentationOrder{
		QuestionOrder: make([]string, len(def.Questions)),
	}
	for i := range def.Questions {
		order.QuestionOrder[i] = def.Questions[i].ID
	}
	if def.ShuffleQuestions {
		rng.Shuffle(len(order.QuestionOrder), func(i, j int) {
			order.QuestionOrder[i], order.QuestionOrder[j] = order.QuestionOrder[j], order.QuestionOrder[i]
		})
	}

	if def.ShuffleOptions {
		order.OptionOrders = make(map[string][]int)
		for i := range def.Questions {
			q := &def.Questions[i]
			// short_answer 没有选项，不参与洗牌
			if q.QuestionType == model.QuestionTypeShortAnswer {
				continue
			}
			opts := q.OptionList()
			if len(opts) == 0 {
				continue
			}
			idxs := rng.Perm(len(opts))
			order.OptionOrders[q.ID] = idxs
		}
	}

	return order
}

func presentationSeed(attemptID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(attemptID))
	return int64(h.Sum64())
}
