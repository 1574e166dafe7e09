package session

import (
	"math/rand"

	"github.com/fujioka8700/Eitan/internal/domain"
)

// optionCount is the number of choices shown per quiz question
const optionCount = 4

const wrongOptionCount = optionCount - 1

// GenerateOptions builds the four quiz choices for a question: the
// correct answer plus three unique distractors drawn from the pool,
// uniformly shuffled.
//
// excludedAnswer is the previous question's correct answer; it is kept
// out of the options on the first draw so the same value never shows up
// on two consecutive questions. When the pool is too small to honor the
// exclusion, a second draw without it guarantees three distractors
// whenever the pool holds four distinct answer values.
func GenerateOptions(question domain.Word, pool []domain.Word, direction domain.Direction, excludedAnswer string, rng *rand.Rand) []string {
	correct := question.Answer(direction)

	wrong := drawDistractors(question, pool, direction, correct, excludedAnswer, rng)
	if len(wrong) < wrongOptionCount {
		wrong = drawDistractors(question, pool, direction, correct, "", rng)
	}

	options := make([]string, 0, optionCount)
	options = append(options, correct)
	options = append(options, wrong...)
	rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return options
}

// drawDistractors shuffles the candidate words and collects unique
// answer values until three are found or the candidates run out
func drawDistractors(question domain.Word, pool []domain.Word, direction domain.Direction, correct, excluded string, rng *rand.Rand) []string {
	candidates := make([]domain.Word, 0, len(pool))
	for _, w := range pool {
		if w.ID == question.ID {
			continue
		}
		answer := w.Answer(direction)
		if answer == correct {
			continue
		}
		if excluded != "" && answer == excluded {
			continue
		}
		candidates = append(candidates, w)
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	seen := make(map[string]struct{}, wrongOptionCount)
	wrong := make([]string, 0, wrongOptionCount)
	for _, w := range candidates {
		answer := w.Answer(direction)
		if _, ok := seen[answer]; ok {
			continue
		}
		seen[answer] = struct{}{}
		wrong = append(wrong, answer)
		if len(wrong) == wrongOptionCount {
			break
		}
	}

	return wrong
}
