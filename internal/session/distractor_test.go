package session

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fujioka8700/Eitan/internal/domain"
	"github.com/fujioka8700/Eitan/internal/testutil"
)

func TestGenerateOptions_FourUniqueIncludingCorrect(t *testing.T) {
	pool := testutil.NewTestPool(10)
	question := pool[0]

	for seed := int64(0); seed < 25; seed++ {
		rng := rand.New(rand.NewSource(seed))

		options := GenerateOptions(question, pool, domain.DirectionEnToJa, "", rng)

		assert.Len(t, options, 4)
		assert.Contains(t, options, question.Japanese)

		unique := make(map[string]struct{})
		for _, o := range options {
			unique[o] = struct{}{}
		}
		assert.Len(t, unique, 4, "options must be unique")
	}
}

func TestGenerateOptions_ExcludedAnswerStaysOut(t *testing.T) {
	pool := testutil.NewTestPool(10)
	question := pool[3]
	// The previous question's correct answer must not reappear as a
	// distractor when the pool is large enough to avoid it.
	excluded := pool[7].Japanese

	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))

		options := GenerateOptions(question, pool, domain.DirectionEnToJa, excluded, rng)

		assert.Len(t, options, 4)
		assert.NotContains(t, options, excluded)
	}
}

func TestGenerateOptions_FallbackReadmitsExcluded(t *testing.T) {
	// With exactly four words, excluding one distractor value would
	// leave only two wrong answers; the second pass must readmit it.
	pool := testutil.NewTestPool(4)
	question := pool[0]
	excluded := pool[1].Japanese

	for seed := int64(0); seed < 25; seed++ {
		rng := rand.New(rand.NewSource(seed))

		options := GenerateOptions(question, pool, domain.DirectionEnToJa, excluded, rng)

		assert.Len(t, options, 4)
		assert.Contains(t, options, question.Japanese)
		assert.Contains(t, options, excluded)
	}
}

func TestGenerateOptions_DuplicateAnswerValues(t *testing.T) {
	// Duplicated answer fields collapse to one option; the pool still
	// holds four distinct values overall.
	pool := []domain.Word{
		{ID: 1, English: "big", Japanese: "大きい"},
		{ID: 2, English: "large", Japanese: "大きい"},
		{ID: 3, English: "small", Japanese: "小さい"},
		{ID: 4, English: "fast", Japanese: "速い"},
		{ID: 5, English: "slow", Japanese: "遅い"},
	}
	question := pool[0]

	for seed := int64(0); seed < 25; seed++ {
		rng := rand.New(rand.NewSource(seed))

		options := GenerateOptions(question, pool, domain.DirectionEnToJa, "", rng)

		assert.Len(t, options, 4)
		unique := make(map[string]struct{})
		for _, o := range options {
			unique[o] = struct{}{}
		}
		assert.Len(t, unique, 4)
		assert.Contains(t, options, "大きい")
	}
}

func TestGenerateOptions_JapaneseToEnglish(t *testing.T) {
	pool := testutil.NewTestPool(6)
	question := pool[2]
	rng := rand.New(rand.NewSource(1))

	options := GenerateOptions(question, pool, domain.DirectionJaToEn, "", rng)

	assert.Len(t, options, 4)
	assert.Contains(t, options, question.English)
	for _, o := range options {
		assert.NotContains(t, o, "日本語", "options must come from the english field")
	}
}
