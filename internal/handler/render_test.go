package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fujioka8700/Eitan/internal/domain"
	"github.com/fujioka8700/Eitan/internal/session"
	"github.com/fujioka8700/Eitan/internal/testutil"
)

func TestFlashcardText(t *testing.T) {
	word := domain.Word{ID: 1, English: "apple", Japanese: "りんご", Level: "中1"}

	tests := []struct {
		name     string
		item     session.Item
		learned  bool
		contains []string
		excludes []string
	}{
		{
			name:     "front of the card",
			item:     session.Item{Word: word},
			contains: []string{"カード 3/10", "apple", "残り 5秒"},
			excludes: []string{"りんご", "覚えた"},
		},
		{
			name:     "flipped card shows the answer",
			item:     session.Item{Word: word, Revealed: true},
			contains: []string{"apple", "りんご"},
		},
		{
			name:     "learned card is labelled",
			item:     session.Item{Word: word},
			learned:  true,
			contains: []string{"✅ 覚えた"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := flashcardText(tt.item, 2, 10, 5000, domain.DirectionEnToJa, tt.learned)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, text, unwanted)
			}
		})
	}
}

func TestFlashcardText_RemainingRoundsUp(t *testing.T) {
	word := domain.Word{ID: 1, English: "apple", Japanese: "りんご"}
	text := flashcardText(session.Item{Word: word}, 0, 5, 4001, domain.DirectionEnToJa, false)
	assert.Contains(t, text, "残り 5秒")
}

func TestQuizText(t *testing.T) {
	word := domain.Word{ID: 1, English: "apple", Japanese: "りんご"}

	tests := []struct {
		name     string
		item     session.Item
		contains []string
	}{
		{
			name:     "open question shows the countdown",
			item:     session.Item{Word: word},
			contains: []string{"第1問/5", "apple", "残り 10秒"},
		},
		{
			name:     "correct answer review",
			item:     session.Item{Word: word, Answered: true, SelectedAnswer: "りんご"},
			contains: []string{"⭕ 正解"},
		},
		{
			name:     "wrong answer review shows the correct one",
			item:     session.Item{Word: word, Answered: true, SelectedAnswer: "みかん"},
			contains: []string{"❌ 不正解", "正解: りんご"},
		},
		{
			name:     "expiry review",
			item:     session.Item{Word: word, Answered: true, SelectedAnswer: ""},
			contains: []string{"時間切れ", "正解: りんご"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := quizText(tt.item, 0, 5, 10000, domain.DirectionEnToJa)
			for _, want := range tt.contains {
				assert.Contains(t, text, want)
			}
		})
	}
}

func TestQuizMarkup(t *testing.T) {
	options := []string{"りんご", "みかん", "ぶどう", "もも"}

	markup := quizMarkup(options, false)
	// Four option rows plus the menu row
	require.Len(t, markup.InlineKeyboard, 5)
	assert.Contains(t, markup.InlineKeyboard[0][0].Text, "りんご")
	assert.Contains(t, markup.InlineKeyboard[3][0].Text, "もも")

	settled := quizMarkup(options, true)
	require.Len(t, settled.InlineKeyboard, 1)
	assert.Equal(t, btnMainMenu.Text, settled.InlineKeyboard[0][0].Text)
}

func TestHistoryText(t *testing.T) {
	records := []domain.LearningRecord{
		{
			WordID:                5,
			English:               "apple",
			Japanese:              "りんご",
			CorrectCount:          3,
			MistakeCount:          1,
			FlashcardLearnedCount: 1,
		},
	}

	text := historyText(records)

	assert.Contains(t, text, "学習履歴 (1語)")
	assert.Contains(t, text, "apple — りんご")
	assert.Contains(t, text, "⭕ 3")
	assert.Contains(t, text, "❌ 1")
}

type stubLoader struct {
	words []domain.Word
}

func (l stubLoader) Load(level string, count int) ([]domain.Word, error) {
	return l.words, nil
}

func TestResultsText_Quiz(t *testing.T) {
	pool := testutil.NewTestPool(4)
	// Long budgets keep the real timers out of the way
	timing := session.Timing{
		FlashcardLimitMs: 600000,
		FlashcardStepMs:  60000,
		FlashcardGraceMs: 60000,
		QuizLimitMs:      600000,
		QuizStepMs:       60000,
		QuizReviewMs:     600000,
	}

	sess := session.New(domain.ModeQuiz, domain.DirectionEnToJa, session.Deps{
		Loader: stubLoader{words: pool},
		Logger: testutil.NewTestLogger(),
		Timing: timing,
	})
	defer sess.Close()
	require.NoError(t, sess.Start("", 4))

	for i := 0; i < 4; i++ {
		item, ok := sess.CurrentItem()
		require.True(t, ok)
		answer := item.Word.Answer(domain.DirectionEnToJa)
		if i%2 == 1 {
			answer = "wrong"
		}
		require.NoError(t, sess.SelectAnswer(answer))
		require.NoError(t, sess.Advance())
	}
	require.Equal(t, domain.StatusFinished, sess.Status())

	text := resultsText(sess, 0)

	assert.Contains(t, text, "成績: 2/4")
	assert.Contains(t, text, "⭕")
	assert.Contains(t, text, "❌")
}

func TestResultsText_Flashcard(t *testing.T) {
	pool := testutil.NewTestPool(3)
	timing := session.Timing{
		FlashcardLimitMs: 600000,
		FlashcardStepMs:  60000,
		FlashcardGraceMs: 60000,
		QuizLimitMs:      600000,
		QuizStepMs:       60000,
		QuizReviewMs:     600000,
	}

	sess := session.New(domain.ModeFlashcard, domain.DirectionEnToJa, session.Deps{
		Loader: stubLoader{words: pool},
		Logger: testutil.NewTestLogger(),
		Timing: timing,
	})
	defer sess.Close()
	require.NoError(t, sess.Start("", 3))

	for i := 0; i < 3; i++ {
		require.NoError(t, sess.Advance())
	}
	require.Equal(t, domain.StatusFinished, sess.Status())

	text := resultsText(sess, 2)

	assert.Contains(t, text, "3枚のカード")
	assert.Contains(t, text, "覚えた単語: 2")
}
