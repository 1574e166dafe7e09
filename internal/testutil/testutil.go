package testutil

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fujioka8700/Eitan/internal/domain"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestWord creates a test word
func NewTestWord(id int, english, japanese string) domain.Word {
	return domain.Word{
		ID:       id,
		English:  english,
		Japanese: japanese,
		Level:    domain.LevelChuu1,
	}
}

// NewTestPool creates a pool of n distinct test words
func NewTestPool(n int) []domain.Word {
	words := make([]domain.Word, 0, n)
	for i := 1; i <= n; i++ {
		words = append(words, domain.Word{
			ID:       i,
			English:  fmt.Sprintf("english%d", i),
			Japanese: fmt.Sprintf("日本語%d", i),
			Level:    domain.LevelChuu1,
		})
	}
	return words
}

// NewTestRecord creates a test learning record
func NewTestRecord(wordID int, english, japanese string) domain.LearningRecord {
	return domain.LearningRecord{
		WordID:        wordID,
		English:       english,
		Japanese:      japanese,
		LastStudiedAt: time.Now(),
	}
}
