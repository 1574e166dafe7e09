package repository

import (
	"github.com/fujioka8700/Eitan/internal/domain"
)

// WordRepository defines word supply operations
type WordRepository interface {
	ListByLevel(level string, count int) ([]domain.Word, error)
	SaveWord(word domain.Word) error
}

// HistoryRepository defines learning history operations
type HistoryRepository interface {
	RecordEvent(userID int64, wordID int, event domain.StudyEvent) error
	ListByUser(userID int64) ([]domain.LearningRecord, error)
}

// UserRepository defines user data operations
type UserRepository interface {
	EnsureUserExists(userID int64) error
	UserIDByToken(token string) (int64, error)
}
