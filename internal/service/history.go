package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fujioka8700/Eitan/internal/domain"
	"github.com/fujioka8700/Eitan/internal/repository"
)

// HistoryService handles learning history reads and writes
type HistoryService struct {
	historyRepo repository.HistoryRepository
	logger      *zap.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(historyRepo repository.HistoryRepository, logger *zap.Logger) *HistoryService {
	return &HistoryService{
		historyRepo: historyRepo,
		logger:      logger,
	}
}

// Record upserts the counter record for one study event.
// Missing identifiers abort the write; the triggering session is not
// affected by the outcome.
func (s *HistoryService) Record(userID int64, wordID int, event domain.StudyEvent) error {
	if userID == 0 {
		return fmt.Errorf("user id is required")
	}
	if wordID <= 0 {
		return fmt.Errorf("word id is required")
	}

	switch event {
	case domain.EventQuizCorrect, domain.EventQuizMistake, domain.EventLearned, domain.EventUnlearned:
	default:
		return fmt.Errorf("unknown study event: %s", event)
	}

	if err := s.historyRepo.RecordEvent(userID, wordID, event); err != nil {
		s.logger.Error("Failed to record study event",
			zap.Int64("user_id", userID),
			zap.Int("word_id", wordID),
			zap.String("event", string(event)),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// History returns all touched words for the user, most recently studied
// first
func (s *HistoryService) History(userID int64) ([]domain.LearningRecord, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user id is required")
	}
	return s.historyRepo.ListByUser(userID)
}
