package postgres

import (
	"database/sql"
	"fmt"

	"github.com/fujioka8700/Eitan/internal/domain"
)

// HistoryRepo implements repository.HistoryRepository
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a new learning history repository
func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// RecordEvent upserts the counter record for (userID, wordID).
// The legacy correct/mistake pair is updated by both study modes; the
// quiz and flashcard counters only by their own mode. An unlearn event
// decrements the legacy correct counter by at most 1 and resets the
// flashcard counter to 0, matching the stored data produced by older
// clients.
func (r *HistoryRepo) RecordEvent(userID int64, wordID int, event domain.StudyEvent) error {
	var query string

	switch event {
	case domain.EventQuizCorrect:
		query = `
			INSERT INTO learning_histories
				(user_id, word_id, correct_count, mistake_count, quiz_correct_count, quiz_mistake_count, flashcard_learned_count, last_studied_at)
			VALUES ($1, $2, 1, 0, 1, 0, 0, NOW())
			ON CONFLICT (user_id, word_id) DO UPDATE SET
				correct_count = learning_histories.correct_count + 1,
				quiz_correct_count = learning_histories.quiz_correct_count + 1,
				last_studied_at = NOW()
		`
	case domain.EventQuizMistake:
		query = `
			INSERT INTO learning_histories
				(user_id, word_id, correct_count, mistake_count, quiz_correct_count, quiz_mistake_count, flashcard_learned_count, last_studied_at)
			VALUES ($1, $2, 0, 1, 0, 1, 0, NOW())
			ON CONFLICT (user_id, word_id) DO UPDATE SET
				mistake_count = learning_histories.mistake_count + 1,
				quiz_mistake_count = learning_histories.quiz_mistake_count + 1,
				last_studied_at = NOW()
		`
	case domain.EventLearned:
		query = `
			INSERT INTO learning_histories
				(user_id, word_id, correct_count, mistake_count, quiz_correct_count, quiz_mistake_count, flashcard_learned_count, last_studied_at)
			VALUES ($1, $2, 1, 0, 0, 0, 1, NOW())
			ON CONFLICT (user_id, word_id) DO UPDATE SET
				correct_count = learning_histories.correct_count + 1,
				flashcard_learned_count = learning_histories.flashcard_learned_count + 1,
				last_studied_at = NOW()
		`
	case domain.EventUnlearned:
		query = `
			INSERT INTO learning_histories
				(user_id, word_id, correct_count, mistake_count, quiz_correct_count, quiz_mistake_count, flashcard_learned_count, last_studied_at)
			VALUES ($1, $2, 0, 0, 0, 0, 0, NOW())
			ON CONFLICT (user_id, word_id) DO UPDATE SET
				correct_count = GREATEST(learning_histories.correct_count - 1, 0),
				flashcard_learned_count = 0,
				last_studied_at = NOW()
		`
	default:
		return fmt.Errorf("unknown study event: %s", event)
	}

	_, err := r.db.Exec(query, userID, wordID)
	return err
}

// ListByUser returns all touched words for the user, most recently
// studied first. No pagination; truncation is a display concern.
func (r *HistoryRepo) ListByUser(userID int64) ([]domain.LearningRecord, error) {
	query := `
		SELECT h.word_id, w.english, w.japanese,
			h.correct_count, h.mistake_count,
			h.quiz_correct_count, h.quiz_mistake_count,
			h.flashcard_learned_count, h.last_studied_at
		FROM learning_histories h
		JOIN words w ON w.id = h.word_id
		WHERE h.user_id = $1
		ORDER BY h.last_studied_at DESC
	`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.LearningRecord
	for rows.Next() {
		var rec domain.LearningRecord
		if err := rows.Scan(
			&rec.WordID, &rec.English, &rec.Japanese,
			&rec.CorrectCount, &rec.MistakeCount,
			&rec.QuizCorrectCount, &rec.QuizMistakeCount,
			&rec.FlashcardLearnedCount, &rec.LastStudiedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
