package domain

import "time"

// ProgressEntry is the device-local flashcard state for one word.
// One entry per word ever touched; never deleted.
type ProgressEntry struct {
	WordID        int       `json:"word_id"`
	LastStudiedAt time.Time `json:"last_studied_at"`
	StudyCount    int       `json:"study_count"`
	IsLearned     bool      `json:"is_learned"`
}

// LearningRecord is the server-side per-user, per-word counter set.
// CorrectCount and MistakeCount are the legacy pair updated by both study
// modes; the quiz and flashcard counters are updated only by their own mode.
type LearningRecord struct {
	WordID                int
	English               string
	Japanese              string
	CorrectCount          int
	MistakeCount          int
	QuizCorrectCount      int
	QuizMistakeCount      int
	FlashcardLearnedCount int
	LastStudiedAt         time.Time
}

// LastStudiedDisplay returns a user-friendly label for the last study date
func (r LearningRecord) LastStudiedDisplay() string {
	now := time.Now()
	date := r.LastStudiedAt

	if sameDay(date, now) {
		return "今日"
	}
	if sameDay(date, now.AddDate(0, 0, -1)) {
		return "昨日"
	}

	return date.Format("2006/01/02")
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
