package domain

// Mode is the study mode of a session
type Mode string

const (
	ModeFlashcard Mode = "flashcard"
	ModeQuiz      Mode = "quiz"
)

// Direction determines which field is the prompt and which is the answer
type Direction string

const (
	DirectionEnToJa Direction = "en_to_ja"
	DirectionJaToEn Direction = "ja_to_en"
)

// Status is the lifecycle state of a study session
type Status string

const (
	StatusSetup    Status = "setup"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// AnswerRecord is the permanent outcome of one quiz item.
// Appended exactly once per item, in item order, never mutated.
type AnswerRecord struct {
	WordID           int
	UserAnswer       string
	CorrectAnswer    string
	IsCorrect        bool
	TimeSpentSeconds int
}

// StudyEvent identifies what kind of study outcome is being persisted
// to the learning history
type StudyEvent string

const (
	EventQuizCorrect StudyEvent = "quiz_correct"
	EventQuizMistake StudyEvent = "quiz_mistake"
	EventLearned     StudyEvent = "learned"
	EventUnlearned   StudyEvent = "unlearned"
)
