package domain

// Level filter values for junior high school grades
const (
	LevelAll   = "all"
	LevelChuu1 = "中1"
	LevelChuu2 = "中2"
	LevelChuu3 = "中3"
)

// Word represents an English-Japanese vocabulary entry
type Word struct {
	ID       int
	English  string
	Japanese string
	Level    string
}

// Prompt returns the question-side field for the given direction
func (w Word) Prompt(direction Direction) string {
	if direction == DirectionJaToEn {
		return w.Japanese
	}
	return w.English
}

// Answer returns the answer-side field for the given direction
func (w Word) Answer(direction Direction) string {
	if direction == DirectionJaToEn {
		return w.English
	}
	return w.Japanese
}

// ValidLevel reports whether level is a known filter value
func ValidLevel(level string) bool {
	switch level {
	case LevelAll, LevelChuu1, LevelChuu2, LevelChuu3:
		return true
	}
	return false
}
