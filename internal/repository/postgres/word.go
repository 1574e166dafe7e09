package postgres

import (
	"database/sql"

	"github.com/fujioka8700/Eitan/internal/domain"
)

// WordRepo implements repository.WordRepository
type WordRepo struct {
	db *sql.DB
}

// NewWordRepo creates a new word repository
func NewWordRepo(db *sql.DB) *WordRepo {
	return &WordRepo{db: db}
}

// ListByLevel returns up to count words in random order.
// An empty or "all" level means no level filter. An empty result is not
// an error; callers decide whether an empty pool is acceptable.
func (r *WordRepo) ListByLevel(level string, count int) ([]domain.Word, error) {
	var rows *sql.Rows
	var err error

	if level == "" || level == domain.LevelAll {
		query := `
			SELECT id, english, japanese, level
			FROM words
			ORDER BY RANDOM()
			LIMIT $1
		`
		rows, err = r.db.Query(query, count)
	} else {
		query := `
			SELECT id, english, japanese, level
			FROM words
			WHERE level = $1
			ORDER BY RANDOM()
			LIMIT $2
		`
		rows, err = r.db.Query(query, level, count)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []domain.Word
	for rows.Next() {
		var w domain.Word
		if err := rows.Scan(&w.ID, &w.English, &w.Japanese, &w.Level); err != nil {
			return nil, err
		}
		words = append(words, w)
	}

	return words, rows.Err()
}

// SaveWord inserts a word, updating the translation if the same
// english/level pair already exists
func (r *WordRepo) SaveWord(word domain.Word) error {
	query := `
		INSERT INTO words (english, japanese, level)
		VALUES ($1, $2, $3)
		ON CONFLICT (english, level)
		DO UPDATE SET japanese = EXCLUDED.japanese
	`
	_, err := r.db.Exec(query, word.English, word.Japanese, word.Level)
	return err
}
