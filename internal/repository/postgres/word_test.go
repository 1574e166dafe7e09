package postgres

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/fujioka8700/Eitan/internal/domain"
)

func TestWordRepo_ListByLevel(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		count         int
		mockRows      *sqlmock.Rows
		mockError     error
		expectedCount int
		expectedError bool
	}{
		{
			name:  "words found for level",
			level: "中1",
			count: 10,
			mockRows: sqlmock.NewRows([]string{"id", "english", "japanese", "level"}).
				AddRow(1, "apple", "りんご", "中1").
				AddRow(2, "book", "本", "中1"),
			expectedCount: 2,
		},
		{
			name:          "no words for level",
			level:         "中3",
			count:         10,
			mockRows:      sqlmock.NewRows([]string{"id", "english", "japanese", "level"}),
			expectedCount: 0,
		},
		{
			name:          "database error",
			level:         "中1",
			count:         10,
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewWordRepo(db)

			query := "SELECT id, english, japanese, level FROM words WHERE level = \\$1 ORDER BY RANDOM\\(\\) LIMIT \\$2"

			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs(tt.level, tt.count).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs(tt.level, tt.count).WillReturnRows(tt.mockRows)
			}

			words, err := repo.ListByLevel(tt.level, tt.count)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, words, tt.expectedCount)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWordRepo_ListByLevel_AllLevels(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{name: "empty level", level: ""},
		{name: "all level", level: domain.LevelAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewWordRepo(db)

			rows := sqlmock.NewRows([]string{"id", "english", "japanese", "level"}).
				AddRow(1, "apple", "りんご", "中1").
				AddRow(3, "science", "科学", "中3")

			// Unfiltered query takes only the count argument
			mock.ExpectQuery("SELECT id, english, japanese, level FROM words ORDER BY RANDOM\\(\\) LIMIT \\$1").
				WithArgs(5).
				WillReturnRows(rows)

			words, err := repo.ListByLevel(tt.level, 5)

			assert.NoError(t, err)
			assert.Len(t, words, 2)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestWordRepo_SaveWord(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewWordRepo(db)

	word := domain.Word{English: "apple", Japanese: "りんご", Level: "中1"}

	mock.ExpectExec("INSERT INTO words").
		WithArgs(word.English, word.Japanese, word.Level).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.SaveWord(word)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
