package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/fujioka8700/Eitan/internal/domain"
)

func TestHistoryRepo_RecordEvent(t *testing.T) {
	tests := []struct {
		name          string
		event         domain.StudyEvent
		queryPattern  string
		mockError     error
		expectedError bool
	}{
		{
			name:         "quiz correct increments legacy and quiz counters",
			event:        domain.EventQuizCorrect,
			queryPattern: "quiz_correct_count = learning_histories.quiz_correct_count \\+ 1",
		},
		{
			name:         "quiz mistake increments legacy and quiz counters",
			event:        domain.EventQuizMistake,
			queryPattern: "quiz_mistake_count = learning_histories.quiz_mistake_count \\+ 1",
		},
		{
			name:         "learned increments legacy and flashcard counters",
			event:        domain.EventLearned,
			queryPattern: "flashcard_learned_count = learning_histories.flashcard_learned_count \\+ 1",
		},
		{
			name:         "unlearned clamps legacy counter and resets flashcard counter",
			event:        domain.EventUnlearned,
			queryPattern: "correct_count = GREATEST\\(learning_histories.correct_count - 1, 0\\)",
		},
		{
			name:          "database error",
			event:         domain.EventQuizCorrect,
			queryPattern:  "INSERT INTO learning_histories",
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewHistoryRepo(db)

			exec := mock.ExpectExec(tt.queryPattern).WithArgs(int64(123), 5)
			if tt.mockError != nil {
				exec.WillReturnError(tt.mockError)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(1, 1))
			}

			err = repo.RecordEvent(123, 5, tt.event)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHistoryRepo_RecordEvent_UnknownEvent(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewHistoryRepo(db)

	err = repo.RecordEvent(123, 5, domain.StudyEvent("bogus"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown study event")
}

func TestHistoryRepo_ListByUser(t *testing.T) {
	tests := []struct {
		name          string
		userID        int64
		mockRows      *sqlmock.Rows
		mockError     error
		expectedCount int
		expectedError bool
	}{
		{
			name:   "records found, most recent first",
			userID: 123,
			mockRows: sqlmock.NewRows([]string{
				"word_id", "english", "japanese",
				"correct_count", "mistake_count",
				"quiz_correct_count", "quiz_mistake_count",
				"flashcard_learned_count", "last_studied_at",
			}).
				AddRow(2, "book", "本", 3, 1, 2, 1, 1, time.Now()).
				AddRow(1, "apple", "りんご", 1, 0, 0, 0, 1, time.Now().Add(-time.Hour)),
			expectedCount: 2,
		},
		{
			name:   "no records",
			userID: 456,
			mockRows: sqlmock.NewRows([]string{
				"word_id", "english", "japanese",
				"correct_count", "mistake_count",
				"quiz_correct_count", "quiz_mistake_count",
				"flashcard_learned_count", "last_studied_at",
			}),
			expectedCount: 0,
		},
		{
			name:          "database error",
			userID:        789,
			mockError:     fmt.Errorf("db error"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewHistoryRepo(db)

			query := "SELECT h.word_id, w.english, w.japanese"

			if tt.mockError != nil {
				mock.ExpectQuery(query).WithArgs(tt.userID).WillReturnError(tt.mockError)
			} else {
				mock.ExpectQuery(query).WithArgs(tt.userID).WillReturnRows(tt.mockRows)
			}

			records, err := repo.ListByUser(tt.userID)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Len(t, records, tt.expectedCount)
				if tt.expectedCount == 2 {
					assert.Equal(t, 2, records[0].WordID)
					assert.Equal(t, "book", records[0].English)
				}
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_UserIDByToken(t *testing.T) {
	tests := []struct {
		name          string
		token         string
		mockRows      *sqlmock.Rows
		expectedID    int64
		expectedError bool
	}{
		{
			name:       "known token",
			token:      "tok-123",
			mockRows:   sqlmock.NewRows([]string{"user_id"}).AddRow(123),
			expectedID: 123,
		},
		{
			name:       "unknown token resolves to zero",
			token:      "tok-unknown",
			mockRows:   sqlmock.NewRows([]string{"user_id"}),
			expectedID: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			assert.NoError(t, err)
			defer db.Close()

			repo := NewUserRepo(db)

			mock.ExpectQuery("SELECT user_id FROM users WHERE api_token = \\$1").
				WithArgs(tt.token).
				WillReturnRows(tt.mockRows)

			userID, err := repo.UserIDByToken(tt.token)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedID, userID)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepo_EnsureUserExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := NewUserRepo(db)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(int64(123)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.EnsureUserExists(123)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
