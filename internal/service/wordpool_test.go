package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fujioka8700/Eitan/internal/domain"
	"github.com/fujioka8700/Eitan/internal/testutil"
)

func TestWordPoolService_Load(t *testing.T) {
	tests := []struct {
		name          string
		level         string
		count         int
		mockWords     []domain.Word
		mockError     error
		skipMock      bool
		expectedCount int
		expectedError error
		expectAnyErr  bool
	}{
		{
			name:          "full pool returned",
			level:         domain.LevelChuu1,
			count:         10,
			mockWords:     testutil.NewTestPool(10),
			expectedCount: 10,
		},
		{
			name:          "supply returns fewer than requested",
			level:         domain.LevelChuu3,
			count:         100,
			mockWords:     testutil.NewTestPool(7),
			expectedCount: 7,
		},
		{
			name:          "empty supply is an explicit signal",
			level:         domain.LevelChuu1,
			count:         100,
			mockWords:     []domain.Word{},
			expectedError: ErrNoWords,
		},
		{
			name:         "zero count rejected",
			level:        domain.LevelChuu1,
			count:        0,
			skipMock:     true,
			expectAnyErr: true,
		},
		{
			name:         "unknown level rejected",
			level:        "高1",
			count:        10,
			skipMock:     true,
			expectAnyErr: true,
		},
		{
			name:         "database error",
			level:        domain.LevelAll,
			count:        10,
			mockError:    fmt.Errorf("db error"),
			expectAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockWordRepository)

			if !tt.skipMock {
				if tt.mockError != nil {
					mockRepo.On("ListByLevel", tt.level, tt.count).Return(nil, tt.mockError)
				} else {
					mockRepo.On("ListByLevel", tt.level, tt.count).Return(tt.mockWords, nil)
				}
			}

			service := NewWordPoolService(mockRepo)

			words, err := service.Load(tt.level, tt.count)

			switch {
			case tt.expectedError != nil:
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, words)
			case tt.expectAnyErr:
				assert.Error(t, err)
				assert.Nil(t, words)
			default:
				assert.NoError(t, err)
				assert.Len(t, words, tt.expectedCount)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestWordPoolService_Load_EmptyLevelMeansNoFilter(t *testing.T) {
	mockRepo := new(testutil.MockWordRepository)
	mockRepo.On("ListByLevel", "", 5).Return(testutil.NewTestPool(5), nil)

	service := NewWordPoolService(mockRepo)

	words, err := service.Load("", 5)

	assert.NoError(t, err)
	assert.Len(t, words, 5)
	mockRepo.AssertExpectations(t)
}
