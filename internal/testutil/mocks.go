package testutil

import (
	"github.com/stretchr/testify/mock"

	"github.com/fujioka8700/Eitan/internal/domain"
)

// MockWordRepository is a mock for WordRepository
type MockWordRepository struct {
	mock.Mock
}

func (m *MockWordRepository) ListByLevel(level string, count int) ([]domain.Word, error) {
	args := m.Called(level, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Word), args.Error(1)
}

func (m *MockWordRepository) SaveWord(word domain.Word) error {
	args := m.Called(word)
	return args.Error(0)
}

// MockHistoryRepository is a mock for HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) RecordEvent(userID int64, wordID int, event domain.StudyEvent) error {
	args := m.Called(userID, wordID, event)
	return args.Error(0)
}

func (m *MockHistoryRepository) ListByUser(userID int64) ([]domain.LearningRecord, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LearningRecord), args.Error(1)
}

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) EnsureUserExists(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) UserIDByToken(token string) (int64, error) {
	args := m.Called(token)
	return args.Get(0).(int64), args.Error(1)
}

// MockHistorySink is a mock for the progress tracker's history sink
type MockHistorySink struct {
	mock.Mock
}

func (m *MockHistorySink) Record(userID int64, wordID int, event domain.StudyEvent) error {
	args := m.Called(userID, wordID, event)
	return args.Error(0)
}

// MockBlobStore is a mock for the local key-value blob store
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Get(namespace string) ([]byte, error) {
	args := m.Called(namespace)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) Put(namespace string, blob []byte) error {
	args := m.Called(namespace, blob)
	return args.Error(0)
}
