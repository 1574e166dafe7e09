package service

import (
	"errors"
	"fmt"

	"github.com/fujioka8700/Eitan/internal/domain"
)

// ErrNoWords signals that the supply has no words for the requested
// filter. Callers must abort session start instead of proceeding with
// an empty pool.
var ErrNoWords = errors.New("no words available for the requested filter")

// WordSupply is any source of random words: the local database or the
// remote API
type WordSupply interface {
	ListByLevel(level string, count int) ([]domain.Word, error)
}

// WordPoolService loads the fixed word pool for one study session
type WordPoolService struct {
	supply WordSupply
}

// NewWordPoolService creates a new word pool service
func NewWordPoolService(supply WordSupply) *WordPoolService {
	return &WordPoolService{supply: supply}
}

// Load returns up to count words for the level filter.
// The supply may return fewer words than requested; zero words is
// reported as ErrNoWords.
func (s *WordPoolService) Load(level string, count int) ([]domain.Word, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}
	if level != "" && !domain.ValidLevel(level) {
		return nil, fmt.Errorf("unknown level: %s", level)
	}

	words, err := s.supply.ListByLevel(level, count)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, ErrNoWords
	}

	return words, nil
}
