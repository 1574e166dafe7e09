package progress

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fujioka8700/Eitan/internal/domain"
)

// Namespace is the fixed key the flashcard progress blob lives under
// in the local store
const Namespace = "eitan.flashcard.progress"

// UserNamespace returns the progress namespace for one user. The bare
// namespace holds the device-scoped blob used when no user is known.
func UserNamespace(userID int64) string {
	if userID == 0 {
		return Namespace
	}
	return Namespace + "." + strconv.FormatInt(userID, 10)
}

// BlobStore is the device-scoped persistence for flashcard progress.
// The blob is read once at startup and rewritten in full after every
// mutation.
type BlobStore interface {
	Get(namespace string) ([]byte, error)
	Put(namespace string, blob []byte) error
}

// HistorySink receives study events for server-side persistence
type HistorySink interface {
	Record(userID int64, wordID int, event domain.StudyEvent) error
}

// Tracker merges device-local flashcard state with fire-and-forget
// learning history writes. Local state is authoritative for the
// running session: sink and store failures are logged and swallowed,
// never rolled back into memory.
type Tracker struct {
	mu      sync.Mutex
	entries map[int]domain.ProgressEntry

	store     BlobStore
	namespace string
	sink      HistorySink // nil in guest mode
	userID    int64
	logger    *zap.Logger
	now       func() time.Time

	wg sync.WaitGroup
}

// NewTracker creates a tracker seeded from the local store. A nil sink
// or zero userID means guest mode: progress stays local-only.
func NewTracker(store BlobStore, sink HistorySink, userID int64, logger *zap.Logger) (*Tracker, error) {
	namespace := UserNamespace(userID)
	blob, err := store.Get(namespace)
	if err != nil {
		return nil, err
	}

	entries := make(map[int]domain.ProgressEntry)
	if len(blob) > 0 {
		if err := json.Unmarshal(blob, &entries); err != nil {
			return nil, err
		}
	}

	return &Tracker{
		entries:   entries,
		store:     store,
		namespace: namespace,
		sink:      sink,
		userID:    userID,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// ToggleLearned flips the learned flag for a word and returns the new
// state. The study count grows on the transition to learned and the
// revert takes that increment back, so an accidental double tap leaves
// the count where it was.
func (t *Tracker) ToggleLearned(wordID int) (bool, error) {
	t.mu.Lock()
	entry := t.entries[wordID]
	entry.WordID = wordID
	entry.IsLearned = !entry.IsLearned
	if entry.IsLearned {
		entry.StudyCount++
	} else if entry.StudyCount > 0 {
		entry.StudyCount--
	}
	entry.LastStudiedAt = t.now()
	t.entries[wordID] = entry
	t.saveLocked()
	t.mu.Unlock()

	event := domain.EventUnlearned
	if entry.IsLearned {
		event = domain.EventLearned
	}
	t.send(wordID, event)

	return entry.IsLearned, nil
}

// RecordQuizAnswer persists a quiz outcome to the learning history.
// Quiz results do not touch the local flashcard state.
func (t *Tracker) RecordQuizAnswer(wordID int, correct bool) {
	event := domain.EventQuizMistake
	if correct {
		event = domain.EventQuizCorrect
	}
	t.send(wordID, event)
}

// IsLearned reports the local learned state for a word
func (t *Tracker) IsLearned(wordID int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entries[wordID].IsLearned
}

// Entries returns a copy of all local progress entries
func (t *Tracker) Entries() map[int]domain.ProgressEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[int]domain.ProgressEntry, len(t.entries))
	for id, e := range t.entries {
		out[id] = e
	}
	return out
}

// LearnedCount returns how many words are currently marked learned
func (t *Tracker) LearnedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, e := range t.entries {
		if e.IsLearned {
			n++
		}
	}
	return n
}

// Wait blocks until all in-flight history writes have settled.
// Used at shutdown and in tests; sessions never wait on it.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// saveLocked rewrites the full blob. A failed write is logged and
// swallowed: the in-memory state remains the source of truth.
func (t *Tracker) saveLocked() {
	blob, err := json.Marshal(t.entries)
	if err != nil {
		t.logger.Error("Failed to encode progress blob", zap.Error(err))
		return
	}
	if err := t.store.Put(t.namespace, blob); err != nil {
		t.logger.Warn("Failed to persist progress blob", zap.Error(err))
	}
}

// send forwards a study event to the history sink without blocking the
// caller. Guests have no sink; failures only mean this event did not
// sync.
func (t *Tracker) send(wordID int, event domain.StudyEvent) {
	if t.sink == nil || t.userID == 0 {
		return
	}

	userID := t.userID
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.sink.Record(userID, wordID, event); err != nil {
			t.logger.Warn("Failed to sync study event",
				zap.Int64("user_id", userID),
				zap.Int("word_id", wordID),
				zap.String("event", string(event)),
				zap.Error(err),
			)
		}
	}()
}
