package session

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fujioka8700/Eitan/internal/domain"
)

// minQuizPoolSize is the smallest pool that can supply three unique
// distractors plus the correct answer
const minQuizPoolSize = optionCount

var (
	ErrSessionActive      = errors.New("session is already active")
	ErrNotActive          = errors.New("session is not active")
	ErrNotFinished        = errors.New("session is not finished")
	ErrWrongMode          = errors.New("operation not available in this study mode")
	ErrPoolTooSmall       = errors.New("word pool is too small for a quiz")
	ErrTransitionInFlight = errors.New("another transition is in flight")
	ErrAlreadyAnswered    = errors.New("current item is already answered")
	ErrCountdownExpired   = errors.New("countdown has expired for the current item")
	ErrNotAnswered        = errors.New("current item is not answered yet")
	ErrUnknownWord        = errors.New("word is not part of this session")
	ErrClosed             = errors.New("session is closed")
)

// Timing holds the countdown budgets of the engine, in milliseconds
type Timing struct {
	FlashcardLimitMs int
	FlashcardStepMs  int
	FlashcardGraceMs int
	QuizLimitMs      int
	QuizStepMs       int
	QuizReviewMs     int
}

// DefaultTiming returns the stock timing values
func DefaultTiming() Timing {
	return Timing{
		FlashcardLimitMs: 5000,
		FlashcardStepMs:  1000,
		FlashcardGraceMs: 1000,
		QuizLimitMs:      10000,
		QuizStepMs:       100,
		QuizReviewMs:     2000,
	}
}

// Item is one word's turn within a session, with its transient
// sub-state. The sub-state is reset whenever the current index changes.
type Item struct {
	Word           domain.Word
	Answered       bool
	Revealed       bool
	SelectedAnswer string
}

// PoolLoader supplies the fixed word pool for one session
type PoolLoader interface {
	Load(level string, count int) ([]domain.Word, error)
}

// ProgressRecorder is what the engine needs from the progress tracker.
// Implementations persist in the background; calls never block the
// session's transitions on network availability.
type ProgressRecorder interface {
	ToggleLearned(wordID int) (bool, error)
	RecordQuizAnswer(wordID int, correct bool)
}

// Listener receives engine events for rendering. Callbacks run outside
// the engine's lock, after the triggering transition has been applied.
type Listener interface {
	OnTick(remainingMs int)
	OnItemChanged()
	OnAnswered(record domain.AnswerRecord)
	OnFinished()
}

// NopListener ignores all events
type NopListener struct{}

func (NopListener) OnTick(int)                    {}
func (NopListener) OnItemChanged()                {}
func (NopListener) OnAnswered(domain.AnswerRecord) {}
func (NopListener) OnFinished()                   {}

// Deps bundles the collaborators of a session
type Deps struct {
	Loader    PoolLoader
	Progress  ProgressRecorder
	Listener  Listener
	Scheduler Scheduler
	Logger    *zap.Logger
	Timing    Timing
	Rand      *rand.Rand
}

// Session is the study-session state machine. It owns the current
// position, per-item sub-state and answer records, and is the single
// writer of all of them: collaborators only request transitions.
//
// Deferred callbacks (ticks, expiry grace, quiz review delays) carry
// the epoch current at scheduling time and are dropped when it no
// longer matches, so a stale timer can never advance a later item or a
// later run.
type Session struct {
	mu sync.Mutex

	id        uuid.UUID
	mode      domain.Mode
	direction domain.Direction
	timing    Timing

	loader    PoolLoader
	progress  ProgressRecorder
	listener  Listener
	scheduler Scheduler
	logger    *zap.Logger
	rng       *rand.Rand

	status  domain.Status
	pool    []domain.Word
	items   []*Item
	idx     int
	records []domain.AnswerRecord
	options []string

	countdown      *Countdown
	epoch          uint64
	advancing      bool
	closed         bool
	cancelTick     CancelFunc
	cancelDeferred CancelFunc
}

// New creates a session machine in the setup state
func New(mode domain.Mode, direction domain.Direction, deps Deps) *Session {
	if deps.Listener == nil {
		deps.Listener = NopListener{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = TimerScheduler{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Timing == (Timing{}) {
		deps.Timing = DefaultTiming()
	}

	s := &Session{
		id:        uuid.New(),
		mode:      mode,
		direction: direction,
		timing:    deps.Timing,
		loader:    deps.Loader,
		progress:  deps.Progress,
		listener:  deps.Listener,
		scheduler: deps.Scheduler,
		logger:    deps.Logger,
		rng:       deps.Rand,
		status:    domain.StatusSetup,
	}
	s.countdown = NewCountdown(s.limitMs(), s.stepMs())
	return s
}

// Start loads the pool and activates the session. On any load failure,
// including an empty supply, the machine stays in setup with no partial
// state. The pool is frozen for the duration of the run.
func (s *Session) Start(level string, count int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.status == domain.StatusActive {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.mu.Unlock()

	if s.mode == domain.ModeQuiz && count < minQuizPoolSize {
		return ErrPoolTooSmall
	}

	// The only suspension point of the machine: the session stays in
	// setup until the supply resolves or fails.
	words, err := s.loader.Load(level, count)
	if err != nil {
		return err
	}

	if s.mode == domain.ModeQuiz && distinctAnswers(words, s.direction) < optionCount {
		return ErrPoolTooSmall
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.status == domain.StatusActive {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.seedLocked(words)
	s.mu.Unlock()

	s.listener.OnItemChanged()
	return nil
}

// Restart re-enters active with the same pool and fresh state.
// Answer records from the previous run are discarded.
func (s *Session) Restart() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.status != domain.StatusFinished {
		s.mu.Unlock()
		return ErrNotFinished
	}
	s.seedLocked(s.pool)
	s.mu.Unlock()

	s.listener.OnItemChanged()
	return nil
}

// Reset returns the machine to setup, discarding the pool, items and
// records. A subsequent Start may use a new filter.
func (s *Session) Reset() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.cancelTimersLocked()
	s.epoch++
	s.status = domain.StatusSetup
	s.pool = nil
	s.items = nil
	s.records = nil
	s.options = nil
	s.idx = 0
	s.mu.Unlock()
}

// Close tears the session down. All pending timers are cancelled; no
// callback scheduled before Close may mutate state afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimersLocked()
	s.epoch++
	s.closed = true
}

// seedLocked activates a run over the given pool
func (s *Session) seedLocked(words []domain.Word) {
	s.cancelTimersLocked()
	s.epoch++
	s.id = uuid.New()
	s.pool = words
	s.items = make([]*Item, len(words))
	for i, w := range words {
		s.items[i] = &Item{Word: w}
	}
	s.records = make([]domain.AnswerRecord, 0, len(words))
	s.idx = 0
	s.status = domain.StatusActive
	s.enterItemLocked("")
}

// enterItemLocked resets per-item state for the current index and
// starts its countdown. excludedAnswer keeps the previous question's
// correct answer out of the new options.
func (s *Session) enterItemLocked(excludedAnswer string) {
	item := s.items[s.idx]
	item.Answered = false
	item.Revealed = false
	item.SelectedAnswer = ""

	if s.mode == domain.ModeQuiz {
		s.options = GenerateOptions(item.Word, s.pool, s.direction, excludedAnswer, s.rng)
	}

	s.countdown = NewCountdown(s.limitMs(), s.stepMs())
	s.countdown.Start()
	s.scheduleTickLocked()
}

// Flip toggles the reveal state of the current flashcard. It does not
// advance the position and has no bearing on learned status.
func (s *Session) Flip() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.mode != domain.ModeFlashcard {
		return ErrWrongMode
	}
	if s.status != domain.StatusActive {
		return ErrNotActive
	}

	item := s.items[s.idx]
	item.Revealed = !item.Revealed
	return nil
}

// MarkLearned toggles the learned flag for a word of this session
// through the progress tracker. Valid while active and from the results
// view after the session has finished.
func (s *Session) MarkLearned(wordID int) (bool, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false, ErrClosed
	}
	if s.mode != domain.ModeFlashcard {
		s.mu.Unlock()
		return false, ErrWrongMode
	}
	if s.status == domain.StatusSetup {
		s.mu.Unlock()
		return false, ErrNotActive
	}
	found := false
	for _, item := range s.items {
		if item.Word.ID == wordID {
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		return false, ErrUnknownWord
	}
	if s.progress == nil {
		return false, errors.New("no progress tracker configured")
	}

	return s.progress.ToggleLearned(wordID)
}

// SelectAnswer records the user's choice for the current quiz item.
// Allowed only while the item is unanswered and its countdown has not
// expired. The answer is compared against the direction-appropriate
// field, persisted in the background, and an automatic advance is
// scheduled after the review delay.
func (s *Session) SelectAnswer(answer string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.mode != domain.ModeQuiz {
		s.mu.Unlock()
		return ErrWrongMode
	}
	if s.status != domain.StatusActive {
		s.mu.Unlock()
		return ErrNotActive
	}
	item := s.items[s.idx]
	if item.Answered {
		s.mu.Unlock()
		return ErrAlreadyAnswered
	}
	if s.countdown.Expired() {
		s.mu.Unlock()
		return ErrCountdownExpired
	}

	item.Answered = true
	item.SelectedAnswer = answer
	record := s.recordAnswerLocked(answer)
	s.scheduleReviewAdvanceLocked()
	s.mu.Unlock()

	s.listener.OnAnswered(record)
	return nil
}

// recordAnswerLocked appends the answer record for the current item and
// hands the outcome to the progress tracker. The countdown stops: the
// item is settled.
func (s *Session) recordAnswerLocked(answer string) domain.AnswerRecord {
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}

	item := s.items[s.idx]
	correct := item.Word.Answer(s.direction)
	record := domain.AnswerRecord{
		WordID:           item.Word.ID,
		UserAnswer:       answer,
		CorrectAnswer:    correct,
		IsCorrect:        answer == correct,
		TimeSpentSeconds: (s.countdown.LimitMs() - s.countdown.RemainingMs()) / 1000,
	}
	s.records = append(s.records, record)

	if s.progress != nil {
		s.progress.RecordQuizAnswer(item.Word.ID, record.IsCorrect)
	}

	return record
}

// scheduleReviewAdvanceLocked schedules the automatic advance that
// follows an answered or expired quiz item
func (s *Session) scheduleReviewAdvanceLocked() {
	epoch := s.epoch
	delay := time.Duration(s.timing.QuizReviewMs) * time.Millisecond
	s.cancelDeferred = s.scheduler.AfterFunc(delay, func() {
		s.autoAdvance(epoch)
	})
}

// Advance moves to the next item, or finishes the session past the
// last one. In quiz mode the current item must be settled first.
func (s *Session) Advance() error {
	s.mu.Lock()
	if err := s.transitionAllowedLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.mode == domain.ModeQuiz && !s.items[s.idx].Answered {
		s.mu.Unlock()
		return ErrNotAnswered
	}
	s.advancing = true
	finished := s.advanceLocked()
	s.mu.Unlock()

	s.notifyMove(finished)
	return nil
}

// Retreat moves back one flashcard. A no-op at the first card.
func (s *Session) Retreat() error {
	s.mu.Lock()
	if s.mode != domain.ModeFlashcard {
		s.mu.Unlock()
		return ErrWrongMode
	}
	if err := s.transitionAllowedLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.idx == 0 {
		s.mu.Unlock()
		return nil
	}
	s.advancing = true
	s.cancelTimersLocked()
	s.epoch++
	s.idx--
	s.enterItemLocked("")
	s.mu.Unlock()

	s.notifyMove(false)
	return nil
}

// transitionAllowedLocked rejects transition requests while the
// session is not active or another transition has not settled yet
func (s *Session) transitionAllowedLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.status != domain.StatusActive {
		return ErrNotActive
	}
	if s.advancing {
		return ErrTransitionInFlight
	}
	return nil
}

// advanceLocked performs the index transition shared by manual and
// automatic advances. Returns true when the session finished.
func (s *Session) advanceLocked() bool {
	s.cancelTimersLocked()
	s.epoch++

	if s.idx+1 >= len(s.items) {
		s.finishLocked()
		return true
	}

	excluded := ""
	if s.mode == domain.ModeQuiz {
		excluded = s.items[s.idx].Word.Answer(s.direction)
	}
	s.idx++
	s.enterItemLocked(excluded)
	return false
}

// finishLocked leaves active. The index resets so a later restart
// begins clean; quiz records stay as the run's permanent result set.
func (s *Session) finishLocked() {
	s.status = domain.StatusFinished
	s.idx = 0
}

// notifyMove fires the listener for a settled index transition and
// releases the re-entrancy guard afterwards, so transition requests
// made from inside the callback are rejected rather than stacked
func (s *Session) notifyMove(finished bool) {
	if finished {
		s.listener.OnFinished()
	} else {
		s.listener.OnItemChanged()
	}

	s.mu.Lock()
	s.advancing = false
	s.mu.Unlock()
}

// autoAdvance is the deferred advance used by countdown expiry and the
// quiz review delay. Stale callbacks are dropped by the epoch check.
func (s *Session) autoAdvance(epoch uint64) {
	s.mu.Lock()
	if s.closed || s.epoch != epoch || s.status != domain.StatusActive || s.advancing {
		s.mu.Unlock()
		s.logger.Debug("Dropping stale deferred advance", zap.Uint64("epoch", epoch))
		return
	}
	s.advancing = true
	finished := s.advanceLocked()
	s.mu.Unlock()

	s.notifyMove(finished)
}

// scheduleTickLocked arms the next countdown tick
func (s *Session) scheduleTickLocked() {
	epoch := s.epoch
	step := time.Duration(s.stepMs()) * time.Millisecond
	s.cancelTick = s.scheduler.AfterFunc(step, func() {
		s.handleTick(epoch)
	})
}

// handleTick advances the countdown by one step and reacts to expiry
func (s *Session) handleTick(epoch uint64) {
	s.mu.Lock()
	if s.closed || s.epoch != epoch || s.status != domain.StatusActive {
		s.mu.Unlock()
		return
	}

	expiredNow := s.countdown.Tick()
	remaining := s.countdown.RemainingMs()

	var answered *domain.AnswerRecord
	if expiredNow {
		answered = s.expireLocked(epoch)
	} else {
		s.scheduleTickLocked()
	}
	s.mu.Unlock()

	s.listener.OnTick(remaining)
	if answered != nil {
		s.listener.OnAnswered(*answered)
	}
}

// expireLocked applies the expiry transition for the current item.
// Quiz items auto-submit an empty answer immediately and enter the
// review delay; flashcards advance after the grace delay.
func (s *Session) expireLocked(epoch uint64) *domain.AnswerRecord {
	if s.mode == domain.ModeQuiz {
		item := s.items[s.idx]
		if item.Answered {
			return nil
		}
		item.Answered = true
		record := s.recordAnswerLocked("")
		s.scheduleReviewAdvanceLocked()
		return &record
	}

	grace := time.Duration(s.timing.FlashcardGraceMs) * time.Millisecond
	s.cancelDeferred = s.scheduler.AfterFunc(grace, func() {
		s.autoAdvance(epoch)
	})
	return nil
}

// cancelTimersLocked stops every pending tick and deferred transition
func (s *Session) cancelTimersLocked() {
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
	if s.cancelDeferred != nil {
		s.cancelDeferred()
		s.cancelDeferred = nil
	}
}

func (s *Session) limitMs() int {
	if s.mode == domain.ModeQuiz {
		return s.timing.QuizLimitMs
	}
	return s.timing.FlashcardLimitMs
}

func (s *Session) stepMs() int {
	if s.mode == domain.ModeQuiz {
		return s.timing.QuizStepMs
	}
	return s.timing.FlashcardStepMs
}

func distinctAnswers(words []domain.Word, direction domain.Direction) int {
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[w.Answer(direction)] = struct{}{}
	}
	return len(seen)
}

// ID returns the identifier of the current run
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Mode returns the study mode
func (s *Session) Mode() domain.Mode { return s.mode }

// Direction returns the prompt/answer orientation
func (s *Session) Direction() domain.Direction { return s.direction }

// Status returns the lifecycle state
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Len returns the number of items in the pool
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// CurrentIndex returns the position of the current item
func (s *Session) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx
}

// CurrentItem returns a copy of the current item
func (s *Session) CurrentItem() (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return Item{}, false
	}
	return *s.items[s.idx], true
}

// Options returns the choices of the current quiz item
func (s *Session) Options() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.options))
	copy(out, s.options)
	return out
}

// Records returns the answer records appended so far, in item order
func (s *Session) Records() []domain.AnswerRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AnswerRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Score returns the number of correct answers and the number of items
func (s *Session) Score() (correct, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.IsCorrect {
			correct++
		}
	}
	return correct, len(s.items)
}

// RemainingMs returns the remaining countdown budget of the current item
func (s *Session) RemainingMs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countdown.RemainingMs()
}

// Words returns the pool of the current run
func (s *Session) Words() []domain.Word {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Word, len(s.pool))
	copy(out, s.pool)
	return out
}
