package handler

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/fujioka8700/Eitan/internal/domain"
	"github.com/fujioka8700/Eitan/internal/progress"
	"github.com/fujioka8700/Eitan/internal/session"
)

// HistoryViewer supplies the learning history for the results screen
type HistoryViewer interface {
	Histories(userID int64) ([]domain.LearningRecord, error)
}

// Handler manages all bot interactions
type Handler struct {
	bot       *tele.Bot
	loader    session.PoolLoader
	histories HistoryViewer
	store     progress.BlobStore
	sink      progress.HistorySink
	timing    session.Timing
	logger    *zap.Logger

	// Per-chat study state (in-memory state machine)
	mu       sync.Mutex
	states   map[int64]*chatState
	trackers map[int64]*progress.Tracker
}

// chatState holds one chat's setup choices and, once started, its
// running session. One engine instance per chat, torn down on menu
// return.
type chatState struct {
	mode      domain.Mode
	direction domain.Direction
	level     string
	sess      *session.Session
	card      tele.Editable
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	loader session.PoolLoader,
	histories HistoryViewer,
	store progress.BlobStore,
	sink progress.HistorySink,
	timing session.Timing,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:       bot,
		loader:    loader,
		histories: histories,
		store:     store,
		sink:      sink,
		timing:    timing,
		logger:    logger,
		states:    make(map[int64]*chatState),
		trackers:  make(map[int64]*progress.Tracker),
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnFlashcards, h.handleFlashcards)
	h.bot.Handle(&btnQuiz, h.handleQuiz)
	h.bot.Handle(&btnHistory, h.handleHistory)
	h.bot.Handle(&btnMainMenu, h.handleMainMenu)
	h.bot.Handle(&btnFlip, h.handleFlip)
	h.bot.Handle(&btnPrev, h.handlePrev)
	h.bot.Handle(&btnNext, h.handleNext)
	h.bot.Handle(&btnLearned, h.handleLearned)
	h.bot.Handle(&btnRestart, h.handleRestart)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// state returns the chat's study state, creating it when missing
func (h *Handler) state(userID int64) *chatState {
	h.mu.Lock()
	defer h.mu.Unlock()

	st, exists := h.states[userID]
	if !exists {
		st = &chatState{}
		h.states[userID] = st
	}
	return st
}

// dropSession closes the chat's running session, if any
func (h *Handler) dropSession(userID int64) {
	h.mu.Lock()
	st, exists := h.states[userID]
	if exists && st.sess != nil {
		st.sess.Close()
	}
	delete(h.states, userID)
	h.mu.Unlock()
}

// trackerFor returns the chat's progress tracker, creating it lazily.
// The tracker survives sessions: learned marks carry across runs.
func (h *Handler) trackerFor(userID int64) (*progress.Tracker, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if tracker, exists := h.trackers[userID]; exists {
		return tracker, nil
	}
	tracker, err := progress.NewTracker(h.store, h.sink, userID, h.logger)
	if err != nil {
		return nil, err
	}
	h.trackers[userID] = tracker
	return tracker, nil
}

// Shutdown closes every running session and waits for in-flight
// history writes to settle
func (h *Handler) Shutdown() {
	h.mu.Lock()
	for _, st := range h.states {
		if st.sess != nil {
			st.sess.Close()
		}
	}
	trackers := make([]*progress.Tracker, 0, len(h.trackers))
	for _, tracker := range h.trackers {
		trackers = append(trackers, tracker)
	}
	h.mu.Unlock()

	for _, tracker := range trackers {
		tracker.Wait()
	}
}

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User opened main menu",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	h.dropSession(userID)

	if c.Callback() != nil {
		return h.editOrSend(c, menuText, mainMenuMarkup())
	}
	return c.Send(menuText, mainMenuMarkup())
}

func (h *Handler) handleMainMenu(c tele.Context) error {
	return h.handleStart(c)
}

// handleEditError handles errors from c.Edit(). If the message is not
// modified it was already updated by a concurrent callback, so just
// acknowledge; otherwise report the error so the caller can send a new
// message instead.
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "message is not modified") {
		return c.Respond()
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
	)
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// editOrSend edits the callback's message, falling back to a fresh one
func (h *Handler) editOrSend(c tele.Context, text string, markup *tele.ReplyMarkup) error {
	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil
		}
		return c.Send(text, markup)
	}
	return c.Respond()
}

const menuText = "🏠 メインメニュー\n\n学習方法を選んでください:"

// Inline keyboard buttons
var (
	btnFlashcards = tele.Btn{
		Unique: "mode_flashcard",
		Text:   "📖 フラッシュカード",
	}
	btnQuiz = tele.Btn{
		Unique: "mode_quiz",
		Text:   "✏️ 4択クイズ",
	}
	btnHistory = tele.Btn{
		Unique: "history",
		Text:   "📊 学習履歴",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 メニューに戻る",
	}
	btnFlip = tele.Btn{
		Unique: "flip",
		Text:   "🔄 めくる",
	}
	btnPrev = tele.Btn{
		Unique: "prev",
		Text:   "⬅️ 前へ",
	}
	btnNext = tele.Btn{
		Unique: "next",
		Text:   "➡️ 次へ",
	}
	btnLearned = tele.Btn{
		Unique: "learned",
		Text:   "✅ 覚えた",
	}
	btnRestart = tele.Btn{
		Unique: "restart",
		Text:   "🔁 もう一度",
	}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnFlashcards),
		menu.Row(btnQuiz),
		menu.Row(btnHistory),
	)
	return menu
}
