package handler

import (
	"errors"
	"strconv"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/fujioka8700/Eitan/internal/domain"
	"github.com/fujioka8700/Eitan/internal/service"
	"github.com/fujioka8700/Eitan/internal/session"
)

// handleFlashcards begins flashcard setup
func (h *Handler) handleFlashcards(c tele.Context) error {
	return h.askDirection(c, domain.ModeFlashcard)
}

// handleQuiz begins quiz setup
func (h *Handler) handleQuiz(c tele.Context) error {
	return h.askDirection(c, domain.ModeQuiz)
}

func (h *Handler) askDirection(c tele.Context, mode domain.Mode) error {
	userID := c.Sender().ID
	h.dropSession(userID)

	st := h.state(userID)
	h.mu.Lock()
	st.mode = mode
	h.mu.Unlock()

	return h.editOrSend(c, "🔤 出題方向を選んでください:", directionMarkup())
}

func (h *Handler) handleDirection(c tele.Context, direction domain.Direction) error {
	userID := c.Sender().ID
	st := h.state(userID)

	h.mu.Lock()
	st.direction = direction
	h.mu.Unlock()

	return h.editOrSend(c, "🎓 レベルを選んでください:", levelMarkup())
}

func (h *Handler) handleLevel(c tele.Context, level string) error {
	if !domain.ValidLevel(level) {
		return c.Respond(&tele.CallbackResponse{Text: "不明なレベルです"})
	}

	userID := c.Sender().ID
	st := h.state(userID)

	h.mu.Lock()
	st.level = level
	h.mu.Unlock()

	return h.editOrSend(c, "🔢 単語数を選んでください:", countMarkup())
}

// handleCount completes setup and starts the session
func (h *Handler) handleCount(c tele.Context, count int) error {
	userID := c.Sender().ID
	st := h.state(userID)

	h.mu.Lock()
	mode := st.mode
	direction := st.direction
	level := st.level
	h.mu.Unlock()

	if mode == "" {
		return h.handleStart(c)
	}

	tracker, err := h.trackerFor(userID)
	if err != nil {
		h.logger.Error("Failed to open progress tracker",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return c.Respond(&tele.CallbackResponse{Text: "エラーが発生しました", ShowAlert: true})
	}

	sess := session.New(mode, direction, session.Deps{
		Loader:   h.loader,
		Progress: tracker,
		Listener: &cardRenderer{handler: h, userID: userID},
		Logger:   h.logger,
		Timing:   h.timing,
	})

	if err := sess.Start(level, count); err != nil {
		sess.Close()
		h.logger.Warn("Failed to start study session",
			zap.Int64("user_id", userID),
			zap.String("mode", string(mode)),
			zap.String("level", level),
			zap.Int("count", count),
			zap.Error(err),
		)
		switch {
		case errors.Is(err, service.ErrNoWords):
			return c.Respond(&tele.CallbackResponse{Text: "この条件に合う単語がありません", ShowAlert: true})
		case errors.Is(err, session.ErrPoolTooSmall):
			return c.Respond(&tele.CallbackResponse{Text: "クイズには単語が足りません", ShowAlert: true})
		default:
			return c.Respond(&tele.CallbackResponse{Text: "エラーが発生しました", ShowAlert: true})
		}
	}

	h.mu.Lock()
	st.sess = sess
	h.mu.Unlock()

	h.logger.Info("Study session started",
		zap.Int64("user_id", userID),
		zap.String("session_id", sess.ID().String()),
		zap.String("mode", string(mode)),
		zap.String("level", level),
		zap.Int("count", sess.Len()),
	)

	text, markup := h.renderCard(userID, sess)
	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, userID); handleErr != nil {
			msg, sendErr := h.bot.Send(c.Chat(), text, markup)
			if sendErr != nil {
				return sendErr
			}
			h.setCard(userID, msg)
			return nil
		}
	} else {
		if cbErr := c.Respond(); cbErr != nil {
			h.logger.Warn("Failed to acknowledge callback", zap.Error(cbErr))
		}
	}
	h.setCard(userID, c.Message())
	return nil
}

func (h *Handler) setCard(userID int64, card tele.Editable) {
	h.mu.Lock()
	st, exists := h.states[userID]
	if exists {
		st.card = card
	}
	h.mu.Unlock()
}

// currentSession returns the chat's running session and card message
func (h *Handler) currentSession(userID int64) (*session.Session, tele.Editable) {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, exists := h.states[userID]
	if !exists {
		return nil, nil
	}
	return st.sess, st.card
}

// handleFlip turns the current flashcard over
func (h *Handler) handleFlip(c tele.Context) error {
	userID := c.Sender().ID
	sess, _ := h.currentSession(userID)
	if sess == nil {
		return h.handleStart(c)
	}

	if err := sess.Flip(); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "今はめくれません"})
	}

	text, markup := h.renderCard(userID, sess)
	return h.editOrSend(c, text, markup)
}

// handleNext advances to the next item
func (h *Handler) handleNext(c tele.Context) error {
	userID := c.Sender().ID
	sess, _ := h.currentSession(userID)
	if sess == nil {
		return h.handleStart(c)
	}

	if err := sess.Advance(); err != nil {
		if errors.Is(err, session.ErrNotAnswered) {
			return c.Respond(&tele.CallbackResponse{Text: "先に答えを選んでください"})
		}
		return c.Respond()
	}
	// The listener redraws the card
	return c.Respond()
}

// handlePrev moves back one flashcard
func (h *Handler) handlePrev(c tele.Context) error {
	userID := c.Sender().ID
	sess, _ := h.currentSession(userID)
	if sess == nil {
		return h.handleStart(c)
	}

	if err := sess.Retreat(); err != nil {
		return c.Respond()
	}
	return c.Respond()
}

// handleLearned toggles the learned flag of the current card
func (h *Handler) handleLearned(c tele.Context) error {
	userID := c.Sender().ID
	sess, _ := h.currentSession(userID)
	if sess == nil {
		return h.handleStart(c)
	}

	item, ok := sess.CurrentItem()
	if !ok {
		return c.Respond()
	}

	learned, err := sess.MarkLearned(item.Word.ID)
	if err != nil {
		h.logger.Warn("Failed to toggle learned flag",
			zap.Int64("user_id", userID),
			zap.Int("word_id", item.Word.ID),
			zap.Error(err),
		)
		return c.Respond(&tele.CallbackResponse{Text: "エラーが発生しました"})
	}

	text, markup := h.renderCard(userID, sess)
	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, userID); handleErr != nil {
			return c.Send(text, markup)
		}
		return nil
	}

	note := "☑️ まだ覚えていない"
	if learned {
		note = "✅ 覚えた！"
	}
	return c.Respond(&tele.CallbackResponse{Text: note})
}

// handleOption records a quiz answer picked by button index
func (h *Handler) handleOption(c tele.Context, data string) error {
	userID := c.Sender().ID
	sess, _ := h.currentSession(userID)
	if sess == nil {
		return h.handleStart(c)
	}

	idx, err := strconv.Atoi(data)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "不正な選択肢です"})
	}
	options := sess.Options()
	if idx < 0 || idx >= len(options) {
		return c.Respond(&tele.CallbackResponse{Text: "不正な選択肢です"})
	}

	if err := sess.SelectAnswer(options[idx]); err != nil {
		switch {
		case errors.Is(err, session.ErrAlreadyAnswered):
			return c.Respond(&tele.CallbackResponse{Text: "回答済みです"})
		case errors.Is(err, session.ErrCountdownExpired):
			return c.Respond(&tele.CallbackResponse{Text: "時間切れです"})
		default:
			return c.Respond()
		}
	}
	// The listener redraws with the review
	return c.Respond()
}

// handleRestart reruns the finished session over the same pool
func (h *Handler) handleRestart(c tele.Context) error {
	userID := c.Sender().ID
	sess, _ := h.currentSession(userID)
	if sess == nil {
		return h.handleStart(c)
	}

	if err := sess.Restart(); err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "まだ終了していません"})
	}
	return c.Respond()
}

// renderCard builds the card text and controls for the session's
// current state
func (h *Handler) renderCard(userID int64, sess *session.Session) (string, *tele.ReplyMarkup) {
	if sess.Status() == domain.StatusFinished {
		learnedCount := 0
		if tracker, err := h.trackerFor(userID); err == nil {
			for _, word := range sess.Words() {
				if tracker.IsLearned(word.ID) {
					learnedCount++
				}
			}
		}
		return resultsText(sess, learnedCount), resultsMarkup()
	}

	item, ok := sess.CurrentItem()
	if !ok {
		return menuText, mainMenuMarkup()
	}

	idx := sess.CurrentIndex()
	total := sess.Len()
	remaining := sess.RemainingMs()

	if sess.Mode() == domain.ModeQuiz {
		return quizText(item, idx, total, remaining, sess.Direction()),
			quizMarkup(sess.Options(), item.Answered)
	}

	learned := false
	if tracker, err := h.trackerFor(userID); err == nil {
		learned = tracker.IsLearned(item.Word.ID)
	}
	return flashcardText(item, idx, total, remaining, sess.Direction(), learned),
		flashcardMarkup()
}

// cardRenderer pushes engine events into the chat's card message.
// Callbacks arrive outside the engine's lock, after the transition has
// been applied.
type cardRenderer struct {
	handler *Handler
	userID  int64
}

// OnTick redraws the countdown. Quiz ticks arrive every 100ms; editing
// a Telegram message that often trips flood limits, so only whole
// seconds are drawn.
func (r *cardRenderer) OnTick(remainingMs int) {
	if remainingMs%1000 != 0 {
		return
	}
	r.handler.redraw(r.userID)
}

func (r *cardRenderer) OnItemChanged() {
	r.handler.redraw(r.userID)
}

func (r *cardRenderer) OnAnswered(domain.AnswerRecord) {
	r.handler.redraw(r.userID)
}

func (r *cardRenderer) OnFinished() {
	r.handler.redraw(r.userID)
}

// redraw re-renders the chat's card message in place
func (h *Handler) redraw(userID int64) {
	sess, card := h.currentSession(userID)
	if sess == nil || card == nil {
		return
	}

	text, markup := h.renderCard(userID, sess)
	if _, err := h.bot.Edit(card, text, markup); err != nil {
		if !isNotModified(err) {
			h.logger.Debug("Failed to redraw card",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}
}
