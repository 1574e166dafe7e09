package handler

import (
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/fujioka8700/Eitan/internal/domain"
)

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// isNotModified reports whether an edit failed only because the message
// already shows the same content
func isNotModified(err error) bool {
	return err != nil && strings.Contains(err.Error(), "message is not modified")
}

// handleCallback handles callback queries that carry dynamic data
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	data := cleanCallbackData(callback.Data)
	h.logger.Debug("Processing callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	// Handle static buttons whose Unique did not come through
	switch callback.Unique {
	case btnFlashcards.Unique:
		return h.handleFlashcards(c)
	case btnQuiz.Unique:
		return h.handleQuiz(c)
	case btnHistory.Unique:
		return h.handleHistory(c)
	case btnMainMenu.Unique:
		return h.handleStart(c)
	case btnFlip.Unique:
		return h.handleFlip(c)
	case btnPrev.Unique:
		return h.handlePrev(c)
	case btnNext.Unique:
		return h.handleNext(c)
	case btnLearned.Unique:
		return h.handleLearned(c)
	case btnRestart.Unique:
		return h.handleRestart(c)
	}

	// Dynamic buttons carry their payload in the unique; fall back to
	// the data field for clients that strip it
	key := callback.Unique
	if key == "" {
		key = data
	}

	switch {
	case key == "dir_enja":
		return h.handleDirection(c, domain.DirectionEnToJa)
	case key == "dir_jaen":
		return h.handleDirection(c, domain.DirectionJaToEn)
	case strings.HasPrefix(key, "level_"):
		return h.handleLevel(c, strings.TrimPrefix(key, "level_"))
	case strings.HasPrefix(key, "count_"):
		count, err := strconv.Atoi(strings.TrimPrefix(key, "count_"))
		if err != nil {
			return c.Respond(&tele.CallbackResponse{Text: "不正な単語数です"})
		}
		return h.handleCount(c, count)
	case strings.HasPrefix(key, "opt_"):
		return h.handleOption(c, strings.TrimPrefix(key, "opt_"))
	}

	h.logger.Warn("Unhandled callback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}
