package handler

import (
	"errors"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/fujioka8700/Eitan/internal/service"
)

// handleHistory shows the user's learning history
func (h *Handler) handleHistory(c tele.Context) error {
	userID := c.Sender().ID

	records, err := h.histories.Histories(userID)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return c.Respond(&tele.CallbackResponse{
				Text:      "学習履歴はログイン後に利用できます",
				ShowAlert: true,
			})
		}
		h.logger.Error("Failed to load learning history",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return c.Respond(&tele.CallbackResponse{Text: "エラーが発生しました"})
	}

	if len(records) == 0 {
		return c.Respond(&tele.CallbackResponse{
			Text:      "まだ学習履歴がありません",
			ShowAlert: true,
		})
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnMainMenu))

	return h.editOrSend(c, historyText(records), markup)
}
