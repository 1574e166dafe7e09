package middleware

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/fujioka8700/Eitan/internal/service"
)

// EnsureUser guarantees the sender has a user row before any handler
// runs, so history writes never race user creation
func EnsureUser(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return next(c)
			}

			if err := authService.EnsureUserExists(sender.ID); err != nil {
				logger.Error("Failed to ensure user exists",
					zap.Int64("user_id", sender.ID),
					zap.Error(err),
				)
				return c.Send("エラーが発生しました。しばらくしてからお試しください。")
			}

			return next(c)
		}
	}
}
