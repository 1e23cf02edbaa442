// Package middleware содержит HTTP middleware для обработки запросов.
// Включает аутентификацию, логирование, сжатие ответов и проверку
// доверенных подсетей.
package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/byuly/Urler/internal/config"
	"github.com/byuly/Urler/internal/service"
	"go.uber.org/zap"
)

// UserIDKey для хранения UserID в контексте
type UserIDKey struct{}

// cookieName задаёт имя куки с JWT
const cookieName = "jwt_token"

// AuthMiddleware проверяет куку с JWT и кладёт UserID в контекст.
// Посетителю без действительного токена выдаётся новый идентификатор
// и подписанная кука: внешний коллаборатор аутентификации смоделирован
// выдачей токенов на границе.
func AuthMiddleware(svc *service.Service, cfg *config.Config, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string

			// Проверяем куку с JWT
			cookie, err := r.Cookie(cookieName)
			if err == nil && cookie != nil {
				userID, err = svc.ParseJWT(cookie.Value)
				if err != nil {
					logger.Warn("Invalid JWT token", zap.Error(err))
					userID = ""
				}
			}

			// Выдаём новый идентификатор и куку
			if userID == "" {
				userID, err = svc.GenerateUserID()
				if err != nil {
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				token, err := svc.GenerateJWT(userID)
				if err != nil {
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    token,
					Expires:  time.Now().Add(cfg.CookieTTL),
					Path:     "/",
					HttpOnly: true,
				})
			}

			// Добавляем UserID в контекст
			ctx := context.WithValue(r.Context(), UserIDKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID извлекает UserID из контекста
func GetUserID(r *http.Request) (string, bool) {
	userID, ok := r.Context().Value(UserIDKey{}).(string)
	return userID, ok
}
