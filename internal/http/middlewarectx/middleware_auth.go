// Package middlewarectx содержит HTTP middleware API: проверку JWT,
// ограничение частоты запросов и проверку платёжного статуса.
//
// JWTMiddleware проверяет токен из заголовка Authorization и кладёт в контекст
// uid и имя пользователя для дальнейших обработчиков.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/equigest/internal/http/response"
	"github.com/magabrotheeeer/equigest/internal/lib/jwt"
	"github.com/magabrotheeeer/equigest/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID ключ для uid пользователя в контексте.
	UserUID Key = "user_uid"
	// User ключ для имени пользователя в контексте.
	User Key = "username"
)

// TokenParser разбирает и проверяет JWT.
type TokenParser interface {
	ParseToken(token string) (*jwt.Claims, error)
}

// UserUIDFromContext возвращает uid пользователя, положенный JWTMiddleware.
func UserUIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(UserUID).(string)
	return uid, ok && uid != ""
}

// WithUser кладёт данные пользователя в контекст.
func WithUser(ctx context.Context, uid, username string) context.Context {
	ctx = context.WithValue(ctx, UserUID, uid)
	return context.WithValue(ctx, User, username)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
// При ошибке, в том числе если subject токена не UUID, отвечает 401 Unauthorized.
func JWTMiddleware(tokens TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}

			claims, err := tokens.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			uid, err := uuid.Parse(claims.UserUID())
			if err != nil {
				log.Warn("token subject is not a user uid", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), uid.String(), claims.Username)))
		})
	}
}
