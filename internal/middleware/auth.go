package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aidar/orgteams/internal/domain"
	"github.com/aidar/orgteams/internal/service"
)

// ContextKey это кастомный тип для ключей контекста
type ContextKey string

// IdentityKey ключ контекста для аутентифицированного вызывающего
const IdentityKey ContextKey = "identity"

// AuthMiddleware создает middleware аутентификации.
// Поддерживаются пользовательские сессии (Bearer JWT) и ключи проектов (Basic, ключ в имени пользователя).
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			var (
				identity *domain.Identity
				err      error
			)

			scheme, credentials, _ := strings.Cut(authHeader, " ")
			switch {
			case strings.EqualFold(scheme, "Bearer") && credentials != "":
				identity, err = authService.IdentityFromToken(r.Context(), credentials)
			case strings.EqualFold(scheme, "Basic"):
				key, _, ok := r.BasicAuth()
				if !ok {
					unauthorized(w, "invalid authorization header format")
					return
				}
				identity, err = authService.IdentityFromAPIKey(r.Context(), key)
			default:
				unauthorized(w, "invalid authorization header format")
				return
			}

			if err != nil {
				if errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrUnauthorized) {
					unauthorized(w, "invalid or expired credentials")
					return
				}
				slog.ErrorContext(r.Context(), "Failed to authenticate request",
					"error", err,
					"request_id", chimiddleware.GetReqID(r.Context()),
				)
				http.Error(w, `{"error":{"code":"INTERNAL_ERROR","message":"internal server error"}}`, http.StatusInternalServerError)
				return
			}

			// Добавляем вызывающего в контекст
			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"` + message + `"}}`))
}

// WithIdentity возвращает контекст с аутентифицированным вызывающим
func WithIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetIdentityFromContext извлекает вызывающего из контекста
func GetIdentityFromContext(ctx context.Context) *domain.Identity {
	identity, ok := ctx.Value(IdentityKey).(*domain.Identity)
	if !ok {
		return nil
	}
	return identity
}
