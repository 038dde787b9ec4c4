package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
)

// UserIDHeader заголовок с ID участника, проставляемый шлюзом аутентификации
const UserIDHeader = "X-User-ID"

const (
	msgMissingUserID = "отсутствует или некорректен заголовок X-User-ID"
	msgInvalidSecret = "неверный секрет"
)

type userIDKey struct{}

// WithUserID кладёт ID участника в контекст
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserID достаёт ID участника из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}

// Auth требует заголовок X-User-ID с положительным числом
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// CronAuth проверяет "Authorization: Bearer <secret>". Пустой секрет отключает проверку
func CronAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" {
				got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
				if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
					handlers.RespondUnauthorized(w, msgInvalidSecret)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
