package middleware

import (
	"context"
	"net/http"
	"strconv"
)

// userIDKey ключ контекста для ID аутентифицированного пользователя
type userIDKey struct{}

// userIDHeader заголовок с ID пользователя, проставляется API-шлюзом
// после проверки токена
const userIDHeader = "X-User-ID"

// Auth извлекает ID пользователя из заголовка и кладет его в контекст
// Запросы без корректного заголовка проходят дальше без userID в контексте;
// решение об отказе принимает обработчик
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw := r.Header.Get(userIDHeader); raw != "" {
			if userID, err := strconv.ParseInt(raw, 10, 64); err == nil && userID > 0 {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID возвращает ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey{}).(int64)
	return userID, ok
}
