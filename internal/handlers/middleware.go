package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"famledger/internal/models"
	"famledger/internal/repository"
	"famledger/internal/security"

	"github.com/google/uuid"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	users      *repository.UserRepository
	authSecret string
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(users *repository.UserRepository, authSecret string) *Middleware {
	return &Middleware{
		users:      users,
		authSecret: authSecret,
	}
}

// RequireAuth verifies the bearer token and loads the acting user into the
// request context. Tokens are issued by the external auth service; the
// subject claim is the user id and the email claim must match our row.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			respondJSON(w, http.StatusUnauthorized, errorBody("missing bearer token"))
			return
		}

		claims, err := security.ParseUserToken(m.authSecret, token)
		if err != nil {
			respondJSON(w, http.StatusUnauthorized, errorBody("invalid token"))
			return
		}

		user, err := m.users.GetByID(claims.UserID)
		if err != nil {
			log.Printf("Error loading user %d: %v", claims.UserID, err)
			respondJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
			return
		}
		if user == nil || (claims.Email != "" && !strings.EqualFold(user.Email, claims.Email)) {
			respondJSON(w, http.StatusUnauthorized, errorBody("unknown user"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// Logging middleware logs HTTP requests with a per-request id
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()[:8]

		next.ServeHTTP(w, r)

		log.Printf("[%s] %s %s %s", requestID, r.Method, r.URL.Path, time.Since(start))
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
