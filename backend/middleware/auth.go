package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const claimsKey contextKey = "claims"

// Auth validates bearer tokens issued by utils.TokenManager.
type Auth struct {
	tokens *utils.TokenManager
	// required rejects requests that carry no token.
	required bool
}

func NewAuth(tokens *utils.TokenManager, required bool) *Auth {
	return &Auth{tokens: tokens, required: required}
}

// bearerToken returns the token of a Bearer Authorization header. Other
// schemes count as no token.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

// Authenticate stores the claims of a valid token in the request context. An
// invalid or expired token is always rejected; a missing one only when the
// middleware was built with required set.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return a.handler(next, a.required)
}

// RequireUser is Authenticate with a token always required.
func (a *Auth) RequireUser(next http.Handler) http.Handler {
	return a.handler(next, true)
}

func (a *Auth) handler(next http.Handler, required bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, present := bearerToken(r)
		if !present {
			if required {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				utils.WriteError(w, http.StatusUnauthorized, "Not authorized to access this route")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.tokens.ValidateToken(token)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
			message := "Invalid token"
			if errors.Is(err, models.ErrTokenExpired) {
				message = "Token expired"
			}
			utils.WriteError(w, http.StatusUnauthorized, message)
			return
		}

		logging.Logger.Debugf("Event ID: JWT_AUTH_SUCCESS, Description: Token validated for user %s on %s %s", claims.UserID, r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func ClaimsFrom(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*utils.Claims)
	return claims, ok
}

// UserID returns the authenticated user's id, or nil for anonymous requests.
func UserID(ctx context.Context) *primitive.ObjectID {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return nil
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil
	}
	return &id
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}
