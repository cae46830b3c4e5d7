package auth

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/exercise-platform/internal/auth/jwt"
	httperrors "github.com/gokatarajesh/exercise-platform/pkg/http/errors"
)

// TokenHeader carries the API token.
const TokenHeader = "auth-token"

const (
	MsgUnauthorized = "Acceso no autorizado."
	MsgInvalidToken = "Token inválido."
)

// TokenValidator checks a raw token (implemented by jwt.Manager).
type TokenValidator interface {
	Validate(token string) (*jwt.Claims, error)
}

type claimsKey struct{}

// Middleware rejects requests without a valid auth-token header and stores the
// token claims in the request context.
func Middleware(tokens TokenValidator, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(TokenHeader)
			if token == "" {
				httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, MsgUnauthorized)
				return
			}

			claims, err := tokens.Validate(token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("token validation failed")
				httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidToken, MsgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims stored by Middleware, if any.
func ClaimsFromContext(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*jwt.Claims)
	return claims, ok && claims != nil
}
