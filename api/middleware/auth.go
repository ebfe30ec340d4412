package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/meditrack-ph/meditrack-backend/api/responses"
	pkgauth "github.com/meditrack-ph/meditrack-backend/pkg/auth"
	"github.com/meditrack-ph/meditrack-backend/pkg/config"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
)

// GuestSessionHeader lets an anonymous client keep one cart across requests.
// The storefront issues the id and replays it until the user signs in.
const GuestSessionHeader = "X-Guest-Session"

// Auth validates a bearer token and seeds the request context with the
// claims. Requests without credentials are rejected.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := claimsFromRequest(cfg, r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := seedClaims(r.Context(), logg, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CartSession resolves the caller's cart identity. A valid bearer token
// binds the request to the user; otherwise the guest session header is
// accepted, so anonymous carts keep working. A request with neither is
// rejected since there is no cart to operate on.
func CartSession(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if bearerToken(r) != "" {
				claims, err := claimsFromRequest(cfg, r)
				if err != nil {
					responses.WriteError(ctx, logg, w, err)
					return
				}
				ctx = seedClaims(ctx, logg, claims)
			}

			if guest := strings.TrimSpace(r.Header.Get(GuestSessionHeader)); guest != "" {
				ctx = WithGuestSession(ctx, guest)
			}

			if UserIDFromContext(ctx) == "" && GuestSessionFromContext(ctx) == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing cart session"))
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

func claimsFromRequest(cfg config.JWTConfig, r *http.Request) (*pkgauth.AccessTokenClaims, error) {
	token := bearerToken(r)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	claims, err := pkgauth.ParseAccessToken(cfg, token)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	return claims, nil
}

func seedClaims(ctx context.Context, logg *logger.Logger, claims *pkgauth.AccessTokenClaims) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, claims.UserID.String())
	ctx = context.WithValue(ctx, ctxUsername, claims.Username)
	if logg != nil {
		ctx = logg.WithUserID(ctx, claims.UserID.String())
	}
	return ctx
}
