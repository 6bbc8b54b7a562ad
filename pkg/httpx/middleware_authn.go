package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cyanix-ai/cyanix/pkg/apierr"
	"github.com/cyanix-ai/cyanix/pkg/jwtx"
	"github.com/cyanix-ai/cyanix/pkg/slogx"
)

// AuthnMiddleware guards endpoints with a bearer session token. On success
// the resolved caller identity is attached to the request context; on any
// failure the request is rejected with 401 and the downstream handler is
// never invoked.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				apierr.ErrInvalidToken.WriteError(w)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				if errors.Is(err, jwtx.ErrExpired) {
					apierr.ErrExpiredToken.WriteError(w)
					return
				}
				log.Warn("session token verify failed", "err", err)
				apierr.ErrInvalidToken.WriteError(w)
				return
			}

			caller := Caller{
				ID:       claims.Subject,
				Username: claims.Username,
				Email:    claims.Email,
			}
			next.ServeHTTP(w, r.WithContext(ContextWithCaller(ctx, caller)))
		})
	}
}
