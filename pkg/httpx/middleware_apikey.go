package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/cyanix-ai/cyanix/pkg/apierr"
	"github.com/cyanix-ai/cyanix/pkg/slogx"
)

// APIKeyHeader is the dedicated header API keys travel in.
const APIKeyHeader = "X-API-Key"

// KeyAuthenticator resolves an opaque API key secret to the identity that
// owns it. Implementations return a typed *apierr.Error for expected
// failures (unknown key, revoked key) so the guard can write it verbatim.
type KeyAuthenticator interface {
	AuthenticateKey(ctx context.Context, secret string) (Caller, error)
}

// APIKeyMiddleware guards endpoints with a long-lived API key carried in the
// X-API-Key header. Same short-circuit contract as AuthnMiddleware: the
// downstream handler runs only with a resolved caller in context.
func APIKeyMiddleware(auth KeyAuthenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			secret := r.Header.Get(APIKeyHeader)
			if secret == "" {
				apierr.ErrMissingAPIKey.WriteError(w)
				return
			}

			caller, err := auth.AuthenticateKey(ctx, secret)
			if err != nil {
				var apiErr *apierr.Error
				if errors.As(err, &apiErr) {
					apiErr.WriteError(w)
					return
				}
				log.Error("api key authentication failed", "err", err)
				apierr.ErrServerError.WriteError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithCaller(ctx, caller)))
		})
	}
}
