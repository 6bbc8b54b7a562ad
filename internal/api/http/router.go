package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cyanix-ai/cyanix/internal/api/service"
	"github.com/cyanix-ai/cyanix/pkg/apierr"
	"github.com/cyanix-ai/cyanix/pkg/httpx"
	"github.com/cyanix-ai/cyanix/pkg/jwtx"
	"github.com/cyanix-ai/cyanix/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier    jwtx.Verifier
	environment string
	dev         bool
	logger      *slog.Logger

	AuthService   *service.AuthService
	APIKeyService *service.APIKeyService
	ChatService   *service.ChatService
}

func NewRouter(
	verifier jwtx.Verifier,
	environment string,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:         http.NewServeMux(),
		verifier:    verifier,
		environment: environment,
		dev:         environment == "development",
		logger:      logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerKeys()
	r.registerChat()
	r.registerSystem()

	// Anything unrouted is a JSON 404, not the ServeMux default page.
	r.Mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		apierr.ErrNotFound.WriteError(w)
	})
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Cyanix API
//	@version					0.1.0
//	@description				Multi-tenant chat session backend. Account management uses
//	@description				short-lived bearer session tokens; chat endpoints use
//	@description				long-lived API keys carried in the X-API-Key header.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT session token. Format: "Bearer {token}".
//
//	@securityDefinitions.apikey	APIKeyAuth
//	@in							header
//	@name						X-API-Key
//	@description				Long-lived API key, including its "sk_" prefix.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	authHandler := &AuthHandler{AuthService: r.AuthService, Dev: r.dev}
	profileHandler := &ProfileHandler{AuthService: r.AuthService, Dev: r.dev}

	r.Mux.HandleFunc("POST /api/auth/register", authHandler.HandleRegister)
	r.Mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)

	tokenGuard := httpx.AuthnMiddleware(r.verifier)
	r.Mux.Handle("GET /api/auth/profile",
		httpx.Chain(http.HandlerFunc(profileHandler.HandleGetProfile), tokenGuard))
	r.Mux.Handle("PUT /api/auth/profile",
		httpx.Chain(http.HandlerFunc(profileHandler.HandleUpdateProfile), tokenGuard))
	r.Mux.Handle("DELETE /api/auth/profile",
		httpx.Chain(http.HandlerFunc(profileHandler.HandleDeactivate), tokenGuard))
}

func (r *Router) registerKeys() {
	keysHandler := &KeysHandler{APIKeyService: r.APIKeyService, Dev: r.dev}

	tokenGuard := httpx.AuthnMiddleware(r.verifier)
	r.Mux.Handle("POST /api/keys/generate",
		httpx.Chain(http.HandlerFunc(keysHandler.HandleGenerate), tokenGuard))
	r.Mux.Handle("GET /api/keys",
		httpx.Chain(http.HandlerFunc(keysHandler.HandleList), tokenGuard))
	r.Mux.Handle("DELETE /api/keys/{apiKey}",
		httpx.Chain(http.HandlerFunc(keysHandler.HandleRevoke), tokenGuard))
}

func (r *Router) registerChat() {
	chatHandler := &ChatHandler{ChatService: r.ChatService, Dev: r.dev}

	keyGuard := httpx.APIKeyMiddleware(&keyAuthenticator{keys: r.APIKeyService})
	r.Mux.Handle("POST /api/chat/sessions",
		httpx.Chain(http.HandlerFunc(chatHandler.HandleCreateSession), keyGuard))
	r.Mux.Handle("GET /api/chat/sessions",
		httpx.Chain(http.HandlerFunc(chatHandler.HandleListSessions), keyGuard))
	r.Mux.Handle("GET /api/chat/sessions/{id}",
		httpx.Chain(http.HandlerFunc(chatHandler.HandleGetSession), keyGuard))
	r.Mux.Handle("DELETE /api/chat/sessions/{id}",
		httpx.Chain(http.HandlerFunc(chatHandler.HandleDeleteSession), keyGuard))
	r.Mux.Handle("POST /api/chat/sessions/{id}/messages",
		httpx.Chain(http.HandlerFunc(chatHandler.HandleAppendMessage), keyGuard))
	r.Mux.Handle("DELETE /api/chat/sessions/{id}/messages",
		httpx.Chain(http.HandlerFunc(chatHandler.HandleClearMessages), keyGuard))
}

func (r *Router) registerSystem() {
	healthHandler := &HealthHandler{Environment: r.environment}

	r.Mux.HandleFunc("GET /health", healthHandler.HandleHealth)
}

// keyAuthenticator adapts APIKeyService to the httpx key guard, translating
// service sentinels into the boundary errors the guard writes verbatim.
type keyAuthenticator struct {
	keys *service.APIKeyService
}

func (a *keyAuthenticator) AuthenticateKey(
	ctx context.Context,
	secret string,
) (httpx.Caller, error) {
	user, err := a.keys.Authenticate(ctx, secret)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAPIKey) {
			return httpx.Caller{}, apierr.ErrInvalidAPIKey
		}
		return httpx.Caller{}, err
	}
	return httpx.Caller{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}
