package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cyanix-ai/cyanix/internal/api/service"
	"github.com/cyanix-ai/cyanix/internal/api/store/drivers/sqlite"
	"github.com/cyanix-ai/cyanix/pkg/cryptox"
	"github.com/cyanix-ai/cyanix/pkg/httpx"
	"github.com/cyanix-ai/cyanix/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cyanix-http-test")
	if err != nil {
		os.Exit(1)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256([]byte("test-secret"))
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256([]byte("test-secret"), "test-issuer")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter(verifier, "test", logger)
	router.AuthService = &service.AuthService{
		Store:    st,
		Signer:   signer,
		Issuer:   "test-issuer",
		TokenTTL: time.Hour,
	}
	router.APIKeyService = &service.APIKeyService{Store: st}
	router.ChatService = &service.ChatService{Store: st}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// doJSON issues a request with an optional JSON body and decodes the JSON
// response into out (when out is non-nil).
func doJSON(
	t *testing.T,
	srv *httptest.Server,
	method, path string,
	headers map[string]string,
	body any,
	out any,
) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func apiKey(secret string) map[string]string {
	return map[string]string{httpx.APIKeyHeader: secret}
}

type errorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// TestFullLifecycle drives the API end to end the way a real client would:
// register, login, mint a key, create a session, chat, and get locked out of
// someone else's data.
func TestFullLifecycle(t *testing.T) {
	srv := newTestServer(t)

	// Register alice.
	var reg authResponse
	resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", nil, map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "password123",
	}, &reg)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, reg.Token)
	require.Equal(t, "alice", reg.User.Username)

	// Login resolves to the same account.
	var login authResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	}, &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, reg.User.UserID, login.User.UserID)

	// Mint an API key with the session token.
	var key generateKeyResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/keys/generate", bearer(login.Token),
		map[string]string{"name": "cli"}, &key)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, strings.HasPrefix(key.APIKey, "sk_"))

	// Listing shows the key masked, never in full.
	var keys []apiKeyItem
	resp = doJSON(t, srv, http.MethodGet, "/api/keys", bearer(login.Token), nil, &keys)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, keys, 1)
	require.Equal(t, key.APIKey[:10]+"***", keys[0].APIKey)

	// Create a chat session with the key; the default title is timestamped.
	var created createSessionResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/chat/sessions", apiKey(key.APIKey), nil, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Regexp(t, `^Chat \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, created.Title)

	// Append a message.
	var appended appendMessageResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/chat/sessions/"+created.SessionID+"/messages",
		apiKey(key.APIKey), map[string]string{"role": "user", "content": "hi"}, &appended)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, appended.MessageID)

	// The summary reflects the message count.
	var sessions []sessionSummaryItem
	resp = doJSON(t, srv, http.MethodGet, "/api/chat/sessions", apiKey(key.APIKey), nil, &sessions)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, sessions, 1)
	require.Equal(t, 1, sessions[0].MessageCount)

	// The detail carries the full log.
	var detail sessionDetailResponse
	resp = doJSON(t, srv, http.MethodGet, "/api/chat/sessions/"+created.SessionID,
		apiKey(key.APIKey), nil, &detail)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, detail.Messages, 1)
	require.Equal(t, "hi", detail.Messages[0].Content)

	// A second user's key cannot touch alice's session.
	var bobReg authResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/auth/register", nil, map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "password123",
	}, &bobReg)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var bobKey generateKeyResponse
	resp = doJSON(t, srv, http.MethodPost, "/api/keys/generate", bearer(bobReg.Token),
		map[string]string{"name": "bob-cli"}, &bobKey)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var errResp errorBody
	resp = doJSON(t, srv, http.MethodGet, "/api/chat/sessions/"+created.SessionID,
		apiKey(bobKey.APIKey), nil, &errResp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "forbidden", errResp.Error)
}

func TestTokenGuard(t *testing.T) {
	srv := newTestServer(t)

	t.Run("missing token", func(t *testing.T) {
		var errResp errorBody
		resp := doJSON(t, srv, http.MethodGet, "/api/auth/profile", nil, nil, &errResp)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "invalid_token", errResp.Error)
	})

	t.Run("garbage token", func(t *testing.T) {
		var errResp errorBody
		resp := doJSON(t, srv, http.MethodGet, "/api/auth/profile",
			bearer("not-a-jwt"), nil, &errResp)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "invalid_token", errResp.Error)
	})

	t.Run("expired token", func(t *testing.T) {
		signer, err := jwtx.NewSignerHS256([]byte("test-secret"))
		require.NoError(t, err)
		claims := jwtx.NewSessionClaims(
			"some-user", "ghost", "ghost@example.com",
			"test-issuer", time.Hour, time.Now().Add(-2*time.Hour),
		)
		token, err := signer.Sign(claims)
		require.NoError(t, err)

		var errResp errorBody
		resp := doJSON(t, srv, http.MethodGet, "/api/auth/profile",
			bearer(token), nil, &errResp)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "expired_token", errResp.Error)
	})

	t.Run("api key does not open token endpoints", func(t *testing.T) {
		var errResp errorBody
		resp := doJSON(t, srv, http.MethodGet, "/api/auth/profile",
			apiKey("sk_anything"), nil, &errResp)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "invalid_token", errResp.Error)
	})
}

func TestAPIKeyGuard(t *testing.T) {
	srv := newTestServer(t)

	t.Run("missing key", func(t *testing.T) {
		var errResp errorBody
		resp := doJSON(t, srv, http.MethodGet, "/api/chat/sessions", nil, nil, &errResp)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "missing_api_key", errResp.Error)
	})

	t.Run("unknown key", func(t *testing.T) {
		var errResp errorBody
		resp := doJSON(t, srv, http.MethodGet, "/api/chat/sessions",
			apiKey("sk_unknown"), nil, &errResp)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "invalid_api_key", errResp.Error)
	})

	t.Run("session token does not open key endpoints", func(t *testing.T) {
		var reg authResponse
		resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", nil, map[string]string{
			"username": "carol",
			"email":    "carol@example.com",
			"password": "password123",
		}, &reg)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var errResp errorBody
		resp = doJSON(t, srv, http.MethodGet, "/api/chat/sessions",
			bearer(reg.Token), nil, &errResp)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "missing_api_key", errResp.Error)
	})

	t.Run("revoked key stops working", func(t *testing.T) {
		var reg authResponse
		resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", nil, map[string]string{
			"username": "dave",
			"email":    "dave@example.com",
			"password": "password123",
		}, &reg)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var key generateKeyResponse
		resp = doJSON(t, srv, http.MethodPost, "/api/keys/generate", bearer(reg.Token),
			map[string]string{"name": "short-lived"}, &key)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = doJSON(t, srv, http.MethodPost, "/api/chat/sessions",
			apiKey(key.APIKey), nil, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		resp = doJSON(t, srv, http.MethodDelete, "/api/keys/"+key.APIKey,
			bearer(reg.Token), nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var errResp errorBody
		resp = doJSON(t, srv, http.MethodPost, "/api/chat/sessions",
			apiKey(key.APIKey), nil, &errResp)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Equal(t, "invalid_api_key", errResp.Error)
	})
}

func TestProfileEndpoints(t *testing.T) {
	srv := newTestServer(t)

	var reg authResponse
	resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", nil, map[string]string{
		"username": "erin",
		"email":    "erin@example.com",
		"password": "password123",
	}, &reg)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var profile profileResponse
	resp = doJSON(t, srv, http.MethodGet, "/api/auth/profile", bearer(reg.Token), nil, &profile)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, reg.User.UserID, profile.UserID)
	require.True(t, profile.Active)

	var updated updateProfileResponse
	resp = doJSON(t, srv, http.MethodPut, "/api/auth/profile", bearer(reg.Token),
		map[string]string{"username": "erin2"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "erin2", updated.User.Username)
	require.Equal(t, "erin@example.com", updated.User.Email)

	// Deactivation succeeds and locks out future logins.
	resp = doJSON(t, srv, http.MethodDelete, "/api/auth/profile", bearer(reg.Token), nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var errResp errorBody
	resp = doJSON(t, srv, http.MethodPost, "/api/auth/login", nil, map[string]string{
		"email":    "erin@example.com",
		"password": "password123",
	}, &errResp)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "account_inactive", errResp.Error)
}

func TestRegisterConflictAndValidation(t *testing.T) {
	srv := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", nil, map[string]string{
		"username": "frank",
		"email":    "frank@example.com",
		"password": "password123",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("duplicate username", func(t *testing.T) {
		var errResp errorBody
		resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", nil, map[string]string{
			"username": "frank",
			"email":    "frank2@example.com",
			"password": "password123",
		}, &errResp)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		require.Equal(t, "duplicate_identity", errResp.Error)
	})

	t.Run("short password", func(t *testing.T) {
		var errResp errorBody
		resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", nil, map[string]string{
			"username": "grace",
			"email":    "grace@example.com",
			"password": "123",
		}, &errResp)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "validation_error", errResp.Error)
	})

	t.Run("invalid role on append surfaces as validation", func(t *testing.T) {
		var reg authResponse
		resp := doJSON(t, srv, http.MethodPost, "/api/auth/register", nil, map[string]string{
			"username": "heidi",
			"email":    "heidi@example.com",
			"password": "password123",
		}, &reg)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var key generateKeyResponse
		resp = doJSON(t, srv, http.MethodPost, "/api/keys/generate", bearer(reg.Token),
			map[string]string{"name": "cli"}, &key)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		// Bad role against a session that does not even exist: validation
		// runs first, so this is a 400 rather than a 404.
		var errResp errorBody
		resp = doJSON(t, srv, http.MethodPost, "/api/chat/sessions/nope/messages",
			apiKey(key.APIKey), map[string]string{"role": "system", "content": "x"}, &errResp)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "validation_error", errResp.Error)
	})
}

func TestSystemEndpoints(t *testing.T) {
	srv := newTestServer(t)

	t.Run("health", func(t *testing.T) {
		var health healthResponse
		resp := doJSON(t, srv, http.MethodGet, "/health", nil, nil, &health)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "ok", health.Status)
		require.Equal(t, "test", health.Environment)
	})

	t.Run("unrouted path is a JSON 404", func(t *testing.T) {
		var errResp errorBody
		resp := doJSON(t, srv, http.MethodGet, "/api/does-not-exist", nil, nil, &errResp)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "not_found", errResp.Error)
	})
}
