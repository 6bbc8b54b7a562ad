package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cyanix-ai/cyanix/internal/api/domain"
	"github.com/cyanix-ai/cyanix/internal/api/store/drivers/sqlite"
	"github.com/cyanix-ai/cyanix/pkg/cryptox"
	"github.com/cyanix-ai/cyanix/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cyanix-service-test")
	if err != nil {
		os.Exit(1)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newAuthService(t *testing.T, st *sqlite.Store) *AuthService {
	t.Helper()

	signer, err := jwtx.NewSignerHS256([]byte("test-secret"))
	require.NoError(t, err)

	return &AuthService{
		Store:    st,
		Signer:   signer,
		Issuer:   "test-issuer",
		TokenTTL: time.Hour,
	}
}

// registerUser registers a user through the real flow so the password hash is
// genuine and a valid token comes back with it.
func registerUser(
	t *testing.T,
	auth *AuthService,
	username, email, password string,
) (domain.User, string) {
	t.Helper()

	user, token, err := auth.Register(context.Background(), username, email, password)
	require.NoError(t, err)
	return user, token
}
