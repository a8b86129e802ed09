package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apie237/mern-chatapp/internal/auth"
	"github.com/Apie237/mern-chatapp/internal/domain"
	apperrors "github.com/Apie237/mern-chatapp/pkg/errors"
	"github.com/Apie237/mern-chatapp/pkg/httputil"
)

const testToken = "token-u-1"

func authServer(t *testing.T) *httptest.Server {
	t.Helper()
	identity := &domain.IdentitySummary{ID: "u-1", FullName: "Ana", Email: "a@x.com", ProfilePic: "/avatar.png"}

	r := chi.NewRouter()
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret1" {
			httputil.WriteError(w, r, apperrors.InvalidCredentials(), nil)
			return
		}
		auth.SetSessionCookie(w, testToken, time.Hour, false)
		httputil.WriteData(w, http.StatusOK, identity)
	})
	r.Post("/api/auth/logout", func(w http.ResponseWriter, _ *http.Request) {
		auth.ClearSessionCookie(w, false)
		httputil.WriteData(w, http.StatusOK, httputil.MessageResponse{Message: "Logged out successfully"})
	})
	r.Get("/api/auth/check", func(w http.ResponseWriter, r *http.Request) {
		if auth.ReadSessionCookie(r) != testToken {
			httputil.WriteError(w, r, apperrors.Unauthenticated(), nil)
			return
		}
		httputil.WriteData(w, http.StatusOK, identity)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

// run executes authctl with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSaveSession_WritesOwnerOnlyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session")

	require.NoError(t, saveSession(path, "abc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err := loadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestSaveSession_EmptyTokenRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session")
	require.NoError(t, saveSession(path, "abc"))

	require.NoError(t, saveSession(path, ""))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, saveSession(path, ""))
}

func TestLoadSession_MissingFile(t *testing.T) {
	token, err := loadSession(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestImageSource(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "a.png")
	// PNG signature followed by enough bytes for content sniffing.
	require.NoError(t, os.WriteFile(png, append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...), 0o600))
	txt := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(txt, []byte("hello"), 0o600))

	got, err := imageSource(png, "")
	require.NoError(t, err)
	assert.Contains(t, got, "data:image/png;base64,")

	got, err = imageSource("", "https://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.png", got)

	_, err = imageSource(txt, "")
	assert.Error(t, err)

	_, err = imageSource(png, "https://example.com/a.png")
	assert.Error(t, err)
}

func TestLoginWhoamiLogout(t *testing.T) {
	srv := authServer(t)
	sessionFile := filepath.Join(t.TempDir(), "session")
	common := []string{"--server", srv.URL, "--session-file", sessionFile}

	out, err := run(t, append(common, "login", "--email", "a@x.com", "--password", "secret1")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"fullName": "Ana"`)

	token, err := loadSession(sessionFile)
	require.NoError(t, err)
	assert.Equal(t, testToken, token)

	out, err = run(t, append(common, "whoami")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"_id": "u-1"`)

	out, err = run(t, append(common, "guard", "/login")...)
	require.NoError(t, err)
	assert.Contains(t, out, "/login redirect -> /")

	out, err = run(t, append(common, "logout")...)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out successfully")

	token, err = loadSession(sessionFile)
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = run(t, append(common, "whoami")...)
	assert.ErrorIs(t, err, errNotLoggedIn)

	out, err = run(t, append(common, "guard", "/profile")...)
	require.NoError(t, err)
	assert.Contains(t, out, "/profile redirect -> /login")
}

func TestLogin_WrongPasswordKeepsNoSession(t *testing.T) {
	srv := authServer(t)
	sessionFile := filepath.Join(t.TempDir(), "session")

	_, err := run(t, "--server", srv.URL, "--session-file", sessionFile,
		"login", "--email", "a@x.com", "--password", "nope")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())

	_, statErr := os.Stat(sessionFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestLogin_PromptsForPassword(t *testing.T) {
	srv := authServer(t)
	prev := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("secret1"), nil }
	t.Cleanup(func() { readPassword = prev })

	out, err := run(t, "--server", srv.URL, "--session-file", filepath.Join(t.TempDir(), "session"),
		"login", "--email", "a@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, `"email": "a@x.com"`)
}

func TestRootCmd_FlagDefaultsFromEnv(t *testing.T) {
	t.Setenv("AUTHCTL_SERVER", "http://auth.internal:9000")
	t.Setenv("AUTHCTL_TIMEOUT", "5s")

	cmd := NewRootCmd()

	assert.Equal(t, "http://auth.internal:9000", cmd.PersistentFlags().Lookup("server").DefValue)
	assert.Equal(t, "5s", cmd.PersistentFlags().Lookup("timeout").DefValue)
}
