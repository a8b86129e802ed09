//go:build integration

package client

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Apie237/mern-chatapp/pkg/errors"
	"github.com/Apie237/mern-chatapp/pkg/httpclient"
)

// liveBaseURL points at a running auth service. AUTH_BASE_URL overrides the
// local default.
func liveBaseURL() string {
	if u := os.Getenv("AUTH_BASE_URL"); u != "" {
		return u
	}
	return "http://localhost:5001"
}

// skipIfNotRunning skips (not fails) when the service is unreachable.
func skipIfNotRunning(t *testing.T) {
	t.Helper()
	c := &http.Client{Timeout: 2 * time.Second}
	resp, err := c.Get(liveBaseURL() + "/health/live")
	if err != nil {
		t.Skipf("auth service at %s not reachable: %v", liveBaseURL(), err)
	}
	_ = resp.Body.Close()
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@test.example.com", prefix, time.Now().UnixNano())
}

func newLiveClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(liveBaseURL(), httpclient.DefaultConfig())
	require.NoError(t, err)
	return c
}

func TestLive_SessionLifecycle(t *testing.T) {
	skipIfNotRunning(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	email := uniqueEmail("lifecycle")
	c := newLiveClient(t)
	store := NewStore(c)

	require.NoError(t, store.Signup(ctx, SignupRequest{FullName: "Integration Test", Email: email, Password: "secret1"}))
	require.Equal(t, StatusAuthenticated, store.Snapshot().Status())
	require.NotEmpty(t, c.SessionToken())

	store.CheckAuth(ctx)
	st := store.Snapshot()
	require.NotNil(t, st.Identity)
	assert.Equal(t, email, st.Identity.Email)
	assert.Equal(t, "/avatar.png", st.Identity.ProfilePic)

	require.NoError(t, store.UpdateProfile(ctx, "https://example.com/avatar.png"))
	assert.NotEqual(t, "/avatar.png", store.Snapshot().Identity.ProfilePic)

	require.NoError(t, store.Logout(ctx))
	assert.Empty(t, c.SessionToken())
	store.CheckAuth(ctx)
	assert.Equal(t, StatusAnonymous, store.Snapshot().Status())

	err := store.Login(ctx, email, "wrong-password")
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "Invalid credentials", opErr.Message)

	require.NoError(t, store.Login(ctx, email, "secret1"))
	assert.Equal(t, email, store.Snapshot().Identity.Email)
}

func TestLive_DuplicateSignup(t *testing.T) {
	skipIfNotRunning(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	email := uniqueEmail("duplicate")
	req := SignupRequest{FullName: "Dup", Email: email, Password: "secret1"}

	_, err := newLiveClient(t).Signup(ctx, req)
	require.NoError(t, err)

	_, err = newLiveClient(t).Signup(ctx, req)
	require.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
}

func TestLive_CheckWithoutSessionIsUnauthorized(t *testing.T) {
	skipIfNotRunning(t)

	_, err := newLiveClient(t).CheckAuth(context.Background())
	require.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
