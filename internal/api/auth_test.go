package api

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/ancare/ancare/internal/common/apperrors"
	"github.com/ancare/ancare/internal/common/httpclient"
	"github.com/ancare/ancare/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.client.Login(context.Background(), Credentials{Username: "a", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "a", resp.User["username"])
	assert.Equal(t, "t1", resp.Token)
	assert.NotEmpty(t, resp.Raw)

	assert.True(t, env.store.IsAuthenticated())
	assert.Equal(t, session.StateAuthenticated, env.store.State())
	user, ok := env.store.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "nurse", user.UserType())
	token, ok := env.store.SessionToken()
	assert.True(t, ok)
	assert.Equal(t, "t1", token)
}

func TestLoginRejected(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Login(context.Background(), Credentials{Username: "a", Password: "wrong"})
	var apiErr *httpclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.False(t, env.store.IsAuthenticated())
}

func TestLoginValidation(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})
	client := New(httpclient.NewTestClient(testConfig{serverURL: "http://backend.test"}, handler), nil)

	_, err := client.Login(context.Background(), Credentials{Username: "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, http.StatusBadRequest, apperrors.StatusCode(err))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"password (required)"}, verr.Fields)
	assert.Zero(t, calls)
}

func TestLoginWithoutUser(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "pending_approval"})
	})
	store := session.NewStore(session.NewMemoryStorage())
	client := New(httpclient.NewTestClient(testConfig{serverURL: "http://backend.test"}, handler), store)

	resp, err := client.Login(context.Background(), Credentials{Username: "a", Password: "p"})
	require.NoError(t, err)
	assert.Nil(t, resp.User)
	assert.JSONEq(t, `{"status":"pending_approval"}`, string(resp.Raw))
	assert.False(t, store.IsAuthenticated())
}

func TestLoginSetsCookieForLaterCalls(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	u, _ := url.Parse(env.server.URL + "/patients/api/patients/")
	require.Len(t, env.jar.Cookies(u), 1)

	_, err := env.client.GetPatients(context.Background())
	require.NoError(t, err)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	raw, err := env.client.Logout(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Logged out"}`, string(raw))
	assert.False(t, env.store.IsAuthenticated())
	assert.Equal(t, session.StateAnonymous, env.store.State())

	_, err = env.client.GetPatients(context.Background())
	var apiErr *httpclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestLogoutClearsSessionOnServerError(t *testing.T) {
	env := newTestEnv(t)
	env.login(t)

	_, err := env.client.Request(context.Background(), Request{
		Path:    pathLogout,
		Method:  http.MethodPost,
		Headers: map[string]string{"X-Fail": "1"},
	})
	require.Error(t, err)
	assert.True(t, env.store.IsAuthenticated())

	failing := New(httpclient.NewTestClient(testConfig{serverURL: "http://backend.test"},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})), env.store)

	_, err = failing.Logout(context.Background())
	var apiErr *httpclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "HTTP 500: Internal Server Error", apiErr.Message)
	assert.False(t, env.store.IsAuthenticated())
}

func TestRequestStaffAccess(t *testing.T) {
	var got StaffAccessRequest
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathStaffAccess, r.URL.Path)
		_ = decodeTestBody(r, &got)
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Request submitted"})
	})
	client := New(httpclient.NewTestClient(testConfig{serverURL: "http://backend.test"}, handler), nil)

	req := StaffAccessRequest{
		Name:      "Jane Njeri",
		Email:     "jane@example.org",
		Role:      "nurse",
		Hospitals: []ID{"3", "12"},
	}
	raw, err := client.RequestStaffAccess(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"Request submitted"}`, string(raw))
	assert.Equal(t, req, got)

	_, err = client.RequestStaffAccess(context.Background(), StaffAccessRequest{Name: "x", Email: "nope", Role: "nurse"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"email (email)", "hospitals (required)"}, verr.Fields)
}

func TestRegisterAndHospitalSignup(t *testing.T) {
	paths := []string{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		paths = append(paths, r.URL.Path)
		writeJSON(w, http.StatusCreated, map[string]any{"id": 1})
	})
	client := New(httpclient.NewTestClient(testConfig{serverURL: "http://backend.test"}, handler), nil)
	ctx := context.Background()

	_, err := client.Register(ctx, map[string]string{"username": "n"})
	require.NoError(t, err)
	_, err = client.HospitalSignup(ctx, map[string]string{"name": "Ahero"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/register/", "/hospital/signup/"}, paths)
}
