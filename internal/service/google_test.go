package service_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/pageza/vitalchat/backend/internal/service"
)

func newFakeGoogle(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"access-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/oauth2/v2/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             "g-123",
			"email":          "jane@example.com",
			"name":           "Jane Doe",
			"verified_email": true,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestGoogleProviderExchange(t *testing.T) {
	srv := newFakeGoogle(t)
	provider := service.NewGoogleProvider("client-id", "client-secret", "http://localhost/auth/google/callback",
		service.WithOAuthEndpoint(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}),
		service.WithUserinfoEndpoint(srv.URL+"/"),
	)

	user, err := provider.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &service.GoogleUser{ID: "g-123", Email: "jane@example.com", Name: "Jane Doe", VerifiedEmail: true}, user)

	_, err = provider.Exchange(context.Background(), "bad-code")
	assert.Error(t, err)
}

func TestGoogleProviderAuthCodeURL(t *testing.T) {
	provider := service.NewGoogleProvider("client-id", "secret", "http://localhost/cb")

	u, err := url.Parse(provider.AuthCodeURL("state-1"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "state-1", u.Query().Get("state"))
	assert.Equal(t, "client-id", u.Query().Get("client_id"))
	assert.Equal(t, "http://localhost/cb", u.Query().Get("redirect_uri"))
}

func TestStateSigner(t *testing.T) {
	signer := service.NewStateSigner(testSecret)

	state, nonce, err := signer.Issue()
	require.NoError(t, err)
	assert.NoError(t, signer.Verify(state, nonce))

	assert.ErrorIs(t, signer.Verify(state, "other-nonce"), service.ErrValidation)
	assert.ErrorIs(t, signer.Verify(state, ""), service.ErrValidation)
	assert.ErrorIs(t, signer.Verify("tampered", nonce), service.ErrValidation)
	assert.ErrorIs(t, service.NewStateSigner("different-secret-value-1234567890").Verify(state, nonce), service.ErrValidation)
}
