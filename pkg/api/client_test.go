package api

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-guardian/guardian/pkg/options"
)

func testPublicKey(t *testing.T) *ecdsa.PublicKey {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	return &key.PublicKey
}

func TestClientEnroll(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotAuth   string
		gotBody   map[string]any
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "dev-1", "token": "tok-xyz"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	payload, err := client.Enroll(
		context.Background(),
		"T1",
		"device-uuid",
		"alice-phone",
		"push-abc",
		testPublicKey(t),
	)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/enroll", gotPath)
	assert.Equal(t, `Ticket id="T1"`, gotAuth)

	assert.Equal(t, "device-uuid", gotBody["identifier"])
	assert.Equal(t, "alice-phone", gotBody["name"])
	creds, ok := gotBody["push_credentials"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "APNS", creds["service"])
	assert.Equal(t, "push-abc", creds["token"])
	jwk, ok := gotBody["public_key"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "EC", jwk["kty"])
	assert.Equal(t, "sig", jwk["use"])

	assert.JSONEq(t, `{"id": "dev-1", "token": "tok-xyz"}`, string(payload))
}

func TestClientEnrollServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorCode": "enrollment_transaction_not_found", "message": "Not found", "statusCode": "404"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Enroll(context.Background(), "T1", "id", "name", "push-abc", testPublicKey(t))

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusNotFound, serverErr.StatusCode)
	assert.Equal(t, "enrollment_transaction_not_found", serverErr.ErrorCode)
	assert.Equal(t, "Not found", serverErr.Message)
}

func TestClientEnrollUndecodableErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = client.Enroll(context.Background(), "T1", "id", "name", "push-abc", testPublicKey(t))

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusBadGateway, serverErr.StatusCode)
	assert.Empty(t, serverErr.ErrorCode)
}

func TestClientEnrollPushServiceOption(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, options.WithPushService("GCM"))
	require.NoError(t, err)

	_, err = client.Enroll(context.Background(), "T1", "id", "name", "push-abc", testPublicKey(t))
	require.NoError(t, err)

	creds, ok := gotBody["push_credentials"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "GCM", creds["service"])
}

func TestDeviceDelete(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotAuth   string
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	require.NoError(t, client.Device("dev-1", "tok-xyz").Delete(context.Background()))

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/device-accounts/dev-1", gotPath)
	assert.Equal(t, "Bearer tok-xyz", gotAuth)
}

func TestDeviceDeleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorCode": "invalid_token", "message": "Invalid token"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL)
	require.NoError(t, err)

	err = client.Device("dev-1", "bad-token").Delete(context.Background())

	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusUnauthorized, serverErr.StatusCode)
	assert.Equal(t, "invalid_token", serverErr.ErrorCode)
}
