// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── context ───────────────────────────────────────────────────────────────────

func TestGetPushSubjectFromContext(t *testing.T) {
	_, ok := GetPushSubjectFromContext(context.Background())
	assert.False(t, ok)

	ctx := context.WithValue(context.Background(), PushSubjectCtxKey, "pos-backend")
	subject, ok := GetPushSubjectFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "pos-backend", subject)
	assert.Equal(t, "pushSubject", PushSubjectCtxKey.String())
}

// ── http ──────────────────────────────────────────────────────────────────────

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	n, err := WriteJSON(rec, map[string]any{"success": true}, http.StatusCreated)
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
}

func TestWriteJSON_MarshalError(t *testing.T) {
	rec := httptest.NewRecorder()

	_, err := WriteJSON(rec, make(chan int), http.StatusOK)
	assert.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWriteRaw(t *testing.T) {
	rec := httptest.NewRecorder()
	header := http.Header{"Content-Type": {"text/html"}, "Content-Length": {"999"}}

	_, err := WriteRaw(rec, header, []byte("<html></html>"), http.StatusOK)
	require.NoError(t, err)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Length"))
	assert.Equal(t, "<html></html>", rec.Body.String())
}

func TestEndToEndHeaders(t *testing.T) {
	h := http.Header{
		"Connection":      {"keep-alive, X-Session-Hop"},
		"X-Session-Hop":   {"1"},
		"Keep-Alive":      {"timeout=5"},
		"Accept-Encoding": {"gzip"},
		"Content-Type":    {"application/json"},
		"Idempotency-Key": {"abc"},
	}

	out := EndToEndHeaders(h, "Accept-Encoding")

	assert.Equal(t, http.Header{
		"Content-Type":    {"application/json"},
		"Idempotency-Key": {"abc"},
	}, out)
	assert.Equal(t, "gzip", h.Get("Accept-Encoding"), "source must not be mutated")
	assert.Equal(t, http.Header{}, EndToEndHeaders(nil))
}

// ── http client ───────────────────────────────────────────────────────────────

func TestNewProxyHTTPClient_DoesNotFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	client := NewProxyHTTPClient(srv.URL, time.Second)
	resp, err := client.R().Get("/pos/terminal")

	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode())
	assert.Equal(t, "/elsewhere", resp.Header().Get("Location"))
}

func TestNewHTTPClient_Independence(t *testing.T) {
	a, b := NewHTTPClient(), NewHTTPClient()
	a.SetBaseURL("http://a.local")
	assert.NotEqual(t, a.BaseURL, b.BaseURL)
}

// ── hash ──────────────────────────────────────────────────────────────────────

func TestDigest(t *testing.T) {
	d := Digest([]byte("receipt"))
	assert.Len(t, d, 64)
	assert.Equal(t, d, Digest([]byte("receipt")))
	assert.NotEqual(t, d, Digest([]byte("receipt ")))
	assert.True(t, VerifyDigest([]byte("receipt"), d))
	assert.False(t, VerifyDigest([]byte("tampered"), d))
}

func TestHashJSON(t *testing.T) {
	type manifest struct {
		URLs []string `json:"urls"`
	}

	h1, err := HashJSON(manifest{URLs: []string{"/a", "/b"}})
	require.NoError(t, err)
	h2, err := HashJSON(manifest{URLs: []string{"/a", "/b"}})
	require.NoError(t, err)
	h3, err := HashJSON(manifest{URLs: []string{"/b", "/a"}})
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)

	_, err = HashJSON(make(chan int))
	assert.Error(t, err)
}

// ── uuid ──────────────────────────────────────────────────────────────────────

func TestUUIDGenerator_Generate(t *testing.T) {
	g := NewUUIDGenerator()

	id, err := uuid.Parse(g.Generate())
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.NotEqual(t, g.Generate(), g.Generate())
}

// ── jwt ───────────────────────────────────────────────────────────────────────

func TestPushToken_RoundTrip(t *testing.T) {
	token, err := GeneratePushToken("pos-backend", time.Minute, "secret")
	require.NoError(t, err)

	subject, err := ValidatePushToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "pos-backend", subject)
}

func TestValidatePushToken_Rejects(t *testing.T) {
	valid, err := GeneratePushToken("pos-backend", time.Minute, "secret")
	require.NoError(t, err)

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    PushTokenIssuer,
		Subject:   "pos-backend",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	foreignIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "someone-else",
		Subject:   "pos-backend",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := map[string]struct {
		token string
		key   string
	}{
		"wrong key":      {valid, "other"},
		"expired":        {expired, "secret"},
		"foreign issuer": {foreignIssuer, "secret"},
		"garbage":        {"not.a.token", "secret"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ValidatePushToken(tt.token, tt.key)
			assert.Error(t, err)
		})
	}
}

func TestGeneratePushToken_InvalidParams(t *testing.T) {
	_, err := GeneratePushToken("", time.Minute, "secret")
	assert.ErrorIs(t, err, ErrInvalidPushTokenParams)
	_, err = GeneratePushToken("s", 0, "secret")
	assert.ErrorIs(t, err, ErrInvalidPushTokenParams)
	_, err = GeneratePushToken("s", time.Minute, "")
	assert.ErrorIs(t, err, ErrInvalidPushTokenParams)
}

func TestParseBearerToken(t *testing.T) {
	token, err := ParseBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ParseBearerToken("  bearer   xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	for _, header := range []string{"", "Bearer", "Basic abc", strings.Repeat("x ", 3)} {
		_, err := ParseBearerToken(header)
		assert.ErrorIs(t, err, ErrInvalidAuthHeader, header)
	}
}
