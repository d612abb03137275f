package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func echoClerkID(w http.ResponseWriter, r *http.Request) {
	id, _ := GetClerkID(r.Context())
	w.Write([]byte(id))
}

func fakeVerifier(ctx context.Context, token string) (string, error) {
	if token == "good" {
		return "user_123", nil
	}
	return "", errors.New("bad token")
}

func TestClerkAuth(t *testing.T) {
	h := NewClerkAuth(fakeVerifier, nil)(http.HandlerFunc(echoClerkID))

	cases := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, `{"error":"Authorization header required"}`},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ""},
		{"bad token", "Bearer nope", http.StatusUnauthorized, `{"error":"Invalid token"}`},
		{"good token", "Bearer good", http.StatusOK, "user_123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.code, rec.Code)
			if tc.body != "" {
				if tc.code == http.StatusOK {
					assert.Equal(t, tc.body, rec.Body.String())
				} else {
					assert.JSONEq(t, tc.body, rec.Body.String())
				}
			}
		})
	}
}

func TestGetClerkIDMissing(t *testing.T) {
	_, ok := GetClerkID(context.Background())
	assert.False(t, ok)

	_, ok = GetClerkID(WithClerkID(context.Background(), ""))
	assert.False(t, ok)

	id, ok := GetClerkID(WithClerkID(context.Background(), "user_1"))
	assert.True(t, ok)
	assert.Equal(t, "user_1", id)
}
