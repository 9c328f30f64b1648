package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func limitedRouter(l *RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.Use(l.Middleware)
	ok := func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, http.StatusOK, map[string]bool{"ok": true}) }
	r.Get("/items", ok)
	r.Post("/items", ok)
	return r
}

func send(h http.Handler, method, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/items", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	h := limitedRouter(NewRateLimiter(10, 2))
	allowed := testutil.ToFloat64(RateLimitAllowed.WithLabelValues("memory"))

	require.Equal(t, http.StatusOK, send(h, http.MethodPost, "10.0.0.1:1234").Code)
	require.Equal(t, http.StatusOK, send(h, http.MethodPost, "10.0.0.1:1234").Code)

	require.Equal(t, allowed+2, testutil.ToFloat64(RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimiter_BlocksWhenExceeded(t *testing.T) {
	h := limitedRouter(NewRateLimiter(2, 1))
	rejected := testutil.ToFloat64(RateLimitRejected.WithLabelValues("memory"))

	require.Equal(t, http.StatusOK, send(h, http.MethodPost, "10.0.0.2:1234").Code)

	w := send(h, http.MethodPost, "10.0.0.2:5678")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Rate limit exceeded", body.Error)
	require.Equal(t, rejected+1, testutil.ToFloat64(RateLimitRejected.WithLabelValues("memory")))

	// Another client has its own bucket.
	require.Equal(t, http.StatusOK, send(h, http.MethodPost, "10.0.0.3:1234").Code)

	// Reads are never limited.
	require.Equal(t, http.StatusOK, send(h, http.MethodGet, "10.0.0.2:1234").Code)

	// one token refills after half a second at 2 rps
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, send(h, http.MethodPost, "10.0.0.2:1234").Code)
}

func TestOptionalIDUnmarshal(t *testing.T) {
	cases := []struct {
		in      string
		want    *int64
		wantErr bool
	}{
		{in: `null`},
		{in: `""`},
		{in: `"  "`},
		{in: `3`, want: ptr(int64(3))},
		{in: `"12"`, want: ptr(int64(12))},
		{in: `"abc"`, wantErr: true},
		{in: `1.5`, wantErr: true},
	}
	for _, tc := range cases {
		var got struct {
			ID optionalID `json:"id"`
		}
		err := json.Unmarshal([]byte(`{"id":`+tc.in+`}`), &got)
		if tc.wantErr {
			require.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got.ID.Value, tc.in)
	}
}

func ptr[T any](v T) *T { return &v }
