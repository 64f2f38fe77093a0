package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avocado/teamhub/internal/interfaces/http/dto"
	"github.com/avocado/teamhub/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RequestOption decorates a request built by NewJSONRequest
type RequestOption func(*http.Request)

// WithBearer authenticates the request with an access token
func WithBearer(token string) RequestOption {
	return func(r *http.Request) {
		if token != "" {
			r.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
		}
	}
}

func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// NewJSONRequest builds a request whose body is body encoded as JSON.
// A nil body sends no content and no Content-Type.
func NewJSONRequest(t *testing.T, method, target string, body any, opts ...RequestOption) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err, "encode request body")
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	return req
}

// Serve runs req through h and returns the recorded response
func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON decodes the response body into T, failing the test on bad JSON
func DecodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// AssertFail checks the HTTP status and the fail envelope's error code.
// An empty code only checks that the envelope is a failure.
func AssertFail(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	assert.Equal(t, status, rec.Code, rec.Body.String())
	resp := DecodeJSON[dto.Response](t, rec)
	assert.Equal(t, dto.StatusFail, resp.Status)
	assert.NotEmpty(t, resp.Message)
	if code != "" {
		assert.Equal(t, code, resp.Code)
	}
}
