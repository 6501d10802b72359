package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v and verifies success
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies error response with expected status and detail
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedDetail string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body struct {
		Detail string `json:"detail"`
	}
	AssertJSONResponse(t, resp, &body)
	assert.Equal(t, expectedDetail, body.Detail, "error detail mismatch")
}

// AssertCookie verifies the response sets an HTTP-only cookie with a value
func AssertCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()

	for _, c := range resp.Cookies() {
		if c.Name == name {
			assert.True(t, c.HttpOnly, "cookie %s should be HTTP only", name)
			assert.NotEmpty(t, c.Value, "cookie %s should have a value", name)
			return c
		}
	}
	t.Errorf("cookie %s not set", name)
	return nil
}
