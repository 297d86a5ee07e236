package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertJSONEqual compares two values as JSON, ignoring field order.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	require.NoError(t, err, "failed to marshal expected value")

	actualJSON, err := json.Marshal(actual)
	require.NoError(t, err, "failed to marshal actual value")

	assert.JSONEq(t, string(expectedJSON), string(actualJSON))
}

// AssertHTTPStatus checks that the HTTP response has the expected status code.
func AssertHTTPStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected HTTP status code")
}

// AssertHTTPStatusOK checks that the HTTP response has status 200.
func AssertHTTPStatusOK(t *testing.T, resp *http.Response) {
	t.Helper()
	AssertHTTPStatus(t, resp, http.StatusOK)
}

// AssertHTTPStatusBadRequest checks that the HTTP response has status 400.
func AssertHTTPStatusBadRequest(t *testing.T, resp *http.Response) {
	t.Helper()
	AssertHTTPStatus(t, resp, http.StatusBadRequest)
}

// ReadJSONResponse reads and unmarshals a JSON response body.
func ReadJSONResponse(t *testing.T, resp *http.Response, v any) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	defer resp.Body.Close()

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response body: %s", string(body))
}
