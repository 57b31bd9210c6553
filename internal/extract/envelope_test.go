package extract

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowron/foss-api/internal/observability"
)

func testEnvelopeBuilder() *EnvelopeBuilder {
	return NewEnvelopeBuilder(observability.Nop(), "foss-api", "staging")
}

func TestForPathDefaults(t *testing.T) {
	e := testEnvelopeBuilder().ForPath("docs/a.pdf", 404, nil)

	assert.False(t, e.Success)
	assert.Equal(t, "docs/a.pdf", e.Path)
	assert.Equal(t, 404, e.StatusCode)
	assert.Equal(t, "no message available", e.Message)
	assert.Equal(t, "no stack trace available", e.StackTrace)
	assert.Equal(t, "foss-api", e.OriginatingSystem)
	assert.Equal(t, "staging", e.Environment)
}

func TestForPathWithError(t *testing.T) {
	e := testEnvelopeBuilder().ForPath("docs/a.pdf", 500, errors.New("upstream exploded"))

	assert.Equal(t, "upstream exploded", e.Message)
	assert.NotEqual(t, "no stack trace available", e.StackTrace)
	assert.NotEmpty(t, e.StackTrace)
}

func TestForPathTimestampFormat(t *testing.T) {
	e := testEnvelopeBuilder().ForPath("docs/a.pdf", 500, nil)

	parsed, err := time.Parse("2006-01-02T15:04:05.000Z07:00", e.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)
}

func TestForRequestMasksCredentials(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/extract?path=docs%2Fa.pdf&path=docs%2Fb.pdf", nil)
	r.Header.Set("Authorization", "Bearer secret123")
	r.Header.Set("X-Request-Id", "abc-123")

	e := testEnvelopeBuilder().ForRequest(r, "", 403, errors.New("could not validate credentials"))

	assert.Equal(t, "/api/v1/extract", e.APIRoute)
	assert.Equal(t, "*****", e.Headers["Authorization"])
	assert.Equal(t, "abc-123", e.Headers["X-Request-Id"])
	assert.Equal(t, "docs/a.pdf,docs/b.pdf", e.QueryParams["path"])

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret123")
}

func TestForRequestOmitsPathFields(t *testing.T) {
	r := httptest.NewRequest("GET", "/healthcheck", nil)

	e := testEnvelopeBuilder().ForRequest(r, "", 500, nil)

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"path"`)
}
