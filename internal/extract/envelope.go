package extract

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/knowron/foss-api/internal/observability"
)

// Placeholder values used when an envelope is built without an underlying
// error.
const (
	defaultMessage    = "no message available"
	defaultStackTrace = "no stack trace available"
)

// authorizationHeader is masked in every envelope, case-insensitively.
const authorizationHeader = "authorization"

const maskedValue = "*****"

// ErrorModel is the uniform failure envelope. The HTTP flow carries request
// context (route, redacted headers, query params, body); the async flow
// carries just the document path.
type ErrorModel struct {
	Success           bool              `json:"success"` // always false
	Timestamp         string            `json:"timestamp"`
	OriginatingSystem string            `json:"originatingSystem"`
	Environment       string            `json:"environment"`
	LogLevel          string            `json:"logLevel"`
	Path              string            `json:"path,omitempty"`
	APIRoute          string            `json:"apiRoute,omitempty"`
	Headers           map[string]string `json:"headers,omitempty"`
	QueryParams       map[string]string `json:"queryParams,omitempty"`
	RequestBody       string            `json:"requestBody,omitempty"`
	StatusCode        int               `json:"statusCode"`
	Message           string            `json:"message"`
	StackTrace        string            `json:"stackTrace"`
}

// EnvelopeBuilder produces ErrorModel envelopes with consistent defaults and
// logs each one as it is built.
type EnvelopeBuilder struct {
	logger      *observability.Logger
	system      string
	environment string
}

// NewEnvelopeBuilder creates a builder stamping envelopes with the given
// originating-system and environment tags.
func NewEnvelopeBuilder(logger *observability.Logger, system, environment string) *EnvelopeBuilder {
	return &EnvelopeBuilder{
		logger:      logger,
		system:      system,
		environment: environment,
	}
}

// ForPath builds the async-flow envelope for a failed document.
func (b *EnvelopeBuilder) ForPath(path string, statusCode int, err error) ErrorModel {
	e := b.base(statusCode, err)
	e.Path = path

	b.logger.Error().
		Str("path", path).
		Int("status_code", statusCode).
		Msg(e.Message)
	return e
}

// ForRequest builds the HTTP-flow envelope with full request context. The
// credential header is masked before inclusion.
func (b *EnvelopeBuilder) ForRequest(r *http.Request, body string, statusCode int, err error) ErrorModel {
	e := b.base(statusCode, err)
	e.APIRoute = r.URL.Path
	e.Headers = redactHeaders(r.Header)
	e.QueryParams = flattenQuery(r.URL.Query())
	e.RequestBody = body

	b.logger.Error().
		Str("route", e.APIRoute).
		Int("status_code", statusCode).
		Msg(e.Message)
	return e
}

func (b *EnvelopeBuilder) base(statusCode int, err error) ErrorModel {
	message := defaultMessage
	stackTrace := defaultStackTrace
	if err != nil {
		message = err.Error()
		stackTrace = string(debug.Stack())
	}
	return ErrorModel{
		Success:           false,
		Timestamp:         time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		OriginatingSystem: b.system,
		Environment:       b.environment,
		LogLevel:          b.logger.LevelName(),
		StatusCode:        statusCode,
		Message:           message,
		StackTrace:        stackTrace,
	}
}

// redactHeaders copies the request headers, masking any credential-bearing
// header value.
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		value := strings.Join(values, ", ")
		if strings.ToLower(name) == authorizationHeader {
			value = maskedValue
		}
		out[name] = value
	}
	return out
}

func flattenQuery(q map[string][]string) map[string]string {
	out := make(map[string]string, len(q))
	for name, values := range q {
		out[name] = strings.Join(values, ",")
	}
	return out
}
