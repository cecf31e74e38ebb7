package stream

import (
	"net/url"
	"time"
)

// PageToken is the opaque pagination cursor threaded between loop
// iterations. A nil token means "no further pages". The reader never
// inspects its contents; only the source assigns meaning to the keys.
type PageToken map[string]any

// Slice is optional partition context, constant for one pagination run
// (e.g. a date range or a parent entity id). Read-only to this package.
type Slice map[string]any

// State is an externally supplied state snapshot used to resume or scope a
// run. Read-only to this package; it is never mutated or persisted here.
type State map[string]any

// Record is one decoded unit of domain data.
type Record map[string]any

// Source is the capability set a connector implements to describe one
// paginated HTTP stream. Name, URLBase, Path and ParseResponse carry the
// stream-specific logic; every other hook has a sensible default provided
// by BaseSource, which concrete sources should embed.
//
// The request hooks (Path, RequestParams, RequestHeaders, RequestBodyJSON,
// RequestBodyData) all receive the identical (state, slice, token) triple
// for a given pagination step and must be pure projections of it.
type Source interface {
	// Name identifies the stream in logs and metrics.
	Name() string

	// URLBase is the absolute base URL, e.g. "https://api.example.com/v1".
	URLBase() string

	// HTTPMethod returns the request method. Defaults to GET.
	HTTPMethod() string

	// Path returns the endpoint path relative to URLBase.
	Path(state State, slice Slice, token PageToken) string

	// RequestParams returns query parameters for the request. A nil return
	// means no parameters.
	RequestParams(state State, slice Slice, token PageToken) url.Values

	// RequestHeaders returns additional request headers. A nil return means
	// no additional headers.
	RequestHeaders(state State, slice Slice, token PageToken) map[string]string

	// RequestBodyJSON returns a JSON-serializable request body. At most one
	// of RequestBodyJSON and RequestBodyData may return a non-empty value;
	// violating this fails the run with ConflictingBodyError before any
	// request is sent.
	RequestBodyJSON(state State, slice Slice, token PageToken) any

	// RequestBodyData returns a raw request body: a string is sent as-is
	// with no content type, a mapping is URL-encoded as form data.
	RequestBodyData(state State, slice Slice, token PageToken) any

	// ParseResponse decodes one successful response into records. It must
	// not trigger further HTTP activity. Errors are treated as DecodeError
	// and abort the run without retrying.
	ParseResponse(resp *Response, state State, slice Slice, token PageToken) ([]Record, error)

	// NextPageToken computes the cursor for the next page from the current
	// response. Returning a nil token ends the pagination run.
	NextPageToken(resp *Response) (PageToken, error)

	// BackoffTime returns a custom wait duration for a retryable response.
	// Returning ok=false falls back to the reader's exponential schedule.
	BackoffTime(resp *Response) (wait time.Duration, ok bool)

	// RetryableStatus reports whether a status code should be retried.
	// Defaults to 429 and all 5xx.
	RetryableStatus(code int) bool
}

// BaseSource provides the default hook implementations: GET requests with
// no parameters, headers or body, single-page pagination, the reader's
// default backoff schedule and the 429/5xx retryable set. Embed it and
// override what the stream needs.
type BaseSource struct{}

// HTTPMethod defaults to GET.
func (BaseSource) HTTPMethod() string { return "GET" }

// RequestParams contributes no query parameters.
func (BaseSource) RequestParams(State, Slice, PageToken) url.Values { return nil }

// RequestHeaders contributes no headers.
func (BaseSource) RequestHeaders(State, Slice, PageToken) map[string]string { return nil }

// RequestBodyJSON contributes no JSON body.
func (BaseSource) RequestBodyJSON(State, Slice, PageToken) any { return nil }

// RequestBodyData contributes no raw body.
func (BaseSource) RequestBodyData(State, Slice, PageToken) any { return nil }

// NextPageToken ends pagination after the first page.
func (BaseSource) NextPageToken(*Response) (PageToken, error) { return nil, nil }

// BackoffTime defers to the reader's exponential schedule.
func (BaseSource) BackoffTime(*Response) (time.Duration, bool) { return 0, false }

// RetryableStatus retries 429 and server errors.
func (BaseSource) RetryableStatus(code int) bool {
	return code == 429 || code >= 500
}
