// Package rest provides a declarative stream.Source for JSON-over-HTTP APIs
// that paginate with a next-page link and expose records under a field of
// the response object. Most REST sources need no code beyond a Config.
package rest

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/milind-kulkarni-velotio/airbyte/pkg/stream"
)

// Defaults applied by New.
const (
	DefaultPageSize      = 100
	DefaultPageSizeParam = "count"
	DefaultNextPageField = "next_page"
)

// Config describes one REST stream declaratively.
type Config struct {
	// Name identifies the stream in logs and metrics. Required.
	Name string

	// BaseURL is the absolute API base, e.g. "https://shop.example.com/api/v1".
	// Required.
	BaseURL string

	// Path is the endpoint path relative to BaseURL.
	Path string

	// Method is the request method. Defaults to GET.
	Method string

	// DataField is the response object field holding the record array.
	// Empty means the response body itself is the array.
	DataField string

	// PageSize is the requested page size, sent as PageSizeParam.
	// Defaults to 100; set to -1 to omit the parameter.
	PageSize int

	// PageSizeParam is the query parameter carrying PageSize. Defaults to
	// "count".
	PageSizeParam string

	// NextPageField is the response object field holding the next-page URL.
	// The URL's query parameters become the next page token. Defaults to
	// "next_page".
	NextPageField string

	// Params are static query parameters added to every request.
	Params map[string]string

	// Headers are static headers added to every request.
	Headers map[string]string

	// CursorField enables incremental reads: when the state snapshot holds
	// a value for this field, it is sent as CursorParam.
	CursorField string

	// CursorParam is the query parameter carrying the cursor value.
	// Defaults to CursorField.
	CursorParam string
}

// Source is a stream.Source driven entirely by a Config.
type Source struct {
	stream.BaseSource
	cfg Config
}

// New validates the config, applies defaults and returns the source.
func New(cfg Config) (*Source, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("stream name is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	if cfg.Method == "" {
		cfg.Method = "GET"
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PageSizeParam == "" {
		cfg.PageSizeParam = DefaultPageSizeParam
	}
	if cfg.NextPageField == "" {
		cfg.NextPageField = DefaultNextPageField
	}
	if cfg.CursorParam == "" {
		cfg.CursorParam = cfg.CursorField
	}

	return &Source{cfg: cfg}, nil
}

// Name implements stream.Source.
func (s *Source) Name() string { return s.cfg.Name }

// URLBase implements stream.Source.
func (s *Source) URLBase() string { return s.cfg.BaseURL }

// HTTPMethod implements stream.Source.
func (s *Source) HTTPMethod() string { return s.cfg.Method }

// Path implements stream.Source.
func (s *Source) Path(stream.State, stream.Slice, stream.PageToken) string {
	return s.cfg.Path
}

// RequestHeaders adds the static headers. Responses must never be served
// from an intermediary cache when paginating a moving data set.
func (s *Source) RequestHeaders(stream.State, stream.Slice, stream.PageToken) map[string]string {
	headers := map[string]string{"Cache-Control": "no-cache"}
	for key, value := range s.cfg.Headers {
		headers[key] = value
	}
	return headers
}

// RequestParams merges page size, static params, the incremental cursor and
// the page token. Token entries win so the next-page link is followed
// exactly as the API issued it.
func (s *Source) RequestParams(state stream.State, _ stream.Slice, token stream.PageToken) url.Values {
	params := url.Values{}
	if s.cfg.PageSize > 0 {
		params.Set(s.cfg.PageSizeParam, strconv.Itoa(s.cfg.PageSize))
	}
	for key, value := range s.cfg.Params {
		params.Set(key, value)
	}
	if s.cfg.CursorField != "" {
		if cursor, ok := state[s.cfg.CursorField]; ok && cursor != nil {
			params.Set(s.cfg.CursorParam, fmt.Sprint(cursor))
		}
	}
	for key, value := range token {
		params.Set(key, fmt.Sprint(value))
	}
	return params
}

// ParseResponse extracts the record array from the response.
func (s *Source) ParseResponse(resp *stream.Response, _ stream.State, _ stream.Slice, _ stream.PageToken) ([]stream.Record, error) {
	if s.cfg.DataField == "" {
		var records []stream.Record
		if err := resp.JSON(&records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var payload map[string]any
	if err := resp.JSON(&payload); err != nil {
		return nil, err
	}

	raw, ok := payload[s.cfg.DataField]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q is not an array", s.cfg.DataField)
	}

	records := make([]stream.Record, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q contains a non-object record", s.cfg.DataField)
		}
		records = append(records, record)
	}
	return records, nil
}

// NextPageToken turns the next-page link's query parameters into the token
// for the following request. An absent or empty link ends the run; so does a
// top-level array response, which has no field to carry a link.
func (s *Source) NextPageToken(resp *stream.Response) (stream.PageToken, error) {
	var payload map[string]any
	if err := resp.JSON(&payload); err != nil {
		return nil, nil
	}

	link, _ := payload[s.cfg.NextPageField].(string)
	if link == "" {
		return nil, nil
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("parse next page link %q: %w", link, err)
	}

	token := stream.PageToken{}
	for key, values := range parsed.Query() {
		if len(values) > 0 {
			token[key] = values[0]
		}
	}
	if len(token) == 0 {
		return nil, nil
	}
	return token, nil
}

// BackoffTime honors the Retry-After header when the API sends one.
func (s *Source) BackoffTime(resp *stream.Response) (time.Duration, bool) {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(retryAfter, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

// UpdatedState folds the latest record into the state snapshot, keeping the
// greater of the current and observed cursor values. It returns a new
// snapshot and never mutates the input.
func (s *Source) UpdatedState(state stream.State, record stream.Record) stream.State {
	if s.cfg.CursorField == "" {
		return state
	}

	latest, ok := record[s.cfg.CursorField]
	if !ok || latest == nil {
		return state
	}

	next := stream.State{}
	for key, value := range state {
		next[key] = value
	}

	current, ok := state[s.cfg.CursorField]
	if !ok || current == nil || fmt.Sprint(latest) > fmt.Sprint(current) {
		next[s.cfg.CursorField] = latest
	}
	return next
}
