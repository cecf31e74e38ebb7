package stream

import (
	"net/http"
	"net/url"
	"testing"
)

// bodySource is a POST source with configurable body contributions.
type bodySource struct {
	BaseSource
	method    string
	jsonValue any
	dataValue any
}

func (s *bodySource) Name() string    { return "body-source" }
func (s *bodySource) URLBase() string { return "https://api.test.local" }

func (s *bodySource) HTTPMethod() string { return s.method }

func (s *bodySource) Path(State, Slice, PageToken) string { return "items" }

func (s *bodySource) RequestBodyJSON(State, Slice, PageToken) any { return s.jsonValue }
func (s *bodySource) RequestBodyData(State, Slice, PageToken) any { return s.dataValue }

func (s *bodySource) ParseResponse(resp *Response, _ State, _ Slice, _ PageToken) ([]Record, error) {
	return nil, nil
}

func TestComposeRequest_URL(t *testing.T) {
	src := &paramSource{}
	req, err := composeRequest(src, nil, nil, nil)
	if err != nil {
		t.Fatalf("composeRequest() failed: %v", err)
	}

	want := "https://api.test.local/items?count=100"
	if req.URL != want {
		t.Errorf("URL = %q, want %q", req.URL, want)
	}
	if req.Method != http.MethodGet {
		t.Errorf("Method = %q, want GET", req.Method)
	}
}

// paramSource contributes query params and headers.
type paramSource struct {
	BaseSource
}

func (s *paramSource) Name() string    { return "param-source" }
func (s *paramSource) URLBase() string { return "https://api.test.local/" }

func (s *paramSource) Path(State, Slice, PageToken) string { return "/items" }

func (s *paramSource) RequestParams(_ State, _ Slice, token PageToken) url.Values {
	params := url.Values{"count": []string{"100"}}
	for key, value := range token {
		params.Set(key, value.(string))
	}
	return params
}

func (s *paramSource) RequestHeaders(State, Slice, PageToken) map[string]string {
	return map[string]string{"Cache-Control": "no-cache"}
}

func (s *paramSource) ParseResponse(resp *Response, _ State, _ Slice, _ PageToken) ([]Record, error) {
	return nil, nil
}

func TestComposeRequest_TokenInParams(t *testing.T) {
	src := &paramSource{}
	req, err := composeRequest(src, nil, nil, PageToken{"page": "3"})
	if err != nil {
		t.Fatalf("composeRequest() failed: %v", err)
	}

	parsed, err := url.Parse(req.URL)
	if err != nil {
		t.Fatalf("Parse URL: %v", err)
	}
	if got := parsed.Query().Get("page"); got != "3" {
		t.Errorf("page param = %q, want %q", got, "3")
	}
	if got := parsed.Query().Get("count"); got != "100" {
		t.Errorf("count param = %q, want %q", got, "100")
	}
}

func TestComposeRequest_Headers(t *testing.T) {
	src := &paramSource{}
	req, err := composeRequest(src, nil, nil, nil)
	if err != nil {
		t.Fatalf("composeRequest() failed: %v", err)
	}

	if got := req.Header.Get("Cache-Control"); got != "no-cache" {
		t.Errorf("Cache-Control = %q, want %q", got, "no-cache")
	}
}

func TestComposeRequest_BodyMethodGating(t *testing.T) {
	// A body is attached for POST/PUT/PATCH only; every other method
	// discards the computed body and its content type.
	methods := map[string]bool{
		"POST":    true,
		"PUT":     true,
		"PATCH":   true,
		"GET":     false,
		"DELETE":  false,
		"OPTIONS": false,
		"HEAD":    false,
	}

	for method, withBody := range methods {
		t.Run(method, func(t *testing.T) {
			src := &bodySource{method: method, dataValue: "key:value"}
			req, err := composeRequest(src, nil, nil, nil)
			if err != nil {
				t.Fatalf("composeRequest() failed: %v", err)
			}

			if withBody {
				if string(req.Body) != "key:value" {
					t.Errorf("Body = %q, want %q", string(req.Body), "key:value")
				}
			} else {
				if req.Body != nil {
					t.Errorf("Body = %q, want none for %s", string(req.Body), method)
				}
				if ct := req.Header.Get("Content-Type"); ct != "" {
					t.Errorf("Content-Type = %q, want none for %s", ct, method)
				}
			}
		})
	}
}

func TestComposeRequest_JSONBodyContentType(t *testing.T) {
	src := &bodySource{method: "POST", jsonValue: map[string]any{"key": "value"}}
	req, err := composeRequest(src, nil, nil, nil)
	if err != nil {
		t.Fatalf("composeRequest() failed: %v", err)
	}

	if ct := req.Header.Get("Content-Type"); ct != contentTypeJSON {
		t.Errorf("Content-Type = %q, want %q", ct, contentTypeJSON)
	}
	if string(req.Body) != `{"key":"value"}` {
		t.Errorf("Body = %q, want %q", string(req.Body), `{"key":"value"}`)
	}
}

func TestComposeRequest_RawTextNoContentType(t *testing.T) {
	src := &bodySource{method: "POST", dataValue: "key:value"}
	req, err := composeRequest(src, nil, nil, nil)
	if err != nil {
		t.Fatalf("composeRequest() failed: %v", err)
	}

	if ct := req.Header.Get("Content-Type"); ct != "" {
		t.Errorf("Content-Type = %q, want none for raw text body", ct)
	}
}

func TestComposeRequest_ConflictingBody(t *testing.T) {
	src := &bodySource{
		method:    "POST",
		jsonValue: map[string]any{"key": "value"},
		dataValue: "key:value",
	}

	_, err := composeRequest(src, nil, nil, nil)
	if err == nil {
		t.Fatal("Expected ConflictingBodyError, got nil")
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{"empty path", "https://api.test.local", "", "https://api.test.local"},
		{"plain", "https://api.test.local", "items", "https://api.test.local/items"},
		{"trailing slash base", "https://api.test.local/", "items", "https://api.test.local/items"},
		{"leading slash path", "https://api.test.local", "/items", "https://api.test.local/items"},
		{"both slashes", "https://api.test.local/", "/items", "https://api.test.local/items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinURL(tt.base, tt.path); got != tt.want {
				t.Errorf("joinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
			}
		})
	}
}
