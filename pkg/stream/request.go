package stream

import (
	"net/http"
	"strings"
)

// bodyMethods are the request methods that may carry a body. For every
// other method the computed body is discarded.
var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

// composeRequest builds the next outgoing request from the pagination
// inputs. The hooks run in a fixed order - path, query params, headers,
// body - and each receives the identical (state, slice, token) triple.
func composeRequest(src Source, state State, slice Slice, token PageToken) (*Request, error) {
	path := src.Path(state, slice, token)
	params := src.RequestParams(state, slice, token)
	headers := src.RequestHeaders(state, slice, token)
	body, err := resolveBody(src.Name(),
		src.RequestBodyJSON(state, slice, token),
		src.RequestBodyData(state, slice, token))
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(src.HTTPMethod())
	if method == "" {
		method = http.MethodGet
	}

	target := joinURL(src.URLBase(), path)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	req := &Request{
		Method: method,
		URL:    target,
		Header: http.Header{},
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if body != nil && bodyMethods[method] {
		req.Body = body.data
		if body.contentType != "" {
			req.Header.Set("Content-Type", body.contentType)
		}
	}

	return req, nil
}

// joinURL appends path to base with exactly one separating slash.
func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
