package stream

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
)

// Content types set by the body policy.
const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// requestBody is the resolved body representation. An empty contentType
// means no Content-Type header is set (raw text bodies).
type requestBody struct {
	data        []byte
	contentType string
}

// resolveBody collapses the two body sources into one representation:
//
//   - both non-empty: ConflictingBodyError
//   - JSON only: serialized JSON, application/json
//   - data mapping: URL-encoded form, application/x-www-form-urlencoded
//   - data string: the string as-is, no content type
//   - neither: nil body
func resolveBody(source string, jsonValue, dataValue any) (*requestBody, error) {
	hasJSON := !isEmptyBody(jsonValue)
	hasData := !isEmptyBody(dataValue)

	if hasJSON && hasData {
		return nil, &ConflictingBodyError{Source: source}
	}

	switch {
	case hasJSON:
		data, err := json.Marshal(jsonValue)
		if err != nil {
			return nil, fmt.Errorf("marshal json request body: %w", err)
		}
		return &requestBody{data: data, contentType: contentTypeJSON}, nil

	case hasData:
		if s, ok := dataValue.(string); ok {
			return &requestBody{data: []byte(s)}, nil
		}
		form, err := encodeForm(dataValue)
		if err != nil {
			return nil, err
		}
		return &requestBody{data: []byte(form), contentType: contentTypeForm}, nil
	}

	return nil, nil
}

// encodeForm URL-encodes a mapping of string keys to scalar values.
// url.Values.Encode sorts keys, so the output is deterministic.
func encodeForm(value any) (string, error) {
	switch m := value.(type) {
	case url.Values:
		return m.Encode(), nil
	case map[string]string:
		values := url.Values{}
		for key, v := range m {
			values.Set(key, v)
		}
		return values.Encode(), nil
	case map[string]any:
		values := url.Values{}
		for key, v := range m {
			values.Set(key, fmt.Sprint(v))
		}
		return values.Encode(), nil
	default:
		return "", fmt.Errorf("unsupported form body type %T", value)
	}
}

// isEmptyBody reports whether a body source made no contribution: nil, an
// empty string, or an empty mapping/slice.
func isEmptyBody(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Map, reflect.Slice, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}
	return false
}
