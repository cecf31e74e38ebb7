package stream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPTransport_Send(t *testing.T) {
	var received struct {
		method      string
		body        string
		contentType string
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		received.method = r.Method
		received.body = string(body)
		received.contentType = r.Header.Get("Content-Type")

		w.Header().Set("X-Next-Page", "2")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	transport := NewHTTPTransport(nil)
	req := &Request{
		Method: http.MethodPost,
		URL:    server.URL + "/items",
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   []byte(`{"key":"value"}`),
	}

	resp, err := transport.Send(context.Background(), req)
	if err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	if received.method != http.MethodPost {
		t.Errorf("Server saw method %q, want POST", received.method)
	}
	if received.body != `{"key":"value"}` {
		t.Errorf("Server saw body %q, want %q", received.body, `{"key":"value"}`)
	}
	if received.contentType != "application/json" {
		t.Errorf("Server saw Content-Type %q, want application/json", received.contentType)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.Header.Get("X-Next-Page") != "2" {
		t.Errorf("X-Next-Page = %q, want %q", resp.Header.Get("X-Next-Page"), "2")
	}
	if string(resp.Body) != `{"items":[]}` {
		t.Errorf("Body = %q, want %q", string(resp.Body), `{"items":[]}`)
	}
}

func TestHTTPTransport_MalformedTarget(t *testing.T) {
	transport := NewHTTPTransport(nil)

	req := &Request{Method: http.MethodGet, URL: "bad_url", Header: http.Header{}}
	_, err := transport.Send(context.Background(), req)

	if err == nil {
		t.Fatal("Expected error for malformed target")
	}
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("Expected TransportError, got %T: %v", err, err)
	}
}

func TestHTTPTransport_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // nothing listens here anymore

	transport := NewHTTPTransport(nil)
	_, err := transport.Send(context.Background(), &Request{Method: http.MethodGet, URL: url, Header: http.Header{}})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Errorf("Expected TransportError, got %v", err)
	}
}

func TestResponse_JSON(t *testing.T) {
	resp := &Response{Body: []byte(`{"items":[{"id":1}]}`)}

	var payload struct {
		Items []map[string]any `json:"items"`
	}
	if err := resp.JSON(&payload); err != nil {
		t.Fatalf("JSON() failed: %v", err)
	}
	if len(payload.Items) != 1 {
		t.Errorf("Items = %d, want 1", len(payload.Items))
	}

	bad := &Response{Body: []byte(`not json`)}
	if err := bad.JSON(&payload); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}
