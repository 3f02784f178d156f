package slack

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/coveord/standupbot"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"deadline exceeded", context.DeadlineExceeded, "timeout"},
		{"transport failure", &url.Error{Op: "Post", URL: "https://slack.com/api/chat.postMessage", Err: errors.New("connection refused")}, "transport"},
		{"api error code", errors.New("channel_not_found"), "channel_not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := apiError(tt.err)
			var apiErr *standupbot.SlackAPIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("apiError returned %T, want *SlackAPIError", err)
			}
			if apiErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", apiErr.Code, tt.wantCode)
			}
		})
	}
}

func TestCookieTransport(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("d"); err == nil {
			gotCookie = cookie.Value
		}
	}))
	defer server.Close()

	client := &http.Client{Transport: &cookieTransport{cookie: "session-value"}}
	resp, err := client.Get(server.URL)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()

	if gotCookie != "session-value" {
		t.Errorf("server saw cookie %q, want %q", gotCookie, "session-value")
	}
}

func TestCookieTransportDoesNotMutateRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{Transport: &cookieTransport{cookie: "session-value"}}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp.Body.Close()

	if req.Header.Get("Cookie") != "" {
		t.Errorf("original request gained a Cookie header: %q", req.Header.Get("Cookie"))
	}
}

func TestNewDefaultsTimeout(t *testing.T) {
	client := New(standupbot.SlackConfig{Token: "xoxb-token"})
	if client.timeout.Seconds() != 30 {
		t.Errorf("timeout = %v, want 30s default", client.timeout)
	}
}
