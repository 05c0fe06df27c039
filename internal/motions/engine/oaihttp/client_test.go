package oaihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/yungbote/debate-motions/internal/motions/config"
	"github.com/yungbote/debate-motions/internal/motions/domain"
	"github.com/yungbote/debate-motions/internal/motions/engine"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func testConfig(apiKey string) config.EngineConfig {
	return config.EngineConfig{
		Type:                "oai_http",
		BaseURL:             "http://upstream",
		ChatCompletionsPath: "/chat/completions",
		APIKey:              apiKey,
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

var testMessages = []engine.Message{
	{Role: "system", Content: "be a debate writer"},
	{Role: "user", Content: "Search for: news"},
}

var testOpts = engine.GenerateOptions{Temperature: 0.7, MaxTokens: 2000}

func TestCompleteSendsSingleRequest(t *testing.T) {
	var calls int32
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			if req.Method != http.MethodPost {
				t.Fatalf("method=%s", req.Method)
			}
			if req.URL.Path != "/chat/completions" {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			if got := req.Header.Get("Authorization"); got != "Bearer pplx-key" {
				t.Fatalf("authorization=%q", got)
			}

			var payload map[string]any
			if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
				t.Fatalf("decode req: %v", err)
			}
			if payload["model"] != "sonar" {
				t.Fatalf("model=%v", payload["model"])
			}
			if payload["temperature"] != 0.7 {
				t.Fatalf("temperature=%v", payload["temperature"])
			}
			if payload["max_tokens"] != float64(2000) {
				t.Fatalf("max_tokens=%v", payload["max_tokens"])
			}
			msgs, _ := payload["messages"].([]any)
			if len(msgs) != 2 {
				t.Fatalf("expected 2 messages, got %d", len(msgs))
			}
			first, _ := msgs[0].(map[string]any)
			second, _ := msgs[1].(map[string]any)
			if first["role"] != "system" || second["role"] != "user" {
				t.Fatalf("unexpected roles: %v / %v", first["role"], second["role"])
			}

			return jsonResponse(http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"{\"motions\":[]}"}}]}`), nil
		}),
	}

	e, err := NewWithHTTPClient(testConfig("pplx-key"), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}

	text, err := e.Complete(context.Background(), "sonar", testMessages, testOpts)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if text != `{"motions":[]}` {
		t.Fatalf("text=%q", text)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls=%d", got)
	}
}

func TestCompleteWithoutAPIKeyMakesNoRequest(t *testing.T) {
	var calls int32
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			atomic.AddInt32(&calls, 1)
			return jsonResponse(http.StatusOK, `{}`), nil
		}),
	}

	e, err := NewWithHTTPClient(testConfig("  "), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	if e.Configured() {
		t.Fatalf("blank key must not count as configured")
	}

	_, err = e.Complete(context.Background(), "sonar", testMessages, testOpts)
	if !errors.Is(err, domain.ErrConfigMissing) {
		t.Fatalf("expected config missing, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("calls=%d", got)
	}
}

func TestCompleteClassifiesFailures(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		err      error
		kind     domain.ErrorKind
		contains string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":{"message":"Invalid API key provided"}}`, kind: domain.KindAuthFailure},
		{name: "forbidden", status: http.StatusForbidden, body: ``, kind: domain.KindAuthFailure},
		{name: "bad request mentioning key", status: http.StatusBadRequest, body: `{"error":{"message":"missing api_key header"}}`, kind: domain.KindAuthFailure},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"message":"overloaded"}}`, kind: domain.KindTransportFailure, contains: "Failed to generate motions: 500 Internal Server Error: overloaded"},
		{name: "rate limited plain body", status: http.StatusTooManyRequests, body: `slow down`, kind: domain.KindTransportFailure, contains: "Failed to generate motions: 429 Too Many Requests"},
		{name: "network", err: errors.New("dial tcp: connection refused"), kind: domain.KindTransportFailure, contains: "connection refused"},
		{name: "empty choices", status: http.StatusOK, body: `{"choices":[]}`, kind: domain.KindEmptyReply, contains: domain.MsgEmptyReply},
		{name: "blank content", status: http.StatusOK, body: `{"choices":[{"message":{"content":"   "}}]}`, kind: domain.KindEmptyReply},
		{name: "undecodable body", status: http.StatusOK, body: `<html>`, kind: domain.KindTransportFailure, contains: "decode completion"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &http.Client{
				Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
					if tc.err != nil {
						return nil, tc.err
					}
					return jsonResponse(tc.status, tc.body), nil
				}),
			}
			e, err := NewWithHTTPClient(testConfig("pplx-key"), client)
			if err != nil {
				t.Fatalf("NewWithHTTPClient: %v", err)
			}

			_, err = e.Complete(context.Background(), "sonar", testMessages, testOpts)
			var typed *domain.Error
			if !errors.As(err, &typed) {
				t.Fatalf("expected *domain.Error, got %T %v", err, err)
			}
			if typed.Kind != tc.kind {
				t.Fatalf("kind=%s want %s (%v)", typed.Kind, tc.kind, err)
			}
			if tc.contains != "" && !strings.Contains(typed.Message, tc.contains) {
				t.Fatalf("message %q does not contain %q", typed.Message, tc.contains)
			}
		})
	}
}

func TestCompleteDropsBlankMessages(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			t.Fatalf("no request expected")
			return nil, nil
		}),
	}
	e, err := NewWithHTTPClient(testConfig("pplx-key"), client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	_, err = e.Complete(context.Background(), "sonar", []engine.Message{{Role: "user", Content: " "}}, testOpts)
	if !errors.Is(err, domain.ErrUnexpected) {
		t.Fatalf("expected unexpected error, got %v", err)
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(config.EngineConfig{Type: "oai_http"}); err == nil {
		t.Fatalf("expected error for empty base url")
	}
}

func TestHTTPErrorRetryable(t *testing.T) {
	for status, want := range map[int]bool{
		http.StatusRequestTimeout:      true,
		http.StatusTooManyRequests:     true,
		http.StatusBadGateway:          true,
		http.StatusBadRequest:          false,
		http.StatusUnauthorized:        false,
		http.StatusInternalServerError: true,
	} {
		if got := (&HTTPError{StatusCode: status}).Retryable(); got != want {
			t.Fatalf("status %d retryable=%v want %v", status, got, want)
		}
	}
}
