package oaihttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/debate-motions/internal/motions/config"
	"github.com/yungbote/debate-motions/internal/motions/domain"
	"github.com/yungbote/debate-motions/internal/motions/engine"
)

var tracer = otel.Tracer("github.com/yungbote/debate-motions/internal/motions/engine/oaihttp")

// Engine talks to an OpenAI-compatible chat completions endpoint such as
// Perplexity's. It performs exactly one request per Complete call.
type Engine struct {
	baseURL             string
	apiKey              string
	chatCompletionsPath string

	httpClient *http.Client
}

func New(cfg config.EngineConfig) (*Engine, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("oai_http: base_url required")
	}

	chatPath := strings.TrimSpace(cfg.ChatCompletionsPath)
	if chatPath == "" {
		chatPath = config.DefaultChatCompletionsPath
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Engine{
		baseURL:             baseURL,
		apiKey:              strings.TrimSpace(cfg.APIKey),
		chatCompletionsPath: chatPath,
		httpClient:          &http.Client{Transport: tr, Timeout: cfg.Timeout.Duration},
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(cfg config.EngineConfig, httpClient *http.Client) (*Engine, error) {
	e, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		e.httpClient = httpClient
	}
	return e, nil
}

// Configured reports whether a credential is present.
func (e *Engine) Configured() bool { return e.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type upstreamErrorBody struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail string `json:"detail"`
}

func (e *Engine) Complete(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	if e.apiKey == "" {
		return "", domain.NewError(domain.KindConfigMissing, "", errors.New("oai_http: api key not configured"))
	}

	chatMsgs := toChatMessages(messages)
	if len(chatMsgs) == 0 {
		return "", domain.NewError(domain.KindUnexpected, "", errors.New("oai_http: no messages"))
	}

	ctx, span := tracer.Start(ctx, "inference.complete", trace.WithAttributes(
		attribute.String("llm.model", model),
		attribute.Float64("llm.temperature", opts.Temperature),
		attribute.Int("llm.max_tokens", opts.MaxTokens),
	))
	defer span.End()

	reqBody := chatCompletionRequest{
		Model:       model,
		Messages:    chatMsgs,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}

	var resp chatCompletionResponse
	if err := e.doJSON(ctx, http.MethodPost, e.chatCompletionsPath, reqBody, &resp); err != nil {
		classified := classifyTransportError(err)
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			span.SetAttributes(attribute.Int("http.status_code", httpErr.StatusCode))
		}
		span.RecordError(classified)
		span.SetStatus(codes.Error, string(classified.Kind))
		return "", classified
	}

	text := firstChoiceText(resp)
	if strings.TrimSpace(text) == "" {
		err := domain.NewError(domain.KindEmptyReply, "", fmt.Errorf("oai_http: empty completion (choices=%d)", len(resp.Choices)))
		span.SetStatus(codes.Error, string(err.Kind))
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.reply_bytes", len(text)))
	return text, nil
}

// classifyTransportError separates credential rejections from every other
// request failure.
func classifyTransportError(err error) *domain.Error {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		detail := upstreamMessage(httpErr)
		if httpErr.Unauthorized() || mentionsAPIKey(detail) {
			return domain.NewError(domain.KindAuthFailure, "", err)
		}
		return domain.NewError(domain.KindTransportFailure, detail, err)
	}
	detail := strings.TrimSpace(err.Error())
	if mentionsAPIKey(detail) {
		return domain.NewError(domain.KindAuthFailure, "", err)
	}
	return domain.NewError(domain.KindTransportFailure, detail, err)
}

func upstreamMessage(e *HTTPError) string {
	status := fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return strings.TrimSpace(status)
	}
	var parsed upstreamErrorBody
	if err := json.Unmarshal([]byte(body), &parsed); err == nil {
		if msg := strings.TrimSpace(parsed.Error.Message); msg != "" {
			return status + ": " + msg
		}
		if msg := strings.TrimSpace(parsed.Detail); msg != "" {
			return status + ": " + msg
		}
	}
	return strings.TrimSpace(status)
}

func mentionsAPIKey(s string) bool {
	s = strings.ToLower(s)
	return strings.Contains(s, "api key") || strings.Contains(s, "api_key") || strings.Contains(s, "apikey")
}

func toChatMessages(messages []engine.Message) []chatMessage {
	out := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		role := strings.TrimSpace(m.Role)
		content := strings.TrimSpace(m.Content)
		if role == "" || content == "" {
			continue
		}
		out = append(out, chatMessage{Role: role, Content: content})
	}
	return out
}

func firstChoiceText(resp chatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}

// ---------------- HTTP helpers ----------------

func (e *Engine) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
}

func (e *Engine) doJSON(ctx context.Context, method string, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, &buf)
	if err != nil {
		return err
	}
	e.setHeaders(req)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	return nil
}
