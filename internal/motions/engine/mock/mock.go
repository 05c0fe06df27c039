package mock

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/yungbote/debate-motions/internal/motions/engine"
)

const searchPrefix = "Search for: "

// Engine answers with a fixed set of motions derived from the user message so
// the service can run without a Perplexity key.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Complete(ctx context.Context, model string, messages []engine.Message, opts engine.GenerateOptions) (string, error) {
	_ = ctx
	_ = model
	_ = opts

	query := "current events"
	for i := len(messages) - 1; i >= 0; i-- {
		if !strings.EqualFold(messages[i].Role, "user") {
			continue
		}
		line, _, _ := strings.Cut(messages[i].Content, "\n")
		if q := strings.TrimSpace(strings.TrimPrefix(line, searchPrefix)); q != "" {
			query = q
		}
		break
	}

	payload := map[string]any{
		"context": "Mock context for: " + query,
		"motions": []map[string]string{
			{
				"text":      "This House would prioritise public interest over commercial interest in " + query,
				"reasoning": "Pits market freedom against collective welfare.",
				"category":  "Politics",
			},
			{
				"text":      "This House regrets the media coverage of " + query,
				"reasoning": "Invites debate on framing, sensationalism and public trust.",
				"category":  "Society",
			},
			{
				"text":      "This House believes technology companies should be held liable for harms linked to " + query,
				"reasoning": "Balances innovation against accountability.",
				"category":  "Technology",
			},
		},
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return "Here are the motions:\n" + string(b), nil
}
