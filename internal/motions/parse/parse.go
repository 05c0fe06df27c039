package parse

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/debate-motions/internal/motions/domain"
)

// ExtractJSON returns the text from the first '{' through the last '}'. Models
// like to wrap JSON in prose or code fences; when no such span exists the
// whole reply is returned and left for the decoder to reject.
func ExtractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return raw
	}
	return raw[start : end+1]
}

// ParseMotions extracts the JSON payload of a model reply and validates it.
func ParseMotions(raw string) (domain.MotionSet, error) {
	candidate := []byte(ExtractJSON(raw))

	var probe json.RawMessage
	if err := json.Unmarshal(candidate, &probe); err != nil {
		return domain.MotionSet{}, domain.NewError(domain.KindParseFailure, "", fmt.Errorf("decode reply (%s): %w", snippet(string(candidate)), err))
	}
	return Validate(candidate)
}

type motionFields struct {
	Text      *string `json:"text"`
	Reasoning *string `json:"reasoning"`
	Category  *string `json:"category"`
}

// Validate checks the decoded reply for a non-empty motions array. Entries
// must be objects whose known fields are strings; missing text or reasoning
// is passed through as empty.
func Validate(payload []byte) (domain.MotionSet, error) {
	if !json.Valid(payload) {
		return domain.MotionSet{}, domain.NewError(domain.KindParseFailure, "", errors.New("payload is not valid json"))
	}
	if !isObject(payload) {
		return domain.MotionSet{}, invalid("payload is not an object")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return domain.MotionSet{}, invalid("decode payload: %v", err)
	}

	rawMotions, ok := obj["motions"]
	if !ok || isNull(rawMotions) {
		return domain.MotionSet{}, invalid("motions missing")
	}
	if !isArray(rawMotions) {
		return domain.MotionSet{}, invalid("motions is not an array")
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(rawMotions, &entries); err != nil {
		return domain.MotionSet{}, invalid("decode motions: %v", err)
	}
	if len(entries) == 0 {
		return domain.MotionSet{}, invalid("motions is empty")
	}

	out := domain.MotionSet{Motions: make([]domain.Motion, 0, len(entries))}
	for i, entry := range entries {
		if !isObject(entry) {
			return domain.MotionSet{}, invalid("motions[%d] is not an object", i)
		}
		var f motionFields
		if err := json.Unmarshal(entry, &f); err != nil {
			return domain.MotionSet{}, invalid("motions[%d]: %v", i, err)
		}
		out.Motions = append(out.Motions, domain.Motion{
			Text:      deref(f.Text),
			Reasoning: deref(f.Reasoning),
			Category:  deref(f.Category),
		})
	}

	if rawCtx, ok := obj["context"]; ok && !isNull(rawCtx) {
		if err := json.Unmarshal(rawCtx, &out.Context); err != nil {
			return domain.MotionSet{}, invalid("context: %v", err)
		}
	}

	return out, nil
}

func invalid(format string, args ...any) error {
	return domain.NewError(domain.KindValidationFailure, "", fmt.Errorf(format, args...))
}

func firstByte(raw []byte) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isObject(raw []byte) bool { return firstByte(raw) == '{' }
func isArray(raw []byte) bool  { return firstByte(raw) == '[' }

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
