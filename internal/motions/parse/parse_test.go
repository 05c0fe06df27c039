package parse

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/yungbote/debate-motions/internal/motions/domain"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"bare", `{"a":1}`, `{"a":1}`},
		{"prose", "Here you go:\n{\"a\":1}\nHope that helps!", `{"a":1}`},
		{"fenced", "```json\n{\"a\":{\"b\":2}}\n```", `{"a":{"b":2}}`},
		{"no braces", "not json at all", "not json at all"},
		{"reversed braces", "} oops {", "} oops {"},
		{"only open", "{ never closed", "{ never closed"},
		{"greedy", `{"a":1} and {"b":2}`, `{"a":1} and {"b":2}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSON(tc.raw); got != tc.want {
				t.Fatalf("ExtractJSON=%q want %q", got, tc.want)
			}
		})
	}
}

func TestParseMotionsNotJSON(t *testing.T) {
	_, err := ParseMotions("not json at all")
	assertKind(t, err, domain.KindParseFailure)

	var typed *domain.Error
	if !errors.As(err, &typed) || typed.Message != domain.MsgParseFailure {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestParseMotionsMultipleFragmentsFails(t *testing.T) {
	_, err := ParseMotions(`first {"motions":[]} then {"motions":[{"text":"x"}]}`)
	assertKind(t, err, domain.KindParseFailure)
}

func TestParseMotionsEmptyList(t *testing.T) {
	_, err := ParseMotions(`{"motions": []}`)
	assertKind(t, err, domain.KindValidationFailure)

	var typed *domain.Error
	if !errors.As(err, &typed) || typed.Message != domain.MsgValidationFailure {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestParseMotionsSingleMotion(t *testing.T) {
	raw := `{"context":"c","motions":[{"text":"This House bans X","reasoning":"...","category":"Politics"}]}`
	set, err := ParseMotions(raw)
	if err != nil {
		t.Fatalf("ParseMotions: %v", err)
	}
	want := domain.MotionSet{
		Context: "c",
		Motions: []domain.Motion{{Text: "This House bans X", Reasoning: "...", Category: "Politics"}},
	}
	if !reflect.DeepEqual(set, want) {
		t.Fatalf("got %+v want %+v", set, want)
	}
}

func TestParseMotionsRoundTripWithProse(t *testing.T) {
	sets := []domain.MotionSet{
		{
			Context: "Elections in several countries",
			Motions: []domain.Motion{
				{Text: "This House would make voting compulsory", Reasoning: "Turnout vs liberty", Category: "Politics"},
				{Text: "This House would lower the voting age to 16", Reasoning: "Youth enfranchisement", Category: "Politics"},
				{Text: "This House regrets social media campaigning", Reasoning: "Misinformation {and} reach"},
			},
		},
		{
			Motions: []domain.Motion{{Text: "This House would ban fossil fuel ads", Reasoning: "Climate"}},
		},
	}
	wrappers := []struct{ before, after string }{
		{"", ""},
		{"Sure! Here are the motions:\n\n", "\n\nLet me know if you need more."},
		{"```json\n", "\n```"},
		{"Based on news (as of today): ", " -- end"},
	}
	for _, set := range sets {
		body, err := json.Marshal(set)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		for _, w := range wrappers {
			got, err := ParseMotions(w.before + string(body) + w.after)
			if err != nil {
				t.Fatalf("ParseMotions(%q...): %v", w.before, err)
			}
			if !reflect.DeepEqual(got, set) {
				t.Fatalf("round trip mismatch: got %+v want %+v", got, set)
			}
		}
	}
}

func TestValidateFailures(t *testing.T) {
	cases := map[string]string{
		"motions absent":       `{"context":"c"}`,
		"motions null":         `{"motions":null}`,
		"motions not array":    `{"motions":"This House..."}`,
		"motions object":       `{"motions":{"text":"x"}}`,
		"entry not object":     `{"motions":["This House bans X"]}`,
		"entry null":           `{"motions":[null]}`,
		"text not string":      `{"motions":[{"text":42,"reasoning":"r"}]}`,
		"category not string":  `{"motions":[{"text":"t","reasoning":"r","category":["a"]}]}`,
		"context not string":   `{"context":7,"motions":[{"text":"t","reasoning":"r"}]}`,
		"payload is array":     `[{"text":"t"}]`,
		"payload is primitive": `42`,
		"payload is null":      `null`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Validate([]byte(payload))
			assertKind(t, err, domain.KindValidationFailure)
		})
	}
}

func TestValidateToleratesMissingFields(t *testing.T) {
	set, err := Validate([]byte(`{"context":null,"motions":[{"category":"Tech"},{"text":"This House would tax robots","extra":true}]}`))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if set.Context != "" {
		t.Fatalf("context=%q", set.Context)
	}
	if len(set.Motions) != 2 {
		t.Fatalf("motions=%d", len(set.Motions))
	}
	if set.Motions[0].Text != "" || set.Motions[0].Category != "Tech" {
		t.Fatalf("unexpected first motion: %+v", set.Motions[0])
	}
	if set.Motions[1].Text != "This House would tax robots" || set.Motions[1].Reasoning != "" {
		t.Fatalf("unexpected second motion: %+v", set.Motions[1])
	}
}

func TestValidateRejectsInvalidJSON(t *testing.T) {
	_, err := Validate([]byte(`{"motions":[`))
	assertKind(t, err, domain.KindParseFailure)
}

func assertKind(t *testing.T, err error, kind domain.ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var typed *domain.Error
	if !errors.As(err, &typed) {
		t.Fatalf("expected *domain.Error, got %T: %v", err, err)
	}
	if typed.Kind != kind {
		t.Fatalf("kind=%s want %s (%v)", typed.Kind, kind, err)
	}
}
