package domain

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
)

func TestErrorMatchesKindSentinel(t *testing.T) {
	err := NewError(KindAuthFailure, "", io.EOF)

	if !errors.Is(err, ErrAuthFailure) {
		t.Fatalf("expected errors.Is(err, ErrAuthFailure)")
	}
	if errors.Is(err, ErrTransportFailure) {
		t.Fatalf("auth failure must not match transport sentinel")
	}
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected cause to be reachable through Unwrap")
	}

	var typed *Error
	if !errors.As(error(err), &typed) || typed.Kind != KindAuthFailure {
		t.Fatalf("errors.As failed: %#v", typed)
	}
}

func TestMessageFor(t *testing.T) {
	cases := []struct {
		kind   ErrorKind
		detail string
		want   string
	}{
		{KindConfigMissing, "", MsgConfigMissing},
		{KindInputInvalid, "ignored", MsgInputInvalid},
		{KindAuthFailure, "", MsgAuthFailure},
		{KindTransportFailure, "connection refused", "Failed to generate motions: connection refused"},
		{KindTransportFailure, "  ", MsgUnexpected},
		{KindEmptyReply, "", MsgEmptyReply},
		{KindParseFailure, "", MsgParseFailure},
		{KindValidationFailure, "", MsgValidationFailure},
		{KindUnexpected, "", MsgUnexpected},
		{ErrorKind("bogus"), "", MsgUnexpected},
	}
	for _, tc := range cases {
		if got := MessageFor(tc.kind, tc.detail); got != tc.want {
			t.Fatalf("MessageFor(%s, %q)=%q want %q", tc.kind, tc.detail, got, tc.want)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	if got := KindInputInvalid.HTTPStatus(); got != http.StatusBadRequest {
		t.Fatalf("invalid input status=%d", got)
	}
	if got := KindConfigMissing.HTTPStatus(); got != http.StatusServiceUnavailable {
		t.Fatalf("config missing status=%d", got)
	}
	if got := KindParseFailure.HTTPStatus(); got != http.StatusBadGateway {
		t.Fatalf("parse failure status=%d", got)
	}
	if got := KindUnexpected.HTTPStatus(); got != http.StatusInternalServerError {
		t.Fatalf("unexpected status=%d", got)
	}
}

func TestResultJSONEnvelope(t *testing.T) {
	ok := Ok(MotionSet{Context: "c", Motions: []Motion{{Text: "This House bans X", Reasoning: "r"}}})
	b, err := json.Marshal(ok)
	if err != nil {
		t.Fatalf("marshal ok: %v", err)
	}
	want := `{"success":true,"data":{"context":"c","motions":[{"text":"This House bans X","reasoning":"r"}]}}`
	if string(b) != want {
		t.Fatalf("ok json=%s", b)
	}

	failed := Fail[MotionSet](KindParseFailure, MsgParseFailure)
	b, err = json.Marshal(failed)
	if err != nil {
		t.Fatalf("marshal fail: %v", err)
	}
	want = `{"success":false,"error":"Failed to parse AI response. Please try again.","code":"parse_failure"}`
	if string(b) != want {
		t.Fatalf("fail json=%s", b)
	}

	var back Result[MotionSet]
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.IsOK() || back.Code != KindParseFailure || back.Message != MsgParseFailure {
		t.Fatalf("unexpected decoded result: %+v", back)
	}
}

func TestFailWithNil(t *testing.T) {
	r := FailWith[MotionSet](nil)
	if r.Kind != ResultError || r.Code != KindUnexpected || r.Message != MsgUnexpected {
		t.Fatalf("unexpected result: %+v", r)
	}
}
