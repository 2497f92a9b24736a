package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestCtx_CarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	ctx := WithRequestID(context.Background(), "req-42")
	Ctx(ctx).Info().Str("path", "/users").Msg("handled")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("request_id = %v, want req-42", entry["request_id"])
	}
	if entry["message"] != "handled" {
		t.Errorf("message = %v, want handled", entry["message"])
	}
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Output: &buf})
	t.Cleanup(func() { Init(Config{}) })

	Ctx(context.Background()).Warn().Msg("no request")
	if buf.Len() == 0 {
		t.Fatal("expected global logger to write output")
	}
}

func TestParseLevel(t *testing.T) {
	if got := parseLevel("WARNING"); got.String() != "warn" {
		t.Errorf("parseLevel(WARNING) = %s, want warn", got)
	}
	if got := parseLevel(""); got.String() != "info" {
		t.Errorf("parseLevel(\"\") = %s, want info", got)
	}
}
