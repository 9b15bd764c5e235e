package config

import (
	"testing"
	"time"
)

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"90s", 90 * time.Second},
		{"1500", 1500 * time.Millisecond},
		{"", 7 * time.Second},
		{"soon", 7 * time.Second},
	}

	for _, tt := range tests {
		t.Setenv("TEST_DURATION", tt.raw)
		got := getEnvDuration("TEST_DURATION", 7*time.Second)
		if got != tt.want {
			t.Errorf("getEnvDuration(%q) = %v; want %v", tt.raw, got, tt.want)
		}
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("TEST_LIST", " EN, ar ,,fr ")
	got := getEnvList("TEST_LIST", nil)
	want := []string{"en", "ar", "fr"}
	if len(got) != len(want) {
		t.Fatalf("len: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNarrativeAPIKey(t *testing.T) {
	c := &Config{NarrativeProvider: "OpenAI", OpenAIAPIKey: "o", GoogleAIAPIKey: "g"}
	if got := c.NarrativeAPIKey(); got != "o" {
		t.Errorf("openai key: got %q, want %q", got, "o")
	}
	c.NarrativeProvider = "gemini"
	if got := c.NarrativeAPIKey(); got != "g" {
		t.Errorf("gemini key: got %q, want %q", got, "g")
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "false")
	if getEnvBool("TEST_BOOL", true) {
		t.Error("expected false from env")
	}
	t.Setenv("TEST_BOOL", "nope")
	if !getEnvBool("TEST_BOOL", true) {
		t.Error("expected fallback for unparseable value")
	}
}
