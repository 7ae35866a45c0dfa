package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_ContextLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}

	if err := cfg.AddContext("local", &Context{
		Backend: "openai",
		Model:   "llama3",
		BaseURL: "http://localhost:11434/v1",
	}); err != nil {
		t.Fatalf("AddContext error: %v", err)
	}
	if err := cfg.AddContext("cloud", &Context{
		Backend: "gemini",
		APIKey:  "g-secret",
	}); err != nil {
		t.Fatalf("AddContext error: %v", err)
	}
	if err := cfg.UseContext("local"); err != nil {
		t.Fatalf("UseContext error: %v", err)
	}

	// Reload from disk and resolve.
	cfg2, err := LoadConfigWithPath(path)
	if err != nil {
		t.Fatalf("reload error: %v", err)
	}
	ctx, err := cfg2.ResolveContext("")
	if err != nil {
		t.Fatalf("ResolveContext error: %v", err)
	}
	if ctx.Name != "local" || ctx.Backend != "openai" || ctx.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("resolved context = %+v", ctx)
	}

	if got := cfg2.ListContexts(); len(got) != 2 || got[0] != "cloud" || got[1] != "local" {
		t.Errorf("ListContexts = %v", got)
	}

	if err := cfg2.DeleteContext("local"); err != nil {
		t.Fatalf("DeleteContext error: %v", err)
	}
	if cfg2.CurrentContext != "" {
		t.Errorf("CurrentContext = %q after deleting it", cfg2.CurrentContext)
	}
	if _, err := cfg2.ResolveContext("local"); err == nil {
		t.Error("ResolveContext of deleted context returned nil error")
	}
}

func TestConfig_UseUnknownContext(t *testing.T) {
	cfg, err := LoadConfigWithPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfigWithPath error: %v", err)
	}
	if err := cfg.UseContext("ghost"); err == nil {
		t.Error("UseContext of unknown context returned nil error")
	}
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"", ""},
		{"short", "*****"},
		{"sk-1234567890abcdef", "sk-1***********cdef"},
	}
	for _, tt := range tests {
		if got := MaskAPIKey(tt.key); got != tt.want {
			t.Errorf("MaskAPIKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFormatLapTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "-:--.---"},
		{91.803, "1:31.803"},
		{59.5, "0:59.500"},
		{125.0, "2:05.000"},
	}
	for _, tt := range tests {
		if got := FormatLapTime(tt.seconds); got != tt.want {
			t.Errorf("FormatLapTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatLatency(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m30.0s"},
	}
	for _, tt := range tests {
		if got := FormatLatency(tt.d); got != tt.want {
			t.Errorf("FormatLatency(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	err := Output(map[string]string{"response": "box box"}, OutputOptions{
		Format: FormatJSON,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if !strings.Contains(buf.String(), `"response": "box box"`) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestOutput_Raw(t *testing.T) {
	var buf bytes.Buffer
	if err := Output("plain text", OutputOptions{Format: FormatRaw, Writer: &buf}); err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if buf.String() != "plain text" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestConsole_Transcript(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, DefaultTheme)
	c.clock = func() time.Time {
		return time.Date(2025, 3, 9, 14, 30, 5, 0, time.UTC)
	}

	if err := c.Driver("how are my tires"); err != nil {
		t.Fatalf("Driver error: %v", err)
	}
	if err := c.EmitText("s1", "Tires are fine."); err != nil {
		t.Fatalf("EmitText error: %v", err)
	}
	if err := c.Notice("telemetry degraded, using mock data"); err != nil {
		t.Fatalf("Notice error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"14:30:05",
		"driver ≫",
		"how are my tires",
		"engineer ≫",
		"Tires are fine.",
		"telemetry degraded, using mock data",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q:\n%s", want, out)
		}
	}
}
