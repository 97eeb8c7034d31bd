package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartupEvent(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	Startup("explain-text").
		Version("1.2.3").
		Tool("clipboard", "xclip").
		Feature("logFile", true).
		Config("model", "gemini-2.5-flash").
		Config("credentialSource", "env").
		Event(&l).
		Msg("Run starting")

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	process, _ := doc["process"].(map[string]interface{})
	if process["name"] != "explain-text" || process["version"] != "1.2.3" {
		t.Errorf("unexpected process block: %v", process)
	}
	tools, _ := doc["tools"].(map[string]interface{})
	if tools["clipboard"] != "xclip" {
		t.Errorf("unexpected tools block: %v", tools)
	}
	features, _ := doc["features"].(map[string]interface{})
	if features["logFile"] != true {
		t.Errorf("unexpected features block: %v", features)
	}
	config, _ := doc["config"].(map[string]interface{})
	if config["model"] != "gemini-2.5-flash" || config["credentialSource"] != "env" {
		t.Errorf("unexpected config block: %v", config)
	}
}

func TestStartupEventOmitsEmptyBlocks(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	Startup("explain-screenshot").Event(&l).Msg("Run starting")

	var doc map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"tools", "features", "config"} {
		if _, ok := doc[key]; ok {
			t.Errorf("expected no %q block", key)
		}
	}
}
