// SPDX-License-Identifier:Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	want := &config{
		Socket:      "/tmp/vpp/api.sock",
		ClientName:  "agent",
		QueueLength: 64,
		Prefix:      "vpp1",
		Nonblocking: true,
		Timeout:     1500 * time.Millisecond,
		LogLevel:    "debug",
		APIFiles:    []string{"a.api.json", "b.api.json"},
	}

	tests := []struct {
		desc    string
		name    string
		content string
	}{
		{
			desc: "toml",
			name: "vppctl.toml",
			content: `
socket = "/tmp/vpp/api.sock"
client_name = "agent"
queue_length = 64
prefix = "vpp1"
nonblocking = true
timeout = "1.5s"
log_level = "debug"
api_files = ["a.api.json", "b.api.json"]
`,
		},
		{
			desc: "yaml",
			name: "vppctl.yaml",
			content: `
socket: /tmp/vpp/api.sock
client_name: agent
queue_length: 64
prefix: vpp1
nonblocking: true
timeout: 1.5s
log_level: debug
api_files:
  - a.api.json
  - b.api.json
`,
		},
		{
			desc: "json",
			name: "vppctl.json",
			content: `{"socket": "/tmp/vpp/api.sock", "client_name": "agent", "queue_length": 64, "prefix": "vpp1",
"nonblocking": true, "timeout": "1.5s", "log_level": "debug", "api_files": ["a.api.json", "b.api.json"]}`,
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			cfg, err := loadConfig(writeFile(t, test.name, test.content))
			if err != nil {
				t.Fatalf("load: %s", err)
			}
			if diff := cmp.Diff(want, cfg); diff != "" {
				t.Errorf("config (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadConfigPartial(t *testing.T) {
	cfg, err := loadConfig(writeFile(t, "c.toml", `client_name = "other"`))
	if err != nil {
		t.Fatalf("load: %s", err)
	}
	want := defaultConfig()
	want.ClientName = "other"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}

	cfg, err = loadConfig("")
	if err != nil {
		t.Fatalf("load defaults: %s", err)
	}
	if diff := cmp.Diff(defaultConfig(), cfg); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		desc    string
		name    string
		content string
	}{
		{"unknown toml key", "c.toml", `sockett = "x"`},
		{"unknown yaml key", "c.yaml", `sockett: x`},
		{"bad timeout", "c.yaml", `timeout: soon`},
		{"bad toml", "c.toml", `socket = `},
		{"unsupported extension", "c.ini", `socket=x`},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			if _, err := loadConfig(writeFile(t, test.name, test.content)); err == nil {
				t.Error("config accepted")
			}
		})
	}
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestApplyFlags(t *testing.T) {
	a := &app{}
	fs := a.rootCmd().PersistentFlags()
	if err := fs.Parse([]string{"--socket", "/run/other.sock", "--timeout", "2s", "--nonblocking", "--api", "x.api.json,y.api.json"}); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.ClientName = "from-file"
	if err := applyFlags(cfg, fs); err != nil {
		t.Fatalf("apply: %s", err)
	}
	want := defaultConfig()
	want.ClientName = "from-file"
	want.Socket = "/run/other.sock"
	want.Timeout = 2 * time.Second
	want.Nonblocking = true
	want.APIFiles = []string{"x.api.json", "y.api.json"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestLayering(t *testing.T) {
	t.Setenv("VPPCTL_SOCKET", "/from-env.sock")
	t.Setenv("VPPCTL_LOG_LEVEL", "warn")

	cfg, err := loadConfig(writeFile(t, "c.yaml", "socket: /from-file.sock\nlog_level: debug\n"))
	if err != nil {
		t.Fatalf("load: %s", err)
	}
	applyEnv(cfg)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("socket", "", "")
	fs.String("log-level", "", "")
	if err := fs.Parse([]string{"--log-level", "error"}); err != nil {
		t.Fatal(err)
	}
	if err := applyFlags(cfg, fs); err != nil {
		t.Fatalf("apply: %s", err)
	}
	if cfg.Socket != "/from-env.sock" {
		t.Errorf("environment should override the file, got %s", cfg.Socket)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("flags should override the environment, got %s", cfg.LogLevel)
	}
}

func TestApplyFlagsUnset(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("socket", "/default.sock", "")
	if err := fs.Parse(nil); err != nil {
		t.Fatal(err)
	}
	cfg := defaultConfig()
	cfg.Socket = "/from-file.sock"
	if err := applyFlags(cfg, fs); err != nil {
		t.Fatalf("apply: %s", err)
	}
	if cfg.Socket != "/from-file.sock" {
		t.Errorf("flag default overrode the file: %s", cfg.Socket)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		desc   string
		modify func(*config)
	}{
		{"empty name", func(c *config) { c.ClientName = "" }},
		{"long name", func(c *config) { c.ClientName = string(make([]byte, 64)) }},
		{"negative timeout", func(c *config) { c.Timeout = -time.Second }},
		{"negative queue", func(c *config) { c.QueueLength = -1 }},
	}
	if err := defaultConfig().validate(); err != nil {
		t.Errorf("defaults invalid: %s", err)
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			cfg := defaultConfig()
			test.modify(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("config accepted")
			}
		})
	}
}
