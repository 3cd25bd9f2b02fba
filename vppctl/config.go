// SPDX-License-Identifier:Apache-2.0

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"go.universe.tf/vppapi/internal/env"
	"go.universe.tf/vppapi/internal/logging"
	"go.universe.tf/vppapi/internal/socket"
)

// config is the effective configuration of one vppctl run.
type config struct {
	Socket      string
	ClientName  string
	QueueLength int
	Prefix      string
	Nonblocking bool
	Timeout     time.Duration
	LogLevel    string
	APIFiles    []string
}

// fileConfig is the on-disk form. TOML and YAML files share the keys.
type fileConfig struct {
	Socket      *string  `toml:"socket" yaml:"socket"`
	ClientName  *string  `toml:"client_name" yaml:"client_name"`
	QueueLength *int     `toml:"queue_length" yaml:"queue_length"`
	Prefix      *string  `toml:"prefix" yaml:"prefix"`
	Nonblocking *bool    `toml:"nonblocking" yaml:"nonblocking"`
	Timeout     *string  `toml:"timeout" yaml:"timeout"`
	LogLevel    *string  `toml:"log_level" yaml:"log_level"`
	APIFiles    []string `toml:"api_files" yaml:"api_files"`
}

func defaultConfig() *config {
	return &config{
		Socket:      socket.DefaultPath,
		ClientName:  "vppctl",
		QueueLength: 32,
		Timeout:     5 * time.Second,
		LogLevel:    string(logging.LevelInfo),
	}
}

// loadConfig returns the defaults overlaid with the file at path, if
// any. The format follows the file extension.
func loadConfig(path string) (*config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	var raw fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		meta, err := toml.NewDecoder(bytes.NewReader(b)).Decode(&raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Errorf("config %s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml", ".json":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&raw); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
	default:
		return nil, errors.Errorf("config %s: unsupported format %q", path, ext)
	}
	if err := raw.apply(cfg); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func (raw *fileConfig) apply(cfg *config) error {
	if raw.Socket != nil {
		cfg.Socket = *raw.Socket
	}
	if raw.ClientName != nil {
		cfg.ClientName = *raw.ClientName
	}
	if raw.QueueLength != nil {
		cfg.QueueLength = *raw.QueueLength
	}
	if raw.Prefix != nil {
		cfg.Prefix = *raw.Prefix
	}
	if raw.Nonblocking != nil {
		cfg.Nonblocking = *raw.Nonblocking
	}
	if raw.Timeout != nil {
		d, err := time.ParseDuration(strings.TrimSpace(*raw.Timeout))
		if err != nil {
			return errors.Wrap(err, "parsing timeout")
		}
		cfg.Timeout = d
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}
	if raw.APIFiles != nil {
		cfg.APIFiles = raw.APIFiles
	}
	return nil
}

// applyEnv overrides cfg with the settings found in the environment.
func applyEnv(cfg *config) {
	if s, ok := env.Socket(); ok {
		cfg.Socket = s
	}
	if l, ok := env.LogLevel(); ok {
		cfg.LogLevel = l
	}
}

// applyFlags overrides cfg with the flags set on the command line.
func applyFlags(cfg *config, fs *pflag.FlagSet) error {
	var err error
	set := func(name string, apply func() error) {
		if err == nil && fs.Changed(name) {
			err = errors.Wrapf(apply(), "flag --%s", name)
		}
	}
	set("socket", func() (e error) { cfg.Socket, e = fs.GetString("socket"); return })
	set("client-name", func() (e error) { cfg.ClientName, e = fs.GetString("client-name"); return })
	set("log-level", func() (e error) { cfg.LogLevel, e = fs.GetString("log-level"); return })
	set("nonblocking", func() (e error) { cfg.Nonblocking, e = fs.GetBool("nonblocking"); return })
	set("timeout", func() (e error) { cfg.Timeout, e = fs.GetDuration("timeout"); return })
	set("api", func() (e error) { cfg.APIFiles, e = fs.GetStringSlice("api"); return })
	return err
}

func (cfg *config) validate() error {
	if cfg.ClientName == "" {
		return errors.New("client name must not be empty")
	}
	if len(cfg.ClientName) > 63 {
		return errors.Errorf("client name %q is longer than 63 bytes", cfg.ClientName)
	}
	if cfg.Timeout < 0 {
		return errors.Errorf("negative timeout %s", cfg.Timeout)
	}
	if cfg.QueueLength < 0 {
		return errors.Errorf("negative queue length %d", cfg.QueueLength)
	}
	return nil
}
