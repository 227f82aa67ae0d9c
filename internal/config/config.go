// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dotandev/hbclabel/internal/errors"
)

const (
	// DefaultFile is processed when no path is given on the command line.
	DefaultFile = "instruction.hasm"

	fileName  = ".hbclabel.toml"
	envPrefix = "HBCLABEL_"
)

// Config represents the general configuration for hbclabel
type Config struct {
	DefaultFile string
	LogLevel    string
	LogJSON     bool
	Workers     int

	// ExemptOpcodes lists opcodes whose first operand shares a byte with
	// the opcode, making the instruction one byte narrower.
	ExemptOpcodes []string

	TelemetryEnabled  bool
	TelemetryEndpoint string

	// JournalPath enables the SQLite run journal when non-empty.
	JournalPath string

	// RequiredVersion is a version constraint such as ">= 1.2" that the
	// running binary must satisfy.
	RequiredVersion string
}

var defaultConfig = &Config{
	DefaultFile:       DefaultFile,
	LogLevel:          "warn",
	Workers:           1,
	TelemetryEndpoint: "localhost:4318",
}

func DefaultConfig() *Config {
	c := *defaultConfig
	c.ExemptOpcodes = nil
	return &c
}

// Load builds the configuration from defaults, the first config file found
// (working directory, then home), and HBCLABEL_* environment variables, in
// that order of precedence.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range searchPaths() {
		loaded, err := cfg.loadFile(path)
		if err != nil {
			return nil, err
		}
		if loaded {
			break
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func searchPaths() []string {
	paths := []string{fileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, fileName))
	}
	return paths
}

// loadFile applies path if it exists. A missing file is not an error.
func (c *Config) loadFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapConfigError("failed to read config file", err)
	}
	if err := c.parseTOML(string(data)); err != nil {
		return false, errors.WrapConfigError("failed to parse "+path, err)
	}
	return true, nil
}

func (c *Config) parseTOML(content string) error {
	for n, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, rawVal, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("line %d: expected key = value", n+1)
		}
		key = strings.TrimSpace(key)
		rawVal = strings.TrimSpace(rawVal)

		if err := c.set(key, rawVal); err != nil {
			return fmt.Errorf("line %d: %w", n+1, err)
		}
	}
	return nil
}

func (c *Config) loadEnv() error {
	for _, key := range []string{
		"default_file",
		"log_level",
		"log_json",
		"workers",
		"exempt_opcodes",
		"telemetry_enabled",
		"telemetry_endpoint",
		"journal_path",
		"required_version",
	} {
		value, ok := os.LookupEnv(envPrefix + strings.ToUpper(key))
		if !ok {
			continue
		}
		if err := c.set(key, value); err != nil {
			return errors.WrapConfigError(envPrefix+strings.ToUpper(key), err)
		}
	}
	return nil
}

func (c *Config) set(key, rawVal string) error {
	switch key {
	case "default_file":
		c.DefaultFile = unquote(rawVal)
	case "log_level":
		c.LogLevel = unquote(rawVal)
	case "log_json":
		c.LogJSON = parseBool(rawVal)
	case "workers":
		n, err := strconv.Atoi(unquote(rawVal))
		if err != nil {
			return fmt.Errorf("workers: %w", err)
		}
		c.Workers = n
	case "exempt_opcodes":
		c.ExemptOpcodes = parseList(rawVal)
	case "telemetry_enabled":
		c.TelemetryEnabled = parseBool(rawVal)
	case "telemetry_endpoint":
		c.TelemetryEndpoint = unquote(rawVal)
	case "journal_path":
		c.JournalPath = unquote(rawVal)
	case "required_version":
		c.RequiredVersion = unquote(rawVal)
	default:
		return fmt.Errorf("unknown key %q", key)
	}
	return nil
}

func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'")
}

func parseBool(s string) bool {
	switch strings.ToLower(unquote(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// parseList accepts ["a", "b"] as well as a bare comma-separated string.
func parseList(s string) []string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		s = strings.Trim(s, "[]")
	} else {
		s = unquote(s)
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = unquote(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	return RunValidators(c, DefaultValidators())
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{DefaultFile: %s, LogLevel: %s, Workers: %d, Exempt: %v, Telemetry: %t, Journal: %s}",
		c.DefaultFile, c.LogLevel, c.Workers, c.ExemptOpcodes, c.TelemetryEnabled, c.JournalPath,
	)
}
