// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/dotandev/hbclabel/internal/errors"
)

// MaxWorkers bounds the annotation worker pool.
const MaxWorkers = 64

// BuildVersion is checked against RequiredVersion. It is set by the cmd
// package from the -ldflags injected version.
var BuildVersion = "dev"

// Validator validates a specific aspect of the configuration.
type Validator interface {
	Validate(cfg *Config) error
}

// WorkersValidator checks the worker pool size.
type WorkersValidator struct{}

func (v WorkersValidator) Validate(cfg *Config) error {
	if cfg.Workers < 1 || cfg.Workers > MaxWorkers {
		return errors.WrapValidationError("workers must be between 1 and " + strconv.Itoa(MaxWorkers))
	}
	return nil
}

// LogLevelValidator checks that the log level is a known value.
type LogLevelValidator struct{}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (v LogLevelValidator) Validate(cfg *Config) error {
	if cfg.LogLevel == "" {
		return nil
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return errors.WrapValidationError("log_level must be one of: debug, info, warn, error")
	}
	return nil
}

// DefaultFileValidator checks that a default listing name is configured.
type DefaultFileValidator struct{}

func (v DefaultFileValidator) Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.DefaultFile) == "" {
		return errors.WrapValidationError("default_file cannot be empty")
	}
	return nil
}

// ExemptOpcodesValidator checks that exempt entries look like opcode names.
type ExemptOpcodesValidator struct{}

var opcodeName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (v ExemptOpcodesValidator) Validate(cfg *Config) error {
	for i, op := range cfg.ExemptOpcodes {
		if !opcodeName.MatchString(op) {
			return errors.WrapValidationError("exempt_opcodes[" + strconv.Itoa(i) + "] is not an opcode name: " + strconv.Quote(op))
		}
	}
	return nil
}

// TelemetryValidator checks that an exporter endpoint is set when enabled.
type TelemetryValidator struct{}

func (v TelemetryValidator) Validate(cfg *Config) error {
	if !cfg.TelemetryEnabled {
		return nil
	}
	ep := cfg.TelemetryEndpoint
	if ep == "" {
		return errors.WrapValidationError("telemetry_endpoint cannot be empty when telemetry is enabled")
	}
	if strings.Contains(ep, "://") {
		return errors.WrapValidationError("telemetry_endpoint must be host:port without a scheme")
	}
	return nil
}

// VersionValidator checks RequiredVersion against BuildVersion. Development
// builds satisfy any constraint.
type VersionValidator struct{}

func (v VersionValidator) Validate(cfg *Config) error {
	if cfg.RequiredVersion == "" {
		return nil
	}
	constraint, err := version.NewConstraint(cfg.RequiredVersion)
	if err != nil {
		return errors.WrapValidationError("required_version is not a valid constraint: " + err.Error())
	}

	current := strings.TrimPrefix(BuildVersion, "v")
	if current == "dev" || current == "" {
		return nil
	}
	cur, err := version.NewVersion(current)
	if err != nil {
		return errors.WrapValidationError("build version " + strconv.Quote(BuildVersion) + " is not a version")
	}
	if !constraint.Check(cur) {
		return errors.WrapValidationError("hbclabel " + current + " does not satisfy required_version " + cfg.RequiredVersion)
	}
	return nil
}

// DefaultValidators returns the standard set of validators.
func DefaultValidators() []Validator {
	return []Validator{
		DefaultFileValidator{},
		WorkersValidator{},
		LogLevelValidator{},
		ExemptOpcodesValidator{},
		TelemetryValidator{},
		VersionValidator{},
	}
}

// RunValidators executes each validator against the config, returning the
// first error encountered.
func RunValidators(cfg *Config, validators []Validator) error {
	for _, v := range validators {
		if err := v.Validate(cfg); err != nil {
			return err
		}
	}
	return nil
}
