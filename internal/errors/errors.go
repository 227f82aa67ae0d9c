// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is
var (
	ErrFormat           = errors.New("malformed listing")
	ErrResolution       = errors.New("branch target not resolved")
	ErrAlreadyAnnotated = errors.New("listing already annotated")
	ErrConfig           = errors.New("configuration error")
	ErrValidation       = errors.New("validation error")
	ErrIO               = errors.New("i/o error")
)

// FormatError reports a line the listing parser could not accept.
// Line is 1-based within the whole listing; 0 means end of input.
type FormatError struct {
	Line   int
	Text   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", ErrFormat, e.Reason)
	}
	return fmt.Sprintf("%s: line %d: %s: %q", ErrFormat, e.Line, e.Reason, e.Text)
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// ResolutionError reports a displacement that never lands exactly on an
// instruction boundary.
type ResolutionError struct {
	Function     string
	Line         int
	Text         string
	Displacement int64
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: %s line %d: displacement %d: %q",
		ErrResolution, e.Function, e.Line, e.Displacement, e.Text)
}

func (e *ResolutionError) Unwrap() error { return ErrResolution }

// AlreadyAnnotatedError is returned when a branch is already followed by
// its own reference marker.
type AlreadyAnnotatedError struct {
	Function string
	Line     int
}

func (e *AlreadyAnnotatedError) Error() string {
	return fmt.Sprintf("%s: %s line %d already carries a label reference",
		ErrAlreadyAnnotated, e.Function, e.Line)
}

func (e *AlreadyAnnotatedError) Unwrap() error { return ErrAlreadyAnnotated }

// Wrap functions for consistent error wrapping
func WrapFormat(line int, text, reason string) error {
	return &FormatError{Line: line, Text: text, Reason: reason}
}

func WrapResolution(function string, line int, text string, displacement int64) error {
	return &ResolutionError{Function: function, Line: line, Text: text, Displacement: displacement}
}

func WrapAlreadyAnnotated(function string, line int) error {
	return &AlreadyAnnotatedError{Function: function, Line: line}
}

func WrapConfigError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrConfig, msg, err)
}

func WrapValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func WrapIO(op, path string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, path, err)
}
