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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	assert.NotNil(t, ErrFormat)
	assert.NotNil(t, ErrResolution)
	assert.NotNil(t, ErrAlreadyAnnotated)
	assert.NotNil(t, ErrConfig)
	assert.NotNil(t, ErrValidation)
	assert.NotNil(t, ErrIO)
}

func TestErrorWrapping(t *testing.T) {
	baseErr := fmt.Errorf("base error")

	wrappedErr := WrapFormat(12, "\tFoo\tBar", "bad operand")
	assert.True(t, errors.Is(wrappedErr, ErrFormat))
	assert.Contains(t, wrappedErr.Error(), "line 12")
	assert.Contains(t, wrappedErr.Error(), "bad operand")

	wrappedErr = WrapResolution("Function<k>7654", 4, "\tJmp\tAddr8:9", 9)
	assert.True(t, errors.Is(wrappedErr, ErrResolution))
	assert.Contains(t, wrappedErr.Error(), "Function<k>7654")
	assert.Contains(t, wrappedErr.Error(), "displacement 9")

	wrappedErr = WrapAlreadyAnnotated("Function<k>1", 3)
	assert.True(t, errors.Is(wrappedErr, ErrAlreadyAnnotated))

	wrappedErr = WrapConfigError("failed to read config file", baseErr)
	assert.True(t, errors.Is(wrappedErr, ErrConfig))
	assert.True(t, errors.Is(wrappedErr, baseErr))

	wrappedErr = WrapValidationError("workers must be positive")
	assert.True(t, errors.Is(wrappedErr, ErrValidation))
	assert.Contains(t, wrappedErr.Error(), "workers must be positive")

	wrappedErr = WrapIO("rename", "/tmp/x", baseErr)
	assert.True(t, errors.Is(wrappedErr, ErrIO))
	assert.True(t, errors.Is(wrappedErr, baseErr))
	assert.Contains(t, wrappedErr.Error(), "/tmp/x")
}

func TestTypedErrorsAs(t *testing.T) {
	err := fmt.Errorf("annotate: %w", WrapResolution("Function<f>1", 7, "\tJmp\tAddr8:3", -3))

	var resErr *ResolutionError
	require.True(t, errors.As(err, &resErr))
	assert.Equal(t, "Function<f>1", resErr.Function)
	assert.Equal(t, 7, resErr.Line)
	assert.Equal(t, int64(-3), resErr.Displacement)
	assert.False(t, errors.Is(err, ErrFormat))
}

func TestFormatErrorEndOfInput(t *testing.T) {
	err := WrapFormat(0, "", "unterminated function")
	assert.Equal(t, "malformed listing: unterminated function", err.Error())
}
