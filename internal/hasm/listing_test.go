// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package hasm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	herrors "github.com/dotandev/hbclabel/internal/errors"
)

func TestParseCanonical(t *testing.T) {
	b := mustBlock(t, canonical)

	assert.Equal(t, 0, b.Index)
	assert.Equal(t, "Function<k>7654", b.Ident)
	assert.Equal(t, 0, b.Start)
	require.Len(t, b.Lines, 8)
	assert.Equal(t, KindHeader, b.Lines[0].Kind)
	assert.Equal(t, KindEnd, b.Lines[7].Kind)
	assert.Equal(t, []int{3}, b.Branches())
	assert.True(t, b.HasBranches())
	assert.Equal(t, 4, b.LineNo(3))
}

func TestParseMultipleBlocksAndOutsideText(t *testing.T) {
	text := listing(
		"; header comment",
		"Function<a>1(1 params, 1 registers, 0 symbols):",
		"\tRet                 \tReg8:0",
		"EndFunction",
		"",
		"Function<b>2(1 params, 1 registers, 0 symbols):",
		"\tJmp                 \tAddr8:0",
		"EndFunction",
	)
	lst := mustParse(t, text)
	require.Len(t, lst.Blocks, 2)

	assert.Equal(t, "Function<a>1", lst.Blocks[0].Ident)
	assert.Equal(t, 1, lst.Blocks[0].Start)
	assert.False(t, lst.Blocks[0].HasBranches())
	assert.Equal(t, "Function<b>2", lst.Blocks[1].Ident)
	assert.Equal(t, 1, lst.Blocks[1].Index)
	assert.Equal(t, 5, lst.Blocks[1].Start)

	assert.Equal(t, text, lst.Assemble(nil))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
	}{
		{
			name: "unterminated",
			text: listing("Function<a>1():", "\tRet\tReg8:0"),
			line: 0,
		},
		{
			name: "start inside block",
			text: listing("Function<a>1():", "\tRet\tReg8:0", "Function<b>2():", "EndFunction"),
			line: 3,
		},
		{
			name: "stray end",
			text: listing("EndFunction"),
			line: 1,
		},
		{
			name: "bad operand",
			text: listing("Function<a>1():", "\tRet\tReg8", "EndFunction"),
			line: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, herrors.ErrFormat))

			var fe *herrors.FormatError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.line, fe.Line)
		})
	}
}

func TestParseCRLF(t *testing.T) {
	text := "Function<a>1():\r\n\tJmp\tAddr8:2\r\n\tRet\tReg8:0\r\nEndFunction\r\n"
	lst := mustParse(t, text)
	require.Len(t, lst.Blocks, 1)
	assert.True(t, lst.Blocks[0].CR)
	assert.Equal(t, text, lst.Assemble(nil))

	rendered, _, err := Annotate(lst.Blocks[0], NewWidthModel())
	require.NoError(t, err)
	out := lst.Assemble([][]string{rendered})
	assert.Equal(t, "Function<a>1():\r\n\tJmp\tAddr8:2\r\n;L0\r\n;L0:\r\n\tRet\tReg8:0\r\nEndFunction\r\n", out)
}

func TestAssembleReplacesOnlyGivenBlocks(t *testing.T) {
	text := listing(
		"Function<a>1():",
		"\tRet\tReg8:0",
		"EndFunction",
		"Function<b>2():",
		"\tRet\tReg8:1",
		"EndFunction",
	)
	lst := mustParse(t, text)
	out := lst.Assemble([][]string{nil, {"Function<b>2():", ";x", "\tRet\tReg8:1", "EndFunction"}})
	assert.Equal(t, listing(
		"Function<a>1():",
		"\tRet\tReg8:0",
		"EndFunction",
		"Function<b>2():",
		";x",
		"\tRet\tReg8:1",
		"EndFunction",
	), out)
}

func TestParseEmpty(t *testing.T) {
	lst := mustParse(t, "")
	assert.Empty(t, lst.Blocks)
	assert.Equal(t, "", lst.Assemble(nil))
}
