// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package hasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperandWidth(t *testing.T) {
	m := NewWidthModel()
	tests := map[string]int{
		"Reg8":   1,
		"UInt8":  1,
		"Addr8":  1,
		"UInt16": 2,
		"Reg32":  4,
		"UInt32": 4,
		"Imm32":  4,
		"Addr32": 4,
		"UInt64": 8,
		"Double": 8,
		"Other":  1,
	}
	for tag, want := range tests {
		assert.Equal(t, want, m.OperandWidth(tag), tag)
	}
}

func TestWidthAllOperandSizes(t *testing.T) {
	line, err := ParseLine("\tSynthetic\tReg8:1, UInt16:2, UInt32:3, UInt64:4", 1)
	require.NoError(t, err)

	// opcode byte + 1 + 2 + 4 + 8
	assert.Equal(t, 16, NewWidthModel().Width(line))
	assert.Equal(t, 15, NewWidthModel("Synthetic").Width(line))
}

func TestWidthExemptDropsOneByte(t *testing.T) {
	tests := []struct {
		raw   string
		plain int
	}{
		{"\tWideOp\tUInt32:1, Reg8:0", 6},
		{"\tWideOp\tUInt64:1", 9},
		{"\tWideOp\tDouble:1.5, UInt16:2", 11},
		{"\tWideOp\tReg8:0", 2},
	}
	plain := NewWidthModel()
	exempt := NewWidthModel("WideOp")
	for _, tt := range tests {
		line, err := ParseLine(tt.raw, 1)
		require.NoError(t, err)
		assert.Equal(t, tt.plain, plain.Width(line), tt.raw)
		assert.Equal(t, tt.plain-1, exempt.Width(line), tt.raw)
	}
}

func TestWidthExemptWithoutOperands(t *testing.T) {
	line, err := ParseLine("\tWideOp", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, NewWidthModel("WideOp").Width(line))
}

func TestWidthCanonicalInstructions(t *testing.T) {
	m := NewWidthModel()
	tests := []struct {
		raw  string
		want int
	}{
		{"\tJmpFalse            \tAddr8:10, Reg8:2", 3},
		{"\tLoadParam           \tReg8:1, UInt8:2", 3},
		{"\tGetByVal            \tReg8:0, Reg8:1, Reg8:2", 4},
		{"\tRet                 \tReg8:0", 2},
		{"\tLoadConstDouble     \tReg8:0, Double:1.5", 10},
		{"\tUnreachable", 1},
	}
	for _, tt := range tests {
		line, err := ParseLine(tt.raw, 1)
		require.NoError(t, err)
		assert.Equal(t, tt.want, m.Width(line), tt.raw)
	}
}

func TestWidthIgnoresValues(t *testing.T) {
	m := NewWidthModel()
	a, err := ParseLine("\tLoadConstUInt8\tReg8:0, UInt8:0", 1)
	require.NoError(t, err)
	b, err := ParseLine("\tLoadConstUInt8\tReg8:255, UInt8:255", 1)
	require.NoError(t, err)
	assert.Equal(t, m.Width(a), m.Width(b))
}

func TestWidthPassThroughIsZero(t *testing.T) {
	m := NewWidthModel()
	for _, l := range []Line{
		{Kind: KindPassThrough, Raw: "\t; Oper[1]"},
		{Kind: KindRefMarker, Raw: ";L0"},
		{Kind: KindDefMarker, Raw: ";L0:"},
		{Kind: KindHeader, Raw: "Function<f>1():"},
		{Kind: KindEnd, Raw: "EndFunction"},
	} {
		assert.Equal(t, 0, m.Width(l), l.Raw)
	}
}

func TestWidthCustomRules(t *testing.T) {
	m := NewWidthModel()
	m.Rules = append([]TagRule{{Suffix: "Wide", Width: 3}}, m.Rules...)
	line, err := ParseLine("\tOp\tRegWide:1", 1)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Width(line))
}
