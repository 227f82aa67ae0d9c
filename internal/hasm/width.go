// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package hasm

import "strings"

// TagRule maps operand tags ending in Suffix to a payload width in bytes.
type TagRule struct {
	Suffix string
	Width  int
}

// DefaultTagRules is the Hermes operand encoding. Rules are tried in order;
// tags matching none of them are one byte wide (Reg8, UInt8, Addr8, ...).
var DefaultTagRules = []TagRule{
	{Suffix: "16", Width: 2},
	{Suffix: "32", Width: 4},
	{Suffix: "64", Width: 8},
	{Suffix: "Double", Width: 8},
}

const (
	defaultOpcodeWidth  = 1
	defaultPayloadWidth = 1
)

// WidthModel computes the encoded size of instruction lines. The result
// must match the real encoder exactly or branch resolution lands on the
// wrong line.
type WidthModel struct {
	OpcodeWidth int
	Rules       []TagRule

	// Exempt lists opcodes whose first operand shares one byte with the
	// opcode. Their width is one byte less; the operand payload still
	// counts in full.
	Exempt map[string]bool
}

// NewWidthModel returns the Hermes width model with the given exempt opcodes.
func NewWidthModel(exempt ...string) *WidthModel {
	m := &WidthModel{
		OpcodeWidth: defaultOpcodeWidth,
		Rules:       DefaultTagRules,
		Exempt:      make(map[string]bool, len(exempt)),
	}
	for _, op := range exempt {
		m.Exempt[op] = true
	}
	return m
}

// OperandWidth returns the payload size of an operand with the given tag.
func (m *WidthModel) OperandWidth(tag string) int {
	for _, r := range m.Rules {
		if strings.HasSuffix(tag, r.Suffix) {
			return r.Width
		}
	}
	return defaultPayloadWidth
}

// Width returns the encoded size of l. Everything but an instruction is 0.
func (m *WidthModel) Width(l Line) int {
	if !l.IsInstruction() {
		return 0
	}
	w := m.OpcodeWidth
	for _, op := range l.Operands {
		w += m.OperandWidth(op.Tag)
	}
	if m.Exempt[l.Opcode] && len(l.Operands) > 0 {
		w--
	}
	return w
}
