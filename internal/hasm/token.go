// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package hasm reads Hermes bytecode disassembly listings (the .hasm text
// written by hbctool) and annotates their relative jumps with symbolic
// labels.
//
// Displacements in the listing are byte offsets, but the listing itself is
// line oriented. The package maps one onto the other by replaying the
// encoded width of every instruction between a jump and its target, then
// records the edge as a pair of comment markers that the assembler ignores:
//
//	JmpFalse            	Addr8:10, Reg8:2
//	;L0
//	...
//	;L0:
//	Ret                 	Reg8:0
package hasm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dotandev/hbclabel/internal/errors"
)

// Kind classifies a listing line.
type Kind int

const (
	KindPassThrough Kind = iota // blank or comment, zero bytes
	KindInstruction
	KindRefMarker
	KindDefMarker
	KindHeader
	KindEnd
)

func (k Kind) String() string {
	switch k {
	case KindPassThrough:
		return "pass-through"
	case KindInstruction:
		return "instruction"
	case KindRefMarker:
		return "label-reference"
	case KindDefMarker:
		return "label-definition"
	case KindHeader:
		return "function-header"
	case KindEnd:
		return "function-end"
	default:
		return "unknown"
	}
}

// displacementPrefix marks operands holding a relative jump offset
// (Addr8, Addr32).
const displacementPrefix = "Addr"

var (
	opcodePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	tagPattern    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
)

// Operand is one Tag:Value token of an instruction.
type Operand struct {
	Tag   string
	Value string
}

// IsDisplacement reports whether the operand is a relative jump offset.
func (o Operand) IsDisplacement() bool {
	return strings.HasPrefix(o.Tag, displacementPrefix)
}

func (o Operand) String() string {
	return o.Tag + ":" + o.Value
}

// Line is one line of a listing. Raw is kept verbatim so that rendering
// never alters the original text.
type Line struct {
	Kind     Kind
	Raw      string
	Opcode   string
	Operands []Operand

	// Label is set for marker lines only.
	Label int

	// Displacement is valid when HasDisplacement is true.
	Displacement    int64
	HasDisplacement bool
}

// IsInstruction reports whether the line occupies bytes in the encoding.
func (l Line) IsInstruction() bool {
	return l.Kind == KindInstruction
}

// ParseLine tokenizes one body line of a function block. lineNo is the
// 1-based position in the listing and is only used for diagnostics.
func ParseLine(raw string, lineNo int) (Line, error) {
	text := strings.TrimRight(raw, "\r")
	trimmed := strings.TrimSpace(text)

	if trimmed == "" {
		return Line{Kind: KindPassThrough, Raw: raw}, nil
	}

	if label, def, ok := ParseMarker(trimmed); ok {
		kind := KindRefMarker
		if def {
			kind = KindDefMarker
		}
		return Line{Kind: kind, Raw: raw, Label: label}, nil
	}

	if strings.HasPrefix(trimmed, ";") {
		return Line{Kind: KindPassThrough, Raw: raw}, nil
	}

	opcode, rest := splitOpcode(trimmed)
	if !opcodePattern.MatchString(opcode) {
		return Line{}, errors.WrapFormat(lineNo, raw, "unrecognized opcode "+strconv.Quote(opcode))
	}

	line := Line{Kind: KindInstruction, Raw: raw, Opcode: opcode}
	if rest == "" {
		return line, nil
	}

	for _, tok := range strings.Split(rest, ", ") {
		op, reason := parseOperand(tok)
		if reason != "" {
			return Line{}, errors.WrapFormat(lineNo, raw, reason)
		}
		if op.IsDisplacement() {
			if line.HasDisplacement {
				return Line{}, errors.WrapFormat(lineNo, raw, "more than one displacement operand")
			}
			d, err := strconv.ParseInt(op.Value, 10, 64)
			if err != nil {
				return Line{}, errors.WrapFormat(lineNo, raw, "displacement is not a decimal integer")
			}
			line.Displacement = d
			line.HasDisplacement = true
		}
		line.Operands = append(line.Operands, op)
	}

	return line, nil
}

func splitOpcode(s string) (string, string) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

func parseOperand(tok string) (Operand, string) {
	tag, value, found := strings.Cut(strings.TrimSpace(tok), ":")
	if !found {
		return Operand{}, "operand " + strconv.Quote(tok) + " has no type tag"
	}
	if !tagPattern.MatchString(tag) {
		return Operand{}, "operand " + strconv.Quote(tok) + " has an invalid type tag"
	}
	if value == "" || strings.ContainsAny(value, " \t") {
		return Operand{}, "operand " + strconv.Quote(tok) + " has an invalid literal"
	}
	return Operand{Tag: tag, Value: value}, ""
}
