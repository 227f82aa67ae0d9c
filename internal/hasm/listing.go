// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package hasm

import (
	"strings"

	"github.com/dotandev/hbclabel/internal/errors"
)

const (
	FunctionStart = "Function<"
	FunctionEnd   = "EndFunction"
)

// Block is one function of a listing, header and end line included.
type Block struct {
	// Index is the position of the block within its listing.
	Index int
	// Ident is the header up to the parameter list, e.g. "Function<k>7654".
	Ident string
	// Start is the 0-based listing line of the header.
	Start int
	Lines []Line
	// CR is set when the listing uses CRLF line endings.
	CR bool
}

// LineNo returns the 1-based listing line number of body index i.
func (b *Block) LineNo(i int) int {
	return b.Start + i + 1
}

// Branches returns the indices of lines carrying a displacement operand.
func (b *Block) Branches() []int {
	var out []int
	for i, l := range b.Lines {
		if l.HasDisplacement {
			out = append(out, i)
		}
	}
	return out
}

// HasBranches reports whether any line carries a displacement operand.
func (b *Block) HasBranches() bool {
	for _, l := range b.Lines {
		if l.HasDisplacement {
			return true
		}
	}
	return false
}

// Raw returns the original text lines of the block.
func (b *Block) Raw() []string {
	out := make([]string, len(b.Lines))
	for i, l := range b.Lines {
		out[i] = l.Raw
	}
	return out
}

// Listing is a parsed .hasm file. Lines outside any block are kept as-is.
type Listing struct {
	Lines  []string
	Blocks []*Block
}

// Parse splits text into function blocks. A block runs from a line
// starting with "Function<" to the next "EndFunction" line inclusive.
func Parse(text string) (*Listing, error) {
	lst := &Listing{Lines: strings.Split(text, "\n")}

	var cur *Block
	for i, raw := range lst.Lines {
		trimmed := strings.TrimRight(raw, "\r")

		switch {
		case strings.HasPrefix(trimmed, FunctionStart):
			if cur != nil {
				return nil, errors.WrapFormat(i+1, raw, "function starts before "+cur.Ident+" ends")
			}
			cur = &Block{
				Index: len(lst.Blocks),
				Ident: ident(trimmed),
				Start: i,
				Lines: []Line{{Kind: KindHeader, Raw: raw}},
				CR:    strings.HasSuffix(raw, "\r"),
			}

		case trimmed == FunctionEnd:
			if cur == nil {
				return nil, errors.WrapFormat(i+1, raw, "function end without a function")
			}
			cur.Lines = append(cur.Lines, Line{Kind: KindEnd, Raw: raw})
			lst.Blocks = append(lst.Blocks, cur)
			cur = nil

		case cur != nil:
			line, err := ParseLine(raw, i+1)
			if err != nil {
				return nil, err
			}
			cur.Lines = append(cur.Lines, line)
		}
	}

	if cur != nil {
		return nil, errors.WrapFormat(0, "", "unterminated function "+cur.Ident)
	}

	return lst, nil
}

func ident(header string) string {
	if i := strings.IndexByte(header, '('); i >= 0 {
		return header[:i]
	}
	return strings.TrimSpace(header)
}

// Assemble rebuilds the listing text. rendered[i] replaces block i; a nil
// entry keeps the block unchanged.
func (lst *Listing) Assemble(rendered [][]string) string {
	var sb strings.Builder
	next := 0
	write := func(s string) {
		if next > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s)
		next++
	}

	pos := 0
	for bi, b := range lst.Blocks {
		for ; pos < b.Start; pos++ {
			write(lst.Lines[pos])
		}
		lines := b.Raw()
		if bi < len(rendered) && rendered[bi] != nil {
			lines = rendered[bi]
		}
		for _, s := range lines {
			write(s)
		}
		pos = b.Start + len(b.Lines)
	}
	for ; pos < len(lst.Lines); pos++ {
		write(lst.Lines[pos])
	}

	return sb.String()
}
