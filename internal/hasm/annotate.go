// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package hasm

import (
	"sort"

	"github.com/dotandev/hbclabel/internal/errors"
	"github.com/dotandev/hbclabel/internal/logger"
)

// Edge is one resolved branch. Indices refer to the original block lines.
type Edge struct {
	Branch       int
	Dest         int
	Label        int
	Displacement int64
}

// Plan holds every resolved edge of a block. It is built against the
// original line indices and never mutates the block.
type Plan struct {
	Block *Block
	Edges []Edge

	defs map[int][]int // dest -> label ids, ascending
	refs map[int]int   // branch -> label id
}

// PlanBlock resolves all branches of b. It fails on the first branch that
// does not resolve and reports ErrAlreadyAnnotated when a branch is already
// followed by the reference marker it would receive.
func PlanBlock(b *Block, m *WidthModel) (*Plan, error) {
	p := &Plan{
		Block: b,
		defs:  make(map[int][]int),
		refs:  make(map[int]int),
	}
	table := NewLabelTable()

	for _, br := range b.Branches() {
		line := b.Lines[br]
		dest, err := Resolve(b, m, br, line.Displacement)
		if err != nil {
			return nil, err
		}

		if br+1 < len(b.Lines) && b.Lines[br+1].Kind == KindRefMarker {
			existing := b.Lines[br+1].Label
			if existing == table.Peek(dest) {
				return nil, errors.WrapAlreadyAnnotated(b.Ident, b.LineNo(br))
			}
			return nil, errors.WrapFormat(b.LineNo(br+1), b.Lines[br+1].Raw, "stale label reference")
		}

		_, seen := table.Lookup(dest)
		id := table.Assign(dest)
		if !seen {
			p.defs[dest] = append(p.defs[dest], id)
		}
		p.refs[br] = id
		p.Edges = append(p.Edges, Edge{Branch: br, Dest: dest, Label: id, Displacement: line.Displacement})

		logger.Logger.Debug("Resolved branch",
			"function", b.Ident,
			"line", b.LineNo(br),
			"displacement", line.Displacement,
			"target_line", b.LineNo(dest),
			"label", id,
		)
	}

	for _, ids := range p.defs {
		sort.Ints(ids)
	}

	return p, nil
}

// Labels returns the number of distinct labels in the plan.
func (p *Plan) Labels() int {
	return len(p.defs)
}

// Render produces the annotated block in one pass over the original lines:
// definitions go directly before their destination, references directly
// after their branch.
func (p *Plan) Render() []string {
	eol := ""
	if p.Block.CR {
		eol = "\r"
	}

	out := make([]string, 0, len(p.Block.Lines)+len(p.Edges)+len(p.defs))
	for i, l := range p.Block.Lines {
		for _, id := range p.defs[i] {
			out = append(out, DefMarker(id)+eol)
		}
		out = append(out, l.Raw)
		if id, ok := p.refs[i]; ok {
			out = append(out, RefMarker(id)+eol)
		}
	}
	return out
}

// Annotate returns the annotated lines of b. Blocks without branches are
// returned unchanged with a nil plan.
func Annotate(b *Block, m *WidthModel) ([]string, *Plan, error) {
	if !b.HasBranches() {
		return b.Raw(), nil, nil
	}
	p, err := PlanBlock(b, m)
	if err != nil {
		return nil, nil, err
	}
	return p.Render(), p, nil
}
