// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package hasm

import (
	"github.com/dotandev/hbclabel/internal/errors"
)

// Resolve returns the index of the instruction that the branch at index
// branch jumps to. disp is measured from the first byte of the branch
// instruction to the first byte of the target, so:
//
//   - disp > 0 sums the widths of the branch and the instructions after
//     it; the target is the instruction that follows once the sum equals
//     disp.
//   - disp < 0 sums the widths of the instructions before the branch,
//     walking backward; the target is the instruction at which the sum
//     equals -disp.
//   - disp == 0 targets the branch itself.
//
// Pass-through lines are skipped. Only an exact match succeeds.
func Resolve(b *Block, m *WidthModel, branch int, disp int64) (int, error) {
	if branch < 0 || branch >= len(b.Lines) || !b.Lines[branch].IsInstruction() {
		return 0, errors.WrapFormat(b.LineNo(branch), lineText(b, branch), "branch index is not an instruction")
	}

	switch {
	case disp == 0:
		return branch, nil
	case disp > 0:
		if dest, ok := scanForward(b, m, branch, disp); ok {
			return dest, nil
		}
	default:
		if dest, ok := scanBackward(b, m, branch, -disp); ok {
			return dest, nil
		}
	}

	return 0, errors.WrapResolution(b.Ident, b.LineNo(branch), b.Lines[branch].Raw, disp)
}

func scanForward(b *Block, m *WidthModel, branch int, target int64) (int, bool) {
	var acc int64
	for i := branch; i < len(b.Lines); i++ {
		if !b.Lines[i].IsInstruction() {
			continue
		}
		acc += int64(m.Width(b.Lines[i]))
		if acc > target {
			return 0, false
		}
		if acc == target {
			return nextInstruction(b, i)
		}
	}
	return 0, false
}

func scanBackward(b *Block, m *WidthModel, branch int, target int64) (int, bool) {
	var acc int64
	for i := branch - 1; i >= 0; i-- {
		if !b.Lines[i].IsInstruction() {
			continue
		}
		acc += int64(m.Width(b.Lines[i]))
		if acc > target {
			return 0, false
		}
		if acc == target {
			return i, true
		}
	}
	return 0, false
}

func nextInstruction(b *Block, i int) (int, bool) {
	for j := i + 1; j < len(b.Lines); j++ {
		if b.Lines[j].IsInstruction() {
			return j, true
		}
	}
	return 0, false
}

func lineText(b *Block, i int) string {
	if i < 0 || i >= len(b.Lines) {
		return ""
	}
	return b.Lines[i].Raw
}
