// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package hasm

// LabelTable maps destination line indices of one block to label ids.
// Ids are dense, start at 0 and follow first-discovery order.
type LabelTable struct {
	ids   map[int]int
	dests []int
}

func NewLabelTable() *LabelTable {
	return &LabelTable{ids: make(map[int]int)}
}

// Assign returns the id of dest, allocating the next one on first sight.
func (t *LabelTable) Assign(dest int) int {
	if id, ok := t.ids[dest]; ok {
		return id
	}
	id := len(t.dests)
	t.ids[dest] = id
	t.dests = append(t.dests, dest)
	return id
}

// Peek returns the id Assign would return for dest without allocating.
func (t *LabelTable) Peek(dest int) int {
	if id, ok := t.ids[dest]; ok {
		return id
	}
	return len(t.dests)
}

func (t *LabelTable) Lookup(dest int) (int, bool) {
	id, ok := t.ids[dest]
	return id, ok
}

func (t *LabelTable) Len() int {
	return len(t.dests)
}

// Destination returns the line index labelled id.
func (t *LabelTable) Destination(id int) int {
	return t.dests[id]
}
