// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package hasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabelTableDenseFirstSeen(t *testing.T) {
	table := NewLabelTable()

	assert.Equal(t, 0, table.Peek(40))
	assert.Equal(t, 0, table.Assign(40))
	assert.Equal(t, 1, table.Assign(3))
	assert.Equal(t, 0, table.Assign(40))
	assert.Equal(t, 2, table.Peek(17))
	assert.Equal(t, 2, table.Assign(17))
	assert.Equal(t, 1, table.Peek(3))

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 40, table.Destination(0))
	assert.Equal(t, 3, table.Destination(1))
	assert.Equal(t, 17, table.Destination(2))

	id, ok := table.Lookup(17)
	assert.True(t, ok)
	assert.Equal(t, 2, id)
	_, ok = table.Lookup(99)
	assert.False(t, ok)
}

func TestLabelTablesAreIndependent(t *testing.T) {
	a, b := NewLabelTable(), NewLabelTable()
	a.Assign(5)
	a.Assign(6)
	assert.Equal(t, 0, b.Assign(6))
}
