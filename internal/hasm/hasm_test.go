// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package hasm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// listing joins lines with '\n' and adds a trailing newline.
func listing(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// canonical is the example from the hbctool label format documentation.
var canonical = listing(
	"Function<k>7654(3 params, 3 registers, 0 symbols):",
	"\tLoadParam           \tReg8:2, UInt8:1",
	"\tLoadConstNull       \tReg8:0",
	"\tJmpFalse            \tAddr8:10, Reg8:2",
	"\tLoadParam           \tReg8:1, UInt8:2",
	"\tGetByVal            \tReg8:0, Reg8:1, Reg8:2",
	"\tRet                 \tReg8:0",
	"EndFunction",
)

var canonicalAnnotated = listing(
	"Function<k>7654(3 params, 3 registers, 0 symbols):",
	"\tLoadParam           \tReg8:2, UInt8:1",
	"\tLoadConstNull       \tReg8:0",
	"\tJmpFalse            \tAddr8:10, Reg8:2",
	";L0",
	"\tLoadParam           \tReg8:1, UInt8:2",
	"\tGetByVal            \tReg8:0, Reg8:1, Reg8:2",
	";L0:",
	"\tRet                 \tReg8:0",
	"EndFunction",
)

func mustParse(t *testing.T, text string) *Listing {
	t.Helper()
	lst, err := Parse(text)
	require.NoError(t, err)
	return lst
}

func mustBlock(t *testing.T, text string) *Block {
	t.Helper()
	lst := mustParse(t, text)
	require.Len(t, lst.Blocks, 1)
	return lst.Blocks[0]
}
