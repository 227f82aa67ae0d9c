// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package hasm

import (
	"strconv"
	"strings"
)

const markerPrefix = ";L"

// RefMarker is the comment line placed right after a branch.
func RefMarker(label int) string {
	return markerPrefix + strconv.Itoa(label)
}

// DefMarker is the comment line placed right before a branch destination.
func DefMarker(label int) string {
	return markerPrefix + strconv.Itoa(label) + ":"
}

// ParseMarker recognizes ";L<n>" and ";L<n>:". def is true for the latter.
func ParseMarker(s string) (label int, def bool, ok bool) {
	rest, found := strings.CutPrefix(s, markerPrefix)
	if !found {
		return 0, false, false
	}
	rest, def = strings.CutSuffix(rest, ":")
	if rest == "" {
		return 0, false, false
	}
	for _, c := range rest {
		if c < '0' || c > '9' {
			return 0, false, false
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false, false
	}
	return n, def, true
}
