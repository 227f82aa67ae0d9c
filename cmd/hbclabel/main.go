// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/dotandev/hbclabel/internal/cmd"
)

var Version = "dev"

func main() {
	// Set version in cmd package (shown in the banner and checked against required_version)
	cmd.Version = Version

	os.Exit(cmd.Execute())
}
