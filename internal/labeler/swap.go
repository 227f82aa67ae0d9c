// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

package labeler

import (
	"os"
	"path/filepath"

	"github.com/dotandev/hbclabel/internal/errors"
)

// tempPattern names the working copy next to the listing.
const tempPattern = ".lbl-*"

// writeAtomic replaces path with data. The data goes to a temporary file
// in the same directory first, which is renamed over path once it is
// fully written; the temporary file is removed on every failure. When path
// is a symlink its target is replaced and the link is kept.
func writeAtomic(path string, data []byte) (err error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return errors.WrapIO("resolve", path, err)
	}
	path = resolved

	info, err := os.Stat(path)
	if err != nil {
		return errors.WrapIO("stat", path, err)
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, base+tempPattern)
	if err != nil {
		return errors.WrapIO("create temp for", path, err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.WrapIO("write", tmpPath, err)
	}
	if err = tmp.Sync(); err != nil {
		return errors.WrapIO("sync", tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return errors.WrapIO("close", tmpPath, err)
	}
	if err = os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		return errors.WrapIO("chmod", tmpPath, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return errors.WrapIO("rename", tmpPath, err)
	}
	return nil
}
