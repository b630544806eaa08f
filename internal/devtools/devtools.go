// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package devtools contains common functionality for development tools.
package devtools

import (
	"os"
	"path/filepath"

	"go.astrophena.name/base/unwrap"
)

// rootMarkers are paths that exist only at the repository root.
var rootMarkers = []string{"go.mod", "pages", filepath.Join("internal", "shaderplay")}

// EnsureRoot checks that the current working directory is at the repository
// root and panics if it doesn't.
func EnsureRoot() {
	if err := checkRoot(unwrap.Value(os.Getwd())); err != nil {
		panic("Are you at repo root? " + err.Error())
	}
}

func checkRoot(dir string) error {
	for _, m := range rootMarkers {
		if _, err := os.Stat(filepath.Join(dir, m)); err != nil {
			return err
		}
	}
	return nil
}
