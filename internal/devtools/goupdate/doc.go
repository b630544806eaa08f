// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Goupdate keeps the Go version in go.mod current.

# Usage

	$ go tool goupdate [flags]

Goupdate compares the Go version in go.mod with the latest release listed on
https://go.dev/dl and, if they differ, rewrites go.mod. With -pr it also
commits the change to a new branch and opens a pull request with the gh
command. The playground's WebAssembly module is built with the toolchain
named in go.mod, so wasm_exec.js follows it too.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
