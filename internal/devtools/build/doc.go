// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Build builds the playground site.

# Usage

	$ go tool build [flags] [dir]

Build compiles the playground WebAssembly module into static/wasm, copies
wasm_exec.js from GOROOT into static/js and builds the site into dir. If dir
is not provided, it defaults to build in the current working directory.

Pass -env=prod for deployments: drafts are excluded and links become
absolute.

With -docs, package documentation is generated with doc2go into the pkg
directory of the site. With -archive, the built site is also packed into a
gzipped tarball that "go tool deploy" uploads:

	$ go tool build -env=prod -archive=site.tar.gz
	$ go tool deploy shaderplay.astrophena.name site.tar.gz
*/
package main

import (
	_ "embed"

	"go.astrophena.name/base/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
