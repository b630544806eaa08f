// © 2022 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"path/filepath"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/shaderplay/internal/devtools"
	"go.astrophena.name/shaderplay/internal/env"
	"go.astrophena.name/shaderplay/internal/site"
)

func main() { cli.Main(new(app)) }

type app struct {
	listen string
	feed   bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.listen, "listen", "localhost:3000", "Listen on `host:port`.")
	fs.BoolVar(&a.feed, "feed", false, "Build the feed of examples on each rebuild.")
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()

	dir := filepath.Join(".", "build")
	if args := cli.GetEnv(ctx).Args; len(args) > 0 {
		dir = args[0]
	}

	cfg := &site.Config{
		Src:      ".",
		Dst:      dir,
		Env:      env.Dev,
		SkipFeed: !a.feed,
	}
	return site.Serve(ctx, cfg, a.listen)
}
