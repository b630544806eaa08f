// © 2022 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/base/logger"
	"go.astrophena.name/shaderplay/internal/devtools"
	"go.astrophena.name/shaderplay/internal/env"
	"go.astrophena.name/shaderplay/internal/site"
)

func main() { cli.Main(new(app)) }

type app struct {
	env      string
	skipWasm bool
	docs     bool
	archive  string
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.env, "env", string(env.Dev), "Build for `environment` (dev, staging or prod).")
	fs.BoolVar(&a.skipWasm, "skip-wasm", false, "Skip building the playground WebAssembly module.")
	fs.BoolVar(&a.docs, "docs", false, "Generate package documentation into the pkg directory of the site.")
	fs.StringVar(&a.archive, "archive", "", "Also pack the built site into a gzipped tarball at `path`.")
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()

	e, err := env.Parse(a.env)
	if err != nil {
		return fmt.Errorf("%w: %v", cli.ErrInvalidArgs, err)
	}

	dir := filepath.Join(".", "build")
	if args := cli.GetEnv(ctx).Args; len(args) > 0 {
		dir = args[0]
	}

	if !a.skipWasm {
		if err := buildWasm(ctx); err != nil {
			return err
		}
	}

	logger.Info(ctx, "building site", slog.String("dir", dir), slog.String("env", a.env))
	if err := site.Build(&site.Config{
		Src: ".",
		Dst: dir,
		Env: e,
	}); err != nil {
		return err
	}

	if a.docs {
		out := filepath.Join(dir, "pkg")
		logger.Info(ctx, "generating package documentation", slog.String("out", out))
		doc2go := docsCommand(ctx, out)
		doc2go.Stderr = os.Stderr
		if err := doc2go.Run(); err != nil {
			return err
		}
	}

	if a.archive == "" {
		return nil
	}
	b, err := pack(os.DirFS(dir))
	if err != nil {
		return err
	}
	logger.Info(ctx, "packed site", slog.String("archive", a.archive), slog.Int("size", len(b)))
	return os.WriteFile(a.archive, b, 0o644)
}

const highlightTheme = "native" // doc2go syntax highlighting theme

func docsCommand(ctx context.Context, out string) *exec.Cmd {
	return exec.CommandContext(ctx,
		"go", "tool", "doc2go",
		"-highlight", highlightTheme,
		"-out", out,
		"./...",
	)
}

// buildWasm compiles the playground module and copies the matching
// wasm_exec.js from GOROOT.
func buildWasm(ctx context.Context) error {
	gorootb, err := exec.CommandContext(ctx, "go", "env", "GOROOT").Output()
	if err != nil {
		return err
	}
	goroot := strings.TrimSpace(string(gorootb))

	wasmExecJS, err := os.ReadFile(filepath.Join(goroot, "lib", "wasm", "wasm_exec.js"))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join("static", "js", "wasm_exec.js"), wasmExecJS, 0o644); err != nil {
		return err
	}

	out := filepath.Join("static", "wasm", "shaderplay.wasm")
	logger.Info(ctx, "building WebAssembly module", slog.String("out", out))
	build := exec.CommandContext(ctx,
		"go",
		"build",
		"-ldflags", "-s -w -buildid=",
		"-trimpath",
		"-o", out,
		"./internal/shaderplay",
	)
	build.Env = append(os.Environ(), "GOOS=js", "GOARCH=wasm")
	build.Stderr = os.Stderr
	return build.Run()
}

// pack writes the regular files of fsys to a gzipped tarball.
func pack(fsys fs.FS) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	if err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		b, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		if err := tw.WriteHeader(&tar.Header{
			Name: path,
			Mode: 0o644,
			Size: int64(len(b)),
		}); err != nil {
			return err
		}
		_, err = tw.Write(b)
		return err
	}); err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
