// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"go.astrophena.name/base/cli"
	"go.astrophena.name/base/logger"
	"go.astrophena.name/base/request"
	"go.astrophena.name/shaderplay/internal/devtools"

	"golang.org/x/mod/modfile"
)

func main() { cli.Main(new(app)) }

type app struct {
	pr bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.pr, "pr", false, "Commit the update and open a pull request.")
}

const releasesURL = "https://go.dev/dl/?mode=json"

type release struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
}

func (a *app) Run(ctx context.Context) error {
	devtools.EnsureRoot()

	b, err := os.ReadFile("go.mod")
	if err != nil {
		return err
	}

	releases, err := request.Make[[]release](ctx, request.Params{
		Method: http.MethodGet,
		URL:    releasesURL,
	})
	if err != nil {
		return err
	}
	latest, err := latestStable(releases)
	if err != nil {
		return err
	}

	updated, changed, err := update(b, latest)
	if err != nil {
		return err
	}
	if !changed {
		logger.Info(ctx, "go.mod is up to date", slog.String("version", latest))
		return nil
	}
	if err := os.WriteFile("go.mod", updated, 0o644); err != nil {
		return err
	}
	logger.Info(ctx, "updated go.mod", slog.String("version", latest))

	if !a.pr {
		return nil
	}
	branch := "go-update-" + latest
	for _, args := range [][]string{
		{"git", "config", "user.name", "github-actions[bot]"},
		{"git", "config", "user.email", "41898282+github-actions[bot]@users.noreply.github.com"},
		{"git", "checkout", "-b", branch},
		{"git", "add", "go.mod"},
		{"git", "commit", "-m", "go.mod: update to " + latest},
		{"git", "push", "origin", branch},
		{"gh", "pr", "create", "-f"},
	} {
		if err := run(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// latestStable returns the newest stable version without the "go" prefix.
// Releases are listed newest first.
func latestStable(releases []release) (string, error) {
	for _, r := range releases {
		if r.Stable {
			return strings.TrimPrefix(r.Version, "go"), nil
		}
	}
	return "", errors.New("no stable releases listed")
}

// update sets the go directive of the go.mod file data to version.
func update(data []byte, version string) (updated []byte, changed bool, err error) {
	f, err := modfile.Parse("go.mod", data, nil)
	if err != nil {
		return nil, false, err
	}
	if f.Go != nil && f.Go.Version == version {
		return data, false, nil
	}
	if err := f.AddGoStmt(version); err != nil {
		return nil, false, err
	}
	updated, err = f.Format()
	return updated, err == nil, err
}

func run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
