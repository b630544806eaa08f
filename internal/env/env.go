// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package env contains definitions for the environments the playground site
// is built for.
package env

import "fmt"

// Env is the environment the site is built for.
type Env string

// Available environments.
const (
	Dev     = Env("dev")
	Staging = Env("staging")
	Prod    = Env("prod")
)

// Parse returns the environment named s.
func Parse(s string) (Env, error) {
	switch e := Env(s); e {
	case Dev, Staging, Prod:
		return e, nil
	}
	return "", fmt.Errorf("unknown environment %q (want dev, staging or prod)", s)
}
