// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package inject turns a driver script and a pair of shader sources into a
script that can be attached to the page.

The driver script references shader sources through two placeholder tokens:

	const vs = `${vertexShader}`;
	const fs = `${fragmentShader}`;

Build replaces each token with the corresponding source, escaped so that it
stays a well-formed JavaScript template literal. Shader sources are not
validated here; malformed GLSL reaches WebGL unchanged and fails there.
*/
package inject

import "strings"

// Placeholder tokens recognized in driver scripts.
const (
	VertexPlaceholder   = "${vertexShader}"
	FragmentPlaceholder = "${fragmentShader}"
)

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`$`, `\$`,
)

// Escape escapes backslash, backtick and dollar sign in src with a leading
// backslash.
func Escape(src string) string {
	return escaper.Replace(src)
}

// Build returns driver with every occurrence of [VertexPlaceholder] and
// [FragmentPlaceholder] replaced by the escaped vertex and fragment sources.
func Build(driver, vertex, fragment string) string {
	// Substitute in a single pass, so that escaped shader text can never be
	// mistaken for a placeholder.
	r := strings.NewReplacer(
		VertexPlaceholder, Escape(vertex),
		FragmentPlaceholder, Escape(fragment),
	)
	return r.Replace(driver)
}

// Placeholders reports which placeholder tokens driver contains.
func Placeholders(driver string) (vertex, fragment bool) {
	return strings.Contains(driver, VertexPlaceholder), strings.Contains(driver, FragmentPlaceholder)
}
