// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package assist

import (
	"strings"
	"testing"

	"go.astrophena.name/base/testutil"
)

func TestHoverFor(t *testing.T) {
	cases := map[string]struct {
		ident    string
		wantOK   bool
		contains string
	}{
		"function":  {"mix", true, "genType mix(genType x, genType y, genType a)"},
		"variable":  {"gl_FragColor", true, "vec4 gl_FragColor"},
		"type":      {"vec3", true, "**vec3** (type)"},
		"qualifier": {"mediump", true, "(qualifier)"},
		"keyword":   {"uniform", true, "(keyword)"},
		"unknown":   {"u_time", false, ""},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h, ok := HoverFor(tc.ident)
			testutil.AssertEqual(t, ok, tc.wantOK)
			if !strings.Contains(h.Markdown, tc.contains) {
				t.Fatalf("hover for %q = %q, want it to contain %q", tc.ident, h.Markdown, tc.contains)
			}
		})
	}
}

func TestHoverHTML(t *testing.T) {
	h, ok := HoverFor("smoothstep")
	if !ok {
		t.Fatal("no hover for smoothstep")
	}
	html := h.HTML()
	for _, want := range []string{"<pre><code", "smoothstep(genType edge0", "<p>Returns 0.0"} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML() = %q, want it to contain %q", html, want)
		}
	}
}

func TestSignatureFor(t *testing.T) {
	sig, ok := SignatureFor("clamp")
	if !ok {
		t.Fatal("no signature for clamp")
	}
	testutil.AssertEqual(t, sig.Label, "genType clamp(genType x, genType minVal, genType maxVal)")
	testutil.AssertEqual(t, len(sig.Params), 3)

	if _, ok := SignatureFor("vec3"); ok {
		t.Fatal("constructors have no signature")
	}
}

func TestSignatureAt(t *testing.T) {
	const end = -1
	cases := map[string]struct {
		line       string
		col        int
		wantOK     bool
		wantName   string
		wantActive int
	}{
		"mix third argument":   {"mix(a, b,", end, true, "mix", 2},
		"first argument":       {"  float d = distance(", end, true, "distance", 0},
		"space before paren":   {"pow (x, ", end, true, "pow", 1},
		"nested call":          {"mix(a, clamp(x, 0.0, ", end, true, "clamp", 2},
		"closed nested call":   {"mix(a, clamp(x, 0.0, 1.0), ", end, true, "mix", 2},
		"nested constructor":   {"mix(vec3(1.0, 0.0, 0.0), ", end, true, "mix", 1},
		"inside constructor":   {"mix(vec3(1.0, ", end, true, "mix", 0},
		"bracket commas":       {"max(a[1, 2], ", end, true, "max", 1},
		"string commas":        {`step("a,b", `, end, true, "step", 1},
		"escaped comma":        {`step(a\, b`, end, true, "step", 0},
		"cursor in the middle": {"smoothstep(0.0, 1.0, x)", 16, true, "smoothstep", 1},
		"call closed":          {"mix(a, b, c)", end, false, "", 0},
		"unknown function":     {"myFunc(a, ", end, false, "", 0},
		"too many commas":      {"sin(a, b, c", end, true, "sin", 0},
		"empty line":           {"", end, false, "", 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h, ok := SignatureAt(tc.line, tc.col)
			testutil.AssertEqual(t, ok, tc.wantOK)
			if !ok {
				return
			}
			if !strings.Contains(h.Signature.Label, " "+tc.wantName+"(") {
				t.Fatalf("got signature %q, want %s", h.Signature.Label, tc.wantName)
			}
			testutil.AssertEqual(t, h.ActiveParameter, tc.wantActive)
		})
	}
}

func TestComplete(t *testing.T) {
	got := Complete("smooth")
	testutil.AssertEqual(t, len(got), 1)
	testutil.AssertEqual(t, got[0].Label, "smoothstep")
	testutil.AssertEqual(t, got[0].Kind, KindFunction)

	var labels []string
	for _, c := range Complete("gl_Frag") {
		labels = append(labels, c.Label)
	}
	testutil.AssertEqual(t, labels, []string{"gl_FragColor", "gl_FragCoord", "gl_FragData"})

	if len(Complete("")) != len(completions) {
		t.Fatal("empty prefix must return all completions")
	}
	if len(Complete("zzz")) != 0 {
		t.Fatal("want no completions for zzz")
	}
}

func TestBuiltins(t *testing.T) {
	names := Builtins()
	testutil.AssertEqual(t, len(names), len(functions)+len(variables))
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("Builtins() is not sorted: %q > %q", names[i-1], names[i])
		}
	}
}
