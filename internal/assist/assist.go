// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package assist implements language assistance for GLSL ES: hover
// documentation, signature help, completion and syntax highlighting rules.
//
// All data is static. The editor widget calls into this package through the
// playground WebAssembly module.
package assist

import (
	"fmt"
	"slices"
	"strings"

	"rsc.io/markdown"
)

// Hover is documentation shown when hovering over an identifier.
type Hover struct {
	Markdown string
}

// HTML renders the hover documentation as HTML.
func (h Hover) HTML() string {
	p := &markdown.Parser{Table: true}
	return markdown.ToHTML(p.Parse(h.Markdown))
}

// HoverFor returns hover documentation for ident.
func HoverFor(ident string) (Hover, bool) {
	if fn, ok := functions[ident]; ok {
		return Hover{Markdown: fmt.Sprintf("```glsl\n%s\n```\n\n%s", fn.label(ident), fn.doc)}, true
	}
	if v, ok := variables[ident]; ok {
		return Hover{Markdown: fmt.Sprintf("```glsl\n%s %s\n```\n\n%s", v.typ, ident, v.doc)}, true
	}
	if doc, ok := types[ident]; ok {
		return Hover{Markdown: fmt.Sprintf("**%s** (type)\n\n%s", ident, doc)}, true
	}
	if slices.Contains(qualifiers, ident) {
		return Hover{Markdown: fmt.Sprintf("**%s** (qualifier)", ident)}, true
	}
	if slices.Contains(keywords, ident) {
		return Hover{Markdown: fmt.Sprintf("**%s** (keyword)", ident)}, true
	}
	return Hover{}, false
}

// Param describes a function parameter.
type Param struct {
	Label string `json:"label"`
	Doc   string `json:"documentation"`
}

// Signature describes a built-in function.
type Signature struct {
	Label  string  `json:"label"`
	Doc    string  `json:"documentation"`
	Params []Param `json:"parameters"`
}

// Help is signature help for a call under the cursor.
type Help struct {
	Signature       Signature `json:"signature"`
	ActiveParameter int       `json:"activeParameter"`
}

func (fn function) label(name string) string {
	labels := make([]string, 0, len(fn.params))
	for _, p := range fn.params {
		labels = append(labels, p.Label)
	}
	return fmt.Sprintf("%s %s(%s)", fn.ret, name, strings.Join(labels, ", "))
}

// SignatureFor returns the signature of the built-in function name.
func SignatureFor(name string) (Signature, bool) {
	fn, ok := functions[name]
	if !ok {
		return Signature{}, false
	}
	return Signature{
		Label:  fn.label(name),
		Doc:    fn.doc,
		Params: slices.Clone(fn.params),
	}, true
}

type call struct {
	name   string
	commas int
}

// SignatureAt returns signature help for the innermost call to a built-in
// function that is open at column col (counted in characters from zero) of
// line.
//
// The active parameter is the number of commas between the opening
// parenthesis and the cursor, not counting commas nested in other
// parentheses or brackets, inside string literals, or escaped with a
// backslash.
func SignatureAt(line string, col int) (Help, bool) {
	prefix := []rune(line)
	if col >= 0 && col < len(prefix) {
		prefix = prefix[:col]
	}

	var (
		stack []call
		quote rune
	)
	for i := 0; i < len(prefix); i++ {
		c := prefix[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\\':
			i++
		case '"', '\'':
			quote = c
		case '(':
			stack = append(stack, call{name: identBefore(prefix[:i])})
		case '[':
			stack = append(stack, call{})
		case ')', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ',':
			if len(stack) > 0 {
				stack[len(stack)-1].commas++
			}
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		sig, ok := SignatureFor(stack[i].name)
		if !ok {
			continue
		}
		active := stack[i].commas
		if n := len(sig.Params); active >= n {
			active = n - 1
		}
		return Help{Signature: sig, ActiveParameter: active}, true
	}
	return Help{}, false
}

// identBefore returns the identifier that ends right before the end of s,
// skipping trailing spaces.
func identBefore(s []rune) string {
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	start := end
	for start > 0 && isIdentRune(s[start-1]) {
		start--
	}
	return string(s[start:end])
}

func isIdentRune(r rune) bool {
	return r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

// Completion kinds.
const (
	KindKeyword  = "keyword"
	KindType     = "type"
	KindFunction = "function"
	KindVariable = "variable"
)

// Completion is a completion suggestion.
type Completion struct {
	Label  string `json:"label"`
	Kind   string `json:"kind"`
	Detail string `json:"detail,omitempty"`
}

var completions = func() []Completion {
	var cs []Completion
	for _, k := range keywords {
		cs = append(cs, Completion{Label: k, Kind: KindKeyword})
	}
	for _, q := range qualifiers {
		cs = append(cs, Completion{Label: q, Kind: KindKeyword})
	}
	for t := range types {
		cs = append(cs, Completion{Label: t, Kind: KindType})
	}
	for name, v := range variables {
		cs = append(cs, Completion{Label: name, Kind: KindVariable, Detail: v.typ})
	}
	for name, fn := range functions {
		cs = append(cs, Completion{Label: name, Kind: KindFunction, Detail: fn.label(name)})
	}
	slices.SortFunc(cs, func(a, b Completion) int { return strings.Compare(a.Label, b.Label) })
	return cs
}()

// Complete returns completions whose label starts with prefix, sorted by
// label. An empty prefix returns everything.
func Complete(prefix string) []Completion {
	var res []Completion
	for _, c := range completions {
		if strings.HasPrefix(c.Label, prefix) {
			res = append(res, c)
		}
	}
	return res
}

// Builtins returns the names of all documented built-in functions and
// variables, sorted.
func Builtins() []string {
	names := make([]string, 0, len(functions)+len(variables))
	for name := range functions {
		names = append(names, name)
	}
	for name := range variables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
