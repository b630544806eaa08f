// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package examples contains the catalog of example shaders.
//
// The catalog is written in Starlark (see catalog.star) so that entries can
// share a vertex shader and a fragment prelude.
package examples

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Possible errors, used in tests.
var (
	errNoExamples   = errors.New("catalog doesn't define examples")
	errNotList      = errors.New("examples must be a list")
	errNotDict      = errors.New("example must be a dict")
	errMissingField = errors.New("missing required example field (name, vertex, fragment)")
	errNotString    = errors.New("example field must be a string")
	errDuplicate    = errors.New("duplicate example name")
)

// Entry is an example shader pair.
type Entry struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"` // Markdown
	Vertex      string `json:"vertexShader"`
	Fragment    string `json:"fragmentShader"`
}

//go:embed catalog.star
var catalogSrc []byte

var catalog = sync.OnceValues(func() ([]Entry, error) {
	return Parse("catalog.star", catalogSrc)
})

// Catalog returns all examples in the order they are defined.
func Catalog() ([]Entry, error) {
	entries, err := catalog()
	if err != nil {
		return nil, err
	}
	return append([]Entry(nil), entries...), nil
}

// Lookup returns the example with the given name.
func Lookup(name string) (Entry, bool) {
	entries, err := catalog()
	if err != nil {
		return Entry{}, false
	}
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Names returns the example names in catalog order.
func Names() ([]string, error) {
	entries, err := catalog()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// Parse evaluates a Starlark catalog and returns the examples it defines.
func Parse(filename string, src []byte) ([]Entry, error) {
	thread := &starlark.Thread{
		Name:  filename,
		Print: func(*starlark.Thread, string) {},
	}
	globals, err := starlark.ExecFileOptions(&syntax.FileOptions{}, thread, filename, src, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	v, ok := globals["examples"]
	if !ok {
		return nil, fmt.Errorf("%s: %w", filename, errNoExamples)
	}
	list, ok := v.(*starlark.List)
	if !ok {
		return nil, fmt.Errorf("%s: %w, got %s", filename, errNotList, v.Type())
	}

	var (
		entries = make([]Entry, 0, list.Len())
		seen    = make(map[string]bool)
	)
	for i := range list.Len() {
		d, ok := list.Index(i).(*starlark.Dict)
		if !ok {
			return nil, fmt.Errorf("%s: examples[%d]: %w", filename, i, errNotDict)
		}
		var e Entry
		for _, f := range []struct {
			key      string
			dst      *string
			required bool
		}{
			{"name", &e.Name, true},
			{"title", &e.Title, false},
			{"description", &e.Description, false},
			{"vertex", &e.Vertex, true},
			{"fragment", &e.Fragment, true},
		} {
			fv, found, err := d.Get(starlark.String(f.key))
			if err != nil {
				return nil, fmt.Errorf("%s: examples[%d]: %w", filename, i, err)
			}
			if !found {
				if f.required {
					return nil, fmt.Errorf("%s: examples[%d]: %w: %q", filename, i, errMissingField, f.key)
				}
				continue
			}
			s, ok := starlark.AsString(fv)
			if !ok {
				return nil, fmt.Errorf("%s: examples[%d].%s: %w", filename, i, f.key, errNotString)
			}
			*f.dst = s
		}
		if e.Name == "" {
			return nil, fmt.Errorf("%s: examples[%d]: %w: %q", filename, i, errMissingField, "name")
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("%s: %w: %q", filename, errDuplicate, e.Name)
		}
		seen[e.Name] = true
		if e.Title == "" {
			e.Title = e.Name
		}
		entries = append(entries, e)
	}

	return entries, nil
}
