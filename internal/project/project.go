// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package project holds the editable state of the playground: vertex shader,
fragment shader and driver script, and their JSON file format.

# File Format

Exported projects are JSON objects:

	{
	  "vertexShader": "...",
	  "fragmentShader": "...",
	  "jsCode": "...",
	  "timestamp": "2025-01-02T15:04:05Z"
	}

On import the timestamp and unknown keys are ignored. Keys that are missing,
or whose value is not a string, take the built-in default.
*/
package project

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.astrophena.name/shaderplay/internal/examples"
)

var (
	// ErrNotFound is returned when an example doesn't exist.
	ErrNotFound = errors.New("example not found")
	// ErrInvalidFormat is returned when a project file can't be parsed.
	ErrInvalidFormat = errors.New("invalid project file")
)

// DefaultExample is the example used for the built-in defaults.
const DefaultExample = "basic"

//go:embed driver.js
var defaultDriver string

// Project is a set of sources edited in the playground.
type Project struct {
	Vertex   string
	Fragment string
	Driver   string
}

// Default returns the built-in default project.
func Default() Project {
	p := Project{Driver: defaultDriver}
	if e, ok := examples.Lookup(DefaultExample); ok {
		p.Vertex, p.Fragment = e.Vertex, e.Fragment
	}
	return p
}

// Tab is an editor tab.
type Tab string

// Available tabs.
const (
	TabVertex   = Tab("vertex")
	TabFragment = Tab("fragment")
	TabDriver   = Tab("js")
)

// ParseTab converts s to a Tab.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(s); t {
	case TabVertex, TabFragment, TabDriver:
		return t, nil
	}
	return "", fmt.Errorf("unknown tab %q", s)
}

// State is the playground buffer state. The zero value is not usable; create
// one with New.
type State struct {
	p   Project
	tab Tab
}

// New returns a State holding the default project with the vertex tab active.
func New() *State {
	return &State{p: Default(), tab: TabVertex}
}

// Project returns the current project.
func (s *State) Project() Project { return s.p }

// Tab returns the active editor tab.
func (s *State) Tab() Tab { return s.tab }

// SetTab makes t the active editor tab.
func (s *State) SetTab(t Tab) { s.tab = t }

// SetVertex replaces the vertex shader source.
func (s *State) SetVertex(text string) { s.p.Vertex = text }

// SetFragment replaces the fragment shader source.
func (s *State) SetFragment(text string) { s.p.Fragment = text }

// SetDriver replaces the driver script.
func (s *State) SetDriver(text string) { s.p.Driver = text }

// Source returns the buffer backing tab t.
func (s *State) Source(t Tab) string {
	switch t {
	case TabFragment:
		return s.p.Fragment
	case TabDriver:
		return s.p.Driver
	default:
		return s.p.Vertex
	}
}

// Reset replaces all sources with the built-in defaults.
func (s *State) Reset() { s.p = Default() }

// LoadExample replaces vertex and fragment shaders with the ones from the
// named example. The driver script is left untouched.
func (s *State) LoadExample(name string) error {
	e, ok := examples.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.p.Vertex, s.p.Fragment = e.Vertex, e.Fragment
	return nil
}

// Export serializes the current project. See the package documentation for
// the format.
func (s *State) Export(now time.Time) (filename string, data []byte, err error) {
	return Export(s.p, now)
}

// Import replaces the current project with one parsed from data. On error
// the state is unchanged.
func (s *State) Import(data []byte) error {
	p, err := Import(data)
	if err != nil {
		return err
	}
	s.p = p
	return nil
}

type file struct {
	Vertex    string `json:"vertexShader"`
	Fragment  string `json:"fragmentShader"`
	Driver    string `json:"jsCode"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Export serializes p with now as its timestamp and returns it along with a
// file name derived from now.
func Export(p Project, now time.Time) (filename string, data []byte, err error) {
	data, err = json.MarshalIndent(file{
		Vertex:    p.Vertex,
		Fragment:  p.Fragment,
		Driver:    p.Driver,
		Timestamp: now.UTC().Format(time.RFC3339),
	}, "", "  ")
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("shader-project-%d.json", now.UnixMilli()), data, nil
}

// Import parses a project file.
func Import(data []byte) (Project, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Project{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if fields == nil {
		return Project{}, fmt.Errorf("%w: not a JSON object", ErrInvalidFormat)
	}

	p := Default()
	for key, dst := range map[string]*string{
		"vertexShader":   &p.Vertex,
		"fragmentShader": &p.Fragment,
		"jsCode":         &p.Driver,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s *string
		if err := json.Unmarshal(raw, &s); err != nil || s == nil {
			continue
		}
		*dst = *s
	}
	return p, nil
}
