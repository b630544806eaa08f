// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build js

/*
Shaderplay implements the WebAssembly module that powers the shader
playground.

It exposes the following functions on the global shaderplay object:

	run()                    Starts the shaders, stopping the previous run.
	stop()                   Stops the current run.
	reset()                  Restores the default sources.
	loadExample(name)        Loads vertex and fragment shaders of an example.
	exportProject()          Downloads the project as a JSON file.
	importProject(text)      Replaces the project with a parsed JSON file.
	setVertex(text)          Replaces the vertex shader.
	setFragment(text)        Replaces the fragment shader.
	setDriver(text)          Replaces the driver script.
	setTab(name)             Switches the active tab (vertex, fragment, js).
	state()                  Returns sources, active tab and run state.
	examples()               Lists examples.
	hover(word)              Returns hover Markdown for a word, or null.
	signature(line, column)  Returns signature help, or null. Column is 1-based.
	complete(prefix)         Returns completion items.
	tokenizer()              Returns syntax highlighting rules by state.
	trackFrame(handle)       Records the render loop's animation frame.

Functions that can fail return an object with ok and error fields.
*/
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"syscall/js"
	"time"

	"go.astrophena.name/base/logger"
	"go.astrophena.name/shaderplay/internal/assist"
	"go.astrophena.name/shaderplay/internal/examples"
	"go.astrophena.name/shaderplay/internal/lifecycle"
	"go.astrophena.name/shaderplay/internal/project"
)

const (
	canvasID    = "preview"
	cleanupName = "shaderCleanup"
)

// page implements lifecycle.Page on top of the DOM.
type page struct {
	window js.Value
	doc    js.Value
}

func newPage() *page {
	w := js.Global()
	return &page{window: w, doc: w.Get("document")}
}

func (p *page) ClearSurface() error {
	canvas := p.doc.Call("getElementById", canvasID)
	if !canvas.Truthy() {
		return fmt.Errorf("canvas #%s not found", canvasID)
	}
	// A canvas keeps the first context type it was asked for, so it's
	// replaced by a blank copy instead of being cleared through a context.
	// The next driver picks any context type it wants.
	canvas.Call("replaceWith", canvas.Call("cloneNode", false))
	return nil
}

func (p *page) RemoveScript(id string) {
	for el := p.doc.Call("getElementById", id); el.Truthy(); el = p.doc.Call("getElementById", id) {
		el.Call("remove")
	}
}

func (p *page) AttachScript(id, content string) error {
	body := p.doc.Get("body")
	if !body.Truthy() {
		return errors.New("document has no body")
	}
	script := p.doc.Call("createElement", "script")
	script.Set("id", id)
	script.Set("textContent", content)
	body.Call("appendChild", script)
	return nil
}

func (p *page) CleanupHook() func() error {
	fn := p.window.Get(cleanupName)
	if fn.Type() != js.TypeFunction {
		return nil
	}
	return func() error {
		fn.Invoke()
		return nil
	}
}

func (p *page) ClearCleanupHook() { p.window.Delete(cleanupName) }

func (p *page) CancelFrame(handle int) { p.window.Call("cancelAnimationFrame", handle) }

type app struct {
	ctx   context.Context
	page  *page
	state *project.State
	ctl   *lifecycle.Controller
}

func main() {
	p := newPage()
	a := &app{
		ctx:   context.Background(),
		page:  p,
		state: project.New(),
		ctl:   lifecycle.New(p),
	}

	obj := js.Global().Get("Object").New()
	for name, fn := range map[string]func(args []js.Value) any{
		"run":           a.run,
		"stop":          a.stop,
		"reset":         a.reset,
		"loadExample":   a.loadExample,
		"exportProject": a.exportProject,
		"importProject": a.importProject,
		"setVertex":     a.setter(a.state.SetVertex),
		"setFragment":   a.setter(a.state.SetFragment),
		"setDriver":     a.setter(a.state.SetDriver),
		"setTab":        a.setTab,
		"state":         a.snapshot,
		"examples":      a.examples,
		"hover":         a.hover,
		"signature":     a.signature,
		"complete":      a.complete,
		"tokenizer":     a.tokenizer,
		"trackFrame":    a.trackFrame,
	} {
		obj.Set(name, js.FuncOf(func(this js.Value, args []js.Value) any { return fn(args) }))
	}
	js.Global().Set("shaderplay", obj)

	names, err := examples.Names()
	if err != nil {
		logger.Error(a.ctx, "failed to load examples", slog.Any("err", err))
	}
	logger.Info(a.ctx, "shaderplay ready", slog.Int("examples", len(names)))

	<-make(chan struct{})
}

func arg(args []js.Value, i int) string {
	if i >= len(args) || args[i].Type() != js.TypeString {
		return ""
	}
	return args[i].String()
}

func result(err error) any {
	if err != nil {
		return map[string]any{"ok": false, "error": err.Error()}
	}
	return map[string]any{"ok": true}
}

// toJS converts v to a JavaScript value by round-tripping through JSON.
func toJS(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return js.Null()
	}
	return js.Global().Get("JSON").Call("parse", string(b))
}

func (a *app) run(args []js.Value) any {
	p := a.state.Project()
	return result(a.ctl.Start(a.ctx, lifecycle.Sources{
		Vertex:   p.Vertex,
		Fragment: p.Fragment,
		Driver:   p.Driver,
	}))
}

func (a *app) stop(args []js.Value) any {
	a.ctl.Stop(a.ctx)
	return result(nil)
}

func (a *app) reset(args []js.Value) any {
	a.state.Reset()
	return a.snapshot(nil)
}

func (a *app) loadExample(args []js.Value) any {
	name := arg(args, 0)
	if err := a.state.LoadExample(name); err != nil {
		err = &lifecycle.Error{Kind: lifecycle.ExampleNotFound, Err: err}
		logger.Error(a.ctx, "failed to load example", slog.String("name", name), slog.Any("err", err))
		return result(err)
	}
	return result(nil)
}

func (a *app) exportProject(args []js.Value) any {
	filename, data, err := a.state.Export(time.Now())
	if err != nil {
		logger.Error(a.ctx, "failed to export project", slog.Any("err", err))
		return result(err)
	}

	url := js.Global().Get("URL")
	blob := js.Global().Get("Blob").New([]any{string(data)}, map[string]any{"type": "application/json"})
	href := url.Call("createObjectURL", blob)
	link := a.page.doc.Call("createElement", "a")
	link.Set("href", href)
	link.Set("download", filename)
	link.Call("click")
	url.Call("revokeObjectURL", href)

	return map[string]any{"ok": true, "filename": filename}
}

func (a *app) importProject(args []js.Value) any {
	if err := a.state.Import([]byte(arg(args, 0))); err != nil {
		err = &lifecycle.Error{Kind: lifecycle.ImportParseFailure, Err: err}
		logger.Error(a.ctx, "failed to import project", slog.Any("err", err))
		return result(err)
	}
	return result(nil)
}

func (a *app) setter(set func(string)) func([]js.Value) any {
	return func(args []js.Value) any {
		set(arg(args, 0))
		return nil
	}
}

func (a *app) setTab(args []js.Value) any {
	tab, err := project.ParseTab(arg(args, 0))
	if err != nil {
		return result(err)
	}
	a.state.SetTab(tab)
	return result(nil)
}

func (a *app) snapshot(args []js.Value) any {
	p := a.state.Project()
	return map[string]any{
		"vertexShader":   p.Vertex,
		"fragmentShader": p.Fragment,
		"jsCode":         p.Driver,
		"tab":            string(a.state.Tab()),
		"running":        a.ctl.Running(),
	}
}

func (a *app) examples(args []js.Value) any {
	entries, err := examples.Catalog()
	if err != nil {
		logger.Error(a.ctx, "failed to load examples", slog.Any("err", err))
		return js.Global().Get("Array").New()
	}
	list := make([]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, map[string]any{
			"name":        e.Name,
			"title":       e.Title,
			"description": e.Description,
		})
	}
	return list
}

func (a *app) hover(args []js.Value) any {
	h, ok := assist.HoverFor(arg(args, 0))
	if !ok {
		return js.Null()
	}
	return map[string]any{"markdown": h.Markdown}
}

func (a *app) signature(args []js.Value) any {
	col := -1
	if len(args) > 1 && args[1].Type() == js.TypeNumber {
		col = args[1].Int() - 1
	}
	h, ok := assist.SignatureAt(arg(args, 0), col)
	if !ok {
		return js.Null()
	}
	return toJS(h)
}

func (a *app) complete(args []js.Value) any {
	return toJS(assist.Complete(arg(args, 0)))
}

func (a *app) tokenizer(args []js.Value) any {
	return toJS(assist.MonarchTokenizer())
}

func (a *app) trackFrame(args []js.Value) any {
	if len(args) == 0 || args[0].Type() != js.TypeNumber {
		return nil
	}
	handle := args[0].Int()
	if !a.ctl.TrackFrame(handle) {
		a.page.CancelFrame(handle)
	}
	return nil
}
