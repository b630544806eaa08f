// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package lifecycle starts and stops shader programs in the page.

A run is a script built by [inject.Build] and attached to the page under a
fixed element id. At most one run is active at a time: Start always tears
down the previous run before attaching a new one, and Stop tears it down
without waiting for the render loop, which simply stops being rescheduled
once its animation frame is cancelled.

The page is reached through the [Page] interface. The playground implements
it with syscall/js; tests use a fake.
*/
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.astrophena.name/base/logger"
	"go.astrophena.name/shaderplay/internal/inject"
)

// ScriptID is the element id of the injected script.
const ScriptID = "shaderplay-script"

// Page is the part of the host page a Controller works with.
type Page interface {
	// ClearSurface clears the preview canvas to the default background.
	ClearSurface() error
	// RemoveScript removes the script element with the given id, if any.
	RemoveScript(id string)
	// AttachScript creates a script element with the given id and content
	// and attaches it to the page, which starts executing it.
	AttachScript(id, content string) error
	// CleanupHook returns the cleanup callback registered by the running
	// script, or nil.
	CleanupHook() func() error
	// ClearCleanupHook unregisters the cleanup callback.
	ClearCleanupHook()
	// CancelFrame cancels a pending animation frame callback.
	CancelFrame(handle int)
}

// State is the state of a Controller.
type State int

// Possible states.
const (
	Idle State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Kind is a kind of lifecycle failure.
type Kind string

// Failure kinds.
const (
	InjectionFailure   = Kind("injection failure")
	CleanupFailure     = Kind("cleanup failure")
	ImportParseFailure = Kind("import parse failure")
	ExampleNotFound    = Kind("example not found")
)

// Error is a failure reported by the playground.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Sources are the inputs of a run.
type Sources struct {
	Vertex   string
	Fragment string
	Driver   string
}

// Controller owns the injected script, the preview surface and the
// animation frame handle of the current run. It is not safe for concurrent
// use; the page calls it from its single event loop.
type Controller struct {
	page  Page
	state State
	frame int // 0 means no pending frame
}

// New returns an idle Controller working with page.
func New(page Page) *Controller {
	return &Controller{page: page}
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Running reports whether a run is active.
func (c *Controller) Running() bool { return c.state == Running }

// TrackFrame records handle as the pending animation frame of the current
// run. It returns false if no run is active, in which case the caller should
// cancel the frame itself.
func (c *Controller) TrackFrame(handle int) bool {
	if c.state != Running {
		return false
	}
	c.frame = handle
	return true
}

// Start stops the current run, if any, and starts a new one from src. On
// failure the controller is left idle and an *Error with InjectionFailure
// kind is returned.
func (c *Controller) Start(ctx context.Context, src Sources) (err error) {
	if c.state == Running {
		c.Stop(ctx)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			c.state = Idle
			if c.frame != 0 {
				c.page.CancelFrame(c.frame)
				c.frame = 0
			}
			c.page.RemoveScript(ScriptID)
			err = &Error{Kind: InjectionFailure, Err: err}
			logger.Error(ctx, "failed to start shader", slog.Any("err", err))
		}
	}()

	// A cleanup hook may be left over if the previous script registered it
	// after being stopped.
	c.runCleanup(ctx)
	if err := c.page.ClearSurface(); err != nil {
		return err
	}
	c.page.RemoveScript(ScriptID)

	vertex, fragment := inject.Placeholders(src.Driver)
	if !vertex || !fragment {
		logger.Info(ctx, "driver script ignores some shaders",
			slog.Bool("vertex", vertex),
			slog.Bool("fragment", fragment),
		)
	}
	script := inject.Build(src.Driver, src.Vertex, src.Fragment)

	// Inline scripts run during attach and may call TrackFrame.
	c.state = Running
	if err := c.page.AttachScript(ScriptID, script); err != nil {
		return err
	}
	logger.Info(ctx, "started shader", slog.Int("script_size", len(script)))
	return nil
}

// Stop stops the current run. Calling Stop when idle does nothing.
func (c *Controller) Stop(ctx context.Context) {
	if c.state == Idle {
		return
	}
	c.state = Idle

	c.runCleanup(ctx)
	if c.frame != 0 {
		c.page.CancelFrame(c.frame)
		c.frame = 0
	}
	c.page.RemoveScript(ScriptID)
	if err := c.page.ClearSurface(); err != nil {
		logger.Error(ctx, "failed to clear surface", slog.Any("err", err))
	}
	logger.Info(ctx, "stopped shader")
}

// runCleanup calls the cleanup hook registered by the script, if any, and
// unregisters it. Failures are logged.
func (c *Controller) runCleanup(ctx context.Context) {
	hook := c.page.CleanupHook()
	if hook == nil {
		return
	}
	c.page.ClearCleanupHook()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return hook()
	}()
	if err != nil {
		logger.Error(ctx, "cleanup hook failed", slog.Any("err", &Error{Kind: CleanupFailure, Err: err}))
	}
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
