// Package window is the windowing side of the frame loop: event pumping, the
// drawable size, and the flag raised when the window is resized.
package window

import (
	"sync/atomic"
)

// Window is what the frame loop needs from the windowing system.
type Window interface {
	ShouldClose() bool
	// PollEvents processes pending events without blocking.
	PollEvents()
	// WaitEvents blocks until at least one event arrives, then processes it.
	WaitEvents()
	// FramebufferSize returns the drawable size in pixels. A minimized window
	// reports 0x0.
	FramebufferSize() (width, height int)
	Resized() bool
	ClearResized()
}

// ResizeFlag is raised by the event source and cleared by the frame loop once
// it has rebuilt the chain. It may be raised from any goroutine.
type ResizeFlag struct {
	raised atomic.Bool
}

func (f *ResizeFlag) Raise() {
	f.raised.Store(true)
}

func (f *ResizeFlag) Raised() bool {
	return f.raised.Load()
}

func (f *ResizeFlag) Clear() {
	f.raised.Store(false)
}
