package window

import (
	"github.com/cockroachdb/errors"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/framecore/internal/log"
)

var logger = log.New("window")

// SDLWindow is a resizable SDL2 window with Vulkan support. It must be
// created and driven from the thread that initialized SDL.
type SDLWindow struct {
	window  *sdl.Window
	resized ResizeFlag
	closing bool
}

func NewSDL(title string, width, height int) (*SDLWindow, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "initialize SDL video")
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrapf(err, "create %dx%d window", width, height)
	}

	logger.Infof("window %q created at %dx%d", title, width, height)
	return &SDLWindow{window: window}, nil
}

// SDL exposes the native window for surface creation.
func (w *SDLWindow) SDL() *sdl.Window {
	return w.window
}

// InstanceExtensions lists the instance extensions SDL needs to create a
// surface for this window.
func (w *SDLWindow) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *SDLWindow) ShouldClose() bool {
	return w.closing
}

func (w *SDLWindow) PollEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		w.handle(event)
	}
}

func (w *SDLWindow) WaitEvents() {
	if event := sdl.WaitEvent(); event != nil {
		w.handle(event)
	}
	w.PollEvents()
}

func (w *SDLWindow) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		w.closing = true
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			logger.Debugf("window resized to %dx%d", e.Data1, e.Data2)
			w.resized.Raise()
		case sdl.WINDOWEVENT_MINIMIZED, sdl.WINDOWEVENT_RESTORED:
			w.resized.Raise()
		case sdl.WINDOWEVENT_CLOSE:
			w.closing = true
		}
	}
}

func (w *SDLWindow) FramebufferSize() (int, int) {
	if w.window.GetFlags()&sdl.WINDOW_MINIMIZED != 0 {
		return 0, 0
	}

	width, height := w.window.VulkanGetDrawableSize()
	return int(width), int(height)
}

func (w *SDLWindow) Resized() bool {
	return w.resized.Raised()
}

func (w *SDLWindow) ClearResized() {
	w.resized.Clear()
}

func (w *SDLWindow) Destroy() {
	if w.window != nil {
		_ = w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}
