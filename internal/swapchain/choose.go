package swapchain

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/framecore/internal/gpu"
)

var ErrNoSurfaceFormats = errors.New("surface advertises no formats")

// DefaultSurfaceFormat is the format preferred when the caller has no opinion.
var DefaultSurfaceFormat = gpu.SurfaceFormat{
	Format:     gpu.FormatB8G8R8A8SRGB,
	ColorSpace: gpu.ColorSpaceSRGBNonlinear,
}

// ChooseSurfaceFormat returns preferred if the surface supports it, the first
// supported format otherwise. A surface advertising a single undefined format
// accepts anything, so preferred is returned.
func ChooseSurfaceFormat(availableFormats []gpu.SurfaceFormat, preferred gpu.SurfaceFormat) (gpu.SurfaceFormat, error) {
	if len(availableFormats) == 0 {
		return gpu.SurfaceFormat{}, ErrNoSurfaceFormats
	}

	if len(availableFormats) == 1 && availableFormats[0].Format == gpu.FormatUndefined {
		return preferred, nil
	}

	for _, format := range availableFormats {
		if format == preferred {
			return format, nil
		}
	}

	return availableFormats[0], nil
}

// ChoosePresentMode returns mailbox when advertised and wanted, FIFO otherwise.
func ChoosePresentMode(availablePresentModes []gpu.PresentMode, preferMailbox bool) gpu.PresentMode {
	if preferMailbox {
		for _, presentMode := range availablePresentModes {
			if presentMode == gpu.PresentModeMailbox {
				return presentMode
			}
		}
	}

	return gpu.PresentModeFIFO
}

// ChooseExtent returns the surface's current extent unless the surface defers
// to the window, in which case the framebuffer size is clamped into the
// supported range.
func ChooseExtent(capabilities gpu.SurfaceCapabilities, framebufferWidth, framebufferHeight int) gpu.Extent2D {
	if !capabilities.CurrentExtent.IsSentinel() {
		return capabilities.CurrentExtent
	}

	return gpu.Extent2D{
		Width:  clamp(framebufferWidth, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width),
		Height: clamp(framebufferHeight, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// ImageCount requests one image above the minimum, bounded by the maximum
// when the surface has one.
func ImageCount(capabilities gpu.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}
