package gpu

import (
	vk "github.com/vulkan-go/vulkan"
)

// WindowSource is the contract with the windowing collaborator. The window
// handle itself stays opaque on the other side of this interface; the
// bootstrap chain only needs a surface, the platform's required instance
// extensions and the current framebuffer size.
type WindowSource interface {
	// RequiredExtensions returns the instance extensions the platform
	// needs in order to present to this window.
	RequiredExtensions() []string

	// CreateSurface wraps the native window into a Vulkan drawing
	// surface owned by the given instance.
	CreateSurface(instance vk.Instance) (vk.Surface, error)

	// FramebufferSize returns the current framebuffer size in pixels.
	FramebufferSize() (width, height int)
}
