package gpu

import (
	"cmp"
	"fmt"
	"math"

	vk "github.com/vulkan-go/vulkan"
)

// swapchainSupport describes what a device can do with the target surface.
// It is computed fresh each time it is needed and never cached: the values
// are only valid for the query they were made for.
type swapchainSupport struct {
	capabilities vk.SurfaceCapabilities
	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
}

func querySwapchainSupport(
	d Driver,
	device vk.PhysicalDevice,
	surface vk.Surface,
) (swapchainSupport, error) {
	details := swapchainSupport{}

	capabilities, err := d.SurfaceCapabilities(device, surface)
	if err != nil {
		return details, err
	}
	details.capabilities = capabilities

	details.formats, err = d.SurfaceFormats(device, surface)
	if err != nil {
		return details, err
	}

	details.presentModes, err = d.SurfacePresentModes(device, surface)
	if err != nil {
		return details, err
	}

	return details, nil
}

// chooseSwapSurfaceFormat prefers 8 bit BGRA paired with the non-linear
// sRGB color space. When the driver does not offer that pair the first
// reported format is good enough. The list must be non-empty; device
// selection rejects devices without surface formats before this runs.
func chooseSwapSurfaceFormat(availableFormats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == vk.FormatB8g8r8a8Srgb &&
			format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return format
		}
	}

	return availableFormats[0]
}

// chooseSwapPresentMode prefers mailbox for its low latency without
// tearing and falls back to FIFO, which every driver must support.
func chooseSwapPresentMode(available []vk.PresentMode) vk.PresentMode {
	for _, mode := range available {
		if mode == vk.PresentModeMailbox {
			return mode
		}
	}

	return vk.PresentModeFifo
}

// chooseSwapExtent returns the driver's current extent verbatim unless the
// driver reports the "any size" sentinel, in which case the extent is
// derived from the window framebuffer size clamped componentwise into the
// driver's supported range.
func chooseSwapExtent(
	capabilities vk.SurfaceCapabilities,
	framebufferWidth int,
	framebufferHeight int,
) vk.Extent2D {
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		return capabilities.CurrentExtent
	}

	actualExtent := vk.Extent2D{
		Width:  uint32(framebufferWidth),
		Height: uint32(framebufferHeight),
	}

	actualExtent.Width = clamp(
		actualExtent.Width,
		capabilities.MinImageExtent.Width,
		capabilities.MaxImageExtent.Width,
	)

	actualExtent.Height = clamp(
		actualExtent.Height,
		capabilities.MinImageExtent.Height,
		capabilities.MaxImageExtent.Height,
	)

	return actualExtent
}

// chooseImageCount asks for one image more than the driver minimum so the
// program does not have to wait on the driver between frames. A nonzero
// maximum caps the request; zero means the driver sets no upper bound.
func chooseImageCount(capabilities vk.SurfaceCapabilities) uint32 {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}

	return imageCount
}

func createSwapchain(d Driver, c *Context, win WindowSource) error {
	support, err := querySwapchainSupport(d, c.Frame.PhysicalDevice, c.Frame.Surface)
	if err != nil {
		return err
	}

	surfaceFormat := chooseSwapSurfaceFormat(support.formats)
	presentMode := chooseSwapPresentMode(support.presentModes)

	width, height := win.FramebufferSize()
	extent := chooseSwapExtent(support.capabilities, width, height)

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          c.Frame.Surface,
		MinImageCount:    chooseImageCount(support.capabilities),
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageFormat:      surfaceFormat.Format,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     support.capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}

	// Images are shared across both queue families when they differ.
	// With a single family exclusive access avoids needless
	// synchronization.
	indices := c.Frame.QueueIndices
	if indices.Graphics.Get() != indices.Present.Get() {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			indices.Graphics.Get(),
			indices.Present.Get(),
		}
	} else {
		createInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	swapchain, err := d.CreateSwapchain(c.Device, &createInfo)
	if err != nil {
		return fmt.Errorf("failed to create swapchain: %w", err)
	}
	c.Frame.Swapchain = swapchain

	images, err := d.SwapchainImages(c.Device, swapchain)
	if err != nil {
		return err
	}
	c.Frame.SwapchainImages = images

	c.Frame.SwapchainImageFormat = surfaceFormat.Format
	c.Frame.SwapchainExtent = extent

	return nil
}

// createImageViews creates one 2D color view per swapchain image, mapping
// all four channels identity and covering a single mip level and layer.
func createImageViews(d Driver, c *Context) error {
	for i, image := range c.Frame.SwapchainImages {
		createInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   c.Frame.SwapchainImageFormat,
			Components: vk.ComponentMapping{
				R: vk.ComponentSwizzleIdentity,
				G: vk.ComponentSwizzleIdentity,
				B: vk.ComponentSwizzleIdentity,
				A: vk.ComponentSwizzleIdentity,
			},
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask:     vk.ImageAspectFlags(vk.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}

		view, err := d.CreateImageView(c.Device, &createInfo)
		if err != nil {
			return fmt.Errorf("failed to create view for image %d: %w", i, err)
		}

		c.Frame.SwapchainImageViews = append(c.Frame.SwapchainImageViews, view)
	}

	return nil
}

func clamp[T cmp.Ordered](val, min, max T) T {
	if val < min {
		val = min
	}
	if val > max {
		val = max
	}
	return val
}
