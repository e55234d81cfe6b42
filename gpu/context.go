package gpu

import (
	vk "github.com/vulkan-go/vulkan"

	"vkboot/queues"
)

// FrameResources holds the presentation side of the context: the surface,
// the chosen device and queues, the swapchain with its images and views,
// and the render pass and pipeline bound to the swapchain format.
//
// The image views always have the same length and index correspondence as
// the swapchain images. The images themselves are owned by the swapchain
// and are never destroyed individually; the views are owned here.
type FrameResources struct {
	Surface        vk.Surface
	PhysicalDevice vk.PhysicalDevice
	QueueIndices   queues.FamilyIndices

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue

	Swapchain            vk.Swapchain
	SwapchainImages      []vk.Image
	SwapchainImageViews  []vk.ImageView
	SwapchainImageFormat vk.Format
	SwapchainExtent      vk.Extent2D

	RenderPass       vk.RenderPass
	PipelineLayout   vk.PipelineLayout
	GraphicsPipeline vk.Pipeline
}

// Context is the fully configured GPU rendering context produced by
// Bootstrap. It is created once at startup and destroyed once at shutdown
// via Cleanup; it is never copied, only handed around by pointer.
type Context struct {
	driver Driver

	Instance      vk.Instance
	debugCallback vk.DebugReportCallback
	Device        vk.Device

	Frame FrameResources
}

// newContext returns a Context whose every handle is the null sentinel so
// that Cleanup can run safely no matter how far bootstrap got.
func newContext(d Driver) *Context {
	return &Context{
		driver:        d,
		Instance:      vk.Instance(vk.NullHandle),
		debugCallback: vk.NullDebugReportCallback,
		Device:        vk.Device(vk.NullHandle),
		Frame: FrameResources{
			Surface:          vk.NullSurface,
			PhysicalDevice:   vk.PhysicalDevice(vk.NullHandle),
			Swapchain:        vk.NullSwapchain,
			RenderPass:       vk.NullRenderPass,
			PipelineLayout:   vk.NullPipelineLayout,
			GraphicsPipeline: vk.NullPipeline,
		},
	}
}

// Cleanup destroys every handle created so far in exact reverse creation
// order. Handles which were never created are null sentinels and are
// skipped. Teardown never fails: the underlying destroy calls report
// nothing back, so Cleanup has no error to return.
func (c *Context) Cleanup() {
	if c.Frame.GraphicsPipeline != vk.NullPipeline {
		c.driver.DestroyPipeline(c.Device, c.Frame.GraphicsPipeline)
		c.Frame.GraphicsPipeline = vk.NullPipeline
	}

	if c.Frame.PipelineLayout != vk.NullPipelineLayout {
		c.driver.DestroyPipelineLayout(c.Device, c.Frame.PipelineLayout)
		c.Frame.PipelineLayout = vk.NullPipelineLayout
	}

	if c.Frame.RenderPass != vk.NullRenderPass {
		c.driver.DestroyRenderPass(c.Device, c.Frame.RenderPass)
		c.Frame.RenderPass = vk.NullRenderPass
	}

	for _, view := range c.Frame.SwapchainImageViews {
		c.driver.DestroyImageView(c.Device, view)
	}
	c.Frame.SwapchainImageViews = nil

	if c.Frame.Swapchain != vk.NullSwapchain {
		c.driver.DestroySwapchain(c.Device, c.Frame.Swapchain)
		c.Frame.Swapchain = vk.NullSwapchain
	}
	c.Frame.SwapchainImages = nil

	if c.Device != vk.Device(vk.NullHandle) {
		c.driver.DestroyDevice(c.Device)
		c.Device = vk.Device(vk.NullHandle)
	}

	if c.Frame.Surface != vk.NullSurface {
		c.driver.DestroySurface(c.Instance, c.Frame.Surface)
		c.Frame.Surface = vk.NullSurface
	}

	if c.debugCallback != vk.NullDebugReportCallback {
		c.driver.DestroyDebugCallback(c.Instance, c.debugCallback)
		c.debugCallback = vk.NullDebugReportCallback
	}

	if c.Instance != vk.Instance(vk.NullHandle) {
		c.driver.DestroyInstance(c.Instance)
		c.Instance = vk.Instance(vk.NullHandle)
	}
}
