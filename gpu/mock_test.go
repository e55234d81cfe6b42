package gpu

import (
	"fmt"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// handleArena fabricates unique fake Vulkan handles. Every handle is the
// address of its own allocation so comparisons against null sentinels and
// between handles behave like the real thing.
type handleArena struct {
	allocated []*byte
}

func (h *handleArena) next() unsafe.Pointer {
	b := new(byte)
	h.allocated = append(h.allocated, b)
	return unsafe.Pointer(b)
}

// mockGPU describes one simulated physical device: what it reports about
// itself and what it can do with the target surface.
type mockGPU struct {
	name        string
	deviceType  vk.PhysicalDeviceType
	noGeometry  bool
	families    []vk.QueueFamilyProperties
	presentable map[uint32]bool
	extensions  []string

	formats      []vk.SurfaceFormat
	presentModes []vk.PresentMode
	capabilities vk.SurfaceCapabilities

	handle vk.PhysicalDevice
}

// suitableGPU returns a device which passes every suitability check: a
// discrete GPU with one graphics family that can also present, swapchain
// support and a usable surface.
func suitableGPU(name string) *mockGPU {
	return &mockGPU{
		name:       name,
		deviceType: vk.PhysicalDeviceTypeDiscreteGpu,
		families: []vk.QueueFamilyProperties{
			{QueueFlags: vk.QueueFlags(vk.QueueGraphicsBit)},
		},
		presentable: map[uint32]bool{0: true},
		extensions:  []string{vk.KhrSwapchainExtensionName},
		formats: []vk.SurfaceFormat{
			{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		presentModes: []vk.PresentMode{vk.PresentModeFifo},
		capabilities: vk.SurfaceCapabilities{
			MinImageCount:    2,
			MaxImageCount:    0,
			CurrentExtent:    vk.Extent2D{Width: 800, Height: 600},
			MinImageExtent:   vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:   vk.Extent2D{Width: 4096, Height: 4096},
			CurrentTransform: vk.SurfaceTransformIdentityBit,
		},
	}
}

// mockDriver simulates the Vulkan loader. It hands out fake handles,
// records every create and destroy in order, and can be told to fail the
// creation of any resource kind.
type mockDriver struct {
	layers []string
	gpus   []*mockGPU

	// imageCount is how many images the fake swapchain reports.
	imageCount int

	// failCreate makes the creation of the named resource kind fail.
	failCreate map[string]error

	created   []string
	destroyed []string

	// defects records protocol violations: destroying a handle which was
	// never created, already destroyed, or of the wrong kind.
	defects []string

	arena handleArena
	live  map[unsafe.Pointer]string

	instanceInfo  *vk.InstanceCreateInfo
	deviceInfo    *vk.DeviceCreateInfo
	swapchainInfo *vk.SwapchainCreateInfo
	pipelineInfo  *vk.GraphicsPipelineCreateInfo
	shaderCodes   [][]byte
}

var _ Driver = (*mockDriver)(nil)

func newMockDriver(gpus ...*mockGPU) *mockDriver {
	d := &mockDriver{
		layers:     []string{"VK_LAYER_KHRONOS_validation"},
		gpus:       gpus,
		imageCount: 3,
		failCreate: map[string]error{},
		live:       map[unsafe.Pointer]string{},
	}

	for _, gpu := range gpus {
		gpu.handle = vk.PhysicalDevice(d.arena.next())
	}

	return d
}

func (d *mockDriver) create(kind string) (unsafe.Pointer, error) {
	if err := d.failCreate[kind]; err != nil {
		return nil, err
	}

	handle := d.arena.next()
	d.live[handle] = kind
	d.created = append(d.created, kind)
	return handle, nil
}

func (d *mockDriver) destroy(kind string, handle unsafe.Pointer) {
	if handle == nil {
		d.defects = append(d.defects, fmt.Sprintf("destroying null %s", kind))
		return
	}
	if live, ok := d.live[handle]; !ok || live != kind {
		d.defects = append(d.defects, fmt.Sprintf(
			"destroying %s which is not a live %s handle", kind, kind,
		))
		return
	}

	delete(d.live, handle)
	d.destroyed = append(d.destroyed, kind)
}

func (d *mockDriver) findGPU(device vk.PhysicalDevice) *mockGPU {
	for _, gpu := range d.gpus {
		if gpu.handle == device {
			return gpu
		}
	}

	d.defects = append(d.defects, "query against an unknown physical device")
	return suitableGPU("unknown")
}

func (d *mockDriver) InstanceLayers() ([]string, error) {
	return d.layers, nil
}

func (d *mockDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	handle, err := d.create("instance")
	if err != nil {
		return vk.Instance(vk.NullHandle), err
	}

	d.instanceInfo = info
	return vk.Instance(handle), nil
}

func (d *mockDriver) DestroyInstance(instance vk.Instance) {
	d.destroy("instance", unsafe.Pointer(instance))
}

func (d *mockDriver) CreateDebugCallback(
	instance vk.Instance,
	info *vk.DebugReportCallbackCreateInfo,
) (vk.DebugReportCallback, error) {
	handle, err := d.create("debug-callback")
	if err != nil {
		return vk.NullDebugReportCallback, err
	}

	return vk.DebugReportCallback(handle), nil
}

func (d *mockDriver) DestroyDebugCallback(
	instance vk.Instance,
	callback vk.DebugReportCallback,
) {
	d.destroy("debug-callback", unsafe.Pointer(callback))
}

func (d *mockDriver) PhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	devices := make([]vk.PhysicalDevice, 0, len(d.gpus))
	for _, gpu := range d.gpus {
		devices = append(devices, gpu.handle)
	}

	return devices, nil
}

func (d *mockDriver) DeviceProperties(
	device vk.PhysicalDevice,
) vk.PhysicalDeviceProperties {
	gpu := d.findGPU(device)

	properties := vk.PhysicalDeviceProperties{DeviceType: gpu.deviceType}
	copy(properties.DeviceName[:], gpu.name)
	return properties
}

func (d *mockDriver) DeviceFeatures(device vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	features := vk.PhysicalDeviceFeatures{GeometryShader: vk.True}
	if d.findGPU(device).noGeometry {
		features.GeometryShader = vk.False
	}

	return features
}

func (d *mockDriver) DeviceExtensions(device vk.PhysicalDevice) ([]string, error) {
	return d.findGPU(device).extensions, nil
}

func (d *mockDriver) QueueFamilies(device vk.PhysicalDevice) []vk.QueueFamilyProperties {
	return d.findGPU(device).families
}

func (d *mockDriver) SurfaceSupport(
	device vk.PhysicalDevice,
	family uint32,
	surface vk.Surface,
) (bool, error) {
	return d.findGPU(device).presentable[family], nil
}

func (d *mockDriver) SurfaceCapabilities(
	device vk.PhysicalDevice,
	surface vk.Surface,
) (vk.SurfaceCapabilities, error) {
	return d.findGPU(device).capabilities, nil
}

func (d *mockDriver) SurfaceFormats(
	device vk.PhysicalDevice,
	surface vk.Surface,
) ([]vk.SurfaceFormat, error) {
	return d.findGPU(device).formats, nil
}

func (d *mockDriver) SurfacePresentModes(
	device vk.PhysicalDevice,
	surface vk.Surface,
) ([]vk.PresentMode, error) {
	return d.findGPU(device).presentModes, nil
}

func (d *mockDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	d.destroy("surface", unsafe.Pointer(surface))
}

func (d *mockDriver) CreateDevice(
	physical vk.PhysicalDevice,
	info *vk.DeviceCreateInfo,
) (vk.Device, error) {
	handle, err := d.create("device")
	if err != nil {
		return vk.Device(vk.NullHandle), err
	}

	d.deviceInfo = info
	return vk.Device(handle), nil
}

func (d *mockDriver) DestroyDevice(device vk.Device) {
	d.destroy("device", unsafe.Pointer(device))
}

func (d *mockDriver) DeviceQueue(device vk.Device, family, index uint32) vk.Queue {
	return vk.Queue(d.arena.next())
}

func (d *mockDriver) CreateSwapchain(
	device vk.Device,
	info *vk.SwapchainCreateInfo,
) (vk.Swapchain, error) {
	handle, err := d.create("swapchain")
	if err != nil {
		return vk.NullSwapchain, err
	}

	d.swapchainInfo = info
	return vk.Swapchain(handle), nil
}

func (d *mockDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	d.destroy("swapchain", unsafe.Pointer(swapchain))
}

func (d *mockDriver) SwapchainImages(
	device vk.Device,
	swapchain vk.Swapchain,
) ([]vk.Image, error) {
	images := make([]vk.Image, d.imageCount)
	for i := range images {
		images[i] = vk.Image(d.arena.next())
	}

	return images, nil
}

func (d *mockDriver) CreateImageView(
	device vk.Device,
	info *vk.ImageViewCreateInfo,
) (vk.ImageView, error) {
	handle, err := d.create("image-view")
	if err != nil {
		return vk.NullImageView, err
	}

	return vk.ImageView(handle), nil
}

func (d *mockDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	d.destroy("image-view", unsafe.Pointer(view))
}

func (d *mockDriver) CreateRenderPass(
	device vk.Device,
	info *vk.RenderPassCreateInfo,
) (vk.RenderPass, error) {
	handle, err := d.create("render-pass")
	if err != nil {
		return vk.NullRenderPass, err
	}

	return vk.RenderPass(handle), nil
}

func (d *mockDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	d.destroy("render-pass", unsafe.Pointer(renderPass))
}

func (d *mockDriver) CreateShaderModule(
	device vk.Device,
	code []byte,
) (vk.ShaderModule, error) {
	handle, err := d.create("shader-module")
	if err != nil {
		return vk.NullShaderModule, err
	}

	d.shaderCodes = append(d.shaderCodes, code)
	return vk.ShaderModule(handle), nil
}

func (d *mockDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	d.destroy("shader-module", unsafe.Pointer(module))
}

func (d *mockDriver) CreatePipelineLayout(
	device vk.Device,
	info *vk.PipelineLayoutCreateInfo,
) (vk.PipelineLayout, error) {
	handle, err := d.create("pipeline-layout")
	if err != nil {
		return vk.NullPipelineLayout, err
	}

	return vk.PipelineLayout(handle), nil
}

func (d *mockDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	d.destroy("pipeline-layout", unsafe.Pointer(layout))
}

func (d *mockDriver) CreateGraphicsPipeline(
	device vk.Device,
	info vk.GraphicsPipelineCreateInfo,
) (vk.Pipeline, error) {
	handle, err := d.create("pipeline")
	if err != nil {
		return vk.NullPipeline, err
	}

	d.pipelineInfo = &info
	return vk.Pipeline(handle), nil
}

func (d *mockDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	d.destroy("pipeline", unsafe.Pointer(pipeline))
}

// mockWindow implements WindowSource against the mock driver, so a fake
// surface handle participates in the same create/destroy bookkeeping as
// everything else.
type mockWindow struct {
	driver        *mockDriver
	width, height int
}

func newMockWindow(d *mockDriver) *mockWindow {
	return &mockWindow{driver: d, width: 800, height: 600}
}

func (w *mockWindow) RequiredExtensions() []string {
	return []string{"VK_KHR_surface"}
}

func (w *mockWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	handle, err := w.driver.create("surface")
	if err != nil {
		return vk.NullSurface, err
	}

	return vk.Surface(handle), nil
}

func (w *mockWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

func testConfig() Config {
	return Config{
		AppName:        "bootstrap-test",
		AppVersion:     Version{Major: 1},
		EngineName:     "No Engine",
		EngineVersion:  Version{Major: 1},
		VertexShader:   []byte{1, 2, 3, 4},
		FragmentShader: []byte{5, 6, 7, 8},
	}
}
