package gpu

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"

	"vkboot/unsafer"
)

// Driver is the set of Vulkan entry points the bootstrap chain uses. The
// production implementation is VulkanDriver; tests supply a mock so the
// whole chain can run against a simulated device.
type Driver interface {
	InstanceLayers() ([]string, error)
	CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error)
	DestroyInstance(instance vk.Instance)
	CreateDebugCallback(
		instance vk.Instance, info *vk.DebugReportCallbackCreateInfo,
	) (vk.DebugReportCallback, error)
	DestroyDebugCallback(instance vk.Instance, callback vk.DebugReportCallback)

	PhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error)
	DeviceProperties(device vk.PhysicalDevice) vk.PhysicalDeviceProperties
	DeviceFeatures(device vk.PhysicalDevice) vk.PhysicalDeviceFeatures
	DeviceExtensions(device vk.PhysicalDevice) ([]string, error)
	QueueFamilies(device vk.PhysicalDevice) []vk.QueueFamilyProperties
	SurfaceSupport(
		device vk.PhysicalDevice, family uint32, surface vk.Surface,
	) (bool, error)
	SurfaceCapabilities(
		device vk.PhysicalDevice, surface vk.Surface,
	) (vk.SurfaceCapabilities, error)
	SurfaceFormats(
		device vk.PhysicalDevice, surface vk.Surface,
	) ([]vk.SurfaceFormat, error)
	SurfacePresentModes(
		device vk.PhysicalDevice, surface vk.Surface,
	) ([]vk.PresentMode, error)
	DestroySurface(instance vk.Instance, surface vk.Surface)

	CreateDevice(
		physical vk.PhysicalDevice, info *vk.DeviceCreateInfo,
	) (vk.Device, error)
	DestroyDevice(device vk.Device)
	DeviceQueue(device vk.Device, family, index uint32) vk.Queue

	CreateSwapchain(device vk.Device, info *vk.SwapchainCreateInfo) (vk.Swapchain, error)
	DestroySwapchain(device vk.Device, swapchain vk.Swapchain)
	SwapchainImages(device vk.Device, swapchain vk.Swapchain) ([]vk.Image, error)
	CreateImageView(device vk.Device, info *vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(device vk.Device, view vk.ImageView)

	CreateRenderPass(device vk.Device, info *vk.RenderPassCreateInfo) (vk.RenderPass, error)
	DestroyRenderPass(device vk.Device, renderPass vk.RenderPass)
	CreateShaderModule(device vk.Device, code []byte) (vk.ShaderModule, error)
	DestroyShaderModule(device vk.Device, module vk.ShaderModule)
	CreatePipelineLayout(
		device vk.Device, info *vk.PipelineLayoutCreateInfo,
	) (vk.PipelineLayout, error)
	DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout)
	CreateGraphicsPipeline(
		device vk.Device, info vk.GraphicsPipelineCreateInfo,
	) (vk.Pipeline, error)
	DestroyPipeline(device vk.Device, pipeline vk.Pipeline)
}

// VulkanDriver implements Driver on top of the real Vulkan loader. The
// wrappers also take care of the Deref calls the binding needs to copy C
// struct contents into their Go shadows.
type VulkanDriver struct{}

func (VulkanDriver) InstanceLayers() ([]string, error) {
	var count uint32
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, nil)); err != nil {
		return nil, fmt.Errorf("failed to count instance layers: %w", err)
	}

	layers := make([]vk.LayerProperties, count)
	if err := vk.Error(vk.EnumerateInstanceLayerProperties(&count, layers)); err != nil {
		return nil, fmt.Errorf("failed to enumerate instance layers: %w", err)
	}

	names := make([]string, 0, count)
	for _, layer := range layers {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}

	return names, nil
}

func (VulkanDriver) CreateInstance(info *vk.InstanceCreateInfo) (vk.Instance, error) {
	var instance vk.Instance
	if err := vk.Error(vk.CreateInstance(info, nil, &instance)); err != nil {
		return vk.Instance(vk.NullHandle), err
	}

	vk.InitInstance(instance)
	return instance, nil
}

func (VulkanDriver) DestroyInstance(instance vk.Instance) {
	vk.DestroyInstance(instance, nil)
}

func (VulkanDriver) CreateDebugCallback(
	instance vk.Instance,
	info *vk.DebugReportCallbackCreateInfo,
) (vk.DebugReportCallback, error) {
	var callback vk.DebugReportCallback
	if err := vk.Error(
		vk.CreateDebugReportCallback(instance, info, nil, &callback),
	); err != nil {
		return vk.NullDebugReportCallback, err
	}

	return callback, nil
}

func (VulkanDriver) DestroyDebugCallback(
	instance vk.Instance,
	callback vk.DebugReportCallback,
) {
	vk.DestroyDebugReportCallback(instance, callback, nil)
}

func (VulkanDriver) PhysicalDevices(instance vk.Instance) ([]vk.PhysicalDevice, error) {
	var count uint32
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, nil)); err != nil {
		return nil, fmt.Errorf("failed to get the number of physical devices: %w", err)
	}

	devices := make([]vk.PhysicalDevice, count)
	if err := vk.Error(vk.EnumeratePhysicalDevices(instance, &count, devices)); err != nil {
		return nil, fmt.Errorf("failed to enumerate the physical devices: %w", err)
	}

	return devices, nil
}

func (VulkanDriver) DeviceProperties(
	device vk.PhysicalDevice,
) vk.PhysicalDeviceProperties {
	var properties vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(device, &properties)
	properties.Deref()
	return properties
}

func (VulkanDriver) DeviceFeatures(device vk.PhysicalDevice) vk.PhysicalDeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(device, &features)
	features.Deref()
	return features
}

func (VulkanDriver) DeviceExtensions(device vk.PhysicalDevice) ([]string, error) {
	var count uint32
	res := vk.EnumerateDeviceExtensionProperties(device, "", &count, nil)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to count device extensions: %w", err)
	}

	extensions := make([]vk.ExtensionProperties, count)
	res = vk.EnumerateDeviceExtensionProperties(device, "", &count, extensions)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to enumerate device extensions: %w", err)
	}

	names := make([]string, 0, count)
	for _, extension := range extensions {
		extension.Deref()
		names = append(names, vk.ToString(extension.ExtensionName[:]))
	}

	return names, nil
}

func (VulkanDriver) QueueFamilies(
	device vk.PhysicalDevice,
) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)

	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &count, families)
	for i := range families {
		families[i].Deref()
	}

	return families
}

func (VulkanDriver) SurfaceSupport(
	device vk.PhysicalDevice,
	family uint32,
	surface vk.Surface,
) (bool, error) {
	var hasPresent vk.Bool32
	res := vk.GetPhysicalDeviceSurfaceSupport(device, family, surface, &hasPresent)
	if err := vk.Error(res); err != nil {
		return false, err
	}

	return hasPresent.B(), nil
}

func (VulkanDriver) SurfaceCapabilities(
	device vk.PhysicalDevice,
	surface vk.Surface,
) (vk.SurfaceCapabilities, error) {
	var capabilities vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(device, surface, &capabilities)
	if err := vk.Error(res); err != nil {
		return capabilities, fmt.Errorf(
			"failed to query device surface capabilities: %w", err,
		)
	}

	capabilities.Deref()
	capabilities.CurrentExtent.Deref()
	capabilities.MinImageExtent.Deref()
	capabilities.MaxImageExtent.Deref()

	return capabilities, nil
}

func (VulkanDriver) SurfaceFormats(
	device vk.PhysicalDevice,
	surface vk.Surface,
) ([]vk.SurfaceFormat, error) {
	var count uint32
	res := vk.GetPhysicalDeviceSurfaceFormats(device, surface, &count, nil)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to query device surface formats: %w", err)
	}

	formats := make([]vk.SurfaceFormat, count)
	res = vk.GetPhysicalDeviceSurfaceFormats(device, surface, &count, formats)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to query device surface formats: %w", err)
	}

	for i := range formats {
		formats[i].Deref()
	}

	return formats, nil
}

func (VulkanDriver) SurfacePresentModes(
	device vk.PhysicalDevice,
	surface vk.Surface,
) ([]vk.PresentMode, error) {
	var count uint32
	res := vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &count, nil)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to query device surface present modes: %w", err)
	}

	presentModes := make([]vk.PresentMode, count)
	res = vk.GetPhysicalDeviceSurfacePresentModes(device, surface, &count, presentModes)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to query device surface present modes: %w", err)
	}

	return presentModes, nil
}

func (VulkanDriver) DestroySurface(instance vk.Instance, surface vk.Surface) {
	vk.DestroySurface(instance, surface, nil)
}

func (VulkanDriver) CreateDevice(
	physical vk.PhysicalDevice,
	info *vk.DeviceCreateInfo,
) (vk.Device, error) {
	var device vk.Device
	if err := vk.Error(vk.CreateDevice(physical, info, nil, &device)); err != nil {
		return vk.Device(vk.NullHandle), err
	}

	return device, nil
}

func (VulkanDriver) DestroyDevice(device vk.Device) {
	vk.DestroyDevice(device, nil)
}

func (VulkanDriver) DeviceQueue(device vk.Device, family, index uint32) vk.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(device, family, index, &queue)
	return queue
}

func (VulkanDriver) CreateSwapchain(
	device vk.Device,
	info *vk.SwapchainCreateInfo,
) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	if err := vk.Error(vk.CreateSwapchain(device, info, nil, &swapchain)); err != nil {
		return vk.NullSwapchain, err
	}

	return swapchain, nil
}

func (VulkanDriver) DestroySwapchain(device vk.Device, swapchain vk.Swapchain) {
	vk.DestroySwapchain(device, swapchain, nil)
}

func (VulkanDriver) SwapchainImages(
	device vk.Device,
	swapchain vk.Swapchain,
) ([]vk.Image, error) {
	var count uint32
	res := vk.GetSwapchainImages(device, swapchain, &count, nil)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to count swapchain images: %w", err)
	}

	images := make([]vk.Image, count)
	res = vk.GetSwapchainImages(device, swapchain, &count, images)
	if err := vk.Error(res); err != nil {
		return nil, fmt.Errorf("failed to retrieve swapchain images: %w", err)
	}

	return images, nil
}

func (VulkanDriver) CreateImageView(
	device vk.Device,
	info *vk.ImageViewCreateInfo,
) (vk.ImageView, error) {
	var view vk.ImageView
	if err := vk.Error(vk.CreateImageView(device, info, nil, &view)); err != nil {
		return vk.NullImageView, err
	}

	return view, nil
}

func (VulkanDriver) DestroyImageView(device vk.Device, view vk.ImageView) {
	vk.DestroyImageView(device, view, nil)
}

func (VulkanDriver) CreateRenderPass(
	device vk.Device,
	info *vk.RenderPassCreateInfo,
) (vk.RenderPass, error) {
	var renderPass vk.RenderPass
	if err := vk.Error(vk.CreateRenderPass(device, info, nil, &renderPass)); err != nil {
		return vk.NullRenderPass, err
	}

	return renderPass, nil
}

func (VulkanDriver) DestroyRenderPass(device vk.Device, renderPass vk.RenderPass) {
	vk.DestroyRenderPass(device, renderPass, nil)
}

func (VulkanDriver) CreateShaderModule(
	device vk.Device,
	code []byte,
) (vk.ShaderModule, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    unsafer.SliceBytesToUint32(code),
	}

	var module vk.ShaderModule
	if err := vk.Error(vk.CreateShaderModule(device, &createInfo, nil, &module)); err != nil {
		return vk.NullShaderModule, err
	}

	return module, nil
}

func (VulkanDriver) DestroyShaderModule(device vk.Device, module vk.ShaderModule) {
	vk.DestroyShaderModule(device, module, nil)
}

func (VulkanDriver) CreatePipelineLayout(
	device vk.Device,
	info *vk.PipelineLayoutCreateInfo,
) (vk.PipelineLayout, error) {
	var layout vk.PipelineLayout
	if err := vk.Error(vk.CreatePipelineLayout(device, info, nil, &layout)); err != nil {
		return vk.NullPipelineLayout, err
	}

	return layout, nil
}

func (VulkanDriver) DestroyPipelineLayout(device vk.Device, layout vk.PipelineLayout) {
	vk.DestroyPipelineLayout(device, layout, nil)
}

func (VulkanDriver) CreateGraphicsPipeline(
	device vk.Device,
	info vk.GraphicsPipelineCreateInfo,
) (vk.Pipeline, error) {
	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(
		device,
		vk.PipelineCache(vk.NullHandle),
		1,
		[]vk.GraphicsPipelineCreateInfo{info},
		nil,
		pipelines,
	)
	if err := vk.Error(res); err != nil {
		return vk.NullPipeline, err
	}

	return pipelines[0], nil
}

func (VulkanDriver) DestroyPipeline(device vk.Device, pipeline vk.Pipeline) {
	vk.DestroyPipeline(device, pipeline, nil)
}
