package gpu

import (
	"fmt"

	vk "github.com/vulkan-go/vulkan"
)

// createLogicalDevice creates the logical device for the already selected
// physical device and retrieves one queue handle per resolved family.
func createLogicalDevice(d Driver, cfg Config, c *Context) error {
	indices := c.Frame.QueueIndices
	if !indices.IsComplete() {
		return fmt.Errorf("device creation attempted before both queue " +
			"family indices were resolved")
	}

	// The graphics and present families may coincide. Only one queue
	// creation request per distinct family is issued.
	queueFamilies := map[uint32]struct{}{
		indices.Graphics.Get(): {},
		indices.Present.Get():  {},
	}

	queueCreateInfos := []vk.DeviceQueueCreateInfo{}
	for familyIndex := range queueFamilies {
		queueCreateInfos = append(
			queueCreateInfos,
			vk.DeviceQueueCreateInfo{
				SType:            vk.StructureTypeDeviceQueueCreateInfo,
				QueueFamilyIndex: familyIndex,
				QueueCount:       1,
				PQueuePriorities: []float32{1.0},
			},
		)
	}

	deviceFeatures := []vk.PhysicalDeviceFeatures{{}}
	extensions := cfg.deviceExtensions()

	createInfo := vk.DeviceCreateInfo{
		SType:            vk.StructureTypeDeviceCreateInfo,
		PEnabledFeatures: deviceFeatures,

		PQueueCreateInfos:    queueCreateInfos,
		QueueCreateInfoCount: uint32(len(queueCreateInfos)),

		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	// Device level layers are ignored by current drivers but older ones
	// still read them, so the validation layer is repeated here.
	if cfg.EnableValidationLayers {
		layers := cfg.validationLayers()
		createInfo.PpEnabledLayerNames = layers
		createInfo.EnabledLayerCount = uint32(len(layers))
	}

	device, err := d.CreateDevice(c.Frame.PhysicalDevice, &createInfo)
	if err != nil {
		return fmt.Errorf("failed to create logical device: %w", err)
	}
	c.Device = device

	c.Frame.GraphicsQueue = d.DeviceQueue(device, indices.Graphics.Get(), 0)
	c.Frame.PresentQueue = d.DeviceQueue(device, indices.Present.Get(), 0)

	return nil
}
