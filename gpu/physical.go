package gpu

import (
	"errors"
	"fmt"
	"log"
	"strings"

	vk "github.com/vulkan-go/vulkan"

	"vkboot/queues"
)

// ErrNoSuitableDevice is returned when no physical device passes the
// suitability checks. This reflects a hardware or driver fact, so it is
// never retried.
var ErrNoSuitableDevice = errors.New("failed to find a suitable GPU")

// pickPhysicalDevice walks the devices in enumeration order and keeps the
// first one which passes every suitability check. Unsuitable devices are
// skipped with a warning naming the device and the failed check.
func pickPhysicalDevice(
	d Driver,
	cfg Config,
	instance vk.Instance,
	surface vk.Surface,
) (vk.PhysicalDevice, queues.FamilyIndices, error) {
	devices, err := d.PhysicalDevices(instance)
	if err != nil {
		return vk.PhysicalDevice(vk.NullHandle), queues.FamilyIndices{}, err
	}
	if len(devices) == 0 {
		return vk.PhysicalDevice(vk.NullHandle), queues.FamilyIndices{},
			fmt.Errorf("failed to find GPUs with Vulkan support")
	}

	for _, device := range devices {
		indices, reason := deviceSuitability(d, cfg, device, surface)
		if reason != "" {
			log.Printf("WARNING: skipping device %q: %s", deviceName(d, device), reason)
			continue
		}

		return device, indices, nil
	}

	return vk.PhysicalDevice(vk.NullHandle), queues.FamilyIndices{}, ErrNoSuitableDevice
}

// deviceSuitability runs every check a device must pass in order to drive
// this program. It returns the resolved queue family indices and an empty
// reason on success, or the first failed check otherwise.
func deviceSuitability(
	d Driver,
	cfg Config,
	device vk.PhysicalDevice,
	surface vk.Surface,
) (queues.FamilyIndices, string) {
	properties := d.DeviceProperties(device)
	if properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu &&
		properties.DeviceType != vk.PhysicalDeviceTypeIntegratedGpu {
		return queues.FamilyIndices{}, "not a discrete or integrated GPU"
	}

	features := d.DeviceFeatures(device)
	if features.GeometryShader != vk.True {
		return queues.FamilyIndices{}, "no geometry shader support"
	}

	indices := findQueueFamilies(d, device, surface)
	if !indices.Graphics.HasValue() {
		return queues.FamilyIndices{}, "no graphics queue family"
	}
	if !indices.Present.HasValue() {
		return queues.FamilyIndices{}, "no queue family can present to the surface"
	}

	missing, err := missingDeviceExtensions(d, device, cfg.deviceExtensions())
	if err != nil {
		return queues.FamilyIndices{}, err.Error()
	}
	if len(missing) != 0 {
		return queues.FamilyIndices{}, fmt.Sprintf(
			"missing device extensions: %s", strings.Join(missing, ", "),
		)
	}

	support, err := querySwapchainSupport(d, device, surface)
	if err != nil {
		return queues.FamilyIndices{}, err.Error()
	}
	if len(support.formats) == 0 || len(support.presentModes) == 0 {
		return queues.FamilyIndices{}, "no surface formats or present modes"
	}

	return indices, ""
}

// findQueueFamilies resolves the queue family indices needed by the
// program. Presentation support is queried per family against the target
// surface, never assumed from the graphics family.
func findQueueFamilies(
	d Driver,
	device vk.PhysicalDevice,
	surface vk.Surface,
) queues.FamilyIndices {
	indices := queues.FamilyIndices{}

	for i, family := range d.QueueFamilies(device) {
		if family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			indices.Graphics.Set(uint32(i))
		}

		hasPresent, err := d.SurfaceSupport(device, uint32(i), surface)
		if err != nil {
			log.Printf("error querying surface support for queue family %d: %s", i, err)
		} else if hasPresent {
			indices.Present.Set(uint32(i))
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices
}

// missingDeviceExtensions returns the required device extensions the device
// does not advertise.
func missingDeviceExtensions(
	d Driver,
	device vk.PhysicalDevice,
	required []string,
) ([]string, error) {
	available, err := d.DeviceExtensions(device)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate device extensions: %w", err)
	}

	availableSet := make(map[string]struct{}, len(available))
	for _, extension := range available {
		availableSet[extension] = struct{}{}
	}

	var missing []string
	for _, extension := range required {
		name := strings.TrimSuffix(extension, "\x00")
		if _, ok := availableSet[name]; !ok {
			missing = append(missing, name)
		}
	}

	return missing, nil
}

func deviceName(d Driver, device vk.PhysicalDevice) string {
	properties := d.DeviceProperties(device)
	return vk.ToString(properties.DeviceName[:])
}
