package gpu

import (
	vk "github.com/vulkan-go/vulkan"
)

const (
	// ValidationLayerName is the Khronos validation layer enabled in
	// debug builds. There is no fallback: when validation is requested
	// and this layer is missing the bootstrap fails.
	ValidationLayerName = "VK_LAYER_KHRONOS_validation\x00"

	debugReportExtensionName = "VK_EXT_debug_report\x00"

	// Extensions required by drivers which only implement a portability
	// subset of Vulkan (MoltenVK on macOS being the usual case).
	portabilityEnumerationExtensionName = "VK_KHR_portability_enumeration\x00"
	portabilitySubsetExtensionName      = "VK_KHR_portability_subset\x00"

	// instanceCreateEnumeratePortabilityBit mirrors
	// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR which the binding
	// does not expose.
	instanceCreateEnumeratePortabilityBit vk.InstanceCreateFlags = 0x00000001
)

// Version identifies an application or engine version in the packed form
// Vulkan expects.
type Version struct {
	Major int
	Minor int
	Patch int
}

// VK returns the Vulkan representation of the version.
func (v Version) VK() uint32 {
	return vk.MakeVersion(v.Major, v.Minor, v.Patch)
}

// Config carries the explicit configuration of the bootstrap chain. The
// values are decided once at program start from the build profile and the
// app configuration; nothing here is process-wide mutable state.
type Config struct {
	// AppName and EngineName are informational only and end up in the
	// Vulkan application info.
	AppName       string
	AppVersion    Version
	EngineName    string
	EngineVersion Version

	// EnableValidationLayers turns on the validation layer and the debug
	// reporting channel. It is derived from the build profile: enabled
	// in debug builds, disabled in release ones.
	EnableValidationLayers bool

	// Portability enables the portability enumeration instance extension
	// and the portability subset device extension, which drivers
	// implementing Vulkan atop another API require.
	Portability bool

	// VertexShader and FragmentShader hold the compiled SPIR-V bytecode
	// consumed when the graphics pipeline is assembled.
	VertexShader   []byte
	FragmentShader []byte
}

// validationLayers returns the instance and device level layers requested
// when validation is enabled.
func (c Config) validationLayers() []string {
	return []string{ValidationLayerName}
}

// deviceExtensions returns the device level extensions the program
// requires. Swapchain support is the non-negotiable minimum.
func (c Config) deviceExtensions() []string {
	extensions := []string{vk.KhrSwapchainExtensionName + "\x00"}
	if c.Portability {
		extensions = append(extensions, portabilitySubsetExtensionName)
	}

	return extensions
}
