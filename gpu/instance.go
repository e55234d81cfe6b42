package gpu

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// ErrValidationUnavailable is returned when validation layers were requested
// but the expected layer is not installed. This is a configuration error:
// there is no silent downgrade to running without validation.
var ErrValidationUnavailable = errors.New("validation layers requested but not available")

func createInstance(d Driver, cfg Config, win WindowSource) (vk.Instance, error) {
	if cfg.EnableValidationLayers {
		ok, err := checkValidationSupport(d, cfg.validationLayers())
		if err != nil {
			return vk.Instance(vk.NullHandle), err
		}
		if !ok {
			return vk.Instance(vk.NullHandle), fmt.Errorf(
				"%w: missing %s",
				ErrValidationUnavailable,
				strings.TrimSuffix(ValidationLayerName, "\x00"),
			)
		}
	}

	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   cfg.AppName + "\x00",
		ApplicationVersion: cfg.AppVersion.VK(),
		PEngineName:        cfg.EngineName + "\x00",
		EngineVersion:      cfg.EngineVersion.VK(),
		ApiVersion:         vk.ApiVersion10,
	}

	extensions := append([]string{}, win.RequiredExtensions()...)
	if cfg.EnableValidationLayers {
		extensions = append(extensions, debugReportExtensionName)
	}

	var flags vk.InstanceCreateFlags
	if cfg.Portability {
		extensions = append(extensions, portabilityEnumerationExtensionName)
		flags |= instanceCreateEnumeratePortabilityBit
	}

	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		Flags:                   flags,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	if cfg.EnableValidationLayers {
		layers := cfg.validationLayers()
		createInfo.EnabledLayerCount = uint32(len(layers))
		createInfo.PpEnabledLayerNames = layers
	}

	instance, err := d.CreateInstance(&createInfo)
	if err != nil {
		return vk.Instance(vk.NullHandle), fmt.Errorf(
			"failed to create Vulkan instance: %w", err,
		)
	}

	return instance, nil
}

// checkValidationSupport reports whether every requested layer is present
// among the instance level layers the loader knows about.
func checkValidationSupport(d Driver, requested []string) (bool, error) {
	available, err := d.InstanceLayers()
	if err != nil {
		return false, fmt.Errorf("failed to enumerate instance layers: %w", err)
	}

	for _, layer := range requested {
		layerName := strings.TrimSuffix(layer, "\x00")

		found := false
		for _, availableLayer := range available {
			if availableLayer == layerName {
				found = true
				break
			}
		}

		if !found {
			return false, nil
		}
	}

	return true, nil
}

// setupDebugCallback registers the debug reporting channel. Only warning
// and error severities are subscribed; verbose and informational driver
// chatter is suppressed on purpose.
func setupDebugCallback(d Driver, instance vk.Instance) (vk.DebugReportCallback, error) {
	createInfo := vk.DebugReportCallbackCreateInfo{
		SType: vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags: vk.DebugReportFlags(
			vk.DebugReportWarningBit |
				vk.DebugReportPerformanceWarningBit |
				vk.DebugReportErrorBit,
		),
		PfnCallback: debugReportCallback,
	}

	callback, err := d.CreateDebugCallback(instance, &createInfo)
	if err != nil {
		return vk.NullDebugReportCallback, fmt.Errorf(
			"failed to register debug callback: %w", err,
		)
	}

	return callback, nil
}

// debugReportCallback routes driver diagnostics to the program log. It
// always reports "do not abort" back to the driver: diagnostics are
// observed here, never intercepted.
func debugReportCallback(
	flags vk.DebugReportFlags,
	objectType vk.DebugReportObjectType,
	object uint64,
	location uint,
	messageCode int32,
	layerPrefix string,
	message string,
	userData unsafe.Pointer,
) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		log.Printf("ERROR: [%s] Code %d : %s", layerPrefix, messageCode, message)
	default:
		log.Printf("WARNING: [%s] Code %d : %s", layerPrefix, messageCode, message)
	}

	return vk.Bool32(vk.False)
}
