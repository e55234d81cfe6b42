// Package gpu turns a bare window handle into a fully configured Vulkan
// rendering context: instance, optional validation channel, device
// selection, logical device and queues, swapchain with per-image views,
// and a render pass plus graphics pipeline bound to compiled shader
// bytecode. The whole chain runs once at startup; on any failure the
// resources created so far are unwound in exact reverse order before the
// error is surfaced.
package gpu

import (
	"fmt"
)

// Bootstrap runs the full startup chain against the real Vulkan loader.
// It either returns a fully populated context or leaves nothing allocated
// and returns a single error naming the failed stage.
//
// The chain is strictly sequential and single threaded: every stage runs
// to completion before the next begins and the resulting context is owned
// by exactly one execution path until Cleanup.
func Bootstrap(cfg Config, win WindowSource) (*Context, error) {
	return bootstrap(VulkanDriver{}, cfg, win)
}

func bootstrap(d Driver, cfg Config, win WindowSource) (*Context, error) {
	c := newContext(d)

	fail := func(stage string, err error) (*Context, error) {
		c.Cleanup()
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	instance, err := createInstance(d, cfg, win)
	if err != nil {
		return fail("createInstance", err)
	}
	c.Instance = instance

	if cfg.EnableValidationLayers {
		callback, err := setupDebugCallback(d, instance)
		if err != nil {
			return fail("setupDebugCallback", err)
		}
		c.debugCallback = callback
	}

	surface, err := win.CreateSurface(instance)
	if err != nil {
		return fail("createSurface", err)
	}
	c.Frame.Surface = surface

	physicalDevice, indices, err := pickPhysicalDevice(d, cfg, instance, surface)
	if err != nil {
		return fail("pickPhysicalDevice", err)
	}
	c.Frame.PhysicalDevice = physicalDevice
	c.Frame.QueueIndices = indices

	if err := createLogicalDevice(d, cfg, c); err != nil {
		return fail("createLogicalDevice", err)
	}

	if err := createSwapchain(d, c, win); err != nil {
		return fail("createSwapchain", err)
	}

	if err := createImageViews(d, c); err != nil {
		return fail("createImageViews", err)
	}

	if err := createRenderPass(d, c); err != nil {
		return fail("createRenderPass", err)
	}

	if err := createGraphicsPipeline(d, cfg, c); err != nil {
		return fail("createGraphicsPipeline", err)
	}

	return c, nil
}
