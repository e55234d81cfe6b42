package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pelletier/go-toml/v2"
	vk "github.com/vulkan-go/vulkan"

	"vkboot/gpu"
	"vkboot/shaderc"
	"vkboot/shaders"
)

func init() {
	// This is needed to arrange that main() runs on main thread.
	// See documentation for functions that are only allowed to be called
	// from the main thread.
	runtime.LockOSThread()

	flag.BoolVar(&args.debug, "debug", false, "Enable Vulkan validation layers")
	flag.StringVar(&args.config, "config", "vkboot.toml", "Path to the app configuration file")
}

var args struct {
	debug  bool
	config string
}

// appConfig is the part of the program configuration which lives in the
// TOML file rather than on the command line.
type appConfig struct {
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Title     string `toml:"title"`
	ShaderDir string `toml:"shader_dir"`
}

func defaultConfig() appConfig {
	return appConfig{
		Width:     1024,
		Height:    768,
		Title:     "vkboot",
		ShaderDir: "shaders",
	}
}

// loadConfig reads the TOML configuration. A missing file is not an error,
// the defaults apply.
func loadConfig(path string) (appConfig, error) {
	cfg := defaultConfig()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %q: %w", path, err)
	}

	return cfg, nil
}

func main() {
	flag.Parse()

	cfg, err := loadConfig(args.config)
	if err != nil {
		log.Fatalf("ERROR: %s", err)
	}

	app := &bootApp{config: cfg}
	if err := app.Run(); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// bootApp owns the window and the GPU context for the lifetime of the
// program.
type bootApp struct {
	config appConfig

	window *glfw.Window
	ctx    *gpu.Context
}

// Run drives the program: window, Vulkan context, event loop, teardown.
func (a *bootApp) Run() error {
	if err := a.initWindow(); err != nil {
		return fmt.Errorf("initWindow: %w", err)
	}
	defer a.cleanWindow()

	if err := a.initVulkan(); err != nil {
		return fmt.Errorf("initVulkan: %w", err)
	}
	defer a.ctx.Cleanup()

	if err := a.mainLoop(); err != nil {
		return fmt.Errorf("mainLoop: %w", err)
	}

	return nil
}

func (a *bootApp) initWindow() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("glfw.Init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)

	window, err := glfw.CreateWindow(
		a.config.Width, a.config.Height, a.config.Title, nil, nil,
	)
	if err != nil {
		// cleanWindow is only deferred once initWindow as a whole
		// succeeds, so the GLFW init is undone here.
		glfw.Terminate()
		return fmt.Errorf("creating window: %w", err)
	}

	a.window = window
	return nil
}

func (a *bootApp) cleanWindow() {
	a.window.Destroy()
	glfw.Terminate()
}

func (a *bootApp) initVulkan() error {
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())

	if err := vk.Init(); err != nil {
		return fmt.Errorf("failed to init Vulkan Go: %w", err)
	}

	vertex, err := shaderc.Load(a.config.ShaderDir, shaders.Vertex)
	if err != nil {
		return fmt.Errorf("loading vertex shader: %w", err)
	}

	fragment, err := shaderc.Load(a.config.ShaderDir, shaders.Fragment)
	if err != nil {
		return fmt.Errorf("loading fragment shader: %w", err)
	}

	if args.debug {
		log.Printf("vertex shader code size: %d", len(vertex.Code))
		log.Printf("fragment shader code size: %d", len(fragment.Code))
	}

	ctx, err := gpu.Bootstrap(gpu.Config{
		AppName:       a.config.Title,
		AppVersion:    gpu.Version{Major: 1},
		EngineName:    "No Engine",
		EngineVersion: gpu.Version{Major: 1},

		EnableValidationLayers: args.debug,
		Portability:            runtime.GOOS == "darwin",

		VertexShader:   vertex.Code,
		FragmentShader: fragment.Code,
	}, &glfwWindow{window: a.window})
	if err != nil {
		return err
	}

	a.ctx = ctx
	return nil
}

func (a *bootApp) mainLoop() error {
	for !a.window.ShouldClose() {
		// The per-frame acquire/record/submit/present loop is not
		// implemented yet; the context built above carries everything
		// it will need.
		glfw.PollEvents()
	}

	return nil
}

// glfwWindow adapts a GLFW window to the gpu.WindowSource contract.
type glfwWindow struct {
	window *glfw.Window
}

func (w *glfwWindow) RequiredExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

func (w *glfwWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	surfacePtr, err := w.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, fmt.Errorf(
			"cannot create surface within GLFW window: %w", err,
		)
	}

	return vk.SurfaceFromPointer(surfacePtr), nil
}

func (w *glfwWindow) FramebufferSize() (int, int) {
	return w.window.GetFramebufferSize()
}
