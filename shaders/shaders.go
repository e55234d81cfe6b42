// Package shaders names the GLSL sources of the program. The SPIR-V
// artifacts next to them are produced ahead of time by cmd/glslcompile and
// loaded at startup.
package shaders

//go:generate go run vkboot/cmd/glslcompile -src . -out .

const (
	// Vertex is the source file of the triangle vertex shader.
	Vertex = "triangle.vert.glsl"

	// Fragment is the source file of the triangle fragment shader.
	Fragment = "triangle.frag.glsl"
)
