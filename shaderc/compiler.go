// Package shaderc compiles GLSL shader sources into SPIR-V bytecode ahead
// of running the program. Shader stages are inferred from the filename
// convention `<name>.<stage>.glsl` and `#include "file"` directives are
// resolved against sibling files in the same source directory before the
// source is handed to the compiler.
package shaderc

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
)

// Artifact is one compiled shader: its output name, the stage it was
// compiled for and the SPIR-V bytecode itself.
type Artifact struct {
	Name  string
	Stage Stage
	Code  []byte
}

// Compiler compiles every shader source in SourceDir into a SPIR-V binary
// in OutDir.
type Compiler struct {
	SourceDir string
	OutDir    string

	// Release selects maximum optimization. Any other build profile
	// compiles with optimizations disabled to keep iteration fast.
	Release bool

	// run executes the external compiler on a fully preprocessed source.
	// It is replaced in tests.
	run func(args []string, source string) error
}

// New returns a Compiler translating sources from srcDir into outDir.
func New(srcDir, outDir string, release bool) *Compiler {
	return &Compiler{
		SourceDir: srcDir,
		OutDir:    outDir,
		Release:   release,
		run:       runGlslc,
	}
}

// CompileDir compiles every .glsl file in the source directory. The first
// failing shader aborts the whole run: there is no partial success for a
// build step.
func (c *Compiler) CompileDir() ([]Artifact, error) {
	entries, err := os.ReadDir(c.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("listing shader sources in %q: %w", c.SourceDir, err)
	}

	if err := os.MkdirAll(c.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating shader output directory: %w", err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SourceExt) {
			continue
		}

		artifact, err := c.CompileFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("compiling %q: %w", entry.Name(), err)
		}

		artifacts = append(artifacts, *artifact)
	}

	return artifacts, nil
}

// CompileFile compiles a single shader source, named relative to the source
// directory, and writes its artifact into the output directory.
func (c *Compiler) CompileFile(name string) (*Artifact, error) {
	stage, err := StageFromFilename(name)
	if err != nil {
		return nil, err
	}

	source, _, err := c.expand(name, map[string]bool{})
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(c.OutDir, ArtifactName(name))

	optimization := "-O0"
	if c.Release {
		optimization = "-O"
	}

	args := []string{
		"-fshader-stage=" + stage.glslcName(),
		optimization,
		"-o", outPath,
		"-",
	}

	if err := c.run(args, source); err != nil {
		return nil, err
	}

	code, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading compiled artifact %q: %w", outPath, err)
	}

	return &Artifact{
		Name:  ArtifactName(name),
		Stage: stage,
		Code:  code,
	}, nil
}

// Dependencies returns every file, direct or transitive, that the named
// shader source includes. A change to any of them must trigger a
// recompilation of the shader.
func (c *Compiler) Dependencies(name string) ([]string, error) {
	_, deps, err := c.expand(name, map[string]bool{})
	return deps, err
}

// Affected returns the shader sources in the source directory which must be
// recompiled when the named file changes. A stage source is affected by a
// change to itself or to any file in its transitive include set.
func (c *Compiler) Affected(changed string) ([]string, error) {
	entries, err := os.ReadDir(c.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("listing shader sources in %q: %w", c.SourceDir, err)
	}

	var affected []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), SourceExt) {
			continue
		}

		if entry.Name() == changed {
			affected = append(affected, entry.Name())
			continue
		}

		// A source whose include chain is broken cannot be resolved, but
		// it must not stall recompilation of the healthy ones. It will
		// fail on its own when it is compiled.
		deps, err := c.Dependencies(entry.Name())
		if err != nil {
			log.Printf("WARNING: skipping %q while resolving dependants: %s",
				entry.Name(), err)
			continue
		}

		for _, dep := range deps {
			if dep == changed {
				affected = append(affected, entry.Name())
				break
			}
		}
	}

	return affected, nil
}

var includeRe = regexp.MustCompile(`(?m)^[ \t]*#include[ \t]+"([^"]+)"[ \t]*$`)

// expand reads a file from the source directory and recursively splices the
// contents of every #include directive in place of the directive itself.
// It returns the preprocessed source and the list of included files.
func (c *Compiler) expand(name string, seen map[string]bool) (string, []string, error) {
	raw, err := os.ReadFile(filepath.Join(c.SourceDir, name))
	if err != nil {
		return "", nil, fmt.Errorf("could not include %q: %w", name, err)
	}

	var deps []string
	var expandErr error

	source := includeRe.ReplaceAllStringFunc(string(raw), func(directive string) string {
		if expandErr != nil {
			return ""
		}

		included := includeRe.FindStringSubmatch(directive)[1]
		if seen[included] {
			// Already spliced higher up in the include chain.
			return ""
		}
		seen[included] = true

		content, nested, err := c.expand(included, seen)
		if err != nil {
			expandErr = err
			return ""
		}

		deps = append(deps, included)
		deps = append(deps, nested...)
		return content
	})

	if expandErr != nil {
		return "", nil, expandErr
	}

	return source, deps, nil
}

// runGlslc feeds the preprocessed source into glslc on its standard input.
func runGlslc(args []string, source string) error {
	cmd := exec.Command("glslc", args...)
	cmd.Stdin = strings.NewReader(source)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("glslc %s: %w: %s", strings.Join(args, " "), err, output)
	}

	return nil
}

// Load reads an already compiled artifact from dir, addressed by the name
// of its source file (e.g. "triangle.vert.glsl").
func Load(dir, source string) (*Artifact, error) {
	stage, err := StageFromFilename(source)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, ArtifactName(source))
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading shader bytecode %q: %w", path, err)
	}

	return &Artifact{
		Name:  ArtifactName(source),
		Stage: stage,
		Code:  code,
	}, nil
}
