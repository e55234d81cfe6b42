// Command glslcompile compiles every GLSL shader in a directory to SPIR-V
// using the glslc compiler from the Vulkan SDK.
//
// The shader stage is inferred from the file name: triangle.vert.glsl is a
// vertex shader and its artifact is written as triangle.vert.spv in the
// output directory. With -watch the command keeps running and recompiles a
// shader whenever it or one of its includes changes on disk.
package main

import (
	"flag"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"vkboot/shaderc"
)

var args struct {
	src     string
	out     string
	profile string
	watch   bool
}

func init() {
	flag.StringVar(&args.src, "src", "shaders", "Directory with .glsl shader sources")
	flag.StringVar(&args.out, "out", "", "Output directory for .spv artifacts (defaults to -src)")
	flag.StringVar(&args.profile, "profile", "debug", "Build profile: debug or release")
	flag.BoolVar(&args.watch, "watch", false, "Keep running and recompile on source changes")
}

func main() {
	flag.Parse()

	if args.out == "" {
		args.out = args.src
	}

	var release bool
	switch args.profile {
	case "debug":
		release = false
	case "release":
		release = true
	default:
		log.Fatalf("ERROR: unknown profile %q, expected debug or release", args.profile)
	}

	compiler := shaderc.New(args.src, args.out, release)

	artifacts, err := compiler.CompileDir()
	if err != nil {
		log.Fatalf("ERROR: %s", err)
	}

	for _, artifact := range artifacts {
		log.Printf("compiled %s (%s, %d bytes)",
			artifact.Name, artifact.Stage, len(artifact.Code))
	}

	if !args.watch {
		return
	}

	if err := watch(compiler); err != nil {
		log.Fatalf("ERROR: %s", err)
	}
}

// watch recompiles shaders as their sources change. A change to an included
// file recompiles every shader which splices it in, directly or through
// other includes.
func watch(compiler *shaderc.Compiler) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(compiler.SourceDir); err != nil {
		return err
	}

	log.Printf("watching %s for changes", compiler.SourceDir)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			name := filepath.Base(event.Name)
			if strings.HasSuffix(name, shaderc.BinaryExt) {
				continue
			}
			if isHidden(name) {
				continue
			}

			recompile(compiler, name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("WARNING: watch error: %s", err)
		}
	}
}

func recompile(compiler *shaderc.Compiler, changed string) {
	affected, err := compiler.Affected(changed)
	if err != nil {
		log.Printf("WARNING: cannot resolve %s dependants: %s", changed, err)
		return
	}

	for _, source := range affected {
		artifact, err := compiler.CompileFile(source)
		if err != nil {
			log.Printf("ERROR: %s", err)
			continue
		}

		log.Printf("compiled %s (%s, %d bytes)",
			artifact.Name, artifact.Stage, len(artifact.Code))
	}
}

// isHidden reports whether a file name is a dot file or an editor temp
// file. Editors tend to spray those into watched directories on save.
func isHidden(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return strings.HasSuffix(name, "~")
}
