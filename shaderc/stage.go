package shaderc

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// SourceExt is the extension of GLSL shader source files.
	SourceExt = ".glsl"

	// BinaryExt is the extension of compiled SPIR-V artifacts.
	BinaryExt = ".spv"
)

// ErrUnknownStage is returned for a shader source file whose name does not
// follow the `<name>.<stage>.glsl` convention. This is a configuration
// error and fails the whole compilation run.
var ErrUnknownStage = errors.New("unrecognized shader stage suffix")

// Stage is the pipeline stage a shader is compiled for.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
	StageCompute
	StageGeometry
	StageTessControl
	StageTessEvaluation
)

var stageSuffixes = map[string]Stage{
	".vert": StageVertex,
	".frag": StageFragment,
	".comp": StageCompute,
	".geom": StageGeometry,
	".tesc": StageTessControl,
	".tese": StageTessEvaluation,
}

// String returns the human readable name of the stage.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	case StageGeometry:
		return "geometry"
	case StageTessControl:
		return "tessellation-control"
	case StageTessEvaluation:
		return "tessellation-evaluation"
	default:
		return fmt.Sprintf("unknown stage %d", int(s))
	}
}

// glslcName returns the stage name glslc expects for -fshader-stage.
func (s Stage) glslcName() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	case StageGeometry:
		return "geometry"
	case StageTessControl:
		return "tesscontrol"
	case StageTessEvaluation:
		return "tesseval"
	default:
		return ""
	}
}

// StageFromFilename infers the pipeline stage of a shader source file from
// its filename. The expected form is `<name>.<stage>.glsl` where the stage
// suffix is one of .vert, .frag, .comp, .geom, .tesc or .tese.
func StageFromFilename(name string) (Stage, error) {
	if !strings.HasSuffix(name, SourceExt) {
		return 0, fmt.Errorf("%q is not a %s file: %w", name, SourceExt, ErrUnknownStage)
	}

	suffix := filepath.Ext(strings.TrimSuffix(name, SourceExt))
	stage, ok := stageSuffixes[suffix]
	if !ok {
		return 0, fmt.Errorf(
			"%q: %w (use a suffix like .vert%s or .frag%s)",
			name, ErrUnknownStage, SourceExt, SourceExt,
		)
	}

	return stage, nil
}

// ArtifactName returns the name under which the compiled form of a shader
// source file is written, replacing the source extension with the binary
// one. E.g. "triangle.vert.glsl" becomes "triangle.vert.spv".
func ArtifactName(source string) string {
	return strings.TrimSuffix(source, SourceExt) + BinaryExt
}
