package builder

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/cppbind/pkg/types"
)

// CompileRequest describes one invocation of the external native
// toolchain: the generated glue translation unit, the module's
// implementation sources, and the output artifact path.
type CompileRequest struct {
	Module      string
	GluePath    string
	Sources     []string // linked sources, in link order
	IncludeDirs []string
	Output      string
}

// Compiler runs the external native toolchain. The returned string is
// the tool's combined output; on failure the error is a
// *types.BuildFailure carrying the same output.
type Compiler interface {
	Compile(ctx context.Context, req CompileRequest) (string, error)
}

// CXXCompiler drives a system C++ compiler. The binary is taken from
// CPPBIND_CXX, falling back to "c++".
type CXXCompiler struct {
	Path       string
	ExtraFlags []string

	pyOnce     sync.Once
	pyIncludes []string
}

// NewCXXCompiler creates a compiler driver using the configured or
// default system toolchain.
func NewCXXCompiler() *CXXCompiler {
	path := os.Getenv("CPPBIND_CXX")
	if path == "" {
		path = "c++"
	}
	return &CXXCompiler{Path: path}
}

// Compile builds one module artifact as a shared library.
func (c *CXXCompiler) Compile(ctx context.Context, req CompileRequest) (string, error) {
	args := []string{"-shared", "-fPIC", "-std=c++17", "-o", req.Output}
	for _, dir := range req.IncludeDirs {
		args = append(args, "-I"+dir)
	}
	args = append(args, c.pythonIncludes(ctx)...)
	args = append(args, c.ExtraFlags...)

	// Headers are pulled into the glue unit directly; only translation
	// units go on the command line.
	for _, src := range req.Sources {
		if isImplSource(src) {
			args = append(args, src)
		}
	}
	args = append(args, req.GluePath)

	cmd := exec.CommandContext(ctx, c.Path, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), &types.BuildFailure{Module: req.Module, Output: string(out), Err: err}
	}
	return string(out), nil
}

// pythonIncludes asks python3-config for the interpreter's include
// flags. Best effort: a missing python3-config just means the caller
// must supply include dirs themselves.
func (c *CXXCompiler) pythonIncludes(ctx context.Context) []string {
	c.pyOnce.Do(func() {
		out, err := exec.CommandContext(ctx, "python3-config", "--includes").Output()
		if err != nil {
			return
		}
		c.pyIncludes = strings.Fields(strings.TrimSpace(string(out)))
	})
	return c.pyIncludes
}

// isImplSource reports whether the path is a translation unit rather
// than a header.
func isImplSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cpp", ".cc", ".cxx":
		return true
	}
	return false
}

// includeDirsFor collects the unique parent directories of the linked
// sources so the glue unit can include the module's own headers.
func includeDirsFor(sources []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, src := range sources {
		dir := filepath.Dir(src)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	return dirs
}
