package capture

import (
	"errors"
	"fmt"

	"go.starlark.net/lib/math"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/spaghettifunk/cadscene/engine/core"
)

var (
	ErrScript            = errors.New("script execution failed")
	ErrUnsupportedImport = errors.New("unsupported import")
	ErrSandboxUsed       = errors.New("sandbox already executed a script")
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
	Recursion:       true,
}

/**
 * @brief Sandbox runs a single scene script against a private bpy binding
 * and records every primitive the script creates. A sandbox is good for
 * exactly one script; nothing it holds is shared with other sandboxes.
 */
type Sandbox struct {
	// MaxSteps bounds the number of interpreter steps; zero means no limit.
	MaxSteps uint64

	calls     []*recorded
	current   *objectValue
	materials *materialCollection
	used      bool
}

func NewSandbox() *Sandbox {
	return &Sandbox{
		materials: &materialCollection{},
	}
}

// Capture is shorthand for NewSandbox().Run.
func Capture(filename, source string) ([]Call, error) {
	return NewSandbox().Run(filename, source)
}

/**
 * @brief Executes source and returns the captured calls in creation order,
 * with each object's state as the script left it.
 * @param filename used in error positions and backtraces.
 * @param source the script text.
 * @return the captured calls, or an error wrapping ErrScript or ErrUnsupportedImport.
 */
func (sb *Sandbox) Run(filename, source string) ([]Call, error) {
	if sb.used {
		return nil, ErrSandboxUsed
	}
	sb.used = true

	predeclared := starlark.StringDict{
		"bpy":      newBpy(sb),
		"math":     math.Module,
		"__name__": starlark.String("__main__"),
	}

	rewritten, err := rewriteImports(source, predeclared)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	thread := &starlark.Thread{
		Name: filename,
		Print: func(_ *starlark.Thread, msg string) {
			core.LogDebug("[%s] %s", filename, msg)
		},
		Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
			return nil, fmt.Errorf("%w: load(%q)", ErrUnsupportedImport, module)
		},
	}
	if sb.MaxSteps > 0 {
		thread.SetMaxExecutionSteps(sb.MaxSteps)
	}

	if _, err := starlark.ExecFileOptions(fileOptions, thread, filename, rewritten, predeclared); err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			core.LogDebug("script backtrace:\n%s", evalErr.Backtrace())
		}
		return nil, fmt.Errorf("%w: %w", ErrScript, err)
	}

	return sb.snapshot(), nil
}

// snapshot freezes every handle and copies its final state out.
func (sb *Sandbox) snapshot() []Call {
	sb.materials.Freeze()
	calls := make([]Call, len(sb.calls))
	for i, r := range sb.calls {
		r.obj.Freeze()
		c := r.call
		c.Object = r.obj.snapshot()
		calls[i] = c
	}
	core.LogDebug("captured %d primitive calls", len(calls))
	return calls
}
