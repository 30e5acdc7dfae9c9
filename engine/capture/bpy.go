package capture

import (
	"errors"
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/spaghettifunk/cadscene/engine/core"
)

// recorded pairs an interception with the live handle the script mutates.
type recorded struct {
	call Call
	obj  *objectValue
}

// meshOps is bpy.ops.mesh. Every primitive_<kind>_add operator is captured,
// supported or not; the mapper decides what it can convert.
type meshOps struct {
	sb *Sandbox
}

func (m *meshOps) String() string        { return "bpy.ops.mesh" }
func (m *meshOps) Type() string          { return "bpy_ops_submodule" }
func (m *meshOps) Freeze()               {}
func (m *meshOps) Truth() starlark.Bool  { return starlark.True }
func (m *meshOps) Hash() (uint32, error) { return starlark.String("bpy.ops.mesh").Hash() }
func (m *meshOps) AttrNames() []string   { return nil }

func (m *meshOps) Attr(name string) (starlark.Value, error) {
	kind, ok := kindFromOperator(name)
	if !ok {
		return noop{path: "bpy.ops.mesh." + name}, nil
	}
	return starlark.NewBuiltin("bpy.ops.mesh."+name, func(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		if len(args) > 0 {
			return nil, fmt.Errorf("%s: operators accept keyword arguments only", b.Name())
		}
		return m.sb.intercept(kind, kwargs)
	}), nil
}

// contextValue is bpy.context; object and active_object follow the most
// recent primitive call.
type contextValue struct {
	sb *Sandbox
}

func (c *contextValue) String() string        { return "bpy.context" }
func (c *contextValue) Type() string          { return "Context" }
func (c *contextValue) Freeze()               {}
func (c *contextValue) Truth() starlark.Bool  { return starlark.True }
func (c *contextValue) Hash() (uint32, error) { return starlark.String("bpy.context").Hash() }
func (c *contextValue) AttrNames() []string   { return []string{"active_object", "object"} }

func (c *contextValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "object", "active_object":
		if c.sb.current == nil {
			return starlark.None, nil
		}
		return c.sb.current, nil
	}
	return noop{path: "bpy.context." + name}, nil
}

func (c *contextValue) SetField(string, starlark.Value) error { return nil }

// newBpy assembles the bpy module bound to one sandbox.
func newBpy(sb *Sandbox) *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: "bpy",
		Members: starlark.StringDict{
			"ops": &namespace{path: "bpy.ops", members: starlark.StringDict{
				"mesh": &meshOps{sb: sb},
			}},
			"data": &namespace{path: "bpy.data", members: starlark.StringDict{
				"materials": sb.materials,
			}},
			"context": &contextValue{sb: sb},
			"types":   noop{path: "bpy.types"},
			"props":   noop{path: "bpy.props"},
			"utils":   noop{path: "bpy.utils"},
			"app":     noop{path: "bpy.app"},
			"path":    noop{path: "bpy.path"},
		},
	}
}

// intercept records one primitive call and makes its handle current.
func (sb *Sandbox) intercept(kind Kind, kwargs []starlark.Tuple) (starlark.Value, error) {
	args := NewArgs()
	for _, kv := range kwargs {
		name := string(kv[0].(starlark.String))
		val := kv[1]
		if f, ok := toFloat(val); ok {
			if !finite(f) {
				return nil, fmt.Errorf("primitive_%s_add: %s: %w, got %v", kind, name, errNotFinite, f)
			}
			args.SetFloat(name, f)
			continue
		}
		if _, isStr := val.(starlark.String); !isStr {
			fs, err := toFloats(val)
			if errors.Is(err, errNotFinite) {
				return nil, fmt.Errorf("primitive_%s_add: %s: %w", kind, name, err)
			}
			if err == nil {
				args.SetVector(name, fs...)
				continue
			}
		}
		core.LogDebug("primitive_%s_add: ignoring keyword %s=%s", kind, name, val)
	}

	call := NewCall(kind, args)
	obj := newObjectValue(call)
	sb.calls = append(sb.calls, &recorded{call: call, obj: obj})
	sb.current = obj

	result := starlark.NewSet(1)
	if err := result.Insert(starlark.String("FINISHED")); err != nil {
		return nil, err
	}
	return result, nil
}
