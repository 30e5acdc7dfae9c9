package capture

import (
	"errors"
	"fmt"
	gomath "math"
	"strings"

	"go.starlark.net/starlark"

	"github.com/spaghettifunk/cadscene/engine/math"
)

// ------------------------------------------
// noop
// ------------------------------------------

// noop stands in for every part of bpy the converter does not care about.
// Any attribute, index, call or assignment on it succeeds.
type noop struct {
	path string
}

var (
	_ starlark.HasSetField = noop{}
	_ starlark.HasSetKey   = noop{}
	_ starlark.Callable    = noop{}
	_ starlark.Iterable    = noop{}
)

func (n noop) String() string        { return "<" + n.path + ">" }
func (n noop) Type() string          { return "bpy_struct" }
func (n noop) Freeze()               {}
func (n noop) Truth() starlark.Bool  { return starlark.True }
func (n noop) Hash() (uint32, error) { return starlark.String(n.path).Hash() }
func (n noop) Name() string          { return n.path }

func (n noop) Attr(name string) (starlark.Value, error) {
	return noop{path: n.path + "." + name}, nil
}

func (n noop) AttrNames() []string                   { return nil }
func (n noop) SetField(string, starlark.Value) error { return nil }
func (n noop) SetKey(k, v starlark.Value) error      { return nil }
func (n noop) Iterate() starlark.Iterator            { return starlark.Tuple{}.Iterate() }
func (n noop) Len() int                              { return 0 }

func (n noop) Get(k starlark.Value) (starlark.Value, bool, error) {
	return noop{path: n.path + "[" + k.String() + "]"}, true, nil
}

// CallInternal returns another noop so chained housekeeping calls such as
// nodes.get("Principled BSDF").inputs[0] keep working.
func (n noop) CallInternal(*starlark.Thread, starlark.Tuple, []starlark.Tuple) (starlark.Value, error) {
	return noop{path: n.path + "()"}, nil
}

// ------------------------------------------
// namespace
// ------------------------------------------

// namespace is a fixed set of members; unknown names fall back to noop.
type namespace struct {
	path    string
	members starlark.StringDict
}

func (ns *namespace) String() string        { return "<" + ns.path + ">" }
func (ns *namespace) Type() string          { return "bpy_namespace" }
func (ns *namespace) Freeze()               { ns.members.Freeze() }
func (ns *namespace) Truth() starlark.Bool  { return starlark.True }
func (ns *namespace) Hash() (uint32, error) { return starlark.String(ns.path).Hash() }
func (ns *namespace) AttrNames() []string   { return ns.members.Keys() }

func (ns *namespace) Attr(name string) (starlark.Value, error) {
	if v, ok := ns.members[name]; ok {
		return v, nil
	}
	return noop{path: ns.path + "." + name}, nil
}

// ------------------------------------------
// vector
// ------------------------------------------

var vectorFields = [...]string{"x", "y", "z", "w"}
var colorFields = [...]string{"r", "g", "b", "a"}

// vector is a mutable fixed-length float sequence, used for scale, location,
// rotation_euler and diffuse_color.
type vector struct {
	v      []float64
	frozen bool
}

var (
	_ starlark.HasSetIndex = (*vector)(nil)
	_ starlark.HasSetField = (*vector)(nil)
	_ starlark.Iterable    = (*vector)(nil)
)

func newVector(v ...float64) *vector {
	return &vector{v: append([]float64(nil), v...)}
}

func (vc *vector) String() string {
	parts := make([]string, len(vc.v))
	for i, f := range vc.v {
		parts[i] = starlark.Float(f).String()
	}
	return "Vector((" + strings.Join(parts, ", ") + "))"
}

func (vc *vector) Type() string          { return "Vector" }
func (vc *vector) Freeze()               { vc.frozen = true }
func (vc *vector) Truth() starlark.Bool  { return starlark.True }
func (vc *vector) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: Vector") }
func (vc *vector) Len() int              { return len(vc.v) }
func (vc *vector) Index(i int) starlark.Value {
	return starlark.Float(vc.v[i])
}

func (vc *vector) Iterate() starlark.Iterator {
	return vc.tuple().Iterate()
}

func (vc *vector) tuple() starlark.Tuple {
	t := make(starlark.Tuple, len(vc.v))
	for i, f := range vc.v {
		t[i] = starlark.Float(f)
	}
	return t
}

func (vc *vector) SetIndex(i int, val starlark.Value) error {
	if vc.frozen {
		return fmt.Errorf("cannot assign to element of frozen Vector")
	}
	f, ok := toFloat(val)
	if !ok {
		return fmt.Errorf("Vector element must be a number, got %s", val.Type())
	}
	if !finite(f) {
		return fmt.Errorf("Vector element must be finite, got %v", f)
	}
	vc.v[i] = f
	return nil
}

func (vc *vector) fieldIndex(name string) int {
	for i := 0; i < len(vc.v) && i < len(vectorFields); i++ {
		if vectorFields[i] == name || colorFields[i] == name {
			return i
		}
	}
	return -1
}

func (vc *vector) Attr(name string) (starlark.Value, error) {
	if i := vc.fieldIndex(name); i >= 0 {
		return starlark.Float(vc.v[i]), nil
	}
	return nil, nil
}

func (vc *vector) AttrNames() []string {
	return vectorFields[:len(vc.v)]
}

func (vc *vector) SetField(name string, val starlark.Value) error {
	i := vc.fieldIndex(name)
	if i < 0 {
		return fmt.Errorf("Vector has no attribute %q", name)
	}
	return vc.SetIndex(i, val)
}

// assign replaces the contents from any numeric sequence of the same length.
func (vc *vector) assign(val starlark.Value) error {
	if vc.frozen {
		return fmt.Errorf("cannot assign to frozen Vector")
	}
	fs, err := toFloats(val)
	if err != nil {
		return err
	}
	if len(fs) != len(vc.v) {
		return fmt.Errorf("sequence length %d does not match %d", len(fs), len(vc.v))
	}
	copy(vc.v, fs)
	return nil
}

// ------------------------------------------
// material
// ------------------------------------------

type materialValue struct {
	name    string
	diffuse *vector
	extras  starlark.StringDict
	frozen  bool
}

var _ starlark.HasSetField = (*materialValue)(nil)

func newMaterialValue(name string) *materialValue {
	return &materialValue{
		name:    name,
		diffuse: newVector(1, 1, 1, 1),
		extras:  make(starlark.StringDict),
	}
}

func (mv *materialValue) String() string        { return fmt.Sprintf("bpy.data.materials[%q]", mv.name) }
func (mv *materialValue) Type() string          { return "Material" }
func (mv *materialValue) Truth() starlark.Bool  { return starlark.True }
func (mv *materialValue) Hash() (uint32, error) { return starlark.String(mv.name).Hash() }

func (mv *materialValue) Freeze() {
	mv.frozen = true
	mv.diffuse.Freeze()
	mv.extras.Freeze()
}

func (mv *materialValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "name":
		return starlark.String(mv.name), nil
	case "diffuse_color":
		return mv.diffuse, nil
	}
	if v, ok := mv.extras[name]; ok {
		return v, nil
	}
	return noop{path: mv.String() + "." + name}, nil
}

func (mv *materialValue) AttrNames() []string {
	return append([]string{"diffuse_color", "name"}, mv.extras.Keys()...)
}

func (mv *materialValue) SetField(name string, val starlark.Value) error {
	if mv.frozen {
		return fmt.Errorf("cannot set %s on frozen Material", name)
	}
	switch name {
	case "name":
		s, ok := starlark.AsString(val)
		if !ok {
			return fmt.Errorf("Material.name must be a string, got %s", val.Type())
		}
		mv.name = s
		return nil
	case "diffuse_color":
		fs, err := toFloats(val)
		if err != nil {
			return fmt.Errorf("Material.diffuse_color: %w", err)
		}
		switch len(fs) {
		case 3:
			fs = append(fs, 1)
		case 4:
		default:
			return fmt.Errorf("Material.diffuse_color expects 3 or 4 components, got %d", len(fs))
		}
		copy(mv.diffuse.v, fs)
		return nil
	}
	mv.extras[name] = val
	return nil
}

func (mv *materialValue) snapshot() Material {
	m := Material{Name: mv.name}
	copy(m.DiffuseColor[:], mv.diffuse.v)
	return m
}

// ------------------------------------------
// bpy.data.materials
// ------------------------------------------

type materialCollection struct {
	items  []*materialValue
	frozen bool
}

var (
	_ starlark.Indexable = (*materialCollection)(nil)
	_ starlark.Iterable  = (*materialCollection)(nil)
	_ starlark.Mapping   = (*materialCollection)(nil)
	_ starlark.HasAttrs  = (*materialCollection)(nil)
)

func (mc *materialCollection) String() string        { return "bpy.data.materials" }
func (mc *materialCollection) Type() string          { return "bpy_prop_collection" }
func (mc *materialCollection) Truth() starlark.Bool  { return starlark.Bool(len(mc.items) > 0) }
func (mc *materialCollection) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: %s", mc.Type()) }
func (mc *materialCollection) Len() int              { return len(mc.items) }
func (mc *materialCollection) Index(i int) starlark.Value {
	return mc.items[i]
}

func (mc *materialCollection) Freeze() {
	mc.frozen = true
	for _, m := range mc.items {
		m.Freeze()
	}
}

func (mc *materialCollection) Iterate() starlark.Iterator {
	t := make(starlark.Tuple, len(mc.items))
	for i, m := range mc.items {
		t[i] = m
	}
	return t.Iterate()
}

func (mc *materialCollection) lookup(name string) *materialValue {
	for _, m := range mc.items {
		if m.name == name {
			return m
		}
	}
	return nil
}

func (mc *materialCollection) Get(k starlark.Value) (starlark.Value, bool, error) {
	name, ok := starlark.AsString(k)
	if !ok {
		return nil, false, fmt.Errorf("bpy.data.materials key must be a string, got %s", k.Type())
	}
	if m := mc.lookup(name); m != nil {
		return m, true, nil
	}
	return nil, false, nil
}

func (mc *materialCollection) Attr(name string) (starlark.Value, error) {
	switch name {
	case "new":
		return starlark.NewBuiltin("bpy.data.materials.new", mc.new), nil
	case "get":
		return starlark.NewBuiltin("bpy.data.materials.get", mc.get), nil
	case "remove":
		return starlark.NewBuiltin("bpy.data.materials.remove", mc.remove), nil
	}
	return nil, nil
}

func (mc *materialCollection) AttrNames() []string {
	return []string{"get", "new", "remove"}
}

func (mc *materialCollection) new(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if mc.frozen {
		return nil, fmt.Errorf("%s: collection is frozen", b.Name())
	}
	name := "Material"
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name?", &name); err != nil {
		return nil, err
	}
	m := newMaterialValue(name)
	mc.items = append(mc.items, m)
	return m, nil
}

func (mc *materialCollection) get(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var def starlark.Value = starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "key", &name, "default?", &def); err != nil {
		return nil, err
	}
	if m := mc.lookup(name); m != nil {
		return m, nil
	}
	return def, nil
}

func (mc *materialCollection) remove(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var target starlark.Value
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "material", &target); err != nil {
		return nil, err
	}
	for i, m := range mc.items {
		if starlark.Value(m) == target {
			mc.items = append(mc.items[:i], mc.items[i+1:]...)
			break
		}
	}
	return starlark.None, nil
}

// ------------------------------------------
// object handle
// ------------------------------------------

// meshData is obj.data; only the material slots matter.
type meshData struct {
	materials *starlark.List
}

func (md *meshData) String() string        { return "bpy.types.Mesh" }
func (md *meshData) Type() string          { return "Mesh" }
func (md *meshData) Freeze()               { md.materials.Freeze() }
func (md *meshData) Truth() starlark.Bool  { return starlark.True }
func (md *meshData) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: Mesh") }
func (md *meshData) AttrNames() []string   { return []string{"materials"} }

func (md *meshData) Attr(name string) (starlark.Value, error) {
	if name == "materials" {
		return md.materials, nil
	}
	return noop{path: "bpy.types.Mesh." + name}, nil
}

func (md *meshData) SetField(string, starlark.Value) error { return nil }

// objectValue is the handle returned through bpy.context.object after a
// primitive call.
type objectValue struct {
	name     string
	scale    *vector
	location *vector
	rotation *vector
	data     *meshData
	extras   starlark.StringDict
	frozen   bool
}

var _ starlark.HasSetField = (*objectValue)(nil)

func newObjectValue(c Call) *objectValue {
	o := c.Object
	return &objectValue{
		name:     o.Name,
		scale:    newVector(o.Scale.X, o.Scale.Y, o.Scale.Z),
		location: newVector(o.Location.X, o.Location.Y, o.Location.Z),
		rotation: newVector(o.Rotation.X, o.Rotation.Y, o.Rotation.Z),
		data:     &meshData{materials: starlark.NewList(nil)},
		extras:   make(starlark.StringDict),
	}
}

func (ov *objectValue) String() string        { return fmt.Sprintf("bpy.data.objects[%q]", ov.name) }
func (ov *objectValue) Type() string          { return "Object" }
func (ov *objectValue) Truth() starlark.Bool  { return starlark.True }
func (ov *objectValue) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable type: Object") }

func (ov *objectValue) Freeze() {
	ov.frozen = true
	ov.scale.Freeze()
	ov.location.Freeze()
	ov.rotation.Freeze()
	ov.data.Freeze()
	ov.extras.Freeze()
}

func (ov *objectValue) Attr(name string) (starlark.Value, error) {
	switch name {
	case "name":
		return starlark.String(ov.name), nil
	case "scale":
		return ov.scale, nil
	case "location":
		return ov.location, nil
	case "rotation_euler":
		return ov.rotation, nil
	case "data":
		return ov.data, nil
	case "type":
		return starlark.String("MESH"), nil
	case "active_material":
		if ov.data.materials.Len() == 0 {
			return starlark.None, nil
		}
		return ov.data.materials.Index(0), nil
	}
	if v, ok := ov.extras[name]; ok {
		return v, nil
	}
	return noop{path: ov.String() + "." + name}, nil
}

func (ov *objectValue) AttrNames() []string {
	names := []string{"active_material", "data", "location", "name", "rotation_euler", "scale", "type"}
	return append(names, ov.extras.Keys()...)
}

func (ov *objectValue) SetField(name string, val starlark.Value) error {
	if ov.frozen {
		return fmt.Errorf("cannot set %s on frozen Object", name)
	}
	switch name {
	case "name":
		s, ok := starlark.AsString(val)
		if !ok {
			return fmt.Errorf("Object.name must be a string, got %s", val.Type())
		}
		ov.name = s
		return nil
	case "scale":
		return wrapField("Object.scale", ov.scale.assign(val))
	case "location":
		return wrapField("Object.location", ov.location.assign(val))
	case "rotation_euler":
		return wrapField("Object.rotation_euler", ov.rotation.assign(val))
	case "active_material":
		if _, ok := val.(*materialValue); !ok {
			return fmt.Errorf("Object.active_material must be a Material, got %s", val.Type())
		}
		if ov.data.materials.Len() == 0 {
			return ov.data.materials.Append(val)
		}
		return ov.data.materials.SetIndex(0, val)
	case "data", "type":
		return fmt.Errorf("Object.%s is read-only", name)
	}
	ov.extras[name] = val
	return nil
}

func wrapField(field string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

func (ov *objectValue) snapshot() Object {
	o := Object{
		Name:     ov.name,
		Scale:    vec3Of(ov.scale),
		Location: vec3Of(ov.location),
		Rotation: vec3Of(ov.rotation),
	}
	for i := 0; i < ov.data.materials.Len(); i++ {
		if m, ok := ov.data.materials.Index(i).(*materialValue); ok {
			o.Materials = append(o.Materials, m.snapshot())
		}
	}
	return o
}

// ------------------------------------------
// conversions
// ------------------------------------------

var errNotFinite = errors.New("number must be finite")

func vec3Of(v *vector) math.Vec3 {
	return math.NewVec3FromSlice(v.v)
}

// finite reports whether f is neither NaN nor infinite.
func finite(f float64) bool {
	return !gomath.IsNaN(f) && !gomath.IsInf(f, 0)
}

func toFloat(v starlark.Value) (float64, bool) {
	switch x := v.(type) {
	case starlark.Float:
		return float64(x), true
	case starlark.Int:
		return float64(x.Float()), true
	}
	return 0, false
}

func toFloats(v starlark.Value) ([]float64, error) {
	seq, ok := v.(starlark.Indexable)
	if !ok {
		return nil, fmt.Errorf("expected a sequence of numbers, got %s", v.Type())
	}
	out := make([]float64, seq.Len())
	for i := range out {
		f, ok := toFloat(seq.Index(i))
		if !ok {
			return nil, fmt.Errorf("element %d must be a number, got %s", i, seq.Index(i).Type())
		}
		if !finite(f) {
			return nil, fmt.Errorf("element %d: %w, got %v", i, errNotFinite, f)
		}
		out[i] = f
	}
	return out, nil
}
