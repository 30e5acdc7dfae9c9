package capture_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cadscene/engine/capture"
	"github.com/spaghettifunk/cadscene/engine/math"
)

func TestSandbox_Run_DefaultsAndOrder(t *testing.T) {
	src := `import bpy

bpy.ops.mesh.primitive_uv_sphere_add(radius=2)
bpy.ops.mesh.primitive_cube_add(size=1, location=(1, 2, 3), rotation=(0.5, 0, 0))
`
	calls, err := capture.Capture("order.py", src)
	require.NoError(t, err)
	require.Len(t, calls, 2)

	assert.Equal(t, capture.KindUVSphere, calls[0].Kind)
	assert.Equal(t, 2.0, calls[0].Args.Float("radius", 0))
	assert.Equal(t, math.NewVec3Zero(), calls[0].Object.Location)
	assert.Equal(t, math.NewVec3Zero(), calls[0].Object.Rotation)
	assert.Equal(t, math.NewVec3One(), calls[0].Object.Scale)
	assert.Equal(t, "", calls[0].Object.Name)

	assert.Equal(t, capture.KindCube, calls[1].Kind)
	assert.Equal(t, math.NewVec3(1, 2, 3), calls[1].Object.Location)
	assert.Equal(t, math.NewVec3(0.5, 0, 0), calls[1].Object.Rotation)
}

func TestSandbox_Run_HandleMutations(t *testing.T) {
	src := `import bpy
import math

bpy.ops.mesh.primitive_cylinder_add(radius=0.5, depth=2)
obj = bpy.context.object
obj.name = "Leg"
obj.scale = (2, 2, 1)
obj.location.z = 4
obj.rotation_euler[0] = math.radians(90)

mat = bpy.data.materials.new(name="Oak")
mat.diffuse_color = (0.545, 0.271, 0.075, 1.0)
mat.use_nodes = True
mat.node_tree.nodes["Principled BSDF"].inputs[0].default_value = (1, 0, 0, 1)
obj.data.materials.append(mat)
`
	calls, err := capture.Capture("leg.py", src)
	require.NoError(t, err)
	require.Len(t, calls, 1)

	o := calls[0].Object
	assert.Equal(t, "Leg", o.Name)
	assert.Equal(t, math.NewVec3(2, 2, 1), o.Scale)
	assert.Equal(t, math.NewVec3(0, 0, 4), o.Location)
	assert.InDelta(t, math.DegToRad(90), o.Rotation.X, 1e-12)

	m, ok := o.FirstMaterial()
	require.True(t, ok)
	assert.Equal(t, "Oak", m.Name)
	assert.Equal(t, [4]float64{0.545, 0.271, 0.075, 1.0}, m.DiffuseColor)
}

func TestSandbox_Run_ActiveMaterialAndRGB(t *testing.T) {
	src := `import bpy
bpy.ops.mesh.primitive_plane_add()
m = bpy.data.materials.new("Glass")
m.diffuse_color = (0.2, 0.4, 0.6)
bpy.context.active_object.active_material = m
`
	calls, err := capture.Capture("plane.py", src)
	require.NoError(t, err)
	require.Len(t, calls, 1)

	m, ok := calls[0].Object.FirstMaterial()
	require.True(t, ok)
	assert.Equal(t, [4]float64{0.2, 0.4, 0.6, 1.0}, m.DiffuseColor)
}

func TestSandbox_Run_ContextObjectBeforeAnyCall(t *testing.T) {
	src := `import bpy
if bpy.context.object != None:
    fail("expected no object")
`
	calls, err := capture.Capture("empty.py", src)
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestSandbox_Run_NonPrimitiveOperationsAreNoops(t *testing.T) {
	src := `import bpy
bpy.ops.object.select_all(action='SELECT')
bpy.ops.object.delete(use_global=False)
bpy.context.scene.unit_settings.system = 'METRIC'
bpy.context.scene.render.engine = 'CYCLES'
bpy.ops.mesh.subdivide(number_cuts=2)
for o in bpy.data.objects:
    pass
bpy.data.objects["Cube"].hide_render = True
bpy.ops.mesh.primitive_torus_add(major_radius=1.5)
bpy.ops.object.shade_smooth()
bpy.ops.object.modifier_add(type='BEVEL')
bpy.context.object.modifiers["Bevel"].width = 0.02

mat = bpy.data.materials.new(name="Brushed")
mat.use_nodes = True
bsdf = mat.node_tree.nodes.get("Principled BSDF")
bsdf.inputs["Base Color"].default_value = (0.8, 0.8, 0.8, 1.0)
bsdf.inputs["Roughness"].default_value = 0.3
mat.node_tree.links.new(bsdf.outputs[0], mat.node_tree.nodes.new("ShaderNodeOutputMaterial").inputs[0])
`
	calls, err := capture.Capture("noops.py", src)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, capture.KindTorus, calls[0].Kind)
}

func TestSandbox_Run_UnknownPrimitiveIsStillCaptured(t *testing.T) {
	calls, err := capture.Capture("monkey.py", "import bpy\nbpy.ops.mesh.primitive_monkey_add()\n")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, capture.Kind("monkey"), calls[0].Kind)
	assert.False(t, calls[0].Kind.Supported())
}

func TestSandbox_Run_ScriptFaults(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"runtime error", "x = 1 / 0\n"},
		{"syntax error", "def (:\n"},
		{"undefined name", "bpy.ops.mesh.primitive_cube_add(size=undefined)\n"},
		{"positional operator args", "bpy.ops.mesh.primitive_cube_add(2)\n"},
		{"explicit failure", "fail('boom')\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls, err := capture.Capture("fault.py", tt.src)
			assert.ErrorIs(t, err, capture.ErrScript)
			assert.Nil(t, calls)
		})
	}
}

func TestSandbox_Run_FaultAfterCaptureDiscardsEverything(t *testing.T) {
	src := `import bpy
bpy.ops.mesh.primitive_cube_add()
fail("late")
`
	calls, err := capture.Capture("late.py", src)
	assert.ErrorIs(t, err, capture.ErrScript)
	assert.Nil(t, calls)
}

func TestSandbox_Run_Imports(t *testing.T) {
	src := `from __future__ import annotations
import bpy, math
import math as m
from math import radians, pi as PI
from math import *

def build():
    import bpy
    bpy.ops.mesh.primitive_cone_add(radius1=m.sqrt(4), depth=PI, rotation=(radians(180), 0, floor(2.7)))

if __name__ == "__main__":
    build()
`
	calls, err := capture.Capture("imports.py", src)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, 2.0, calls[0].Args.Float("radius1", 0))
	assert.InDelta(t, 3.14159265, calls[0].Args.Float("depth", 0), 1e-6)
	assert.InDelta(t, 3.14159265, calls[0].Object.Rotation.X, 1e-6)
	assert.Equal(t, 2.0, calls[0].Object.Rotation.Z)
}

func TestSandbox_Run_ImportsInsideStringsAreLeftAlone(t *testing.T) {
	src := `"""Builds a stool.

import os
from numpy import array
"""
import bpy

NOTE = '''
import subprocess'''
HELP = "from os import path"  # import sys

def build():
    """
    import shutil
    """
    bpy.ops.mesh.primitive_cylinder_add(radius=0.2, depth=0.5)

build()
`
	calls, err := capture.Capture("stool.py", src)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, capture.KindCylinder, calls[0].Kind)
}

func TestSandbox_Run_NonFiniteNumbers(t *testing.T) {
	for _, src := range []string{
		"m = bpy.data.materials.new('Bad')\nm.diffuse_color = (float('nan'), 0.5, 0.5, 1)\n",
		"bpy.ops.mesh.primitive_cube_add()\nbpy.context.object.data.materials.append(bpy.data.materials.new('x'))\nbpy.context.object.active_material.diffuse_color[0] = float('nan')\n",
		"bpy.ops.mesh.primitive_uv_sphere_add(radius=float('inf'))\n",
		"bpy.ops.mesh.primitive_cube_add(location=(0, float('nan'), 0))\n",
		"bpy.ops.mesh.primitive_cube_add()\nbpy.context.object.scale = (1, 1, float('-inf'))\n",
	} {
		_, err := capture.Capture("nan.py", src)
		assert.ErrorIs(t, err, capture.ErrScript, src)
	}
}

func TestSandbox_Run_NonNumericKeywordsAreIgnored(t *testing.T) {
	src := "bpy.ops.mesh.primitive_cube_add(size=3, align='WORLD', enter_editmode=False)\n"
	calls, err := capture.Capture("kw.py", src)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, 3.0, calls[0].Args.Float("size", 0))
	assert.Equal(t, 0.0, calls[0].Args.Float("align", 0))
}

func TestSandbox_Run_UnsupportedImports(t *testing.T) {
	for _, src := range []string{
		"import os\n",
		"from numpy import array\n",
		"import bpy.ops\n",
		`load("other.star", "x")` + "\n",
	} {
		_, err := capture.Capture("bad.py", src)
		assert.ErrorIs(t, err, capture.ErrUnsupportedImport, src)
	}
}

func TestSandbox_Run_OnlyOnce(t *testing.T) {
	sb := capture.NewSandbox()
	_, err := sb.Run("a.py", "pass\n")
	require.NoError(t, err)
	_, err = sb.Run("a.py", "pass\n")
	assert.ErrorIs(t, err, capture.ErrSandboxUsed)
}

func TestSandbox_Run_Isolation(t *testing.T) {
	first, err := capture.Capture("a.py", "import bpy\nbpy.ops.mesh.primitive_cube_add()\nbpy.context.object.name = 'A'\n")
	require.NoError(t, err)
	second, err := capture.Capture("b.py", "import bpy\nif bpy.context.object != None:\n    fail('leaked')\n")
	require.NoError(t, err)
	assert.Len(t, first, 1)
	assert.Empty(t, second)
}

func TestSandbox_Run_MaxSteps(t *testing.T) {
	sb := capture.NewSandbox()
	sb.MaxSteps = 1000
	_, err := sb.Run("loop.py", "while True:\n    pass\n")
	assert.ErrorIs(t, err, capture.ErrScript)
}

func TestKind_Supported(t *testing.T) {
	for _, k := range capture.SupportedKinds {
		assert.True(t, k.Supported(), k)
	}
	assert.False(t, capture.Kind("ico_sphere").Supported())
}
