package scene_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cadscene/engine/materials"
	"github.com/spaghettifunk/cadscene/engine/math"
	"github.com/spaghettifunk/cadscene/engine/primitives"
	"github.com/spaghettifunk/cadscene/engine/scene"
)

func sphere(r float64, pos, rot math.Vec3) primitives.Record {
	return primitives.Record{
		Type:      primitives.TypeSphere,
		Name:      "sphere",
		Geometry:  primitives.SphereGeometry{Radius: r},
		Transform: primitives.Transform{Position: pos, Rotation: rot},
	}
}

func TestParseUpAxis(t *testing.T) {
	for in, want := range map[string]scene.UpAxis{"y": scene.UpY, "Y": scene.UpY, " z ": scene.UpZ, "Z": scene.UpZ} {
		got, err := scene.ParseUpAxis(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := scene.ParseUpAxis("x")
	assert.ErrorIs(t, err, scene.ErrInvalidUpAxis)
	assert.False(t, scene.UpAxis("x").Valid())
}

func TestNormalize_EmptyIsNoop(t *testing.T) {
	var records []primitives.Record
	scene.Normalize(records, scene.UpY)
	assert.Empty(t, records)

	_, ok := scene.Bounds(records)
	assert.False(t, ok)
}

func TestCenter_UnionBoxCenteredOnOrigin(t *testing.T) {
	records := []primitives.Record{
		sphere(1, math.NewVec3(-1, 0, 0), math.NewVec3Zero()),
		sphere(1, math.NewVec3(3, 0, 0), math.NewVec3Zero()),
		{
			Type:      primitives.TypeBox,
			Name:      "box",
			Geometry:  primitives.BoxGeometry{Width: 2, Height: 10, Depth: 4},
			Transform: primitives.Transform{Position: math.NewVec3(0, 5, 7)},
		},
	}
	scene.Center(records)

	e, ok := scene.Bounds(records)
	require.True(t, ok)
	assert.True(t, e.Center().Compare(math.NewVec3Zero(), math.K_FLOAT_EPSILON), "center %v", e.Center())
	// x: [-2, 4] -> 1, y: [-1, 7] -> 3, z: [-1, 12] -> 5.5
	assert.Equal(t, math.NewVec3(-2, -3, -5.5), records[0].Transform.Position)
	assert.Equal(t, math.NewVec3(-1, 2, 1.5), records[2].Transform.Position)
}

func TestCenter_PlaneHasNoThickness(t *testing.T) {
	records := []primitives.Record{{
		Type:      primitives.TypePlane,
		Geometry:  primitives.PlaneGeometry{Width: 2, Height: 2},
		Transform: primitives.Transform{Position: math.NewVec3(1, 1, 3)},
	}}
	scene.Center(records)
	assert.Equal(t, math.NewVec3Zero(), records[0].Transform.Position)
}

func TestSwapYZ_IsInvolution(t *testing.T) {
	records := []primitives.Record{
		sphere(1, math.NewVec3(1, 2, 3), math.NewVec3(0.1, 0.2, 0.3)),
		sphere(2, math.NewVec3(-4, 5, -6), math.NewVec3(1, -1, 2)),
	}
	original := append([]primitives.Record(nil), records...)

	scene.SwapYZ(records)
	assert.Equal(t, math.NewVec3(1, 3, 2), records[0].Transform.Position)
	assert.Equal(t, math.NewVec3(0.1, 0.3, 0.2), records[0].Transform.Rotation)

	scene.SwapYZ(records)
	assert.Equal(t, original, records)
}

func TestNormalize_TwoSpheresYUp(t *testing.T) {
	records := []primitives.Record{
		sphere(1, math.NewVec3Zero(), math.NewVec3Zero()),
		sphere(1, math.NewVec3(0, 0, 4), math.NewVec3Zero()),
	}
	scene.Normalize(records, scene.UpY)
	assert.Equal(t, math.NewVec3(0, -2, 0), records[0].Transform.Position)
	assert.Equal(t, math.NewVec3(0, 2, 0), records[1].Transform.Position)
}

func TestNormalize_ZUpKeepsAxes(t *testing.T) {
	records := []primitives.Record{
		sphere(1, math.NewVec3Zero(), math.NewVec3(0.5, 0, 0)),
		sphere(1, math.NewVec3(0, 0, 4), math.NewVec3Zero()),
	}
	scene.Normalize(records, scene.UpZ)
	assert.Equal(t, math.NewVec3(0, 0, -2), records[0].Transform.Position)
	assert.Equal(t, math.NewVec3(0.5, 0, 0), records[0].Transform.Rotation)
}

func TestDocument_JSONAndStats(t *testing.T) {
	doc := scene.Document{
		Name:   "Chair",
		UpAxis: scene.UpY,
		Primitives: []primitives.Record{
			sphere(1, math.NewVec3Zero(), math.NewVec3Zero()),
			{Type: primitives.TypeBox, Name: "box", Geometry: primitives.BoxGeometry{Width: 1, Height: 1, Depth: 1}, GlobalMaterialUUID: "global-material-wood-001"},
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "Chair", raw["name"])
	assert.Equal(t, "Y", raw["upAxis"])
	assert.NotContains(t, raw, "materials")

	doc.Materials = []materials.Local{{UUID: "object-material-1", Name: "Material_0000ff", Type: "custom"}}
	st := doc.Stats()
	assert.Equal(t, 2, st.Primitives)
	assert.Equal(t, 1, st.ByType[primitives.TypeSphere])
	assert.Equal(t, 1, st.GlobalMaterials)
	assert.Equal(t, 1, st.LocalMaterials)
	assert.Equal(t, 1, st.Untextured)
	assert.Contains(t, st.String(), "box=1 sphere=1")
}
