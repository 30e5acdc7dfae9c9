package materials

import (
	"fmt"
	gomath "math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/spaghettifunk/cadscene/engine/capture"
	"github.com/spaghettifunk/cadscene/engine/core"
	m "github.com/spaghettifunk/cadscene/engine/math"
)

// DefaultMatchThreshold is the largest 0-255 RGB distance, exclusive, at
// which a color still snaps to a palette entry.
const DefaultMatchThreshold = 20.0

const (
	localNamePrefix = "Material_"
	localIDPrefix   = "object-material-"
	localType       = "custom"
)

// Properties are the shading parameters of an object-local material.
type Properties struct {
	Color         string  `json:"color"`
	Opacity       float64 `json:"opacity"`
	Transparent   bool    `json:"transparent"`
	Metalness     float64 `json:"metalness"`
	Roughness     float64 `json:"roughness"`
	CastShadow    bool    `json:"castShadow"`
	ReceiveShadow bool    `json:"receiveShadow"`
}

// Local is a material synthesized for a color the palette does not cover.
type Local struct {
	UUID        string     `json:"uuid"`
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Properties  Properties `json:"properties"`
	IsGlobal    bool       `json:"isGlobal"`
	Description string     `json:"description"`
}

// Reference points a primitive at its material. At most one field is set;
// the zero value means the primitive has no material.
type Reference struct {
	GlobalID string
	LocalID  string
}

func (r Reference) IsZero() bool {
	return r.GlobalID == "" && r.LocalID == ""
}

type Option func(*Resolver)

// WithThreshold overrides DefaultMatchThreshold. Zero disables nearest
// matching so only exact palette colors are reused.
func WithThreshold(t float64) Option {
	return func(r *Resolver) {
		r.threshold = t
	}
}

// WithIDGenerator replaces the random id source, mostly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(r *Resolver) {
		r.newID = gen
	}
}

/**
 * @brief Resolver maps object colors to palette references or local
 * materials. One resolver serves exactly one conversion: local materials are
 * shared by name within it and never across resolvers.
 */
type Resolver struct {
	palette   *Palette
	threshold float64
	newID     func() string

	locals []*Local
	byName map[string]*Local
}

func NewResolver(palette *Palette, opts ...Option) *Resolver {
	if palette == nil {
		palette = DefaultPalette()
	}
	r := &Resolver{
		palette:   palette,
		threshold: DefaultMatchThreshold,
		newID:     func() string { return localIDPrefix + uuid.NewString() },
		byName:    make(map[string]*Local),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

/**
 * @brief Resolves the first material of an object.
 * @param mat the material, or nil when the object has none.
 * @return the reference to emit; zero when mat is nil. Colors that cannot
 * be converted fail with ErrInvalidColor.
 */
func (r *Resolver) Resolve(mat *capture.Material) (Reference, error) {
	if mat == nil {
		return Reference{}, nil
	}
	c, err := FromUnit(mat.DiffuseColor[0], mat.DiffuseColor[1], mat.DiffuseColor[2])
	if err != nil {
		return Reference{}, fmt.Errorf("material %q: %w", mat.Name, err)
	}

	if e, ok := r.palette.Exact(c); ok {
		core.LogDebug("material %q matches palette %s exactly", mat.Name, e.Label)
		return Reference{GlobalID: e.ID}, nil
	}
	if e, d, ok := r.palette.Nearest(c); ok && d < r.threshold {
		core.LogDebug("material %q snaps to palette %s (distance %.2f)", mat.Name, e.Label, d)
		return Reference{GlobalID: e.ID}, nil
	}

	alpha := mat.DiffuseColor[3]
	if gomath.IsNaN(alpha) || gomath.IsInf(alpha, 0) {
		return Reference{}, fmt.Errorf("material %q: %w: alpha %v", mat.Name, ErrInvalidColor, alpha)
	}
	opacity := m.Clamp01(alpha)
	name := localNamePrefix + strings.TrimPrefix(c.Hex(), "#")
	if l, ok := r.byName[name]; ok {
		return Reference{LocalID: l.UUID}, nil
	}

	l := &Local{
		UUID: r.newID(),
		Name: name,
		Type: localType,
		Properties: Properties{
			Color:         c.Hex(),
			Opacity:       opacity,
			Transparent:   opacity < 1,
			Metalness:     0.0,
			Roughness:     0.5,
			CastShadow:    true,
			ReceiveShadow: true,
		},
		IsGlobal:    false,
		Description: fmt.Sprintf("Auto-generated material from CAD import with color %s and opacity %s", c.Hex(), formatOpacity(opacity)),
	}
	r.locals = append(r.locals, l)
	r.byName[name] = l
	core.LogDebug("synthesized local material %s", name)
	return Reference{LocalID: l.UUID}, nil
}

// Materials returns the local materials in the order they were created.
func (r *Resolver) Materials() []Local {
	out := make([]Local, len(r.locals))
	for i, l := range r.locals {
		out[i] = *l
	}
	return out
}

func formatOpacity(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
