package engine

import (
	"fmt"

	"github.com/spaghettifunk/cadscene/engine/capture"
	"github.com/spaghettifunk/cadscene/engine/core"
	"github.com/spaghettifunk/cadscene/engine/materials"
	"github.com/spaghettifunk/cadscene/engine/primitives"
	"github.com/spaghettifunk/cadscene/engine/scene"
)

// DefaultSceneName is used when the caller gives no name.
const DefaultSceneName = "ImportedObject"

/**
 * @brief Converter runs the capture, mapping and normalization pipeline.
 * It holds only read-only settings, so one Converter may serve concurrent
 * conversions; every call builds its own sandbox and resolver.
 */
type Converter struct {
	palette   *materials.Palette
	threshold float64
	maxSteps  uint64
}

func NewConverter(palette *materials.Palette, threshold float64, maxSteps uint64) *Converter {
	if palette == nil {
		palette = materials.DefaultPalette()
	}
	return &Converter{
		palette:   palette,
		threshold: threshold,
		maxSteps:  maxSteps,
	}
}

var defaultConverter = NewConverter(materials.DefaultPalette(), materials.DefaultMatchThreshold, 0)

// Convert runs source through the default palette and threshold.
func Convert(source, name string, up scene.UpAxis) (*scene.Document, error) {
	return defaultConverter.Convert(source, name, up)
}

/**
 * @brief Converts one script into a scene document. Any failure aborts the
 * whole conversion and no partial document is returned.
 * @param source the script text.
 * @param name the document name; DefaultSceneName when empty.
 * @param up the target up axis.
 */
func (c *Converter) Convert(source, name string, up scene.UpAxis) (*scene.Document, error) {
	if !up.Valid() {
		return nil, fmt.Errorf("%w: %q", scene.ErrInvalidUpAxis, up)
	}
	if name == "" {
		name = DefaultSceneName
	}

	sb := capture.NewSandbox()
	sb.MaxSteps = c.maxSteps
	calls, err := sb.Run(name+".py", source)
	if err != nil {
		return nil, err
	}

	resolver := materials.NewResolver(c.palette, materials.WithThreshold(c.threshold))
	records, err := primitives.NewMapper(resolver).MapAll(calls)
	if err != nil {
		return nil, err
	}

	scene.Normalize(records, up)

	doc := &scene.Document{
		Name:       name,
		UpAxis:     up,
		Primitives: records,
		Materials:  resolver.Materials(),
	}
	core.LogDebug("%s: %s", name, doc.Stats())
	return doc, nil
}
