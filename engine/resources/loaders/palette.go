package loaders

import (
	"bytes"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/cadscene/engine/materials"
	"github.com/spaghettifunk/cadscene/engine/resources"
)

type paletteFile struct {
	Palette []materials.EntryConfig `toml:"palette"`
}

/**
 * @brief Loads a TOML file of [[palette]] tables into a *materials.Palette.
 * Unknown keys are rejected so typos do not silently drop entries.
 */
type PaletteLoader struct{}

func (pl *PaletteLoader) Load(path string) (*resources.Resource, error) {
	res, data, err := readFile(path, resources.ResourceTypePalette)
	if err != nil {
		return nil, err
	}

	var pf paletteFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	if len(pf.Palette) == 0 {
		return nil, fmt.Errorf("palette %s: no [[palette]] entries", path)
	}

	p, err := materials.BuildPalette(pf.Palette)
	if err != nil {
		return nil, fmt.Errorf("palette %s: %w", path, err)
	}
	res.Data = p
	return res, nil
}

func (pl *PaletteLoader) Unload(resource *resources.Resource) error {
	resource.Data = nil
	return nil
}
