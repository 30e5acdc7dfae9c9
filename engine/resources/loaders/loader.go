package loaders

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/cadscene/engine/resources"
)

var ErrWrongResourceType = errors.New("loader does not handle this resource type")

/** @brief An "interface" for a resource loader. All registered loaders use this. */
type ResourceLoaderInterface interface {
	Load(path string) (*resources.Resource, error)
	Unload(resource *resources.Resource) error
}

// ForType returns the loader registered for t, or nil.
func ForType(t resources.ResourceType) ResourceLoaderInterface {
	switch t {
	case resources.ResourceTypeScript:
		return &ScriptLoader{}
	case resources.ResourceTypePalette:
		return &PaletteLoader{}
	}
	return nil
}

func readFile(path string, t resources.ResourceType) (*resources.Resource, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	base := filepath.Base(path)
	return &resources.Resource{
		Name:     strings.TrimSuffix(base, filepath.Ext(base)),
		FullPath: path,
		Type:     t,
		DataSize: uint64(len(data)),
	}, data, nil
}
