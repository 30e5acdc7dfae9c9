package loaders

import (
	"fmt"

	"github.com/spaghettifunk/cadscene/engine/resources"
)

type ScriptLoader struct{}

func (sl *ScriptLoader) Load(path string) (*resources.Resource, error) {
	if t := resources.DetermineType(path); t != resources.ResourceTypeScript {
		return nil, fmt.Errorf("%w: %s is a %s", ErrWrongResourceType, path, t)
	}
	res, data, err := readFile(path, resources.ResourceTypeScript)
	if err != nil {
		return nil, err
	}
	res.Data = resources.ScriptResourceData{Source: string(data)}
	return res, nil
}

func (sl *ScriptLoader) Unload(resource *resources.Resource) error {
	resource.Data = nil
	return nil
}
