// Package testbed ships example scene scripts and converts them the way the
// command line does, so the examples double as end-to-end fixtures.
package testbed

import (
	"embed"
	"io/fs"
	"path"

	"github.com/spaghettifunk/cadscene/engine"
	"github.com/spaghettifunk/cadscene/engine/scene"
)

//go:embed scripts/*.py
var scripts embed.FS

// Scripts lists the embedded example script names, sorted.
func Scripts() ([]string, error) {
	entries, err := fs.ReadDir(scripts, "scripts")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// Source returns the text of one example script.
func Source(name string) (string, error) {
	data, err := scripts.ReadFile(path.Join("scripts", name))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ConvertAll converts every example with conv, keyed by script name.
func ConvertAll(conv *engine.Converter, up scene.UpAxis) (map[string]*scene.Document, error) {
	names, err := Scripts()
	if err != nil {
		return nil, err
	}
	docs := make(map[string]*scene.Document, len(names))
	for _, name := range names {
		src, err := Source(name)
		if err != nil {
			return nil, err
		}
		doc, err := conv.Convert(src, name[:len(name)-len(path.Ext(name))], up)
		if err != nil {
			return nil, err
		}
		docs[name] = doc
	}
	return docs, nil
}
