package engine

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/cadscene/engine/scene"
)

// WriteDocument writes doc as indented JSON followed by a newline.
func WriteDocument(w io.Writer, doc *scene.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// OutputPath maps an input script to <dir>/<stem>.json.
func OutputPath(dir, input string) string {
	base := filepath.Base(input)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".json")
}

// WriteDocumentFile writes doc to path, creating parent directories. The file
// is written next to its destination and renamed so readers never see a
// partial document.
func WriteDocumentFile(path string, doc *scene.Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cadscene-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := WriteDocument(tmp, doc); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
