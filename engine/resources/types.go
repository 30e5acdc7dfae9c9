package resources

import (
	"path/filepath"
	"strings"
)

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Anything the converter does not read. */
	ResourceTypeNone ResourceType = iota
	/** @brief A procedural scene script. */
	ResourceTypeScript
	/** @brief A TOML file of global palette materials. */
	ResourceTypePalette
)

func (t ResourceType) String() string {
	switch t {
	case ResourceTypeScript:
		return "script"
	case ResourceTypePalette:
		return "palette"
	}
	return "none"
}

// DetermineType classifies a file by extension.
func DetermineType(path string) ResourceType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".star":
		return ResourceTypeScript
	case ".toml":
		return ResourceTypePalette
	default:
		return ResourceTypeNone
	}
}

/**
 * @brief A generic structure for a resource. All resource loaders
 * load data into these.
 */
type Resource struct {
	/** @brief The name of the resource, the file name without extension. */
	Name string
	/** @brief The full file path of the resource. */
	FullPath string
	/** @brief What Data holds. */
	Type ResourceType
	/** @brief The size of the file in bytes. */
	DataSize uint64
	/** @brief The resource data: ScriptResourceData or *materials.Palette. */
	Data interface{}
}

/**
 * @brief The source of a scene script.
 */
type ScriptResourceData struct {
	Source string
}
