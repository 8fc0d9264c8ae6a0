// Package gamedata loads the embedded YAML content: tile kinds, spawnable
// things and the per-level spawn tables.
package gamedata

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/samdwyer/roguetiles/data"
)

// dataFS is where Load reads from. Tests may swap it.
var dataFS fs.FS = data.FS()

// Load reads and unmarshals a YAML file from the embedded filesystem.
func Load[T any](filename string) (T, error) {
	var result T

	content, err := fs.ReadFile(dataFS, filename)
	if err != nil {
		return result, fmt.Errorf("failed to read embedded file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(content, &result); err != nil {
		return result, fmt.Errorf("failed to parse YAML from %s: %w", filename, err)
	}

	return result, nil
}
