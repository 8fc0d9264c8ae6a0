// Package data provides the embedded game content files.
package data

import "embed"

// dataFS embeds all YAML files from the data directory at build time.
//
//go:embed *.yaml
var dataFS embed.FS

// FS returns the embedded filesystem containing game data.
func FS() embed.FS {
	return dataFS
}
