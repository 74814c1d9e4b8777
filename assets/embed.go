// Package assets bundles the fallback word list into the binary.
package assets

import (
	"embed"
	"io"
)

//go:embed fallback.txt
var FS embed.FS

// OpenFallback opens the bundled `WORD | clue | clue` list.
func OpenFallback() (io.ReadCloser, error) {
	return FS.Open("fallback.txt")
}
