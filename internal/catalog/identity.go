package catalog

import (
	"fmt"
	"path/filepath"
	"strings"
)

// MalformedFilenameError reports a photo filename that does not follow the
// <individual>_<suffix>.<ext> convention.
type MalformedFilenameError struct {
	Path string
}

func (e *MalformedFilenameError) Error() string {
	return fmt.Sprintf("malformed photo filename %q: want <individual>_<suffix>", e.Path)
}

// ParseID extracts the individual identifier from a photo path: the portion
// of the base filename before the first underscore. A name without an
// underscore, or with nothing before it, is malformed.
func ParseID(path string) (string, error) {
	name := filepath.Base(path)
	idx := strings.Index(name, "_")
	if idx <= 0 {
		return "", &MalformedFilenameError{Path: path}
	}
	return name[:idx], nil
}
