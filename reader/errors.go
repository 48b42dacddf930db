package reader

import "fmt"

// UnsupportedVersionError is returned for metadata of another XVIZ major version.
type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("xviz version %s is not supported, need %d.x", e.Version, SupportedMajorVersion)
}
