package container

import "fmt"

// InvalidMagicError is returned when bytes do not start with the container magic.
type InvalidMagicError struct {
	Got []byte
}

func (e *InvalidMagicError) Error() string {
	return fmt.Sprintf("container: invalid magic %q", e.Got)
}

// UnsupportedVersionError is returned for a container version this package cannot read.
type UnsupportedVersionError struct {
	Version uint32
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("container: unsupported version %d", e.Version)
}

// CorruptContainerError is returned when chunk lengths or the JSON chunk are malformed.
type CorruptContainerError struct {
	ByteOffset int
	Reason     string
}

func (e *CorruptContainerError) Error() string {
	return fmt.Sprintf("container: corrupt at byte %d: %s", e.ByteOffset, e.Reason)
}
