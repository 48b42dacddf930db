package format

import "fmt"

// UnknownFormatError is returned for a format name or value that is not supported.
type UnknownFormatError struct {
	Name string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown format %q", e.Name)
}

// UnrecognizedDataError is returned when data matches no format.
type UnrecognizedDataError struct {
	Type string
}

func (e *UnrecognizedDataError) Error() string {
	return fmt.Sprintf("%s data is not in any xviz format", e.Type)
}

// UnknownEnumError is returned when an enum field holds a name or number outside its table.
type UnknownEnumError struct {
	Field string
	Value any
}

func (e *UnknownEnumError) Error() string {
	return fmt.Sprintf("%v is not a valid %s", e.Value, e.Field)
}
