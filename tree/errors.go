package tree

import "fmt"

// DanglingTokenError is returned when a token references a buffer that does not exist.
type DanglingTokenError struct {
	Token string
	Index int
	Count int
}

func (e *DanglingTokenError) Error() string {
	return fmt.Sprintf("tree: token %q references buffer %d but only %d buffers exist", e.Token, e.Index, e.Count)
}
