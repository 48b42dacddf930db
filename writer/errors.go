package writer

import "fmt"

// MissingTimestampError is returned for a frame whose first update has no timestamp.
type MissingTimestampError struct {
	Sequence int
}

func (e *MissingTimestampError) Error() string {
	return fmt.Sprintf("frame %d has no timestamp in its first update", e.Sequence)
}

// ProtocolViolation marks the error as a misuse of the writer.
func (e *MissingTimestampError) ProtocolViolation() bool { return true }

// WriterClosedError is returned for writes after the frame index was written.
type WriterClosedError struct {
	LastKey string
}

func (e *WriterClosedError) Error() string {
	if e.LastKey == "" {
		return "writer is closed"
	}
	return fmt.Sprintf("writer is closed, last frame written was %s", e.LastKey)
}

// ProtocolViolation marks the error as a misuse of the writer.
func (e *WriterClosedError) ProtocolViolation() bool { return true }

// DuplicateFrameError is returned when a sequence number is written twice.
type DuplicateFrameError struct {
	Sequence int
}

func (e *DuplicateFrameError) Error() string {
	return fmt.Sprintf("frame %d was already written", e.Sequence)
}

// ProtocolViolation marks the error as a misuse of the writer.
func (e *DuplicateFrameError) ProtocolViolation() bool { return true }

// UnexpectedMessageError is returned when a message of the wrong type is written.
type UnexpectedMessageError struct {
	Want, Got string
}

func (e *UnexpectedMessageError) Error() string {
	return fmt.Sprintf("expected %s message, got %s", e.Want, e.Got)
}

// ProtocolViolation marks the error as a misuse of the writer.
func (e *UnexpectedMessageError) ProtocolViolation() bool { return true }
