package ros

import "github.com/pkg/errors"

var (
	// ErrTopicNotFound is returned when a bag has no messages on a topic.
	ErrTopicNotFound = errors.New("topic not found")
	// ErrTransformNotFound is returned when no transform chain reaches a frame.
	ErrTransformNotFound = errors.New("transform not found")
	// ErrNoPoses is returned when a producer has no poses to make frames from.
	ErrNoPoses = errors.New("no pose messages")
)
