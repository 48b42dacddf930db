package ros

import (
	"slices"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Pose is a position and rotation in some parent frame.
type Pose struct {
	Timestamp float64
	Frame     string
	Position  r3.Vector
	Rotation  Quaternion
}

// Compose returns the pose of child, expressed in p's parent frame.
func (p Pose) Compose(child Pose) Pose {
	return Pose{
		Timestamp: child.Timestamp,
		Frame:     p.Frame,
		Position:  p.Position.Add(p.Rotation.Rotate(child.Position)),
		Rotation:  p.Rotation.Mul(child.Rotation).Normalize(),
	}
}

// FrameData holds the latest transform of every child frame.
type FrameData struct {
	parents map[string]TransformStamped
}

// NewFrameData indexes transforms. Later transforms of a child frame replace earlier ones.
func NewFrameData(msgs []TFMessage) *FrameData {
	fd := &FrameData{parents: map[string]TransformStamped{}}
	for _, msg := range msgs {
		for _, tf := range msg.Data.Transforms {
			fd.parents[tf.ChildFrameID] = tf
		}
	}
	return fd
}

// ChildFrames returns every frame with a transform, sorted.
func (fd *FrameData) ChildFrames() []string {
	frames := lo.Keys(fd.parents)
	slices.Sort(frames)
	return frames
}

// TransformTo returns the pose of frameID in the root frame of its transform tree.
func (fd *FrameData) TransformTo(frameID string) (Pose, error) {
	tf, ok := fd.parents[frameID]
	if !ok {
		return Pose{}, errors.Wrapf(ErrTransformNotFound, "%q", frameID)
	}
	pose := Pose{
		Timestamp: tf.Header.Stamp.Seconds(),
		Frame:     tf.Header.FrameID,
		Position:  tf.Transform.Translation.R3(),
		Rotation:  tf.Transform.Rotation.Normalize(),
	}
	seen := map[string]bool{frameID: true}
	for {
		parent, ok := fd.parents[pose.Frame]
		if !ok {
			return pose, nil
		}
		if seen[pose.Frame] {
			return Pose{}, errors.Errorf("transform tree loops at %q", pose.Frame)
		}
		seen[pose.Frame] = true
		up := Pose{
			Timestamp: parent.Header.Stamp.Seconds(),
			Frame:     parent.Header.FrameID,
			Position:  parent.Transform.Translation.R3(),
			Rotation:  parent.Transform.Rotation.Normalize(),
		}
		pose = up.Compose(pose)
	}
}
