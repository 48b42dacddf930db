package builder

import (
	"github.com/golang/geo/r3"

	"go.viam.com/xviz/message"
)

type poseEntry struct {
	set         fields
	timestamp   *float64
	mapOrigin   *message.MapOrigin
	position    *r3.Vector
	orientation *r3.Vector
}

// PoseBuilder sets the pose of one stream. Each field can be set once per frame.
type PoseBuilder struct {
	b      *Builder
	stream string
	entry  *poseEntry
}

// Pose scopes the builder to the pose stream id.
func (b *Builder) Pose(id string) (*PoseBuilder, error) {
	_, enabled, err := b.scope(id, message.CategoryPose)
	if err != nil {
		return nil, err
	}
	pb := &PoseBuilder{b: b, stream: id}
	if !enabled {
		return pb, nil
	}
	entry, ok := b.poses[id]
	if !ok {
		entry = &poseEntry{set: fields{}}
		b.poses[id] = entry
	}
	pb.entry = entry
	return pb, nil
}

// Timestamp sets the time of the pose.
func (pb *PoseBuilder) Timestamp(ts float64) error {
	return pb.assign("timestamp", func(e *poseEntry) { e.timestamp = &ts })
}

// MapOrigin anchors the pose on the globe.
func (pb *PoseBuilder) MapOrigin(longitude, latitude, altitude float64) error {
	return pb.assign("map_origin", func(e *poseEntry) {
		e.mapOrigin = &message.MapOrigin{Longitude: longitude, Latitude: latitude, Altitude: altitude}
	})
}

// Position sets the position of the pose.
func (pb *PoseBuilder) Position(x, y, z float64) error {
	return pb.assign("position", func(e *poseEntry) { e.position = &r3.Vector{X: x, Y: y, Z: z} })
}

// Orientation sets roll, pitch and yaw in radians.
func (pb *PoseBuilder) Orientation(roll, pitch, yaw float64) error {
	return pb.assign("orientation", func(e *poseEntry) { e.orientation = &r3.Vector{X: roll, Y: pitch, Z: yaw} })
}

func (pb *PoseBuilder) assign(field string, apply func(*poseEntry)) error {
	if err := pb.b.checkOpen(pb.stream); err != nil {
		return err
	}
	if pb.entry == nil {
		return nil
	}
	if err := pb.entry.set.set(pb.stream, field); err != nil {
		return err
	}
	apply(pb.entry)
	pb.b.touch()
	return nil
}

func (b *Builder) finishPoses(update *message.StreamSet) error {
	if len(b.poses) == 0 {
		return nil
	}
	update.Poses = make(map[string]message.Pose, len(b.poses))
	for id, e := range b.poses {
		pose := message.Pose{
			MapOrigin:   e.mapOrigin,
			Position:    e.position,
			Orientation: e.orientation,
		}
		switch {
		case e.timestamp != nil:
			pose.Timestamp = *e.timestamp
		case update.Timestamp != nil:
			pose.Timestamp = *update.Timestamp
		default:
			return &ValidationError{Stream: id, Reason: "pose has no timestamp"}
		}
		if pose.MapOrigin != nil && pose.Position == nil {
			pose.Position = &r3.Vector{}
		}
		update.Poses[id] = pose
	}
	return nil
}
