// Package message holds the canonical in-memory XVIZ messages produced by the builder and
// consumed by the writer, and converts them to message trees.
package message

// Category is the kind of data a stream carries.
type Category string

// Stream categories.
const (
	CategoryPose        Category = "POSE"
	CategoryPrimitive   Category = "PRIMITIVE"
	CategoryTimeSeries  Category = "TIME_SERIES"
	CategoryVariable    Category = "VARIABLE"
	CategoryUIPrimitive Category = "UI_PRIMITIVE"
)

// PrimitiveType is the geometry type of a primitive stream.
type PrimitiveType string

// Primitive types.
const (
	PrimitivePolygon  PrimitiveType = "POLYGON"
	PrimitivePolyline PrimitiveType = "POLYLINE"
	PrimitivePoint    PrimitiveType = "POINT"
	PrimitiveCircle   PrimitiveType = "CIRCLE"
	PrimitiveText     PrimitiveType = "TEXT"
	PrimitiveImage    PrimitiveType = "IMAGE"
	PrimitiveStadium  PrimitiveType = "STADIUM"
)

// ScalarType is the value type of a variable or time series stream.
type ScalarType string

// Scalar types.
const (
	ScalarFloat  ScalarType = "FLOAT"
	ScalarInt32  ScalarType = "INT32"
	ScalarString ScalarType = "STRING"
	ScalarBool   ScalarType = "BOOL"
)

// UpdateType says how a state update relates to previous ones.
type UpdateType string

// Update types.
const (
	UpdateSnapshot      UpdateType = "SNAPSHOT"
	UpdateIncremental   UpdateType = "INCREMENTAL"
	UpdateCompleteState UpdateType = "COMPLETE_STATE"
	UpdatePersistent    UpdateType = "PERSISTENT"
)

// Envelope message types.
const (
	TypeMetadata    = "xviz/metadata"
	TypeStateUpdate = "xviz/state_update"
)

// ProtocolVersion is the XVIZ protocol version written into metadata.
const ProtocolVersion = "2.0.0"

// PrimaryPoseStream is the pose stream whose timestamp stamps a frame when no explicit
// timestamp is given.
const PrimaryPoseStream = "/vehicle_pose"

// Message is anything that can be wrapped in an envelope and written.
type Message interface {
	MessageType() string
	Tree() map[string]any
}
