package schema

// The types below describe XVIZ documents as they appear on the wire. They exist only to be
// reflected into JSON schemas.

// Envelope wraps every message.
type Envelope struct {
	Type string         `json:"type" jsonschema:"required,enum=xviz/metadata,enum=xviz/state_update"`
	Data map[string]any `json:"data" jsonschema:"required"`
}

// Metadata declares the streams of a log.
type Metadata struct {
	Version  string                    `json:"version" jsonschema:"required,pattern=^2\\.[0-9]+\\.[0-9]+$"`
	Streams  map[string]StreamMetadata `json:"streams" jsonschema:"required"`
	LogInfo  *LogInfo                  `json:"log_info,omitempty"`
	UIConfig map[string]any            `json:"ui_config,omitempty"`
}

// LogInfo bounds the time range of a log.
type LogInfo struct {
	StartTime float64 `json:"start_time,omitempty"`
	EndTime   float64 `json:"end_time,omitempty"`
}

// StreamMetadata declares one stream.
type StreamMetadata struct {
	Category      string         `json:"category" jsonschema:"required,enum=POSE,enum=PRIMITIVE,enum=TIME_SERIES,enum=VARIABLE,enum=UI_PRIMITIVE"`
	PrimitiveType string         `json:"primitive_type,omitempty" jsonschema:"enum=POLYGON,enum=POLYLINE,enum=POINT,enum=CIRCLE,enum=TEXT,enum=IMAGE,enum=STADIUM"`
	ScalarType    string         `json:"scalar_type,omitempty" jsonschema:"enum=FLOAT,enum=INT32,enum=STRING,enum=BOOL"`
	Units         string         `json:"units,omitempty"`
	Coordinate    string         `json:"coordinate,omitempty"`
	StreamStyle   map[string]any `json:"stream_style,omitempty"`
}

// StateUpdate is one frame.
type StateUpdate struct {
	UpdateType string      `json:"update_type" jsonschema:"required,enum=SNAPSHOT,enum=INCREMENTAL,enum=COMPLETE_STATE,enum=PERSISTENT"`
	Updates    []StreamSet `json:"updates" jsonschema:"required,minItems=1"`
}

// StreamSet holds every stream at one timestamp.
type StreamSet struct {
	Timestamp    float64                     `json:"timestamp" jsonschema:"required"`
	Poses        map[string]Pose             `json:"poses,omitempty"`
	Primitives   map[string]PrimitiveState   `json:"primitives,omitempty"`
	Variables    map[string]VariableState    `json:"variables,omitempty"`
	TimeSeries   []TimeSeriesState           `json:"time_series,omitempty"`
	UIPrimitives map[string]UIPrimitiveState `json:"ui_primitives,omitempty"`
	Links        map[string]Link             `json:"links,omitempty"`
}

// Pose is a frame of reference.
type Pose struct {
	Timestamp   float64    `json:"timestamp" jsonschema:"required"`
	MapOrigin   *MapOrigin `json:"map_origin,omitempty"`
	Position    []float64  `json:"position,omitempty" jsonschema:"minItems=3,maxItems=3"`
	Orientation []float64  `json:"orientation,omitempty" jsonschema:"minItems=3,maxItems=3"`
}

// MapOrigin anchors a pose on the globe.
type MapOrigin struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Altitude  float64 `json:"altitude"`
}

// Base is shared by all primitives.
type Base struct {
	ObjectID string         `json:"object_id,omitempty"`
	Style    map[string]any `json:"style,omitempty"`
	Classes  []string       `json:"classes,omitempty"`
}

// Point3 is an xyz triple.
type Point3 []float64

// PrimitiveState is every primitive of a stream.
type PrimitiveState struct {
	Polygons  []Polygon `json:"polygons,omitempty"`
	Polylines []Polygon `json:"polylines,omitempty"`
	Points    []Point   `json:"points,omitempty"`
	Circles   []Circle  `json:"circles,omitempty"`
	Texts     []Text    `json:"texts,omitempty"`
	Images    []Image   `json:"images,omitempty"`
	Stadiums  []Stadium `json:"stadiums,omitempty"`
}

// Polygon is a polygon or a polyline.
type Polygon struct {
	Vertices []Point3 `json:"vertices" jsonschema:"required"`
	Base     *Base    `json:"base,omitempty"`
}

// Point is a point cloud.
type Point struct {
	Points []Point3 `json:"points" jsonschema:"required"`
	Colors [][]int  `json:"colors,omitempty"`
	Base   *Base    `json:"base,omitempty"`
}

// Circle is a disc.
type Circle struct {
	Center Point3  `json:"center" jsonschema:"required"`
	Radius float64 `json:"radius" jsonschema:"required"`
	Base   *Base   `json:"base,omitempty"`
}

// Text is a label.
type Text struct {
	Position Point3 `json:"position" jsonschema:"required"`
	Text     string `json:"text" jsonschema:"required"`
	Base     *Base  `json:"base,omitempty"`
}

// Image is an encoded image, base64 in JSON.
type Image struct {
	Data     string `json:"data" jsonschema:"required"`
	Format   string `json:"format,omitempty"`
	WidthPx  int    `json:"width_px,omitempty"`
	HeightPx int    `json:"height_px,omitempty"`
	Position Point3 `json:"position,omitempty"`
	Base     *Base  `json:"base,omitempty"`
}

// Stadium is a capsule.
type Stadium struct {
	Start  Point3  `json:"start" jsonschema:"required"`
	End    Point3  `json:"end" jsonschema:"required"`
	Radius float64 `json:"radius" jsonschema:"required"`
	Base   *Base   `json:"base,omitempty"`
}

// Values holds one typed list of scalars.
type Values struct {
	Doubles []float64 `json:"doubles,omitempty"`
	Int32s  []int32   `json:"int32s,omitempty"`
	Bools   []bool    `json:"bools,omitempty"`
	Strings []string  `json:"strings,omitempty"`
}

// Variable is one list of values.
type Variable struct {
	Values Values `json:"values" jsonschema:"required"`
	Base   *Base  `json:"base,omitempty"`
}

// VariableState is every variable of a stream.
type VariableState struct {
	Variables []Variable `json:"variables" jsonschema:"required"`
}

// TimeSeriesState groups samples of several streams.
type TimeSeriesState struct {
	Timestamp float64  `json:"timestamp" jsonschema:"required"`
	Streams   []string `json:"streams" jsonschema:"required"`
	Values    Values   `json:"values" jsonschema:"required"`
	ObjectID  string   `json:"object_id,omitempty"`
}

// UIPrimitiveState is the UI data of a stream.
type UIPrimitiveState struct {
	TreeTable *TreeTable `json:"treetable,omitempty"`
}

// TreeTable is a hierarchical table.
type TreeTable struct {
	Columns []TreeTableColumn `json:"columns" jsonschema:"required"`
	Nodes   []TreeTableNode   `json:"nodes" jsonschema:"required"`
}

// TreeTableColumn is a column.
type TreeTableColumn struct {
	DisplayText string `json:"display_text" jsonschema:"required"`
	Type        string `json:"type" jsonschema:"required"`
	Unit        string `json:"unit,omitempty"`
}

// TreeTableNode is a row.
type TreeTableNode struct {
	ID           int      `json:"id" jsonschema:"required"`
	Parent       *int     `json:"parent,omitempty"`
	ColumnValues []string `json:"column_values,omitempty"`
}

// Link attaches a stream to a pose stream.
type Link struct {
	TargetPose string `json:"target_pose" jsonschema:"required"`
}

// FrameIndex is the 0-frame index document. Timing rows are [start, end, sequence, key].
type FrameIndex struct {
	StartTime float64 `json:"startTime,omitempty"`
	EndTime   float64 `json:"endTime,omitempty"`
	Timing    [][]any `json:"timing" jsonschema:"required"`
}
