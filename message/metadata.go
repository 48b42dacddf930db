package message

import (
	"slices"

	"github.com/samber/lo"
)

// StreamMetadata declares one stream.
type StreamMetadata struct {
	Category      Category       `json:"category" mapstructure:"category"`
	PrimitiveType PrimitiveType  `json:"primitive_type,omitempty" mapstructure:"primitive_type"`
	ScalarType    ScalarType     `json:"scalar_type,omitempty" mapstructure:"scalar_type"`
	Unit          string         `json:"units,omitempty" mapstructure:"units"`
	Coordinate    string         `json:"coordinate,omitempty" mapstructure:"coordinate"`
	StreamStyle   map[string]any `json:"stream_style,omitempty" mapstructure:"stream_style"`
}

// LogInfo bounds the time range of a log.
type LogInfo struct {
	StartTime float64 `json:"start_time,omitempty" mapstructure:"start_time"`
	EndTime   float64 `json:"end_time,omitempty" mapstructure:"end_time"`
}

// Metadata is the first message of a log. It declares every stream.
type Metadata struct {
	Version  string                    `json:"version" mapstructure:"version"`
	Streams  map[string]StreamMetadata `json:"streams" mapstructure:"streams"`
	LogInfo  *LogInfo                  `json:"log_info,omitempty" mapstructure:"log_info"`
	UIConfig map[string]any            `json:"ui_config,omitempty" mapstructure:"ui_config"`
}

// MessageType implements Message.
func (m *Metadata) MessageType() string {
	return TypeMetadata
}

// Stream returns the declaration of id.
func (m *Metadata) Stream(id string) (StreamMetadata, bool) {
	if m == nil {
		return StreamMetadata{}, false
	}
	s, ok := m.Streams[id]
	return s, ok
}

// StreamIDs returns the declared stream ids in sorted order.
func (m *Metadata) StreamIDs() []string {
	ids := lo.Keys(m.Streams)
	slices.Sort(ids)
	return ids
}

// Tree implements Message.
func (m *Metadata) Tree() map[string]any {
	streams := make(map[string]any, len(m.Streams))
	for id, s := range m.Streams {
		streams[id] = s.tree()
	}
	out := map[string]any{
		"version": m.Version,
		"streams": streams,
	}
	if m.LogInfo != nil {
		logInfo := map[string]any{}
		if m.LogInfo.StartTime != 0 {
			logInfo["start_time"] = m.LogInfo.StartTime
		}
		if m.LogInfo.EndTime != 0 {
			logInfo["end_time"] = m.LogInfo.EndTime
		}
		out["log_info"] = logInfo
	}
	if len(m.UIConfig) > 0 {
		out["ui_config"] = cloneMap(m.UIConfig)
	}
	return out
}

func (s StreamMetadata) tree() map[string]any {
	out := map[string]any{"category": string(s.Category)}
	if s.PrimitiveType != "" {
		out["primitive_type"] = string(s.PrimitiveType)
	}
	if s.ScalarType != "" {
		out["scalar_type"] = string(s.ScalarType)
	}
	if s.Unit != "" {
		out["units"] = s.Unit
	}
	if s.Coordinate != "" {
		out["coordinate"] = s.Coordinate
	}
	if len(s.StreamStyle) > 0 {
		out["stream_style"] = cloneMap(s.StreamStyle)
	}
	return out
}
