package writer

import (
	"encoding/json"
	"reflect"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// IndexName is the name of the frame index artifact.
const IndexName = "0-frame.json"

// MetadataSlot and FirstFrameSlot are the artifact slots of metadata and of frame 0.
const (
	MetadataSlot   = 1
	FirstFrameSlot = 2
)

// FrameKey returns the index key of frame seq.
func FrameKey(seq int) string {
	return SlotKey(seq + FirstFrameSlot)
}

// SlotKey returns the key of an artifact slot, without extension.
func SlotKey(slot int) string {
	return strconv.Itoa(slot) + "-frame"
}

// IndexEntry locates one frame in time.
type IndexEntry struct {
	StartTime float64
	EndTime   float64
	Sequence  int
	Key       string
}

// MarshalJSON writes the entry as [start, end, seq, key].
func (e IndexEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.StartTime, e.EndTime, e.Sequence, e.Key})
}

// Index is the frame index document.
type Index struct {
	StartTime *float64     `json:"startTime,omitempty"`
	EndTime   *float64     `json:"endTime,omitempty"`
	Timing    []IndexEntry `json:"timing"`
}

// DecodeIndex decodes a generic index document.
func DecodeIndex(doc any) (*Index, error) {
	var index Index
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Result:     &index,
		DecodeHook: indexEntryHook,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(doc); err != nil {
		return nil, errors.Wrap(err, "decoding frame index")
	}
	return &index, nil
}

func indexEntryHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(IndexEntry{}) {
		return data, nil
	}
	row, ok := data.([]any)
	if !ok {
		return data, nil
	}
	if len(row) != 4 {
		return nil, errors.Errorf("index entry must have 4 fields, got %d", len(row))
	}
	var (
		entry IndexEntry
		err   error
	)
	if entry.StartTime, err = cast.ToFloat64E(row[0]); err != nil {
		return nil, errors.Wrap(err, "index entry start time")
	}
	if entry.EndTime, err = cast.ToFloat64E(row[1]); err != nil {
		return nil, errors.Wrap(err, "index entry end time")
	}
	if entry.Sequence, err = cast.ToIntE(row[2]); err != nil {
		return nil, errors.Wrap(err, "index entry sequence")
	}
	if entry.Key, err = cast.ToStringE(row[3]); err != nil {
		return nil, errors.Wrap(err, "index entry key")
	}
	return entry, nil
}
