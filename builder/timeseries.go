package builder

import (
	"cmp"
	"slices"

	"go.viam.com/xviz/message"
)

type timeSeriesEntry struct {
	stream    string
	set       fields
	timestamp *float64
	value     *message.Values
	objectID  string
}

// TimeSeriesBuilder fills one sample of a time series stream.
type TimeSeriesBuilder struct {
	b      *Builder
	stream string
	entry  *timeSeriesEntry
}

// TimeSeries starts a new sample on the time series stream id.
func (b *Builder) TimeSeries(id string) (*TimeSeriesBuilder, error) {
	_, enabled, err := b.scope(id, message.CategoryTimeSeries)
	if err != nil {
		return nil, err
	}
	tb := &TimeSeriesBuilder{b: b, stream: id}
	if enabled {
		tb.entry = &timeSeriesEntry{stream: id, set: fields{}}
		b.timeSeries = append(b.timeSeries, tb.entry)
	}
	return tb, nil
}

// Timestamp sets the sample time. Samples without one use the frame timestamp.
func (tb *TimeSeriesBuilder) Timestamp(ts float64) error {
	return tb.assign("timestamp", func(e *timeSeriesEntry) error {
		e.timestamp = &ts
		return nil
	})
}

// Value sets the sample value: a float, integer, bool or string.
func (tb *TimeSeriesBuilder) Value(v any) error {
	return tb.assign("value", func(e *timeSeriesEntry) error {
		vs, err := toValue(v)
		if err != nil {
			return &ValidationError{Stream: tb.stream, Reason: err.Error()}
		}
		e.value = &vs
		return nil
	})
}

// ID ties the sample to an object.
func (tb *TimeSeriesBuilder) ID(id string) error {
	return tb.assign("id", func(e *timeSeriesEntry) error {
		e.objectID = id
		return nil
	})
}

func (tb *TimeSeriesBuilder) assign(field string, apply func(*timeSeriesEntry) error) error {
	if err := tb.b.checkOpen(tb.stream); err != nil {
		return err
	}
	if tb.entry == nil {
		return nil
	}
	if _, ok := tb.entry.set[field]; ok {
		return &DuplicateAssignmentError{Stream: tb.stream, Field: field}
	}
	if err := apply(tb.entry); err != nil {
		return err
	}
	tb.entry.set[field] = struct{}{}
	tb.b.touch()
	return nil
}

type seriesKey struct {
	timestamp float64
	objectID  string
	scalar    message.ScalarType
}

// finishTimeSeries groups samples that share timestamp, object and value type. A stream may
// appear once per group.
func (b *Builder) finishTimeSeries(update *message.StreamSet) error {
	groups := map[seriesKey]*message.TimeSeriesState{}
	var order []seriesKey
	for _, e := range b.timeSeries {
		if e.value == nil {
			b.logger.Debugw("dropping time series sample without value", "stream", e.stream)
			continue
		}
		ts := update.Timestamp
		if e.timestamp != nil {
			ts = e.timestamp
		}
		if ts == nil {
			return &MissingTimestampError{Stream: e.stream}
		}
		key := seriesKey{timestamp: *ts, objectID: e.objectID, scalar: e.value.Type()}
		group, ok := groups[key]
		if !ok {
			group = &message.TimeSeriesState{Timestamp: *ts, ObjectID: e.objectID}
			groups[key] = group
			order = append(order, key)
		}
		if slices.Contains(group.Streams, e.stream) {
			return &DuplicateAssignmentError{Stream: e.stream, Field: "value"}
		}
		group.Streams = append(group.Streams, e.stream)
		appendValues(&group.Values, *e.value)
	}
	slices.SortStableFunc(order, func(a, b seriesKey) int {
		return cmp.Or(
			cmp.Compare(a.timestamp, b.timestamp),
			cmp.Compare(a.objectID, b.objectID),
			cmp.Compare(a.scalar, b.scalar),
		)
	})
	for _, key := range order {
		update.TimeSeries = append(update.TimeSeries, *groups[key])
	}
	return nil
}
