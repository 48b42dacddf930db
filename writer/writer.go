// Package writer persists XVIZ logs: metadata, frames in any wire format, and the frame index
// used for random access.
package writer

import (
	"encoding/json"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"go.viam.com/xviz/format"
	"go.viam.com/xviz/logging"
	"go.viam.com/xviz/message"
)

// Option configures a Writer.
type Option func(*Writer)

// WithFormat sets the wire format of metadata and frames. The default is Binary.
func WithFormat(f format.Format) Option {
	return func(w *Writer) {
		w.format = f
	}
}

// WithEncodeOptions sets the options passed to the encoder.
func WithEncodeOptions(opts format.Options) Option {
	return func(w *Writer) {
		w.encodeOpts = opts
	}
}

// WithScope sets the scope artifacts are written under.
func WithScope(scope string) Option {
	return func(w *Writer) {
		w.scope = scope
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// A Writer writes one log to a sink. It is safe for concurrent use.
type Writer struct {
	sink       Sink
	scope      string
	format     format.Format
	encodeOpts format.Options
	logger     logging.Logger

	mu        sync.Mutex
	startTime *float64
	endTime   *float64
	timing    []IndexEntry
	written   map[int]struct{}
	lastKey   string
	closed    bool
}

// New returns a writer that writes to sink.
func New(sink Sink, opts ...Option) *Writer {
	w := &Writer{
		sink:       sink,
		format:     format.Binary,
		encodeOpts: format.DefaultOptions(),
		logger:     logging.NewBlankLogger("writer"),
		written:    map[int]struct{}{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Format returns the wire format of the writer.
func (w *Writer) Format() format.Format {
	return w.format
}

// WriteMetadata writes the metadata message and remembers its log time range for the index.
func (w *Writer) WriteMetadata(meta message.Message) error {
	if meta.MessageType() != message.TypeMetadata {
		return &UnexpectedMessageError{Want: message.TypeMetadata, Got: meta.MessageType()}
	}
	data, err := format.Encode(message.Wrap(meta), w.format, w.encodeOpts)
	if err != nil {
		return err
	}
	start, end, err := logTimes(meta.Tree())
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return &WriterClosedError{LastKey: w.lastKey}
	}
	name := SlotKey(MetadataSlot) + w.format.Extension()
	if err := w.sink.WriteSync(w.scope, name, data); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	w.startTime, w.endTime = start, end
	w.lastKey = SlotKey(MetadataSlot)
	w.logger.Debugw("wrote metadata", "name", name)
	return nil
}

// EncodedFrame is a frame encoded ahead of writing.
type EncodedFrame struct {
	Data      any
	StartTime float64
	EndTime   float64
}

// EncodeFrame encodes a state update without writing it. It does not touch writer state and
// may be called concurrently; seq is only used for error reporting.
func (w *Writer) EncodeFrame(seq int, msg message.Message) (*EncodedFrame, error) {
	if msg.MessageType() != message.TypeStateUpdate {
		return nil, &UnexpectedMessageError{Want: message.TypeStateUpdate, Got: msg.MessageType()}
	}
	t := msg.Tree()
	if !hasFirstTimestamp(t) {
		return nil, &MissingTimestampError{Sequence: seq}
	}
	stamps, err := message.Timestamps(t)
	if err != nil {
		return nil, errors.Wrapf(err, "frame %d", seq)
	}
	data, err := format.Encode(message.Envelope{Type: msg.MessageType(), Data: t}, w.format, w.encodeOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding frame %d", seq)
	}
	return &EncodedFrame{Data: data, StartTime: slices.Min(stamps), EndTime: slices.Max(stamps)}, nil
}

// WriteEncodedFrame writes a frame produced by EncodeFrame as frame seq.
func (w *Writer) WriteEncodedFrame(seq int, frame *EncodedFrame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return &WriterClosedError{LastKey: w.lastKey}
	}
	if _, ok := w.written[seq]; ok {
		return &DuplicateFrameError{Sequence: seq}
	}
	key := FrameKey(seq)
	name := key + w.format.Extension()
	if err := w.sink.WriteSync(w.scope, name, frame.Data); err != nil {
		return errors.Wrapf(err, "writing %s", name)
	}
	w.written[seq] = struct{}{}
	w.timing = append(w.timing, IndexEntry{
		StartTime: frame.StartTime,
		EndTime:   frame.EndTime,
		Sequence:  seq,
		Key:       key,
	})
	w.lastKey = key
	w.logger.Debugw("wrote frame", "name", name, "start", frame.StartTime, "end", frame.EndTime)
	return nil
}

// WriteFrame encodes and writes a state update as frame seq. The first update must carry a
// timestamp.
func (w *Writer) WriteFrame(seq int, msg message.Message) error {
	w.mu.Lock()
	closed, lastKey := w.closed, w.lastKey
	w.mu.Unlock()
	if closed {
		return &WriterClosedError{LastKey: lastKey}
	}
	frame, err := w.EncodeFrame(seq, msg)
	if err != nil {
		return err
	}
	return w.WriteEncodedFrame(seq, frame)
}

// WriteFrameIndex writes the frame index and closes the writer.
func (w *Writer) WriteFrameIndex() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return &WriterClosedError{LastKey: w.lastKey}
	}
	index := w.index()
	b, err := json.Marshal(index)
	if err != nil {
		return errors.Wrap(err, "marshaling frame index")
	}
	if err := w.sink.WriteSync(w.scope, IndexName, b); err != nil {
		return errors.Wrapf(err, "writing %s", IndexName)
	}
	w.closed = true
	w.logger.Debugw("wrote frame index", "frames", len(index.Timing))
	return nil
}

// Index returns the frame index as written so far.
func (w *Writer) Index() *Index {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.index()
}

func (w *Writer) index() *Index {
	timing := slices.Clone(w.timing)
	slices.SortFunc(timing, func(a, b IndexEntry) int { return a.Sequence - b.Sequence })
	if timing == nil {
		timing = []IndexEntry{}
	}
	return &Index{StartTime: w.startTime, EndTime: w.endTime, Timing: timing}
}

func hasFirstTimestamp(t map[string]any) bool {
	updates, _ := t["updates"].([]any)
	if len(updates) == 0 {
		return false
	}
	first, ok := updates[0].(map[string]any)
	if !ok {
		return false
	}
	ts, ok := first["timestamp"]
	return ok && ts != nil
}

func logTimes(t map[string]any) (start, end *float64, err error) {
	info, ok := t["log_info"].(map[string]any)
	if !ok {
		return nil, nil, nil
	}
	read := func(key string) (*float64, error) {
		raw, ok := info[key]
		if !ok {
			return nil, nil
		}
		v, err := cast.ToFloat64E(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "log_info.%s", key)
		}
		return &v, nil
	}
	if start, err = read("start_time"); err != nil {
		return nil, nil, err
	}
	if end, err = read("end_time"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
