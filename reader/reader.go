// Package reader reads back logs written by the writer package.
package reader

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/xviz/format"
	"go.viam.com/xviz/logging"
	"go.viam.com/xviz/message"
	"go.viam.com/xviz/writer"
)

// SupportedMajorVersion is the XVIZ major version this package reads.
const SupportedMajorVersion = 2

// ErrFrameNotFound is returned when no frame matches a lookup.
var ErrFrameNotFound = errors.New("frame not found")

// Option configures a Reader.
type Option func(*Reader)

// WithScope sets the scope artifacts are read from.
func WithScope(scope string) Option {
	return func(r *Reader) {
		r.scope = scope
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// A Reader reads one log from a source. It is safe for concurrent use.
type Reader struct {
	source writer.Source
	scope  string
	logger logging.Logger

	mu    sync.Mutex
	index *writer.Index
}

// New returns a reader of source.
func New(source writer.Source, opts ...Option) *Reader {
	r := &Reader{source: source, logger: logging.NewBlankLogger("reader")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReadFrameIndex reads and caches the frame index.
func (r *Reader) ReadFrameIndex() (*writer.Index, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index != nil {
		return r.index, nil
	}
	raw, err := r.source.ReadSync(r.scope, writer.IndexName)
	if err != nil {
		return nil, err
	}
	b, err := asBytes(raw)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing frame index")
	}
	index, err := writer.DecodeIndex(doc)
	if err != nil {
		return nil, err
	}
	sort.Slice(index.Timing, func(i, j int) bool { return index.Timing[i].Sequence < index.Timing[j].Sequence })
	r.index = index
	r.logger.Debugw("read frame index", "frames", len(index.Timing))
	return index, nil
}

// FrameCount returns the number of frames in the index.
func (r *Reader) FrameCount() (int, error) {
	index, err := r.ReadFrameIndex()
	if err != nil {
		return 0, err
	}
	return len(index.Timing), nil
}

// ReadMetadata reads the metadata and checks that its version is supported.
func (r *Reader) ReadMetadata() (*message.Metadata, error) {
	env, err := r.readSlot(writer.SlotKey(writer.MetadataSlot))
	if err != nil {
		return nil, err
	}
	if env.Type != message.TypeMetadata {
		return nil, errors.Errorf("expected %s, got %s", message.TypeMetadata, env.Type)
	}
	var md message.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "json", Result: &md})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(env.Data); err != nil {
		return nil, errors.Wrap(err, "decoding metadata")
	}
	if err := checkVersion(md.Version); err != nil {
		return nil, err
	}
	return &md, nil
}

// ReadFrame reads frame seq as a generic envelope.
func (r *Reader) ReadFrame(seq int) (message.Envelope, error) {
	env, err := r.readSlot(writer.FrameKey(seq))
	if err != nil {
		return message.Envelope{}, err
	}
	if !env.IsStateUpdate() {
		return message.Envelope{}, errors.Errorf("frame %d is a %s message", seq, env.Type)
	}
	return env, nil
}

// FindFrame returns the index entry of the first frame whose time range contains ts, or
// failing that the last frame starting at or before ts.
func (r *Reader) FindFrame(ts float64) (writer.IndexEntry, error) {
	index, err := r.ReadFrameIndex()
	if err != nil {
		return writer.IndexEntry{}, err
	}
	var (
		best  writer.IndexEntry
		found bool
	)
	for _, e := range index.Timing {
		if e.StartTime <= ts && ts <= e.EndTime {
			return e, nil
		}
		if e.StartTime <= ts && (!found || e.StartTime >= best.StartTime) {
			best, found = e, true
		}
	}
	if !found {
		return writer.IndexEntry{}, errors.Wrapf(ErrFrameNotFound, "at time %v", ts)
	}
	return best, nil
}

// readSlot finds the artifact of a slot in any format extension.
func (r *Reader) readSlot(key string) (message.Envelope, error) {
	for _, f := range []format.Format{format.Binary, format.Protobuf, format.JSONString} {
		name := key + f.Extension()
		if !r.source.ExistsSync(r.scope, name) {
			continue
		}
		raw, err := r.source.ReadSync(r.scope, name)
		if err != nil {
			return message.Envelope{}, err
		}
		env, err := format.Decode(raw)
		if err != nil {
			return message.Envelope{}, errors.Wrapf(err, "decoding %s", name)
		}
		return env, nil
	}
	return message.Envelope{}, errors.Wrapf(writer.ErrArtifactNotFound, "%s", key)
}

func checkVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "parsing metadata version %q", version)
	}
	if v.Major() != SupportedMajorVersion {
		return &UnsupportedVersionError{Version: version}
	}
	return nil
}

func asBytes(raw any) ([]byte, error) {
	switch d := raw.(type) {
	case []byte:
		return d, nil
	case string:
		return []byte(d), nil
	default:
		return nil, errors.Errorf("unexpected artifact type %T", raw)
	}
}
