// Package builder accumulates the data of one XVIZ frame and emits it as a state update,
// enforcing that every stream is declared and every write-once field is set once.
package builder

import (
	"slices"

	"github.com/samber/lo"

	"go.viam.com/xviz/logging"
	"go.viam.com/xviz/message"
)

type state int

const (
	stateEmpty state = iota
	stateOpen
	stateClosed
)

// Option configures a Builder.
type Option func(*Builder)

// WithDisabledStreams makes every call scoped to the given streams a no-op.
func WithDisabledStreams(ids ...string) Option {
	return func(b *Builder) {
		for _, id := range ids {
			b.disabled[id] = struct{}{}
		}
	}
}

// WithValidator replaces the structural validator run by GetMessage. A nil validator
// disables validation.
func WithValidator(v Validator) Option {
	return func(b *Builder) {
		b.validator = v
	}
}

// WithBaseline shares persistent stream state across the builders of one log.
func WithBaseline(baseline *Baseline) Option {
	return func(b *Builder) {
		b.baseline = baseline
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithUpdateType sets the update type of the emitted message. The default is SNAPSHOT.
func WithUpdateType(t message.UpdateType) Option {
	return func(b *Builder) {
		b.updateType = t
	}
}

// A Builder collects one frame. It is not safe for concurrent use.
type Builder struct {
	meta       *message.Metadata
	logger     logging.Logger
	disabled   map[string]struct{}
	validator  Validator
	baseline   *Baseline
	updateType message.UpdateType

	state     state
	timestamp *float64

	poses      map[string]*poseEntry
	primitives map[string][]*primitiveEntry
	variables  map[string][]*variableEntry
	timeSeries []*timeSeriesEntry
	ui         map[string]*uiEntry
	links      *linkGraph
}

// New returns a builder for a frame of the log described by meta.
func New(meta *message.Metadata, opts ...Option) (*Builder, error) {
	if meta == nil {
		return nil, ErrNoMetadata
	}
	b := &Builder{
		meta:       meta,
		logger:     logging.NewBlankLogger("builder"),
		disabled:   map[string]struct{}{},
		validator:  StructuralValidator{},
		updateType: message.UpdateSnapshot,
		poses:      map[string]*poseEntry{},
		primitives: map[string][]*primitiveEntry{},
		variables:  map[string][]*variableEntry{},
		ui:         map[string]*uiEntry{},
		links:      newLinkGraph(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Metadata returns the metadata the builder checks streams against.
func (b *Builder) Metadata() *message.Metadata {
	return b.meta
}

// Stream returns the declaration of id.
func (b *Builder) Stream(id string) (message.StreamMetadata, error) {
	s, ok := b.meta.Stream(id)
	if !ok {
		return message.StreamMetadata{}, &UndeclaredStreamError{Stream: id}
	}
	return s, nil
}

// Timestamp sets the timestamp of the frame.
func (b *Builder) Timestamp(ts float64) error {
	if err := b.checkOpen(""); err != nil {
		return err
	}
	if b.timestamp != nil {
		return &DuplicateAssignmentError{Field: "timestamp"}
	}
	b.timestamp = &ts
	b.touch()
	return nil
}

// Persistent marks the frame as PERSISTENT. Primitive streams of a persistent frame cannot be
// redefined by later frames sharing the same Baseline.
func (b *Builder) Persistent() error {
	if err := b.checkOpen(""); err != nil {
		return err
	}
	b.updateType = message.UpdatePersistent
	b.touch()
	return nil
}

// Link expresses child in the frame of the pose stream parent.
func (b *Builder) Link(parent, child string) error {
	if err := b.checkOpen(child); err != nil {
		return err
	}
	for _, id := range []string{parent, child} {
		if _, err := b.Stream(id); err != nil {
			return err
		}
	}
	if b.isDisabled(child) {
		return nil
	}
	if err := b.links.add(parent, child); err != nil {
		return err
	}
	b.touch()
	return nil
}

// GetMessage finalizes the frame. The builder is closed afterwards.
func (b *Builder) GetMessage() (*message.StateUpdate, error) {
	if err := b.checkOpen(""); err != nil {
		return nil, err
	}
	if err := b.links.check(); err != nil {
		return nil, err
	}

	update := message.StreamSet{Timestamp: b.frameTimestamp()}
	if err := b.finishPoses(&update); err != nil {
		return nil, err
	}
	b.finishPrimitives(&update)
	b.finishVariables(&update)
	if err := b.finishTimeSeries(&update); err != nil {
		return nil, err
	}
	b.finishUIPrimitives(&update)
	if links := b.links.links(); len(links) > 0 {
		update.Links = links
	}

	su := &message.StateUpdate{UpdateType: b.updateType, Updates: []message.StreamSet{update}}
	if b.validator != nil {
		if err := b.validator.Validate(b.meta, su); err != nil {
			return nil, err
		}
	}
	if b.baseline != nil && b.updateType == message.UpdatePersistent {
		b.baseline.record(lo.Keys(update.Primitives)...)
	}
	b.state = stateClosed
	if update.Timestamp != nil {
		b.logger.Debugw("built frame", "timestamp", *update.Timestamp, "update_type", b.updateType)
	} else {
		b.logger.Debugw("built frame without timestamp", "update_type", b.updateType)
	}
	return su, nil
}

// frameTimestamp picks the explicit timestamp, then the primary pose, then the earliest pose.
func (b *Builder) frameTimestamp() *float64 {
	if b.timestamp != nil {
		ts := *b.timestamp
		return &ts
	}
	if p, ok := b.poses[message.PrimaryPoseStream]; ok && p.timestamp != nil {
		ts := *p.timestamp
		return &ts
	}
	stamps := lo.FilterMap(lo.Values(b.poses), func(p *poseEntry, _ int) (float64, bool) {
		if p.timestamp == nil {
			return 0, false
		}
		return *p.timestamp, true
	})
	if len(stamps) == 0 {
		return nil
	}
	ts := slices.Min(stamps)
	return &ts
}

// scope resolves a stream for a category-scoped entry point. It reports false when the stream
// is disabled.
func (b *Builder) scope(id string, category message.Category) (message.StreamMetadata, bool, error) {
	if err := b.checkOpen(id); err != nil {
		return message.StreamMetadata{}, false, err
	}
	s, err := b.Stream(id)
	if err != nil {
		return message.StreamMetadata{}, false, err
	}
	if s.Category != category {
		return message.StreamMetadata{}, false, &CategoryMismatchError{
			Stream: id,
			Want:   string(s.Category),
			Got:    string(category),
		}
	}
	if b.isDisabled(id) {
		b.logger.Debugw("ignoring disabled stream", "stream", id)
		return s, false, nil
	}
	return s, true, nil
}

func (b *Builder) isDisabled(id string) bool {
	_, ok := b.disabled[id]
	return ok
}

func (b *Builder) checkOpen(stream string) error {
	if b.state == stateClosed {
		return &BuilderClosedError{Stream: stream}
	}
	return nil
}

func (b *Builder) touch() {
	if b.state == stateEmpty {
		b.state = stateOpen
	}
}

// fields tracks which write-once fields are set.
type fields map[string]struct{}

func (f fields) set(stream, field string) error {
	if _, ok := f[field]; ok {
		return &DuplicateAssignmentError{Stream: stream, Field: field}
	}
	f[field] = struct{}{}
	return nil
}
