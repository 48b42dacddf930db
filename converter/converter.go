// Package converter drives a frame source through the builder and into a writer, building and
// encoding frames on a bounded pool while writing them in sequence order.
package converter

import (
	"context"
	"runtime"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.viam.com/xviz/builder"
	"go.viam.com/xviz/logging"
	"go.viam.com/xviz/message"
	"go.viam.com/xviz/writer"
)

// A FrameSource produces the metadata and frames of one log. Frame may be called
// concurrently for different indices.
type FrameSource interface {
	FrameCount() int
	Metadata() (*message.Metadata, error)
	Frame(i int, b *builder.Builder) error
}

// Option configures a conversion.
type Option func(*options)

type options struct {
	parallelism int
	disabled    []string
	validator   builder.Validator
	logger      logging.Logger
}

// WithParallelism bounds the number of frames built and encoded at once. The default is the
// number of CPUs.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithDisabledStreams drops the given streams from every frame.
func WithDisabledStreams(ids ...string) Option {
	return func(o *options) {
		o.disabled = append(o.disabled, ids...)
	}
}

// WithValidator replaces the validator run on every frame.
func WithValidator(v builder.Validator) Option {
	return func(o *options) {
		o.validator = v
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

type result struct {
	frame *writer.EncodedFrame
	err   error
}

// Convert writes the metadata, every frame and the frame index of src to w.
func Convert(ctx context.Context, src FrameSource, w *writer.Writer, opts ...Option) error {
	o := options{
		parallelism: runtime.NumCPU(),
		validator:   builder.StructuralValidator{},
		logger:      logging.NewBlankLogger("converter"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.parallelism < 1 {
		o.parallelism = 1
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	meta, err := src.Metadata()
	if err != nil {
		return errors.Wrap(err, "building metadata")
	}
	if err := w.WriteMetadata(meta); err != nil {
		return err
	}

	c := &conversion{
		src:      src,
		w:        w,
		meta:     meta,
		opts:     o,
		baseline: builder.NewBaseline(),
	}
	count := src.FrameCount()
	o.logger.Infow("converting", "frames", count, "parallelism", o.parallelism, "format", w.Format())
	if count > 0 {
		// The first frame goes alone so a persistent first frame fixes its streams for the rest.
		frame, err := c.encode(0)
		if err != nil {
			return err
		}
		if err := w.WriteEncodedFrame(0, frame); err != nil {
			return err
		}
	}
	if err := c.run(ctx, 1, count); err != nil {
		return err
	}
	if err := w.WriteFrameIndex(); err != nil {
		return err
	}
	o.logger.Infow("converted", "frames", count)
	return nil
}

type conversion struct {
	src      FrameSource
	w        *writer.Writer
	meta     *message.Metadata
	opts     options
	baseline *builder.Baseline
}

// run encodes frames [from, to) on the pool and writes them in order.
func (c *conversion) run(ctx context.Context, from, to int) error {
	if from >= to {
		return ctx.Err()
	}
	queue := make(chan chan result, c.opts.parallelism)
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(queue)
		var pool errgroup.Group
		pool.SetLimit(c.opts.parallelism)
		for i := from; i < to; i++ {
			done := make(chan result, 1)
			select {
			case <-ctx.Done():
				return pool.Wait()
			case queue <- done:
			}
			pool.Go(func() error {
				if err := ctx.Err(); err != nil {
					done <- result{err: err}
					return nil
				}
				frame, err := c.encode(i)
				done <- result{frame: frame, err: err}
				return nil
			})
		}
		return pool.Wait()
	})

	group.Go(func() error {
		seq := from
		for done := range queue {
			var res result
			select {
			case <-ctx.Done():
				return ctx.Err()
			case res = <-done:
			}
			if res.err != nil {
				return res.err
			}
			if err := c.w.WriteEncodedFrame(seq, res.frame); err != nil {
				return err
			}
			seq++
		}
		return ctx.Err()
	})

	return group.Wait()
}

func (c *conversion) encode(i int) (*writer.EncodedFrame, error) {
	b, err := builder.New(c.meta,
		builder.WithDisabledStreams(c.opts.disabled...),
		builder.WithValidator(c.opts.validator),
		builder.WithBaseline(c.baseline),
		builder.WithLogger(c.opts.logger.With("frame", i)),
	)
	if err != nil {
		return nil, err
	}
	if err := c.src.Frame(i, b); err != nil {
		return nil, errors.Wrapf(err, "frame %d", i)
	}
	su, err := b.GetMessage()
	if err != nil {
		return nil, errors.Wrapf(err, "frame %d", i)
	}
	return c.w.EncodeFrame(i, su)
}
