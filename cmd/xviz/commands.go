package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/xviz/config"
	"go.viam.com/xviz/converter"
	"go.viam.com/xviz/logging"
	"go.viam.com/xviz/reader"
	"go.viam.com/xviz/ros"
	"go.viam.com/xviz/schema"
	"go.viam.com/xviz/writer"
)

func convertAction(c *cli.Context) (err error) {
	cfg, err := config.Read(c.Path(flagConfig))
	if err != nil {
		return err
	}
	logger, closer := newLogger(c, cfg.Log)
	defer func() {
		err = multierr.Combine(err, closer.Close())
	}()

	rb, err := ros.ReadBag(cfg.Bag)
	if err != nil {
		return err
	}
	producer, err := ros.NewProducer(rb, ros.Topics{
		Pose: cfg.Topics.Pose,
		IMU:  cfg.Topics.IMU,
		GPS:  cfg.Topics.GPS,
		TF:   cfg.Topics.TF,
	}, logger.Sublogger("ros"))
	if err != nil {
		return err
	}

	w := writer.New(writer.NewFileSink(cfg.Output),
		writer.WithFormat(cfg.OutputFormat()),
		writer.WithEncodeOptions(cfg.EncodeOptions()),
		writer.WithScope(cfg.Scope),
		writer.WithLogger(logger.Sublogger("writer")),
	)
	if err := converter.Convert(c.Context, producer, w,
		converter.WithParallelism(int(*cfg.Parallelism)),
		converter.WithDisabledStreams(cfg.DisabledStreams...),
		converter.WithLogger(logger.Sublogger("converter")),
	); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %d frames to %s\n", len(w.Index().Timing), cfg.Output)
	return nil
}

// newLogger builds the conversion logger. The closer releases the log file, if any.
func newLogger(c *cli.Context, cfg config.Log) (logging.Logger, io.Closer) {
	logger := logging.NewLogger("xviz")
	logger.SetLevel(cfg.Level)
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	}
	if cfg.File == "" {
		return logger, nopCloser{}
	}
	fileCfg := logging.FileAppenderConfig{Filename: cfg.File, MaxBackups: 3}
	if cfg.MaxSizeMB != nil {
		fileCfg.MaxSizeMB = int(*cfg.MaxSizeMB)
	}
	appender, closer := logging.NewFileAppender(fileCfg)
	logger.AddAppender(appender)
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error {
	return nil
}

func inspectAction(c *cli.Context) error {
	dir := c.Args().First()
	if dir == "" {
		return errors.New("must provide a log directory")
	}
	logger := logging.NewBlankLogger("inspect")
	if c.Bool(flagDebug) {
		logger = logging.NewDebugLogger("inspect")
	}
	r := reader.New(writer.NewFileSink(dir), reader.WithScope(c.String(flagScope)), reader.WithLogger(logger))
	return inspect(c.App.Writer, r, c.Int(flagFrame), c.Float64(flagTime))
}

func inspect(out io.Writer, r *reader.Reader, frame int, ts float64) error {
	md, err := r.ReadMetadata()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "version %s\n", md.Version)
	if md.LogInfo != nil {
		fmt.Fprintf(out, "time %.3f - %.3f\n", md.LogInfo.StartTime, md.LogInfo.EndTime)
	}
	fmt.Fprintf(out, "streams:\n")
	for _, id := range md.StreamIDs() {
		s, _ := md.Stream(id)
		kind := string(s.PrimitiveType)
		if kind == "" {
			kind = string(s.ScalarType)
		}
		if kind == "" {
			fmt.Fprintf(out, "  %s (%s)\n", id, s.Category)
		} else {
			fmt.Fprintf(out, "  %s (%s %s)\n", id, s.Category, kind)
		}
	}

	index, err := r.ReadFrameIndex()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "frames: %d\n", len(index.Timing))
	for _, e := range index.Timing {
		fmt.Fprintf(out, "  %d %s %.3f - %.3f\n", e.Sequence, e.Key, e.StartTime, e.EndTime)
	}

	if ts >= 0 {
		entry, err := r.FindFrame(ts)
		if err != nil {
			return err
		}
		frame = entry.Sequence
	}
	if frame < 0 {
		return nil
	}
	env, err := r.ReadFrame(frame)
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(env.Tree(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "frame %d:\n%s\n", frame, b)
	return nil
}

func schemaAction(c *cli.Context) error {
	b, err := schema.JSON(c.String(flagDocument))
	if err != nil {
		return errors.Wrapf(err, "available documents: %v", schema.Names())
	}
	_, err = c.App.Writer.Write(append(b, '\n'))
	return err
}
