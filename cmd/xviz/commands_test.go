package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/xviz/converter"
	"go.viam.com/xviz/format"
	"go.viam.com/xviz/logging"
	"go.viam.com/xviz/ros"
	"go.viam.com/xviz/writer"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"xviz"}, args...))
	return out.String(), err
}

func writeLog(t *testing.T, dir string) {
	t.Helper()
	logger := logging.NewTestLogger(t)
	poses := make([]ros.PoseStampedMessage, 0, 4)
	for i := range 4 {
		var m ros.PoseStampedMessage
		m.Data.Header.Stamp.Secs = 10 + i
		m.Data.Pose.Position = ros.Vector3{X: float64(i)}
		m.Data.Pose.Orientation = ros.IdentityQuaternion
		poses = append(poses, m)
	}
	p, err := ros.NewProducerFromMessages(poses, nil, nil, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	w := writer.New(writer.NewFileSink(dir), writer.WithFormat(format.Binary))
	test.That(t, converter.Convert(context.Background(), p, w, converter.WithLogger(logger)), test.ShouldBeNil)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir)

	out, err := run(t, "inspect", dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "version 2.0.0")
	test.That(t, out, test.ShouldContainSubstring, "/vehicle_pose (POSE)")
	test.That(t, out, test.ShouldContainSubstring, "/vehicle/trajectory (PRIMITIVE POLYLINE)")
	test.That(t, out, test.ShouldContainSubstring, "frames: 4")
	test.That(t, out, test.ShouldContainSubstring, "3 5-frame 13.000 - 13.000")
	test.That(t, out, test.ShouldNotContainSubstring, "frame 1:")

	out, err = run(t, "inspect", "--time", "11.5", dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "frame 1:")

	_, err = run(t, "inspect")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = run(t, "inspect", t.TempDir())
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSchema(t *testing.T) {
	out, err := run(t, "schema", "--document", "frame_index")
	test.That(t, err, test.ShouldBeNil)
	var doc map[string]any
	test.That(t, json.Unmarshal([]byte(out), &doc), test.ShouldBeNil)
	test.That(t, doc, test.ShouldContainKey, "properties")

	_, err = run(t, "schema", "--document", "nope")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "state_update")
}

func TestConvertErrors(t *testing.T) {
	_, err := run(t, "convert")
	test.That(t, err, test.ShouldNotBeNil)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "convert.json")
	doc := `{"bag": "` + filepath.Join(dir, "missing.bag") + `", "output": "` + dir + `", "topics": {"pose": "/pose"},` +
		` "log": {"file": "` + filepath.Join(dir, "convert.log") + `"}}`
	test.That(t, os.WriteFile(cfgPath, []byte(doc), 0o600), test.ShouldBeNil)
	_, err = run(t, "convert", "--config", cfgPath)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unable to open input file")
}
