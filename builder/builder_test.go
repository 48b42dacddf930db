package builder

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.viam.com/xviz/logging"
	"go.viam.com/xviz/message"
)

func testMetadata(t *testing.T) *message.Metadata {
	t.Helper()
	mb := NewMetadata()
	declare := func(id string, c message.Category, typ string) {
		d, err := mb.Stream(id)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, d.Category(c), test.ShouldBeNil)
		if typ != "" {
			test.That(t, d.Type(typ), test.ShouldBeNil)
		}
	}
	declare(message.PrimaryPoseStream, message.CategoryPose, "")
	declare("/lidar_pose", message.CategoryPose, "")
	declare("/objects", message.CategoryPrimitive, "POLYGON")
	declare("/trajectory", message.CategoryPrimitive, "POLYLINE")
	declare("/points", message.CategoryPrimitive, "POINT")
	declare("/markers", message.CategoryPrimitive, "")
	declare("/images", message.CategoryPrimitive, "IMAGE")
	declare("/speed", message.CategoryTimeSeries, "FLOAT")
	declare("/accel", message.CategoryTimeSeries, "FLOAT")
	declare("/gear", message.CategoryTimeSeries, "STRING")
	declare("/plan", message.CategoryVariable, "FLOAT")
	declare("/table", message.CategoryUIPrimitive, "")
	md, err := mb.GetMetadata()
	test.That(t, err, test.ShouldBeNil)
	return md
}

func newTestBuilder(t *testing.T, opts ...Option) *Builder {
	t.Helper()
	b, err := New(testMetadata(t), append([]Option{WithLogger(logging.NewTestLogger(t))}, opts...)...)
	test.That(t, err, test.ShouldBeNil)
	return b
}

func TestNewRequiresMetadata(t *testing.T) {
	_, err := New(nil)
	test.That(t, err, test.ShouldEqual, ErrNoMetadata)
}

func TestPoseFrame(t *testing.T) {
	b := newTestBuilder(t)
	pose, err := b.Pose(message.PrimaryPoseStream)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Timestamp(1000), test.ShouldBeNil)
	test.That(t, pose.MapOrigin(-122.4, 37.8, 0), test.ShouldBeNil)
	test.That(t, pose.Orientation(0, 0, 1.5), test.ShouldBeNil)

	su, err := b.GetMessage()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, su.UpdateType, test.ShouldEqual, message.UpdateSnapshot)
	test.That(t, su.Updates, test.ShouldHaveLength, 1)
	update := su.Updates[0]
	test.That(t, *update.Timestamp, test.ShouldEqual, 1000.0)
	p := update.Poses[message.PrimaryPoseStream]
	test.That(t, *p.Position, test.ShouldResemble, r3.Vector{})
	test.That(t, p.MapOrigin.Latitude, test.ShouldEqual, 37.8)
	test.That(t, *p.Orientation, test.ShouldResemble, r3.Vector{Z: 1.5})
}

func TestFrameTimestampFallback(t *testing.T) {
	t.Run("explicit wins", func(t *testing.T) {
		b := newTestBuilder(t)
		test.That(t, b.Timestamp(5), test.ShouldBeNil)
		pose, err := b.Pose(message.PrimaryPoseStream)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pose.Timestamp(10), test.ShouldBeNil)
		su, err := b.GetMessage()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, *su.Updates[0].Timestamp, test.ShouldEqual, 5.0)
	})
	t.Run("primary pose", func(t *testing.T) {
		b := newTestBuilder(t)
		for id, ts := range map[string]float64{message.PrimaryPoseStream: 10, "/lidar_pose": 3} {
			pose, err := b.Pose(id)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, pose.Timestamp(ts), test.ShouldBeNil)
		}
		su, err := b.GetMessage()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, *su.Updates[0].Timestamp, test.ShouldEqual, 10.0)
	})
	t.Run("earliest pose", func(t *testing.T) {
		b := newTestBuilder(t)
		pose, err := b.Pose("/lidar_pose")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, pose.Timestamp(3), test.ShouldBeNil)
		su, err := b.GetMessage()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, *su.Updates[0].Timestamp, test.ShouldEqual, 3.0)
	})
	t.Run("none", func(t *testing.T) {
		b := newTestBuilder(t)
		su, err := b.GetMessage()
		test.That(t, err, test.ShouldBeNil)
		test.That(t, su.Updates[0].Timestamp, test.ShouldBeNil)
	})
}

func TestUndeclaredStream(t *testing.T) {
	b := newTestBuilder(t)
	_, err := b.Primitive("/nope")
	var undeclared *UndeclaredStreamError
	test.That(t, errors.As(err, &undeclared), test.ShouldBeTrue)
	test.That(t, undeclared.Stream, test.ShouldEqual, "/nope")
	test.That(t, IsProtocolViolation(err), test.ShouldBeTrue)

	_, err = b.Stream("/nope")
	test.That(t, errors.As(err, &undeclared), test.ShouldBeTrue)
	s, err := b.Stream("/speed")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.ScalarType, test.ShouldEqual, message.ScalarFloat)
}

func TestCategoryMismatch(t *testing.T) {
	b := newTestBuilder(t)
	_, err := b.Pose("/objects")
	var mismatch *CategoryMismatchError
	test.That(t, errors.As(err, &mismatch), test.ShouldBeTrue)
	test.That(t, mismatch.Want, test.ShouldEqual, "PRIMITIVE")
	test.That(t, mismatch.Got, test.ShouldEqual, "POSE")

	prim, err := b.Primitive("/objects")
	test.That(t, err, test.ShouldBeNil)
	err = prim.Circle(r3.Vector{}, 1)
	test.That(t, errors.As(err, &mismatch), test.ShouldBeTrue)
	test.That(t, mismatch.Want, test.ShouldEqual, "POLYGON")
}

func TestDuplicateAssignment(t *testing.T) {
	b := newTestBuilder(t)
	test.That(t, b.Timestamp(1), test.ShouldBeNil)
	var dup *DuplicateAssignmentError
	test.That(t, errors.As(b.Timestamp(2), &dup), test.ShouldBeTrue)
	test.That(t, dup.Field, test.ShouldEqual, "timestamp")

	pose, err := b.Pose(message.PrimaryPoseStream)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Position(1, 2, 3), test.ShouldBeNil)
	again, err := b.Pose(message.PrimaryPoseStream)
	test.That(t, err, test.ShouldBeNil)
	err = again.Position(4, 5, 6)
	test.That(t, errors.As(err, &dup), test.ShouldBeTrue)
	test.That(t, dup.Stream, test.ShouldEqual, message.PrimaryPoseStream)
	test.That(t, dup.Field, test.ShouldEqual, "position")

	prim, err := b.Primitive("/objects")
	test.That(t, err, test.ShouldBeNil)
	square := []r3.Vector{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	test.That(t, prim.Polygon(square), test.ShouldBeNil)
	test.That(t, prim.ID("a"), test.ShouldBeNil)
	test.That(t, errors.As(prim.ID("b"), &dup), test.ShouldBeTrue)
	test.That(t, dup.Field, test.ShouldEqual, "id")

	// a new shape starts a fresh primitive
	test.That(t, prim.Polygon(square), test.ShouldBeNil)
	test.That(t, prim.ID("b"), test.ShouldBeNil)

	su, err := b.GetMessage()
	test.That(t, err, test.ShouldBeNil)
	polygons := su.Updates[0].Primitives["/objects"].Polygons
	test.That(t, polygons, test.ShouldHaveLength, 2)
	test.That(t, polygons[0].Base.ObjectID, test.ShouldEqual, "a")
	test.That(t, polygons[1].Base.ObjectID, test.ShouldEqual, "b")
}

func TestClosedBuilder(t *testing.T) {
	b := newTestBuilder(t)
	test.That(t, b.Timestamp(1), test.ShouldBeNil)
	pose, err := b.Pose(message.PrimaryPoseStream)
	test.That(t, err, test.ShouldBeNil)
	_, err = b.GetMessage()
	test.That(t, err, test.ShouldBeNil)

	var closed *BuilderClosedError
	test.That(t, errors.As(pose.Position(1, 1, 1), &closed), test.ShouldBeTrue)
	test.That(t, closed.Stream, test.ShouldEqual, message.PrimaryPoseStream)
	_, err = b.Primitive("/objects")
	test.That(t, errors.As(err, &closed), test.ShouldBeTrue)
	_, err = b.GetMessage()
	test.That(t, errors.As(err, &closed), test.ShouldBeTrue)
	test.That(t, IsProtocolViolation(err), test.ShouldBeTrue)
}

func TestDisabledStreams(t *testing.T) {
	b := newTestBuilder(t, WithDisabledStreams("/objects", message.PrimaryPoseStream))
	prim, err := b.Primitive("/objects")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, prim.Polygon([]r3.Vector{{}}), test.ShouldBeNil)
	test.That(t, prim.ID("x"), test.ShouldBeNil)
	test.That(t, prim.ID("x"), test.ShouldBeNil)
	pose, err := b.Pose(message.PrimaryPoseStream)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Timestamp(1), test.ShouldBeNil)
	test.That(t, pose.Timestamp(2), test.ShouldBeNil)

	su, err := b.GetMessage()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, su.Updates[0].Primitives, test.ShouldBeNil)
	test.That(t, su.Updates[0].Poses, test.ShouldBeNil)
}

func TestPrimitiveFields(t *testing.T) {
	b := newTestBuilder(t)
	test.That(t, b.Timestamp(1), test.ShouldBeNil)

	prim, err := b.Primitive("/markers")
	test.That(t, err, test.ShouldBeNil)
	var noPrim *NoPrimitiveError
	test.That(t, errors.As(prim.ID("early"), &noPrim), test.ShouldBeTrue)

	test.That(t, prim.Circle(r3.Vector{X: 1}, 2), test.ShouldBeNil)
	test.That(t, prim.Style(map[string]any{"fill_color": "#ff0000"}), test.ShouldBeNil)
	test.That(t, prim.Classes("car", "moving"), test.ShouldBeNil)
	var unsupported *UnsupportedFieldError
	test.That(t, errors.As(prim.Colors(nil), &unsupported), test.ShouldBeTrue)
	test.That(t, unsupported.Primitive, test.ShouldEqual, message.PrimitiveCircle)
	test.That(t, prim.Text(r3.Vector{}, "hello"), test.ShouldBeNil)
	test.That(t, prim.Stadium(r3.Vector{}, r3.Vector{X: 1}, 0.5), test.ShouldBeNil)

	points, err := b.Primitive("/points")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points.Points([]r3.Vector{{X: 1}, {X: 2}}), test.ShouldBeNil)
	test.That(t, points.Colors([]color.NRGBA{{R: 1, A: 255}, {G: 1, A: 255}}), test.ShouldBeNil)

	images, err := b.Primitive("/images")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, images.Image([]byte{1, 2, 3}, "png"), test.ShouldBeNil)
	test.That(t, images.Dimensions(2, 1), test.ShouldBeNil)
	test.That(t, images.Position(r3.Vector{Z: 1}), test.ShouldBeNil)

	su, err := b.GetMessage()
	test.That(t, err, test.ShouldBeNil)
	markers := su.Updates[0].Primitives["/markers"]
	test.That(t, markers.Circles, test.ShouldHaveLength, 1)
	test.That(t, markers.Circles[0].Base.Classes, test.ShouldResemble, []string{"car", "moving"})
	test.That(t, markers.Texts[0].Text, test.ShouldEqual, "hello")
	test.That(t, markers.Stadiums[0].End, test.ShouldResemble, r3.Vector{X: 1})
	test.That(t, su.Updates[0].Primitives["/points"].Points[0].Colors, test.ShouldHaveLength, 2)
	img := su.Updates[0].Primitives["/images"].Images[0]
	test.That(t, img.WidthPx, test.ShouldEqual, 2)
	test.That(t, *img.Position, test.ShouldResemble, r3.Vector{Z: 1})
}

func TestStructuralValidation(t *testing.T) {
	b := newTestBuilder(t)
	test.That(t, b.Timestamp(1), test.ShouldBeNil)
	prim, err := b.Primitive("/objects")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, prim.Polygon([]r3.Vector{{}, {X: 1}}), test.ShouldBeNil)
	line, err := b.Primitive("/trajectory")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, line.Polyline([]r3.Vector{{}}), test.ShouldBeNil)
	markers, err := b.Primitive("/markers")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, markers.Circle(r3.Vector{}, 0), test.ShouldBeNil)

	_, err = b.GetMessage()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, multierr.Errors(err), test.ShouldHaveLength, 3)
	var invalid *ValidationError
	test.That(t, errors.As(err, &invalid), test.ShouldBeTrue)
	test.That(t, invalid.Stream, test.ShouldEqual, "/markers")

	// a failed finalization leaves the builder open
	test.That(t, b.Timestamp(2), test.ShouldNotBeNil)
	var closed *BuilderClosedError
	test.That(t, errors.As(b.Timestamp(2), &closed), test.ShouldBeFalse)
}

func TestCustomValidator(t *testing.T) {
	called := false
	b := newTestBuilder(t, WithValidator(ValidatorFunc(func(meta *message.Metadata, su *message.StateUpdate) error {
		called = true
		return nil
	})))
	prim, err := b.Primitive("/objects")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, prim.Polygon(nil), test.ShouldBeNil)
	_, err = b.GetMessage()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, called, test.ShouldBeTrue)

	b = newTestBuilder(t, WithValidator(nil))
	prim, err = b.Primitive("/objects")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, prim.Polygon(nil), test.ShouldBeNil)
	_, err = b.GetMessage()
	test.That(t, err, test.ShouldBeNil)
}

func TestTimeSeriesGrouping(t *testing.T) {
	b := newTestBuilder(t)
	test.That(t, b.Timestamp(10), test.ShouldBeNil)
	sample := func(id string, ts *float64, v any, obj string) {
		tb, err := b.TimeSeries(id)
		test.That(t, err, test.ShouldBeNil)
		if ts != nil {
			test.That(t, tb.Timestamp(*ts), test.ShouldBeNil)
		}
		test.That(t, tb.Value(v), test.ShouldBeNil)
		if obj != "" {
			test.That(t, tb.ID(obj), test.ShouldBeNil)
		}
	}
	early := 9.0
	sample("/speed", nil, 3.5, "")
	sample("/accel", nil, 0.25, "")
	sample("/gear", nil, "D", "")
	sample("/speed", &early, 3.0, "")
	sample("/speed", nil, 1.0, "car-1")

	su, err := b.GetMessage()
	test.That(t, err, test.ShouldBeNil)
	series := su.Updates[0].TimeSeries
	test.That(t, series, test.ShouldHaveLength, 4)
	test.That(t, series[0].Timestamp, test.ShouldEqual, 9.0)
	test.That(t, series[1].Streams, test.ShouldResemble, []string{"/speed", "/accel"})
	test.That(t, series[1].Values.Doubles, test.ShouldResemble, []float64{3.5, 0.25})
	test.That(t, series[2].Values.Strings, test.ShouldResemble, []string{"D"})
	test.That(t, series[3].ObjectID, test.ShouldEqual, "car-1")

	tb, err := New(testMetadata(t))
	test.That(t, err, test.ShouldBeNil)
	ts, err := tb.TimeSeries("/speed")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ts.Value(1.0), test.ShouldBeNil)
	var dup *DuplicateAssignmentError
	test.That(t, errors.As(ts.Value(2.0), &dup), test.ShouldBeTrue)
	_, err = tb.GetMessage()
	var missing *MissingTimestampError
	test.That(t, errors.As(err, &missing), test.ShouldBeTrue)
}

func TestTimeSeriesRepeatedSample(t *testing.T) {
	b := newTestBuilder(t)
	test.That(t, b.Timestamp(10), test.ShouldBeNil)
	for _, v := range []float64{1, 2} {
		tb, err := b.TimeSeries("/speed")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, tb.Value(v), test.ShouldBeNil)
	}
	_, err := b.GetMessage()
	var dup *DuplicateAssignmentError
	test.That(t, errors.As(err, &dup), test.ShouldBeTrue)
	test.That(t, dup.Stream, test.ShouldEqual, "/speed")
	test.That(t, dup.Field, test.ShouldEqual, "value")
}

func TestIntegerRange(t *testing.T) {
	b := newTestBuilder(t)
	v, err := b.Variable("/plan")
	test.That(t, err, test.ShouldBeNil)
	var invalid *ValidationError
	test.That(t, errors.As(v.Values([]int{1 << 33}), &invalid), test.ShouldBeTrue)
	test.That(t, invalid.Stream, test.ShouldEqual, "/plan")
	test.That(t, v.Values([]int{math.MinInt32, math.MaxInt32}), test.ShouldBeNil)

	for _, value := range []any{int64(5_000_000_000), int64(math.MinInt32 - 1), uint32(math.MaxInt32 + 1), 1 << 40} {
		tb, err := b.TimeSeries("/speed")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, errors.As(tb.Value(value), &invalid), test.ShouldBeTrue)
	}
	tb, err := b.TimeSeries("/speed")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tb.Value(uint32(7)), test.ShouldBeNil)

	values, err := toValue(int64(-5))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, values.Int32s, test.ShouldResemble, []int32{-5})
}

func TestScalarTypeAgreement(t *testing.T) {
	b := newTestBuilder(t)
	test.That(t, b.Timestamp(1), test.ShouldBeNil)
	tb, err := b.TimeSeries("/speed")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tb.Value("fast"), test.ShouldBeNil)
	_, err = b.GetMessage()
	var invalid *ValidationError
	test.That(t, errors.As(err, &invalid), test.ShouldBeTrue)
	test.That(t, invalid.Stream, test.ShouldEqual, "/speed")
}

func TestVariables(t *testing.T) {
	b := newTestBuilder(t)
	test.That(t, b.Timestamp(1), test.ShouldBeNil)
	v, err := b.Variable("/plan")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, v.Values([]float32{1, 2}), test.ShouldBeNil)
	test.That(t, v.ID("route"), test.ShouldBeNil)
	var dup *DuplicateAssignmentError
	test.That(t, errors.As(v.Values([]float64{3}), &dup), test.ShouldBeTrue)
	test.That(t, v.Values(map[string]int{}), test.ShouldNotBeNil)

	second, err := b.Variable("/plan")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second.Values([]float64{3}), test.ShouldBeNil)
	_, err = b.Variable("/plan")
	test.That(t, err, test.ShouldBeNil)

	su, err := b.GetMessage()
	test.That(t, err, test.ShouldBeNil)
	vars := su.Updates[0].Variables["/plan"].Variables
	test.That(t, vars, test.ShouldHaveLength, 2)
	test.That(t, vars[0].Values.Doubles, test.ShouldResemble, []float64{1, 2})
	test.That(t, vars[0].ObjectID, test.ShouldEqual, "route")
}

func TestUIPrimitive(t *testing.T) {
	b := newTestBuilder(t)
	ui, err := b.UIPrimitive("/table")
	test.That(t, err, test.ShouldBeNil)
	var noPrim *NoPrimitiveError
	test.That(t, errors.As(ui.Row(0, nil), &noPrim), test.ShouldBeTrue)
	test.That(t, ui.TreeTable([]message.TreeTableColumn{{DisplayText: "name", Type: "STRING"}}), test.ShouldBeNil)
	root := 0
	test.That(t, ui.Row(0, nil, "root"), test.ShouldBeNil)
	test.That(t, ui.Row(1, &root, "child"), test.ShouldBeNil)
	var dup *DuplicateAssignmentError
	test.That(t, errors.As(ui.Row(1, &root), &dup), test.ShouldBeTrue)
	test.That(t, errors.As(ui.TreeTable(nil), &dup), test.ShouldBeTrue)

	su, err := b.GetMessage()
	test.That(t, err, test.ShouldBeNil)
	table := su.Updates[0].UIPrimitives["/table"].TreeTable
	test.That(t, table.Nodes, test.ShouldHaveLength, 2)
	test.That(t, *table.Nodes[1].Parent, test.ShouldEqual, 0)
}

func TestLinks(t *testing.T) {
	b := newTestBuilder(t)
	test.That(t, b.Link(message.PrimaryPoseStream, "/lidar_pose"), test.ShouldBeNil)
	test.That(t, b.Link("/lidar_pose", "/points"), test.ShouldBeNil)
	var undeclared *UndeclaredStreamError
	test.That(t, errors.As(b.Link("/nope", "/points"), &undeclared), test.ShouldBeTrue)
	var dup *DuplicateAssignmentError
	test.That(t, errors.As(b.Link(message.PrimaryPoseStream, "/points"), &dup), test.ShouldBeTrue)

	su, err := b.GetMessage()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, su.Updates[0].Links, test.ShouldResemble, map[string]message.Link{
		"/lidar_pose": {TargetPose: message.PrimaryPoseStream},
		"/points":     {TargetPose: "/lidar_pose"},
	})
}

func TestLinkCycle(t *testing.T) {
	b := newTestBuilder(t)
	test.That(t, b.Link(message.PrimaryPoseStream, "/lidar_pose"), test.ShouldBeNil)
	test.That(t, b.Link("/lidar_pose", "/objects"), test.ShouldBeNil)
	test.That(t, b.Link("/objects", message.PrimaryPoseStream), test.ShouldBeNil)

	_, err := b.GetMessage()
	var cycle *LinkCycleError
	test.That(t, errors.As(err, &cycle), test.ShouldBeTrue)
	test.That(t, cycle.Parent, test.ShouldEqual, "/objects")
	test.That(t, cycle.Child, test.ShouldEqual, message.PrimaryPoseStream)
	test.That(t, cycle.Cycle, test.ShouldHaveLength, 4)
	test.That(t, cycle.Cycle[0], test.ShouldEqual, cycle.Cycle[3])
}

func TestPersistentBaseline(t *testing.T) {
	md := testMetadata(t)
	baseline := NewBaseline()
	square := []r3.Vector{{}, {X: 1}, {X: 1, Y: 1}}

	first, err := New(md, WithBaseline(baseline))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, first.Persistent(), test.ShouldBeNil)
	test.That(t, first.Timestamp(1), test.ShouldBeNil)
	prim, err := first.Primitive("/objects")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, prim.Polygon(square), test.ShouldBeNil)
	su, err := first.GetMessage()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, su.UpdateType, test.ShouldEqual, message.UpdatePersistent)
	test.That(t, baseline.Streams(), test.ShouldResemble, []string{"/objects"})

	second, err := New(md, WithBaseline(baseline))
	test.That(t, err, test.ShouldBeNil)
	prim, err = second.Primitive("/objects")
	test.That(t, err, test.ShouldBeNil)
	var violation *PersistentModeViolationError
	test.That(t, errors.As(prim.Polygon(square), &violation), test.ShouldBeTrue)
	test.That(t, violation.Stream, test.ShouldEqual, "/objects")

	other, err := second.Primitive("/trajectory")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, other.Polyline(square), test.ShouldBeNil)
}

func TestMetadataBuilder(t *testing.T) {
	mb := NewMetadata()
	d, err := mb.Stream("/objects")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, d.Type("POLYGON"), test.ShouldNotBeNil)
	test.That(t, d.Category(message.CategoryPrimitive), test.ShouldBeNil)
	test.That(t, d.Type("HEXAGON"), test.ShouldNotBeNil)
	test.That(t, d.Type("POLYGON"), test.ShouldBeNil)
	test.That(t, d.Coordinate("IDENTITY"), test.ShouldBeNil)
	test.That(t, d.StreamStyle(map[string]any{"stroke_width": 2}), test.ShouldBeNil)
	var dup *DuplicateAssignmentError
	test.That(t, errors.As(d.Coordinate("VEHICLE_RELATIVE"), &dup), test.ShouldBeTrue)

	_, err = mb.Stream("/objects")
	test.That(t, errors.As(err, &dup), test.ShouldBeTrue)

	speed, err := mb.Stream("/speed")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, speed.Category("SPEED"), test.ShouldNotBeNil)
	test.That(t, speed.Category(message.CategoryTimeSeries), test.ShouldBeNil)
	test.That(t, speed.Type("FLOAT"), test.ShouldBeNil)
	test.That(t, speed.Unit("m/s"), test.ShouldBeNil)

	test.That(t, mb.StartTime(10), test.ShouldBeNil)
	test.That(t, mb.EndTime(20), test.ShouldBeNil)
	test.That(t, errors.As(mb.EndTime(30), &dup), test.ShouldBeTrue)
	test.That(t, mb.UI("Camera", map[string]any{"type": "panel"}), test.ShouldBeNil)
	test.That(t, errors.As(mb.UI("Camera", nil), &dup), test.ShouldBeTrue)

	md, err := mb.GetMetadata()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, md.Version, test.ShouldEqual, message.ProtocolVersion)
	test.That(t, md.StreamIDs(), test.ShouldResemble, []string{"/objects", "/speed"})
	test.That(t, md.Streams["/speed"].Unit, test.ShouldEqual, "m/s")
	test.That(t, *md.LogInfo, test.ShouldResemble, message.LogInfo{StartTime: 10, EndTime: 20})
	test.That(t, md.UIConfig, test.ShouldContainKey, "Camera")

	_, err = mb.Stream("/uncategorized")
	test.That(t, err, test.ShouldBeNil)
	_, err = mb.GetMetadata()
	var invalid *ValidationError
	test.That(t, errors.As(err, &invalid), test.ShouldBeTrue)
	test.That(t, invalid.Stream, test.ShouldEqual, "/uncategorized")
}
