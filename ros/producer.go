package ros

import (
	"slices"
	"sort"

	"github.com/edaniels/gobag/rosbag"
	"github.com/golang/geo/r3"
	"github.com/samber/lo"

	"go.viam.com/xviz/builder"
	"go.viam.com/xviz/logging"
	"go.viam.com/xviz/message"
)

// Streams written by the producer.
const (
	TrajectoryStream      = "/vehicle/trajectory"
	AccelerationStream    = "/vehicle/acceleration"
	AngularVelocityStream = "/vehicle/angular_velocity"
	TransformStreamPrefix = "/tf"
)

// DefaultTrajectoryLength is the number of past poses drawn as the trajectory.
const DefaultTrajectoryLength = 50

// Topics names the bag topics the producer reads. Only Pose is required.
type Topics struct {
	Pose string
	IMU  string
	GPS  string
	TF   string
}

// Producer turns the messages of a bag into one frame per pose message.
type Producer struct {
	poses  []PoseStampedMessage
	imu    []ImuMessage
	fixes  []NavSatFixMessage
	frames *FrameData
	logger logging.Logger

	// TrajectoryLength bounds the trajectory polyline.
	TrajectoryLength int
}

// NewProducer reads the configured topics of rb.
func NewProducer(rb *rosbag.RosBag, topics Topics, logger logging.Logger) (*Producer, error) {
	poses, err := TopicMessages[PoseStampedMessage](rb, topics.Pose)
	if err != nil {
		return nil, err
	}
	var (
		imu   []ImuMessage
		fixes []NavSatFixMessage
		tfs   []TFMessage
	)
	if topics.IMU != "" {
		if imu, err = TopicMessages[ImuMessage](rb, topics.IMU); err != nil {
			return nil, err
		}
	}
	if topics.GPS != "" {
		if fixes, err = TopicMessages[NavSatFixMessage](rb, topics.GPS); err != nil {
			return nil, err
		}
	}
	if topics.TF != "" {
		if tfs, err = TopicMessages[TFMessage](rb, topics.TF); err != nil {
			return nil, err
		}
	}
	logger.Infow("read bag", "poses", len(poses), "imu", len(imu), "gps", len(fixes), "tf", len(tfs))
	return NewProducerFromMessages(poses, imu, fixes, tfs, logger)
}

// NewProducerFromMessages builds a producer from decoded messages.
func NewProducerFromMessages(
	poses []PoseStampedMessage,
	imu []ImuMessage,
	fixes []NavSatFixMessage,
	tfs []TFMessage,
	logger logging.Logger,
) (*Producer, error) {
	if len(poses) == 0 {
		return nil, ErrNoPoses
	}
	p := &Producer{
		poses:            slices.Clone(poses),
		imu:              slices.Clone(imu),
		fixes:            fixes,
		frames:           NewFrameData(tfs),
		logger:           logger,
		TrajectoryLength: DefaultTrajectoryLength,
	}
	sort.SliceStable(p.poses, func(i, j int) bool { return poseTime(p.poses[i]) < poseTime(p.poses[j]) })
	sort.SliceStable(p.imu, func(i, j int) bool { return imuTime(p.imu[i]) < imuTime(p.imu[j]) })
	return p, nil
}

// FrameCount returns the number of frames.
func (p *Producer) FrameCount() int {
	return len(p.poses)
}

// Metadata declares every stream the producer writes.
func (p *Producer) Metadata() (*message.Metadata, error) {
	mb := builder.NewMetadata()
	declare := func(id string, category message.Category, typ, unit string) (*builder.StreamDeclaration, error) {
		d, err := mb.Stream(id)
		if err != nil {
			return nil, err
		}
		if err := d.Category(category); err != nil {
			return nil, err
		}
		if typ != "" {
			if err := d.Type(typ); err != nil {
				return nil, err
			}
		}
		if unit != "" {
			if err := d.Unit(unit); err != nil {
				return nil, err
			}
		}
		return d, nil
	}

	if _, err := declare(message.PrimaryPoseStream, message.CategoryPose, "", ""); err != nil {
		return nil, err
	}
	trajectory, err := declare(TrajectoryStream, message.CategoryPrimitive, string(message.PrimitivePolyline), "")
	if err != nil {
		return nil, err
	}
	if err := trajectory.Coordinate("IDENTITY"); err != nil {
		return nil, err
	}
	if err := trajectory.StreamStyle(map[string]any{"stroke_color": "#57AD57AA", "stroke_width": 1.4}); err != nil {
		return nil, err
	}
	if len(p.imu) > 0 {
		if _, err := declare(AccelerationStream, message.CategoryTimeSeries, string(message.ScalarFloat), "m/s^2"); err != nil {
			return nil, err
		}
		if _, err := declare(AngularVelocityStream, message.CategoryTimeSeries, string(message.ScalarFloat), "rad/s"); err != nil {
			return nil, err
		}
	}
	for _, frame := range p.frames.ChildFrames() {
		if _, err := declare(TransformStream(frame), message.CategoryPose, "", ""); err != nil {
			return nil, err
		}
	}
	if err := mb.StartTime(poseTime(p.poses[0])); err != nil {
		return nil, err
	}
	if err := mb.EndTime(poseTime(p.poses[len(p.poses)-1])); err != nil {
		return nil, err
	}
	return mb.GetMetadata()
}

// TransformStream returns the pose stream of a tf child frame.
func TransformStream(frame string) string {
	return TransformStreamPrefix + "/" + frame
}

// Frame fills b with frame i.
func (p *Producer) Frame(i int, b *builder.Builder) error {
	msg := p.poses[i]
	ts := poseTime(msg)

	pose, err := b.Pose(message.PrimaryPoseStream)
	if err != nil {
		return err
	}
	if err := pose.Timestamp(ts); err != nil {
		return err
	}
	if len(p.fixes) > 0 {
		fix := p.fixes[0].Data
		if err := pose.MapOrigin(fix.Longitude, fix.Latitude, fix.Altitude); err != nil {
			return err
		}
	}
	position := msg.Data.Pose.Position
	if err := pose.Position(position.X, position.Y, position.Z); err != nil {
		return err
	}
	rpy := msg.Data.Pose.Orientation.RollPitchYaw()
	if err := pose.Orientation(rpy.X, rpy.Y, rpy.Z); err != nil {
		return err
	}

	if err := p.trajectory(i, b); err != nil {
		return err
	}
	if err := p.imuSample(ts, b); err != nil {
		return err
	}
	return p.transforms(ts, b)
}

func (p *Producer) trajectory(i int, b *builder.Builder) error {
	first := max(0, i-p.TrajectoryLength+1)
	if i-first < 1 {
		return nil
	}
	vertices := lo.Map(p.poses[first:i+1], func(m PoseStampedMessage, _ int) r3.Vector {
		return m.Data.Pose.Position.R3()
	})
	prim, err := b.Primitive(TrajectoryStream)
	if err != nil {
		return err
	}
	return prim.Polyline(vertices)
}

// imuSample writes the latest IMU message recorded at or before ts.
func (p *Producer) imuSample(ts float64, b *builder.Builder) error {
	idx := sort.Search(len(p.imu), func(i int) bool { return imuTime(p.imu[i]) > ts }) - 1
	if idx < 0 {
		return nil
	}
	sample := p.imu[idx]
	sampleTime := imuTime(sample)
	for id, v := range map[string]float64{
		AccelerationStream:    sample.Data.LinearAcceleration.R3().Norm(),
		AngularVelocityStream: sample.Data.AngularVelocity.Z,
	} {
		series, err := b.TimeSeries(id)
		if err != nil {
			return err
		}
		if err := series.Timestamp(sampleTime); err != nil {
			return err
		}
		if err := series.Value(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *Producer) transforms(ts float64, b *builder.Builder) error {
	for _, frame := range p.frames.ChildFrames() {
		tf, err := p.frames.TransformTo(frame)
		if err != nil {
			p.logger.Debugw("skipping frame", "frame", frame, "error", err)
			continue
		}
		pose, err := b.Pose(TransformStream(frame))
		if err != nil {
			return err
		}
		if err := pose.Timestamp(ts); err != nil {
			return err
		}
		if err := pose.Position(tf.Position.X, tf.Position.Y, tf.Position.Z); err != nil {
			return err
		}
		rpy := tf.Rotation.RollPitchYaw()
		if err := pose.Orientation(rpy.X, rpy.Y, rpy.Z); err != nil {
			return err
		}
		if err := b.Link(message.PrimaryPoseStream, TransformStream(frame)); err != nil {
			return err
		}
	}
	return nil
}

func poseTime(m PoseStampedMessage) float64 {
	if ts := m.Data.Header.Stamp.Seconds(); ts > 0 {
		return ts
	}
	return Stamp(m.Meta).Seconds()
}

func imuTime(m ImuMessage) float64 {
	if ts := m.Data.Header.Stamp.Seconds(); ts > 0 {
		return ts
	}
	return Stamp(m.Meta).Seconds()
}
