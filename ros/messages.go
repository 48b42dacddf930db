package ros

import (
	"math"

	"github.com/golang/geo/r3"
)

// Stamp is a ROS time.
type Stamp struct {
	Secs  int
	Nsecs int
}

// Seconds returns the stamp in seconds.
func (s Stamp) Seconds() float64 {
	return float64(s.Secs) + float64(s.Nsecs)/1e9
}

// Header is std_msgs/Header.
type Header struct {
	Seq     int
	Stamp   Stamp
	FrameID string `json:"frame_id"`
}

// Vector3 is geometry_msgs/Vector3 and geometry_msgs/Point.
type Vector3 struct {
	X float64
	Y float64
	Z float64
}

// R3 converts the vector.
func (v Vector3) R3() r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// Quaternion is geometry_msgs/Quaternion.
type Quaternion struct {
	X float64
	Y float64
	Z float64
	W float64
}

// IdentityQuaternion is the rotation that does nothing.
var IdentityQuaternion = Quaternion{W: 1}

// Mul returns the rotation q followed by o.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Rotate rotates v by q, which must be a unit quaternion.
func (q Quaternion) Rotate(v r3.Vector) r3.Vector {
	u := r3.Vector{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(u.Cross(t))
}

// Normalize returns q scaled to unit length. A zero quaternion becomes the identity.
func (q Quaternion) Normalize() Quaternion {
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n == 0 {
		return IdentityQuaternion
	}
	return Quaternion{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// RollPitchYaw returns the intrinsic xyz euler angles of q in radians, packed as x=roll,
// y=pitch, z=yaw.
func (q Quaternion) RollPitchYaw() r3.Vector {
	q = q.Normalize()
	roll := math.Atan2(2*(q.W*q.X+q.Y*q.Z), 1-2*(q.X*q.X+q.Y*q.Y))
	sinp := 2 * (q.W*q.Y - q.Z*q.X)
	var pitch float64
	if math.Abs(sinp) >= 1 {
		pitch = math.Copysign(math.Pi/2, sinp)
	} else {
		pitch = math.Asin(sinp)
	}
	yaw := math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))
	return r3.Vector{X: roll, Y: pitch, Z: yaw}
}

// Meta is the bag record time of a message.
type Meta struct {
	Secs  int
	Nsecs int
}

// ImuMessage is a sensor_msgs/Imu record.
type ImuMessage struct {
	Meta Meta
	Data struct {
		Header                       Header
		Orientation                  Quaternion
		OrientationCovariance        [9]float64 `json:"orientation_covariance"`
		AngularVelocity              Vector3    `json:"angular_velocity"`
		AngularVelocityCovariance    [9]float64 `json:"angular_velocity_covariance"`
		LinearAcceleration           Vector3    `json:"linear_acceleration"`
		LinearAccelerationCovariance [9]float64 `json:"linear_acceleration_covariance"`
	}
}

// PoseStampedMessage is a geometry_msgs/PoseStamped record.
type PoseStampedMessage struct {
	Meta Meta
	Data struct {
		Header Header
		Pose   struct {
			Position    Vector3
			Orientation Quaternion
		}
	}
}

// NavSatFixMessage is a sensor_msgs/NavSatFix record.
type NavSatFixMessage struct {
	Meta Meta
	Data struct {
		Header    Header
		Latitude  float64
		Longitude float64
		Altitude  float64
	}
}

// TransformStamped is geometry_msgs/TransformStamped.
type TransformStamped struct {
	Header       Header
	ChildFrameID string `json:"child_frame_id"`
	Transform    struct {
		Translation Vector3
		Rotation    Quaternion
	}
}

// TFMessage is a tf2_msgs/TFMessage record.
type TFMessage struct {
	Meta Meta
	Data struct {
		Transforms []TransformStamped
	}
}
