// Package wire defines the tagged sensor payload variants the pipeline
// accepts, their structural validity checks, and cheap content fingerprints
// for dedup. Field names and JSON tags follow the ROS message definitions the
// payloads originate from.
package wire

import (
	"time"

	"github.com/golang/geo/r3"

	"go.viam.com/viz/spatialmath"
)

// Kind tags a payload variant.
type Kind int

// The closed set of payload kinds the pipeline understands.
const (
	KindUnknown Kind = iota
	KindOccupancyGrid
	KindPointCloud
	KindPointCloud2
	KindLaserScan
	KindPath
	KindOdometry
	KindTransform
	KindMarker
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindOccupancyGrid:
		return "occupancy_grid"
	case KindPointCloud:
		return "pointcloud"
	case KindPointCloud2:
		return "pointcloud2"
	case KindLaserScan:
		return "laserscan"
	case KindPath:
		return "path"
	case KindOdometry:
		return "odometry"
	case KindTransform:
		return "transform"
	case KindMarker:
		return "marker"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Message is implemented by every payload variant. Validate is a total
// function over the closed set of shapes: it reports whether the payload is
// structurally usable, never panicking on missing fields.
type Message interface {
	Kind() Kind
	Validate() error
	Fingerprint() uint64
}

// Stamp is a ROS-style timestamp.
type Stamp struct {
	Sec  int64 `json:"secs"`
	Nsec int64 `json:"nsecs"`
}

// AsTime converts the stamp to a time.Time.
func (s Stamp) AsTime() time.Time {
	return time.Unix(s.Sec, s.Nsec)
}

// IsZero reports whether the stamp was never set.
func (s Stamp) IsZero() bool {
	return s.Sec == 0 && s.Nsec == 0
}

// Header carries the frame and acquisition time of a payload.
type Header struct {
	Seq     uint32 `json:"seq"`
	Stamp   Stamp  `json:"stamp"`
	FrameID string `json:"frame_id"`
}

// Vector3 is a wire-format 3-vector.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// AsR3 converts to an r3.Vector.
func (v Vector3) AsR3() r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// Quaternion is a wire-format orientation in x, y, z, w order.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Pose is a wire-format position plus orientation.
type Pose struct {
	Position    Vector3    `json:"position"`
	Orientation Quaternion `json:"orientation"`
}

// AsPose converts to a spatialmath.Pose, normalizing the orientation.
func (p Pose) AsPose() spatialmath.Pose {
	return spatialmath.NewPose(
		p.Position.AsR3(),
		spatialmath.NewQuaternion(p.Orientation.W, p.Orientation.X, p.Orientation.Y, p.Orientation.Z),
	)
}

// PoseStamped is a pose with its frame and time of observation.
type PoseStamped struct {
	Header Header `json:"header"`
	Pose   Pose   `json:"pose"`
}

// MapMetaData describes the geometry of an occupancy grid.
type MapMetaData struct {
	Resolution float64 `json:"resolution"`
	Width      uint32  `json:"width"`
	Height     uint32  `json:"height"`
	Origin     Pose    `json:"origin"`
}

// OccupancyGrid is a row-major 2-D probabilistic map. Cell values are -1
// (unknown), 0 (free), or 1..100 (occupied percent).
type OccupancyGrid struct {
	Header Header       `json:"header"`
	Info   *MapMetaData `json:"info"`
	Data   []int8       `json:"data"`
}

// Kind implements Message.
func (m *OccupancyGrid) Kind() Kind { return KindOccupancyGrid }

// PointField declares where one named channel lives inside a PointCloud2
// point record.
type PointField struct {
	Name     string `json:"name"`
	Offset   uint32 `json:"offset"`
	Datatype uint8  `json:"datatype"`
	Count    uint32 `json:"count"`
}

// PointCloud2 is a packed binary point cloud with a per-point byte layout
// declared by its field table.
type PointCloud2 struct {
	Header      Header       `json:"header"`
	Height      uint32       `json:"height"`
	Width       uint32       `json:"width"`
	Fields      []PointField `json:"fields"`
	IsBigendian bool         `json:"is_bigendian"`
	PointStep   uint32       `json:"point_step"`
	RowStep     uint32       `json:"row_step"`
	Data        RawBytes     `json:"data"`
}

// Kind implements Message.
func (m *PointCloud2) Kind() Kind { return KindPointCloud2 }

// ChannelFloat32 is a named per-point scalar channel of a legacy PointCloud.
type ChannelFloat32 struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// PointCloud is the legacy unpacked cloud: parallel arrays of points and
// channels.
type PointCloud struct {
	Header   Header           `json:"header"`
	Points   []Vector3        `json:"points"`
	Channels []ChannelFloat32 `json:"channels"`
}

// Kind implements Message.
func (m *PointCloud) Kind() Kind { return KindPointCloud }

// LaserScan is a single planar polar scan.
type LaserScan struct {
	Header         Header    `json:"header"`
	AngleMin       float64   `json:"angle_min"`
	AngleMax       float64   `json:"angle_max"`
	AngleIncrement float64   `json:"angle_increment"`
	TimeIncrement  float64   `json:"time_increment"`
	ScanTime       float64   `json:"scan_time"`
	RangeMin       float64   `json:"range_min"`
	RangeMax       float64   `json:"range_max"`
	Ranges         []float64 `json:"ranges"`
	Intensities    []float64 `json:"intensities"`
}

// Kind implements Message.
func (m *LaserScan) Kind() Kind { return KindLaserScan }

// Path is an ordered pose trail.
type Path struct {
	Header Header        `json:"header"`
	Poses  []PoseStamped `json:"poses"`
}

// Kind implements Message.
func (m *Path) Kind() Kind { return KindPath }

// Odometry reports a pose estimate over time.
type Odometry struct {
	Header       Header `json:"header"`
	ChildFrameID string `json:"child_frame_id"`
	Pose         struct {
		Pose Pose `json:"pose"`
	} `json:"pose"`
	Twist struct {
		Twist struct {
			Linear  Vector3 `json:"linear"`
			Angular Vector3 `json:"angular"`
		} `json:"twist"`
	} `json:"twist"`
}

// Kind implements Message.
func (m *Odometry) Kind() Kind { return KindOdometry }

// Transform is one frame-to-frame relationship.
type Transform struct {
	Translation Vector3    `json:"translation"`
	Rotation    Quaternion `json:"rotation"`
}

// TransformStamped attaches a transform to its parent frame and child frame.
type TransformStamped struct {
	Header       Header    `json:"header"`
	ChildFrameID string    `json:"child_frame_id"`
	Transform    Transform `json:"transform"`
}

// TFMessage is a batch of frame transforms.
type TFMessage struct {
	Transforms []TransformStamped `json:"transforms"`
}

// Kind implements Message.
func (m *TFMessage) Kind() Kind { return KindTransform }

// Marker is a minimal display marker; the pipeline forwards it unmodified.
type Marker struct {
	Header Header  `json:"header"`
	NS     string  `json:"ns"`
	ID     int32   `json:"id"`
	Type   int32   `json:"type"`
	Action int32   `json:"action"`
	Pose   Pose    `json:"pose"`
	Scale  Vector3 `json:"scale"`
}

// Kind implements Message.
func (m *Marker) Kind() Kind { return KindMarker }

// Image is a raw sensor image; the pipeline only gates on shape.
type Image struct {
	Header   Header   `json:"header"`
	Height   uint32   `json:"height"`
	Width    uint32   `json:"width"`
	Encoding string   `json:"encoding"`
	Step     uint32   `json:"step"`
	Data     RawBytes `json:"data"`
}

// Kind implements Message.
func (m *Image) Kind() Kind { return KindImage }

// Envelope is one received payload with its arrival metadata. Format records
// the encoding the transport delivered ("json", "cbor", "raw").
type Envelope struct {
	Payload    Message
	Format     string
	ReceivedAt time.Time
}
