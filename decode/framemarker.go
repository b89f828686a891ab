package decode

import (
	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/viz/spatialmath"
)

// Frame marker geometry defaults, in the same units as frame translations.
const (
	DefaultAxisLength = 0.2
	DefaultAxisRadius = 0.02
	// DefaultMinArrowDistance is the parent separation below which no
	// connecting arrow is emitted; closer than this the arrow would be
	// invisible noise.
	DefaultMinArrowDistance = 0.05
)

// Axis colors follow the usual convention: x red, y green, z blue.
var (
	axisColorX = colorful.Color{R: 1}
	axisColorY = colorful.Color{G: 1}
	axisColorZ = colorful.Color{B: 1}
	arrowColor = colorful.Color{R: 1, G: 1, B: 0.5}
)

// CylinderMarker is one oriented cylinder descriptor. Orientation rotates the
// canonical +Z cylinder axis onto the marker's axis.
type CylinderMarker struct {
	Center      r3.Vector
	Orientation quat.Number
	Length      float64
	Radius      float64
	Color       colorful.Color
}

// ArrowMarker is a line descriptor from one point to another.
type ArrowMarker struct {
	From  r3.Vector
	To    r3.Vector
	Color colorful.Color
}

// PointMarker is a single colored point descriptor.
type PointMarker struct {
	Position r3.Vector
	Color    colorful.Color
}

// MarkerList is the descriptor set the renderer draws directly.
type MarkerList struct {
	Cylinders []CylinderMarker
	Arrows    []ArrowMarker
	Points    []PointMarker
}

// FramePose is one resolved frame handed to the marker generator: its own
// pose plus, when known, its parent's.
type FramePose struct {
	Name       string
	Pose       spatialmath.Pose
	Parent     string
	HasParent  bool
	ParentPose spatialmath.Pose
}

// FrameMarkerConfig configures frame marker generation. Zero values use the
// defaults.
type FrameMarkerConfig struct {
	AxisLength       float64
	AxisRadius       float64
	MinArrowDistance float64
}

func (cfg *FrameMarkerConfig) fillDefaults() {
	if cfg.AxisLength <= 0 {
		cfg.AxisLength = DefaultAxisLength
	}
	if cfg.AxisRadius <= 0 {
		cfg.AxisRadius = DefaultAxisRadius
	}
	if cfg.MinArrowDistance <= 0 {
		cfg.MinArrowDistance = DefaultMinArrowDistance
	}
}

// GenerateFrameMarkers emits three axis cylinders per frame and, where a
// parent is known and far enough away, a parent-to-child arrow. All rotation
// is plain quaternion multiply/rotate from spatialmath, so the generator runs
// anywhere.
func GenerateFrameMarkers(poses []FramePose, cfg FrameMarkerConfig) MarkerList {
	cfg.fillDefaults()
	var list MarkerList
	for _, fp := range poses {
		list.Cylinders = append(list.Cylinders,
			axisCylinder(fp.Pose, r3.Vector{X: 1}, axisColorX, cfg),
			axisCylinder(fp.Pose, r3.Vector{Y: 1}, axisColorY, cfg),
			axisCylinder(fp.Pose, r3.Vector{Z: 1}, axisColorZ, cfg),
		)
		if !fp.HasParent {
			continue
		}
		delta := fp.Pose.Point.Sub(fp.ParentPose.Point)
		if delta.Norm() < cfg.MinArrowDistance {
			continue
		}
		list.Arrows = append(list.Arrows, ArrowMarker{
			From:  fp.ParentPose.Point,
			To:    fp.Pose.Point,
			Color: arrowColor,
		})
	}
	return list
}

// axisCylinder builds the cylinder for one local axis of a frame. The
// cylinder grows outward from the frame origin along the rotated axis.
func axisCylinder(pose spatialmath.Pose, localAxis r3.Vector, color colorful.Color, cfg FrameMarkerConfig) CylinderMarker {
	worldAxis := spatialmath.RotateVector(pose.Orientation, localAxis)
	return CylinderMarker{
		Center:      pose.Point.Add(worldAxis.Mul(cfg.AxisLength / 2)),
		Orientation: spatialmath.QuaternionBetweenVectors(r3.Vector{Z: 1}, worldAxis),
		Length:      cfg.AxisLength,
		Radius:      cfg.AxisRadius,
		Color:       color,
	}
}
