package decode

import (
	"time"

	"github.com/golang/geo/r3"
	"github.com/lucasb-eyer/go-colorful"

	"go.viam.com/viz/spatialmath"
)

// PoseShape selects the marker drawn for each historical pose sample.
type PoseShape int

// The supported pose history shapes.
const (
	ShapeAxes PoseShape = iota
	ShapeArrow
	ShapePoint
)

func (s PoseShape) String() string {
	switch s {
	case ShapeAxes:
		return "axes"
	case ShapeArrow:
		return "arrow"
	case ShapePoint:
		return "point"
	default:
		return "unknown"
	}
}

// PoseSample is one historical pose observation.
type PoseSample struct {
	Pose spatialmath.Pose
	Time time.Time
}

// PoseHistory is a bounded FIFO of pose samples. Adding past capacity drops
// the oldest sample.
type PoseHistory struct {
	samples []PoseSample
	limit   int
}

// NewPoseHistory returns a history that retains at most limit samples.
func NewPoseHistory(limit int) *PoseHistory {
	if limit <= 0 {
		limit = 1
	}
	return &PoseHistory{limit: limit}
}

// Add appends a sample, evicting the oldest once full.
func (h *PoseHistory) Add(sample PoseSample) {
	if len(h.samples) == h.limit {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:len(h.samples)-1]
	}
	h.samples = append(h.samples, sample)
}

// Samples returns the retained samples, oldest first. The returned slice is
// owned by the history; callers must not mutate it.
func (h *PoseHistory) Samples() []PoseSample {
	return h.samples
}

// Len returns how many samples are retained.
func (h *PoseHistory) Len() int {
	return len(h.samples)
}

// PoseHistoryConfig configures pose history marker generation.
type PoseHistoryConfig struct {
	Shape PoseShape
	// ArrowLength is the length of ShapeArrow markers along the pose's
	// forward (+X) axis. Zero uses the axis default.
	ArrowLength float64
	Axis        FrameMarkerConfig
	PointColor  colorful.Color
}

// DecodePoseHistory emits one marker per historical sample in the requested
// shape: full axis triads, forward arrows, or bare points.
func DecodePoseHistory(samples []PoseSample, cfg PoseHistoryConfig) MarkerList {
	var list MarkerList
	switch cfg.Shape {
	case ShapeAxes:
		poses := make([]FramePose, 0, len(samples))
		for _, s := range samples {
			poses = append(poses, FramePose{Pose: s.Pose})
		}
		list = GenerateFrameMarkers(poses, cfg.Axis)
	case ShapeArrow:
		length := cfg.ArrowLength
		if length <= 0 {
			length = DefaultAxisLength
		}
		for _, s := range samples {
			forward := spatialmath.RotateVector(s.Pose.Orientation, r3.Vector{X: 1})
			list.Arrows = append(list.Arrows, ArrowMarker{
				From:  s.Pose.Point,
				To:    s.Pose.Point.Add(forward.Mul(length)),
				Color: arrowColor,
			})
		}
	case ShapePoint:
		for _, s := range samples {
			list.Points = append(list.Points, PointMarker{
				Position: s.Pose.Point,
				Color:    cfg.PointColor,
			})
		}
	}
	return list
}
