// Package frames tracks named coordinate frames, their expiry, and the
// frame forest used to resolve sensor data into a fixed reference frame.
package frames

import (
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/viz/spatialmath"
)

// ErrFrameNotFound is returned when a frame name has no recorded transform.
// Callers must treat it as "no pose available" and skip rendering, not as a
// fault.
var ErrFrameNotFound = errors.New("frame not found")

func newFrameNotFoundError(name string) error {
	return errors.Wrapf(ErrFrameNotFound, "frame %q", name)
}

// TransformFrame is one named coordinate frame relative to its parent.
// Static frames never expire; dynamic frames go stale once LastUpdate falls
// behind the configured timeout.
type TransformFrame struct {
	Name        string
	Parent      string
	Translation r3.Vector
	Rotation    quat.Number
	LastUpdate  time.Time
	Static      bool
}

// Pose returns the frame's transform relative to its parent as a pose.
func (f TransformFrame) Pose() spatialmath.Pose {
	return spatialmath.NewPose(f.Translation, f.Rotation)
}

// Age returns how long ago the frame was last refreshed.
func (f TransformFrame) Age(now time.Time) time.Duration {
	return now.Sub(f.LastUpdate)
}

// Valid reports whether the frame may still be used at the given time.
func (f TransformFrame) Valid(now time.Time, timeout time.Duration) bool {
	return f.Static || f.Age(now) < timeout
}

// Info is the read-only frame summary exposed to UI collaborators.
type Info struct {
	Parent string
	Age    time.Duration
	Exists bool
}
