package frames

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/viz/logging"
	"go.viam.com/viz/spatialmath"
	"go.viam.com/viz/wire"
)

func newTestStore(t *testing.T, cfg StoreConfig) (*Store, *clock.Mock) {
	t.Helper()
	mockClock := clock.NewMock()
	return NewStore(cfg, mockClock, logging.NewTestLogger(t)), mockClock
}

func TestStoreLookup(t *testing.T) {
	store, _ := newTestStore(t, StoreConfig{})

	_, err := store.Lookup("base_link")
	test.That(t, errors.Is(err, ErrFrameNotFound), test.ShouldBeTrue)

	store.Update(TransformFrame{
		Name:        "base_link",
		Parent:      "map",
		Translation: r3.Vector{X: 2},
	})
	frame, err := store.Lookup("base_link")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Parent, test.ShouldEqual, "map")
	test.That(t, frame.Translation.X, test.ShouldEqual, 2)
}

func TestStoreVersionBumps(t *testing.T) {
	store, _ := newTestStore(t, StoreConfig{})
	v0 := store.Version()

	store.Update(TransformFrame{Name: "laser"})
	test.That(t, store.Version(), test.ShouldBeGreaterThan, v0)

	v1 := store.Version()
	store.SetFixedFrame("odom")
	test.That(t, store.Version(), test.ShouldBeGreaterThan, v1)
	test.That(t, store.FixedFrame(), test.ShouldEqual, "odom")
}

func TestExpireStaleSkipsStatic(t *testing.T) {
	store, mockClock := newTestStore(t, StoreConfig{Timeout: 2 * time.Second})

	store.Update(TransformFrame{Name: "laser"})
	store.Update(TransformFrame{Name: "base_link", Static: true})

	mockClock.Add(3 * time.Second)
	test.That(t, store.ExpireStale(), test.ShouldEqual, 1)

	_, err := store.Lookup("laser")
	test.That(t, errors.Is(err, ErrFrameNotFound), test.ShouldBeTrue)
	_, err = store.Lookup("base_link")
	test.That(t, err, test.ShouldBeNil)
}

func TestExpirySweepLoop(t *testing.T) {
	store, mockClock := newTestStore(t, StoreConfig{
		Timeout:       2 * time.Second,
		SweepInterval: time.Second,
	})
	defer store.Close()

	store.Update(TransformFrame{Name: "laser"})
	store.StartExpiry()

	// Let the sweeper block on its first tick before advancing time.
	time.Sleep(10 * time.Millisecond)
	for i := 0; i < 4; i++ {
		mockClock.Add(time.Second)
		time.Sleep(10 * time.Millisecond)
	}

	_, err := store.Lookup("laser")
	test.That(t, errors.Is(err, ErrFrameNotFound), test.ShouldBeTrue)
}

func TestPoseInFixedFrame(t *testing.T) {
	store, _ := newTestStore(t, StoreConfig{FixedFrame: "map"})

	// The fixed frame resolves to the identity.
	pose, err := store.PoseInFixedFrame("map")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.AlmostEqual(spatialmath.NewZeroPose(), 1e-9), test.ShouldBeTrue)

	_, err = store.PoseInFixedFrame("missing")
	test.That(t, errors.Is(err, ErrFrameNotFound), test.ShouldBeTrue)

	store.Update(TransformFrame{Name: "lidar", Parent: "map", Translation: r3.Vector{Z: 1}})
	pose, err = store.PoseInFixedFrame("lidar")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.Point.Z, test.ShouldEqual, 1)
}

func TestUpdateFromTF(t *testing.T) {
	store, _ := newTestStore(t, StoreConfig{})

	msg := &wire.TFMessage{Transforms: []wire.TransformStamped{
		{
			Header:       wire.Header{FrameID: "map"},
			ChildFrameID: "odom",
			Transform: wire.Transform{
				Translation: wire.Vector3{X: 1, Y: 2},
				Rotation:    wire.Quaternion{W: 1},
			},
		},
	}}
	store.UpdateFromTF(msg, false)

	frame, err := store.Lookup("odom")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, frame.Parent, test.ShouldEqual, "map")
	test.That(t, frame.Translation, test.ShouldResemble, r3.Vector{X: 1, Y: 2})
	test.That(t, frame.Static, test.ShouldBeFalse)
}

func TestFrameInfo(t *testing.T) {
	store, mockClock := newTestStore(t, StoreConfig{})

	info := store.FrameInfo("ghost")
	test.That(t, info.Exists, test.ShouldBeFalse)

	store.Update(TransformFrame{Name: "cam", Parent: "base_link"})
	mockClock.Add(5 * time.Second)
	info = store.FrameInfo("cam")
	test.That(t, info.Exists, test.ShouldBeTrue)
	test.That(t, info.Parent, test.ShouldEqual, "base_link")
	test.That(t, info.Age, test.ShouldEqual, 5*time.Second)
}

func TestClear(t *testing.T) {
	store, _ := newTestStore(t, StoreConfig{})
	store.Update(TransformFrame{Name: "a", Static: true})
	store.Update(TransformFrame{Name: "b"})
	store.Clear()

	_, err := store.Lookup("a")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = store.Lookup("b")
	test.That(t, err, test.ShouldNotBeNil)
}
