package main

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"go.viam.com/viz/logging"
	"go.viam.com/viz/utils"
	"go.viam.com/viz/wire"
)

type replaySub struct {
	onMessage func(wire.Envelope)
	onError   func(error)
}

// replayTransport is a lab-bench transport: it synthesizes a robot driving a
// circle through a small world and publishes the matching tf, map, scan,
// cloud, and odometry streams to whoever subscribed.
type replayTransport struct {
	mu   sync.Mutex
	subs map[string]replaySub

	rate    time.Duration
	tick    int
	clock   clock.Clock
	workers *utils.StoppableWorkers
	logger  logging.Logger
}

func newReplayTransport(rate time.Duration, logger logging.Logger) *replayTransport {
	return &replayTransport{
		subs:    map[string]replaySub{},
		rate:    rate,
		clock:   clock.New(),
		workers: utils.NewStoppableWorkers(),
		logger:  logger,
	}
}

func (rt *replayTransport) Connected() bool { return true }

func (rt *replayTransport) Subscribe(
	topic, wireType string,
	queueSize int,
	onMessage func(wire.Envelope),
	onError func(error),
) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.subs[topic] = replaySub{onMessage: onMessage, onError: onError}
	if rt.logger != nil {
		rt.logger.Debugw("subscribed", "topic", topic, "type", wireType, "queue", queueSize)
	}
	return nil
}

func (rt *replayTransport) Unsubscribe(topic string) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.subs, topic)
	return nil
}

// Start begins publishing. Static transforms go out once; everything else
// repeats at the configured rate.
func (rt *replayTransport) Start() {
	rt.workers.Add(func(ctx context.Context) {
		rt.publish("/tf_static", staticTransforms())
		ticker := rt.clock.Ticker(rt.rate)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				rt.step()
			}
		}
	})
}

func (rt *replayTransport) Close() error {
	rt.workers.Stop()
	return nil
}

func (rt *replayTransport) publish(topic string, msg wire.Message) {
	rt.mu.Lock()
	sub, ok := rt.subs[topic]
	rt.mu.Unlock()
	if ok {
		sub.onMessage(wire.Envelope{Payload: msg, Format: "json"})
	}
}

// step advances the simulated robot one tick around its circle and publishes
// every stream.
func (rt *replayTransport) step() {
	rt.tick++
	theta := float64(rt.tick) * 0.05
	x, y := 2*math.Cos(theta), 2*math.Sin(theta)

	rt.publish("/tf", &wire.TFMessage{Transforms: []wire.TransformStamped{{
		Header:       wire.Header{FrameID: "map", Seq: uint32(rt.tick)},
		ChildFrameID: "base_link",
		Transform: wire.Transform{
			Translation: wire.Vector3{X: x, Y: y},
			Rotation:    yawQuaternion(theta + math.Pi/2),
		},
	}}})

	odom := &wire.Odometry{Header: wire.Header{FrameID: "map", Seq: uint32(rt.tick)}}
	odom.ChildFrameID = "base_link"
	odom.Pose.Pose.Position = wire.Vector3{X: x, Y: y}
	odom.Pose.Pose.Orientation = yawQuaternion(theta + math.Pi/2)
	rt.publish("/odom", odom)

	rt.publish("/scan", syntheticScan(rt.tick))
	rt.publish("/points", syntheticCloud(rt.tick))

	// The map refreshes slowly, as a real SLAM stack would.
	if rt.tick%20 == 1 {
		rt.publish("/map", syntheticGrid(rt.tick))
	}
}

func staticTransforms() *wire.TFMessage {
	return &wire.TFMessage{Transforms: []wire.TransformStamped{{
		Header:       wire.Header{FrameID: "base_link"},
		ChildFrameID: "laser",
		Transform: wire.Transform{
			Translation: wire.Vector3{Z: 0.1},
			Rotation:    wire.Quaternion{W: 1},
		},
	}}}
}

func yawQuaternion(theta float64) wire.Quaternion {
	return wire.Quaternion{W: math.Cos(theta / 2), Z: math.Sin(theta / 2)}
}

func syntheticScan(tick int) *wire.LaserScan {
	const rays = 90
	ranges := make([]float64, rays)
	intensities := make([]float64, rays)
	for i := range ranges {
		phase := float64(i)/rays*2*math.Pi + float64(tick)*0.05
		ranges[i] = 3 + math.Sin(phase)
		intensities[i] = 100 * (0.5 + 0.5*math.Cos(phase))
	}
	return &wire.LaserScan{
		Header:         wire.Header{FrameID: "laser", Seq: uint32(tick)},
		AngleMin:       -math.Pi,
		AngleMax:       math.Pi,
		AngleIncrement: 2 * math.Pi / rays,
		RangeMin:       0.1,
		RangeMax:       10,
		Ranges:         ranges,
		Intensities:    intensities,
	}
}

// syntheticCloud packs a rippling sheet of points into the binary
// PointCloud2 layout: four little-endian float32 fields per point.
func syntheticCloud(tick int) *wire.PointCloud2 {
	const side = 8
	const pointStep = 16
	data := make([]byte, side*side*pointStep)
	i := 0
	for gx := 0; gx < side; gx++ {
		for gy := 0; gy < side; gy++ {
			px := float32(gx) * 0.25
			py := float32(gy) * 0.25
			pz := float32(0.2 * math.Sin(float64(gx+gy)*0.5+float64(tick)*0.1))
			intensity := float32(gx * gy)
			binary.LittleEndian.PutUint32(data[i:], math.Float32bits(px))
			binary.LittleEndian.PutUint32(data[i+4:], math.Float32bits(py))
			binary.LittleEndian.PutUint32(data[i+8:], math.Float32bits(pz))
			binary.LittleEndian.PutUint32(data[i+12:], math.Float32bits(intensity))
			i += pointStep
		}
	}
	return &wire.PointCloud2{
		Header:    wire.Header{FrameID: "base_link", Seq: uint32(tick)},
		Height:    1,
		Width:     side * side,
		PointStep: pointStep,
		RowStep:   side * side * pointStep,
		Fields: []wire.PointField{
			{Name: "x", Offset: 0, Datatype: 7, Count: 1},
			{Name: "y", Offset: 4, Datatype: 7, Count: 1},
			{Name: "z", Offset: 8, Datatype: 7, Count: 1},
			{Name: "intensity", Offset: 12, Datatype: 7, Count: 1},
		},
		Data: wire.RawBytes(data),
	}
}

func syntheticGrid(tick int) *wire.OccupancyGrid {
	const side = 32
	data := make([]int8, side*side)
	for i := range data {
		gx, gy := i%side, i/side
		switch {
		case gx == 0 || gy == 0 || gx == side-1 || gy == side-1:
			data[i] = 100
		case (gx+gy+tick/20)%11 == 0:
			data[i] = 60
		default:
			data[i] = 0
		}
	}
	return &wire.OccupancyGrid{
		Header: wire.Header{FrameID: "map", Seq: uint32(tick)},
		Info: &wire.MapMetaData{
			Resolution: 0.1,
			Width:      side,
			Height:     side,
			Origin: wire.Pose{
				Position:    wire.Vector3{X: -1.6, Y: -1.6},
				Orientation: wire.Quaternion{W: 1},
			},
		},
		Data: data,
	}
}
