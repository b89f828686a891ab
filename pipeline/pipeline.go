// Package pipeline connects the subscription manager, frame store, and
// decode scheduler into one sensor-to-renderer data path. Payload arrival,
// pose resolution, and request submission all happen on the transport
// callback; only the decode itself runs on scheduler workers.
package pipeline

import (
	"context"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"go.viam.com/viz/decode"
	"go.viam.com/viz/frames"
	"go.viam.com/viz/logging"
	"go.viam.com/viz/sched"
	"go.viam.com/viz/subscription"
	"go.viam.com/viz/utils"
	"go.viam.com/viz/wire"
)

// DefaultUpdateBuffer bounds the updates channel. A slow consumer drops the
// oldest pending update rather than blocking the pipeline.
const DefaultUpdateBuffer = 16

// DefaultPoseHistoryLimit bounds per-component odometry trails.
const DefaultPoseHistoryLimit = 200

// Update is one renderable result. Exactly one of Buffer, Markers, or Raw is
// populated, depending on the component kind that produced it.
type Update struct {
	ComponentID string
	// Buffer carries decoded geometry or texture data for map, scan, and
	// cloud components. Ownership transfers to the receiver.
	Buffer *decode.DecodedBuffer
	// Markers carries drawable descriptors for odometry, path, and frame
	// marker output.
	Markers *decode.MarkerList
	// Raw passes marker and image payloads through untouched; the renderer
	// interprets them directly.
	Raw *wire.Envelope
}

// ComponentOptions configures one display component's decode behaviour.
// Zero values are usable for every component kind.
type ComponentOptions struct {
	QueueSize int

	Grid  decode.OccupancyGridConfig
	Cloud decode.PointCloudConfig
	Scan  decode.LaserScanConfig
	Pose  decode.PoseHistoryConfig

	// PoseHistoryLimit bounds the odometry trail. Zero uses the default.
	PoseHistoryLimit int

	// StaticTransforms marks a tf component as a latched static source whose
	// frames never expire.
	StaticTransforms bool
}

// Config configures a Pipeline. Zero values fall back to the package
// defaults of each stage.
type Config struct {
	Frames       frames.StoreConfig
	Scheduler    sched.Config
	Subscription subscription.Config
	UpdateBuffer int
}

type component struct {
	id            string
	componentType subscription.ComponentType
	opts          ComponentOptions
	history       *decode.PoseHistory
}

// Pipeline owns one store, one scheduler, and one manager, and routes every
// accepted payload to the right consumer: tf batches into the store,
// everything else through a decoder to the updates channel.
type Pipeline struct {
	mu         sync.Mutex
	components map[string]*component

	store     *frames.Store
	scheduler *sched.Scheduler
	manager   *subscription.Manager

	updates chan Update
	workers *utils.StoppableWorkers
	clock   clock.Clock
	logger  logging.Logger
}

// New returns a running pipeline over the given transport. The frame expiry
// sweep and decode workers start immediately.
func New(cfg Config, transport subscription.Transport, clk clock.Clock, logger logging.Logger) *Pipeline {
	if clk == nil {
		clk = clock.New()
	}
	if cfg.UpdateBuffer <= 0 {
		cfg.UpdateBuffer = DefaultUpdateBuffer
	}
	p := &Pipeline{
		components: map[string]*component{},
		store:      frames.NewStore(cfg.Frames, clk, logger),
		scheduler:  sched.New(cfg.Scheduler, clk, logger),
		manager:    subscription.NewManager(cfg.Subscription, transport, clk, logger),
		updates:    make(chan Update, cfg.UpdateBuffer),
		workers:    utils.NewStoppableWorkers(),
		clock:      clk,
		logger:     logger,
	}
	p.store.StartExpiry()
	p.manager.SetOnPayload(p.handlePayload)
	return p
}

// Store exposes the frame store for fixed-frame configuration and tree
// inspection.
func (p *Pipeline) Store() *frames.Store { return p.store }

// Manager exposes the subscription manager for status queries.
func (p *Pipeline) Manager() *subscription.Manager { return p.manager }

// Updates is the stream of renderable results. The channel is never closed
// while the pipeline is open; a full buffer drops the oldest pending update.
func (p *Pipeline) Updates() <-chan Update { return p.updates }

// AddComponent registers a display component and subscribes it to its topic.
// Re-adding an existing id reuses the subscription when topic and options
// allow, per the manager's idempotency rules.
func (p *Pipeline) AddComponent(
	id string,
	componentType subscription.ComponentType,
	topic string,
	opts ComponentOptions,
) bool {
	p.mu.Lock()
	comp, ok := p.components[id]
	if !ok {
		comp = &component{id: id, componentType: componentType}
		p.components[id] = comp
	}
	comp.componentType = componentType
	comp.opts = opts
	if componentType == subscription.ComponentOdometry && comp.history == nil {
		limit := opts.PoseHistoryLimit
		if limit <= 0 {
			limit = DefaultPoseHistoryLimit
		}
		comp.history = decode.NewPoseHistory(limit)
	}
	p.mu.Unlock()

	return p.manager.Subscribe(id, componentType, topic, opts.QueueSize)
}

// RemoveComponent unsubscribes and forgets a component. Idempotent.
func (p *Pipeline) RemoveComponent(id string) {
	p.manager.Unsubscribe(id)
	p.mu.Lock()
	delete(p.components, id)
	p.mu.Unlock()
}

// FrameMarkers builds axis-triad and connection markers for every currently
// valid frame in the store's forest.
func (p *Pipeline) FrameMarkers(cfg decode.FrameMarkerConfig) decode.MarkerList {
	tree := p.store.BuildTree()
	poses := make([]decode.FramePose, 0, len(tree.Nodes))
	for _, name := range sortedNodeNames(tree) {
		node := tree.Nodes[name]
		if !node.Valid {
			continue
		}
		fp := decode.FramePose{Name: node.Name, Pose: node.Pose, Parent: node.Parent}
		if parent, ok := tree.Nodes[node.Parent]; ok && node.Parent != node.Name {
			fp.HasParent = true
			fp.ParentPose = parent.Pose
		}
		poses = append(poses, fp)
	}
	return decode.GenerateFrameMarkers(poses, cfg)
}

// Close stops every stage. Pending decode results are dropped.
func (p *Pipeline) Close() {
	p.manager.Close()
	p.scheduler.Close()
	p.store.Close()
	p.workers.Stop()
}

// handlePayload runs on the transport callback after the manager accepted a
// payload. Pose resolution happens here so decode closures stay pure.
func (p *Pipeline) handlePayload(componentID string) {
	env, ok := p.manager.GetLatest(componentID)
	if !ok || env.Payload == nil {
		return
	}
	p.mu.Lock()
	comp, ok := p.components[componentID]
	if !ok {
		p.mu.Unlock()
		return
	}
	componentType := comp.componentType
	opts := comp.opts
	history := comp.history
	p.mu.Unlock()

	switch componentType {
	case subscription.ComponentTF:
		if msg, ok := env.Payload.(*wire.TFMessage); ok {
			p.store.UpdateFromTF(msg, opts.StaticTransforms)
		}
	case subscription.ComponentOdometry:
		p.handleOdometry(componentID, env, opts, history)
	case subscription.ComponentPath:
		p.handlePath(componentID, env, opts)
	case subscription.ComponentMarker, subscription.ComponentImage:
		envCopy := env
		p.emit(Update{ComponentID: componentID, Raw: &envCopy})
	default:
		p.submitDecode(componentID, env, opts)
	}
}

func (p *Pipeline) handleOdometry(
	componentID string,
	env wire.Envelope,
	opts ComponentOptions,
	history *decode.PoseHistory,
) {
	msg, ok := env.Payload.(*wire.Odometry)
	if !ok || history == nil {
		return
	}
	history.Add(decode.PoseSample{Pose: msg.Pose.Pose.AsPose(), Time: env.ReceivedAt})
	markers := decode.DecodePoseHistory(history.Samples(), opts.Pose)
	p.emit(Update{ComponentID: componentID, Markers: &markers})
}

func (p *Pipeline) handlePath(componentID string, env wire.Envelope, opts ComponentOptions) {
	msg, ok := env.Payload.(*wire.Path)
	if !ok {
		return
	}
	samples := make([]decode.PoseSample, 0, len(msg.Poses))
	for _, ps := range msg.Poses {
		samples = append(samples, decode.PoseSample{
			Pose: ps.Pose.AsPose(),
			Time: ps.Header.Stamp.AsTime(),
		})
	}
	markers := decode.DecodePoseHistory(samples, opts.Pose)
	p.emit(Update{ComponentID: componentID, Markers: &markers})
}

// submitDecode resolves the payload's frame, builds a pure decode closure,
// and hands it to the scheduler. An unknown frame skips the render quietly;
// the next tf update will bring the component back.
func (p *Pipeline) submitDecode(componentID string, env wire.Envelope, opts ComponentOptions) {
	frameID := payloadFrameID(env.Payload)
	pose, err := p.store.PoseInFixedFrame(frameID)
	if err != nil {
		if errors.Is(err, frames.ErrFrameNotFound) {
			if p.logger != nil {
				p.logger.Debugw("skipping render, frame unavailable",
					"component", componentID, "frame", frameID)
			}
			return
		}
		if p.logger != nil {
			p.logger.Warnw("pose resolution failed", "component", componentID, "error", err)
		}
		return
	}

	var decodeFunc func(ctx context.Context) (*decode.DecodedBuffer, error)
	switch msg := env.Payload.(type) {
	case *wire.OccupancyGrid:
		decodeFunc = func(context.Context) (*decode.DecodedBuffer, error) {
			return decode.DecodeOccupancyGrid(msg, opts.Grid, pose)
		}
	case *wire.LaserScan:
		decodeFunc = func(context.Context) (*decode.DecodedBuffer, error) {
			return decode.DecodeLaserScan(msg, opts.Scan, pose)
		}
	case *wire.PointCloud:
		decodeFunc = func(context.Context) (*decode.DecodedBuffer, error) {
			return decode.DecodePointCloud(msg, opts.Cloud, pose)
		}
	case *wire.PointCloud2:
		decodeFunc = func(context.Context) (*decode.DecodedBuffer, error) {
			return decode.DecodePointCloud2(msg, opts.Cloud, pose)
		}
	default:
		return
	}

	results := p.scheduler.Submit(context.Background(), sched.Request{
		ComponentID: componentID,
		DecodeFunc:  decodeFunc,
	})
	p.workers.Add(func(ctx context.Context) {
		select {
		case <-ctx.Done():
		case result := <-results:
			p.forward(result)
		}
	})
}

// forward pushes one accepted decode result to the updates channel.
// Superseded and evicted results are expected churn and log at debug;
// timeouts and structural failures warn.
func (p *Pipeline) forward(result sched.Result) {
	if result.Err != nil {
		switch {
		case errors.Is(result.Err, sched.ErrSuperseded),
			errors.Is(result.Err, sched.ErrQueueFull),
			errors.Is(result.Err, sched.ErrClosed):
			if p.logger != nil {
				p.logger.Debugw("decode discarded",
					"component", result.ComponentID, "reason", result.Err)
			}
		default:
			if p.logger != nil {
				p.logger.Warnw("decode failed",
					"component", result.ComponentID, "error", result.Err)
			}
		}
		return
	}
	if result.Buffer == nil {
		// Degenerate but well-formed input: nothing to draw.
		return
	}
	p.emit(Update{ComponentID: result.ComponentID, Buffer: result.Buffer})
}

// emit delivers an update without ever blocking the data path. When the
// consumer lags, the oldest pending update is dropped first: a live display
// only needs the newest state.
func (p *Pipeline) emit(update Update) {
	for {
		select {
		case p.updates <- update:
			return
		default:
		}
		select {
		case stale := <-p.updates:
			if p.logger != nil {
				p.logger.Debugw("dropping stale update", "component", stale.ComponentID)
			}
		default:
		}
	}
}

func sortedNodeNames(tree *frames.Tree) []string {
	names := make([]string, 0, len(tree.Nodes))
	for name := range tree.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// payloadFrameID extracts the header frame for pose resolution.
func payloadFrameID(msg wire.Message) string {
	switch m := msg.(type) {
	case *wire.OccupancyGrid:
		return m.Header.FrameID
	case *wire.LaserScan:
		return m.Header.FrameID
	case *wire.PointCloud:
		return m.Header.FrameID
	case *wire.PointCloud2:
		return m.Header.FrameID
	default:
		return ""
	}
}
