package frames

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/atomic"

	"go.viam.com/viz/logging"
	"go.viam.com/viz/spatialmath"
	"go.viam.com/viz/utils"
	"go.viam.com/viz/wire"
)

// Defaults for the store configuration.
const (
	DefaultTimeout       = 15 * time.Second
	DefaultSweepInterval = time.Second
	DefaultFixedFrame    = "map"
)

// StoreConfig configures a Store. Zero values fall back to the defaults.
type StoreConfig struct {
	// Timeout is how long a dynamic frame stays valid after its last update.
	Timeout time.Duration
	// SweepInterval is how often the background sweep drops expired frames.
	SweepInterval time.Duration
	// FixedFrame is the reference frame renderable geometry resolves against.
	FixedFrame string
}

func (cfg *StoreConfig) fillDefaults() {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.FixedFrame == "" {
		cfg.FixedFrame = DefaultFixedFrame
	}
}

// Store holds every known transform frame. It is single-writer, many-reader:
// only Update, Clear, and the expiry sweep mutate it, and each mutation
// replaces whole frames so readers never observe a partial write.
type Store struct {
	mu            sync.RWMutex
	static        map[string]TransformFrame
	dynamic       map[string]TransformFrame
	timeout       time.Duration
	sweepInterval time.Duration
	fixedFrame    string

	version atomic.Int64
	clock   clock.Clock
	logger  logging.Logger
	sweeper *utils.StoppableWorkers
}

// NewStore returns an empty store. Pass clock.NewMock() in tests to control
// expiry.
func NewStore(cfg StoreConfig, clk clock.Clock, logger logging.Logger) *Store {
	cfg.fillDefaults()
	if clk == nil {
		clk = clock.New()
	}
	return &Store{
		static:        map[string]TransformFrame{},
		dynamic:       map[string]TransformFrame{},
		timeout:       cfg.Timeout,
		sweepInterval: cfg.SweepInterval,
		fixedFrame:    cfg.FixedFrame,
		clock:         clk,
		logger:        logger,
	}
}

// Update upserts a frame by name, stamping it with the current time and
// bumping the change version.
func (s *Store) Update(frame TransformFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame.LastUpdate = s.clock.Now()
	if frame.Static {
		s.static[frame.Name] = frame
	} else {
		s.dynamic[frame.Name] = frame
	}
	s.version.Inc()
}

// UpdateFromTF records every transform in a TF batch. The child frame takes
// its parent from the transform header.
func (s *Store) UpdateFromTF(msg *wire.TFMessage, static bool) {
	for _, t := range msg.Transforms {
		s.Update(TransformFrame{
			Name:        t.ChildFrameID,
			Parent:      t.Header.FrameID,
			Translation: t.Transform.Translation.AsR3(),
			Rotation: spatialmath.Normalize(spatialmath.NewQuaternion(
				t.Transform.Rotation.W,
				t.Transform.Rotation.X,
				t.Transform.Rotation.Y,
				t.Transform.Rotation.Z,
			)),
			Static: static,
		})
	}
}

// Lookup returns the recorded transform for a frame name. Static frames take
// precedence when both tables hold the name.
func (s *Store) Lookup(name string) (TransformFrame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if frame, ok := s.static[name]; ok {
		return frame, nil
	}
	if frame, ok := s.dynamic[name]; ok {
		return frame, nil
	}
	return TransformFrame{}, newFrameNotFoundError(name)
}

// PoseInFixedFrame resolves a frame to a pose usable by the renderer. The
// fixed frame itself resolves to the identity. Resolution is single hop: a
// frame's own recorded transform is used without composing the parent chain.
func (s *Store) PoseInFixedFrame(name string) (spatialmath.Pose, error) {
	s.mu.RLock()
	fixed := s.fixedFrame
	s.mu.RUnlock()
	if name == fixed || name == "" {
		return spatialmath.NewZeroPose(), nil
	}
	frame, err := s.Lookup(name)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	return frame.Pose(), nil
}

// FrameInfo returns the read-only summary for a frame name.
func (s *Store) FrameInfo(name string) Info {
	frame, err := s.Lookup(name)
	if err != nil {
		return Info{}
	}
	return Info{Parent: frame.Parent, Age: frame.Age(s.clock.Now()), Exists: true}
}

// ExpireStale drops every dynamic frame older than the timeout and returns
// how many were removed. Static frames are exempt.
func (s *Store) ExpireStale() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	removed := 0
	for name, frame := range s.dynamic {
		if frame.Age(now) > s.timeout {
			delete(s.dynamic, name)
			removed++
		}
	}
	if removed > 0 {
		s.version.Inc()
		if s.logger != nil {
			s.logger.Debugw("expired stale frames", "count", removed)
		}
	}
	return removed
}

// StartExpiry runs ExpireStale on the configured interval until Close. While
// the sweep is not running, stale frames accumulate unboundedly.
func (s *Store) StartExpiry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sweeper != nil {
		return
	}
	interval := s.sweepInterval
	s.sweeper = utils.NewStoppableWorkers(func(ctx context.Context) {
		ticker := s.clock.Ticker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.ExpireStale()
			}
		}
	})
}

// Close stops the expiry sweep.
func (s *Store) Close() {
	s.mu.Lock()
	sweeper := s.sweeper
	s.sweeper = nil
	s.mu.Unlock()
	if sweeper != nil {
		sweeper.Stop()
	}
}

// Clear removes every frame, static included.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.static = map[string]TransformFrame{}
	s.dynamic = map[string]TransformFrame{}
	s.version.Inc()
}

// Version returns a counter that increases whenever the store changes, so
// consumers can detect "something changed" without polling field by field.
func (s *Store) Version() int64 {
	return s.version.Load()
}

// SetTimeout adjusts how long dynamic frames stay valid.
func (s *Store) SetTimeout(timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timeout > 0 {
		s.timeout = timeout
	}
}

// Timeout returns the current dynamic-frame timeout.
func (s *Store) Timeout() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeout
}

// SetFixedFrame changes the reference frame.
func (s *Store) SetFixedFrame(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name != "" {
		s.fixedFrame = name
		s.version.Inc()
	}
}

// FixedFrame returns the reference frame name.
func (s *Store) FixedFrame() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fixedFrame
}

// Snapshot copies the static and dynamic tables plus all frame names, for
// handing to the pure tree builder.
func (s *Store) Snapshot() (static, dynamic map[string]TransformFrame, names []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	static = make(map[string]TransformFrame, len(s.static))
	dynamic = make(map[string]TransformFrame, len(s.dynamic))
	names = make([]string, 0, len(s.static)+len(s.dynamic))
	for name, frame := range s.static {
		static[name] = frame
		names = append(names, name)
	}
	for name, frame := range s.dynamic {
		dynamic[name] = frame
		if _, ok := s.static[name]; !ok {
			names = append(names, name)
		}
	}
	return static, dynamic, names
}

// BuildTree snapshots the store and builds the current frame forest.
func (s *Store) BuildTree() *Tree {
	static, dynamic, names := s.Snapshot()
	return BuildTree(static, dynamic, names, s.clock.Now(), s.Timeout())
}
