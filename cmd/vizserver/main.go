// Package main runs the visualization pipeline against a synthetic replaying
// transport: a demo of the full sensor-to-renderer data path without a robot.
package main

import (
	"context"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"golang.org/x/sync/errgroup"

	"go.viam.com/viz/decode"
	"go.viam.com/viz/frames"
	"go.viam.com/viz/logging"
	"go.viam.com/viz/pipeline"
	"go.viam.com/viz/sched"
	"go.viam.com/viz/subscription"
)

var logger = logging.NewDebugLogger("vizserver")

func main() {
	goutils.ContextualMain(mainWithArgs, logger.AsZap())
}

// Arguments for the command.
type Arguments struct {
	FixedFrame string        `flag:"fixed-frame,usage=fixed reference frame name"`
	Workers    int           `flag:"workers,usage=decode worker count (0 decodes inline)"`
	Rate       time.Duration `flag:"rate,usage=synthetic publish interval"`
	Duration   time.Duration `flag:"duration,usage=how long to run (0 runs until interrupted)"`
}

func mainWithArgs(ctx context.Context, args []string, _ golog.Logger) error {
	var argsParsed Arguments
	if err := goutils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.FixedFrame == "" {
		argsParsed.FixedFrame = frames.DefaultFixedFrame
	}
	if argsParsed.Workers == 0 {
		argsParsed.Workers = 2
	}
	if argsParsed.Rate <= 0 {
		argsParsed.Rate = 100 * time.Millisecond
	}
	return runServer(ctx, argsParsed)
}

func runServer(ctx context.Context, args Arguments) (err error) {
	transport := newReplayTransport(args.Rate, logger.Sublogger("replay"))
	defer func() {
		err = multierr.Combine(err, transport.Close())
	}()

	p := pipeline.New(pipeline.Config{
		Frames:    frames.StoreConfig{FixedFrame: args.FixedFrame},
		Scheduler: sched.Config{Workers: args.Workers},
	}, transport, nil, logger)
	defer p.Close()

	addComponents(p)
	transport.Start()

	if args.Duration > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, args.Duration)
		defer cancel()
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return consumeUpdates(ctx, p)
	})
	group.Go(func() error {
		return reportStatus(ctx, p)
	})
	if waitErr := group.Wait(); waitErr != nil && !errors.Is(waitErr, context.Canceled) &&
		!errors.Is(waitErr, context.DeadlineExceeded) {
		return waitErr
	}
	return nil
}

func addComponents(p *pipeline.Pipeline) {
	p.AddComponent("tf", subscription.ComponentTF, "/tf", pipeline.ComponentOptions{})
	p.AddComponent("tf_static", subscription.ComponentTF, "/tf_static", pipeline.ComponentOptions{
		StaticTransforms: true,
	})
	p.AddComponent("map", subscription.ComponentMap, "/map", pipeline.ComponentOptions{})
	p.AddComponent("scan", subscription.ComponentLaserScan, "/scan", pipeline.ComponentOptions{
		Scan: decode.LaserScanConfig{
			Color:                      decode.ColorConfig{Transformer: decode.ColorIntensity},
			AutocomputeIntensityBounds: true,
		},
	})
	p.AddComponent("points", subscription.ComponentPointCloud2, "/points", pipeline.ComponentOptions{
		Cloud: decode.PointCloudConfig{
			Color:             decode.ColorConfig{Transformer: decode.ColorAxis, Axis: "z"},
			AutocomputeBounds: true,
		},
	})
	p.AddComponent("odom", subscription.ComponentOdometry, "/odom", pipeline.ComponentOptions{
		Pose: decode.PoseHistoryConfig{Shape: decode.ShapeArrow},
	})
}

func consumeUpdates(ctx context.Context, p *pipeline.Pipeline) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-p.Updates():
			switch {
			case update.Buffer != nil:
				logger.Debugw("buffer update",
					"component", update.ComponentID,
					"points", update.Buffer.PointCount,
					"texture_bytes", len(update.Buffer.Texture))
			case update.Markers != nil:
				logger.Debugw("marker update",
					"component", update.ComponentID,
					"cylinders", len(update.Markers.Cylinders),
					"arrows", len(update.Markers.Arrows),
					"points", len(update.Markers.Points))
			case update.Raw != nil:
				logger.Debugw("raw update", "component", update.ComponentID)
			}
		}
	}
}

func reportStatus(ctx context.Context, p *pipeline.Pipeline) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	components := []string{"tf", "tf_static", "map", "scan", "points", "odom"}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, id := range components {
				if status, ok := p.Manager().Status(id); ok {
					logger.Infow("component status",
						"component", id,
						"subscribed", status.Subscribed,
						"messages", status.MessageCount,
						"has_data", status.HasData,
						"error", status.Error)
				}
			}
			logger.Infof("frame tree:\n%s", p.Store().BuildTree().String())
		}
	}
}
