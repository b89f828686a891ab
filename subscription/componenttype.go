// Package subscription owns one logical transport subscription per display
// component: bounded message history, payload validation, dedup, and
// throttled status notification.
package subscription

import "go.viam.com/viz/wire"

// ComponentType is the closed set of display component kinds.
type ComponentType int

// The known component types.
const (
	ComponentUnknown ComponentType = iota
	ComponentMap
	ComponentPath
	ComponentLaserScan
	ComponentPointCloud
	ComponentPointCloud2
	ComponentMarker
	ComponentImage
	ComponentOdometry
	ComponentTF
)

func (t ComponentType) String() string {
	switch t {
	case ComponentMap:
		return "map"
	case ComponentPath:
		return "path"
	case ComponentLaserScan:
		return "laserscan"
	case ComponentPointCloud:
		return "pointcloud"
	case ComponentPointCloud2:
		return "pointcloud2"
	case ComponentMarker:
		return "marker"
	case ComponentImage:
		return "image"
	case ComponentOdometry:
		return "odometry"
	case ComponentTF:
		return "tf"
	default:
		return "unknown"
	}
}

// wireTypes is the fixed component-to-wire-message-type table. A component
// type absent here is a configuration error, not a crash.
var wireTypes = map[ComponentType]string{
	ComponentMap:         "nav_msgs/OccupancyGrid",
	ComponentPath:        "nav_msgs/Path",
	ComponentLaserScan:   "sensor_msgs/LaserScan",
	ComponentPointCloud:  "sensor_msgs/PointCloud",
	ComponentPointCloud2: "sensor_msgs/PointCloud2",
	ComponentMarker:      "visualization_msgs/Marker",
	ComponentImage:       "sensor_msgs/Image",
	ComponentOdometry:    "nav_msgs/Odometry",
	ComponentTF:          "tf2_msgs/TFMessage",
}

// WireType returns the wire message type this component subscribes to.
func (t ComponentType) WireType() (string, bool) {
	wt, ok := wireTypes[t]
	return wt, ok
}

// PayloadKind returns the payload variant this component expects.
func (t ComponentType) PayloadKind() wire.Kind {
	switch t {
	case ComponentMap:
		return wire.KindOccupancyGrid
	case ComponentPath:
		return wire.KindPath
	case ComponentLaserScan:
		return wire.KindLaserScan
	case ComponentPointCloud:
		return wire.KindPointCloud
	case ComponentPointCloud2:
		return wire.KindPointCloud2
	case ComponentMarker:
		return wire.KindMarker
	case ComponentImage:
		return wire.KindImage
	case ComponentOdometry:
		return wire.KindOdometry
	case ComponentTF:
		return wire.KindTransform
	default:
		return wire.KindUnknown
	}
}
