package wire

import "github.com/pkg/errors"

// Structural validity checks. A payload that fails its check still counts
// toward message liveness but never reaches a decoder or the message queue.

// Validate implements Message.
func (m *OccupancyGrid) Validate() error {
	if m.Info == nil {
		return errors.New("occupancy grid missing info")
	}
	if len(m.Data) == 0 {
		return errors.New("occupancy grid has no cell data")
	}
	return nil
}

// Validate implements Message.
func (m *PointCloud2) Validate() error {
	if len(m.Fields) == 0 {
		return errors.New("pointcloud2 missing field table")
	}
	if m.PointStep == 0 {
		return errors.New("pointcloud2 has zero point_step")
	}
	if len(m.Data) == 0 {
		return errors.New("pointcloud2 has no data")
	}
	return nil
}

// Validate implements Message.
func (m *PointCloud) Validate() error {
	if len(m.Points) == 0 {
		return errors.New("pointcloud has no points")
	}
	return nil
}

// Validate implements Message.
func (m *LaserScan) Validate() error {
	if len(m.Ranges) == 0 {
		return errors.New("laser scan has no ranges")
	}
	return nil
}

// Validate implements Message.
func (m *Path) Validate() error {
	if len(m.Poses) == 0 {
		return errors.New("path has no poses")
	}
	return nil
}

// Validate implements Message.
func (m *Odometry) Validate() error {
	if m.Header.FrameID == "" {
		return errors.New("odometry missing frame id")
	}
	return nil
}

// Validate implements Message.
func (m *TFMessage) Validate() error {
	if len(m.Transforms) == 0 {
		return errors.New("tf message has no transforms")
	}
	for _, t := range m.Transforms {
		if t.ChildFrameID == "" {
			return errors.New("tf transform missing child frame id")
		}
	}
	return nil
}

// Validate implements Message.
func (m *Marker) Validate() error {
	if m.Type < 0 {
		return errors.New("marker has negative type")
	}
	return nil
}

// Validate implements Message.
func (m *Image) Validate() error {
	if m.Width == 0 || m.Height == 0 {
		return errors.New("image has zero dimensions")
	}
	if len(m.Data) == 0 {
		return errors.New("image has no data")
	}
	return nil
}
