package wire

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
)

// Fingerprints are cheap content summaries used to skip redundant decode
// work. They are O(metadata) on purpose: dimensions, header stamps, and a few
// sampled bytes, never a full pass over the payload.

const fingerprintSamples = 8

type fingerprinter struct {
	h hash.Hash64
}

func newFingerprinter() fingerprinter {
	return fingerprinter{h: fnv.New64a()}
}

func (fp fingerprinter) addUint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	fp.h.Write(buf[:])
}

func (fp fingerprinter) addFloat(v float64) {
	fp.addUint64(math.Float64bits(v))
}

func (fp fingerprinter) addString(s string) {
	fp.h.Write([]byte(s))
}

// addSampled hashes up to fingerprintSamples bytes spread evenly over data.
func (fp fingerprinter) addSampled(data []byte) {
	fp.addUint64(uint64(len(data)))
	if len(data) == 0 {
		return
	}
	stride := len(data) / fingerprintSamples
	if stride == 0 {
		stride = 1
	}
	for i := 0; i < len(data); i += stride {
		fp.h.Write(data[i : i+1])
	}
}

func (fp fingerprinter) sum() uint64 {
	return fp.h.Sum64()
}

func stampFingerprint(fp fingerprinter, s Stamp) {
	fp.addUint64(uint64(s.Sec))
	fp.addUint64(uint64(s.Nsec))
}

// Fingerprint implements Message.
func (m *OccupancyGrid) Fingerprint() uint64 {
	fp := newFingerprinter()
	stampFingerprint(fp, m.Header.Stamp)
	if m.Info != nil {
		fp.addUint64(uint64(m.Info.Width))
		fp.addUint64(uint64(m.Info.Height))
		fp.addFloat(m.Info.Resolution)
		fp.addFloat(m.Info.Origin.Position.X)
		fp.addFloat(m.Info.Origin.Position.Y)
	}
	cells := make([]byte, 0, fingerprintSamples)
	if n := len(m.Data); n > 0 {
		stride := n/fingerprintSamples + 1
		for i := 0; i < n; i += stride {
			cells = append(cells, byte(m.Data[i]))
		}
	}
	fp.addUint64(uint64(len(m.Data)))
	fp.addSampled(cells)
	return fp.sum()
}

// Fingerprint implements Message.
func (m *PointCloud2) Fingerprint() uint64 {
	fp := newFingerprinter()
	stampFingerprint(fp, m.Header.Stamp)
	fp.addUint64(uint64(m.Width))
	fp.addUint64(uint64(m.Height))
	fp.addUint64(uint64(m.PointStep))
	fp.addSampled(m.Data)
	return fp.sum()
}

// Fingerprint implements Message.
func (m *PointCloud) Fingerprint() uint64 {
	fp := newFingerprinter()
	stampFingerprint(fp, m.Header.Stamp)
	fp.addUint64(uint64(len(m.Points)))
	if n := len(m.Points); n > 0 {
		fp.addFloat(m.Points[0].X)
		fp.addFloat(m.Points[n/2].Y)
		fp.addFloat(m.Points[n-1].Z)
	}
	return fp.sum()
}

// Fingerprint implements Message.
func (m *LaserScan) Fingerprint() uint64 {
	fp := newFingerprinter()
	stampFingerprint(fp, m.Header.Stamp)
	fp.addFloat(m.AngleMin)
	fp.addFloat(m.AngleIncrement)
	fp.addUint64(uint64(len(m.Ranges)))
	if n := len(m.Ranges); n > 0 {
		fp.addFloat(m.Ranges[0])
		fp.addFloat(m.Ranges[n/2])
		fp.addFloat(m.Ranges[n-1])
	}
	return fp.sum()
}

// Fingerprint implements Message.
func (m *Path) Fingerprint() uint64 {
	fp := newFingerprinter()
	stampFingerprint(fp, m.Header.Stamp)
	fp.addUint64(uint64(len(m.Poses)))
	if n := len(m.Poses); n > 0 {
		last := m.Poses[n-1].Pose.Position
		fp.addFloat(last.X)
		fp.addFloat(last.Y)
		fp.addFloat(last.Z)
	}
	return fp.sum()
}

// Fingerprint implements Message.
func (m *Odometry) Fingerprint() uint64 {
	fp := newFingerprinter()
	stampFingerprint(fp, m.Header.Stamp)
	fp.addString(m.Header.FrameID)
	fp.addFloat(m.Pose.Pose.Position.X)
	fp.addFloat(m.Pose.Pose.Position.Y)
	fp.addFloat(m.Pose.Pose.Position.Z)
	return fp.sum()
}

// Fingerprint implements Message.
func (m *TFMessage) Fingerprint() uint64 {
	fp := newFingerprinter()
	fp.addUint64(uint64(len(m.Transforms)))
	for _, t := range m.Transforms {
		stampFingerprint(fp, t.Header.Stamp)
		fp.addString(t.ChildFrameID)
	}
	return fp.sum()
}

// Fingerprint implements Message.
func (m *Marker) Fingerprint() uint64 {
	fp := newFingerprinter()
	stampFingerprint(fp, m.Header.Stamp)
	fp.addString(m.NS)
	fp.addUint64(uint64(m.ID))
	fp.addUint64(uint64(m.Type))
	return fp.sum()
}

// Fingerprint implements Message.
func (m *Image) Fingerprint() uint64 {
	fp := newFingerprinter()
	stampFingerprint(fp, m.Header.Stamp)
	fp.addUint64(uint64(m.Width))
	fp.addUint64(uint64(m.Height))
	fp.addSampled(m.Data)
	return fp.sum()
}
