package subscription

import (
	"testing"

	"go.viam.com/test"

	"go.viam.com/viz/wire"
)

func scanEnv(stamp int64) wire.Envelope {
	return wire.Envelope{
		Payload: &wire.LaserScan{
			Header: wire.Header{Stamp: wire.Stamp{Sec: stamp}},
			Ranges: []float64{1},
		},
		Format: "json",
	}
}

func TestQueueBounding(t *testing.T) {
	q := newMessageQueue(3)

	// Push queueSize + k messages; exactly the last queueSize survive in
	// FIFO order.
	for i := int64(1); i <= 5; i++ {
		q.push(scanEnv(i))
	}
	test.That(t, q.len(), test.ShouldEqual, 3)

	stamps := []int64{}
	for _, env := range q.all() {
		scan := env.Payload.(*wire.LaserScan)
		stamps = append(stamps, scan.Header.Stamp.Sec)
	}
	test.That(t, stamps, test.ShouldResemble, []int64{3, 4, 5})

	latest, ok := q.latest()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, latest.Payload.(*wire.LaserScan).Header.Stamp.Sec, test.ShouldEqual, int64(5))
}

func TestQueueEmpty(t *testing.T) {
	q := newMessageQueue(2)
	_, ok := q.latest()
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, q.len(), test.ShouldEqual, 0)
}

func TestQueueMinimumCapacity(t *testing.T) {
	q := newMessageQueue(0)
	q.push(scanEnv(1))
	q.push(scanEnv(2))
	test.That(t, q.len(), test.ShouldEqual, 1)
	latest, _ := q.latest()
	test.That(t, latest.Payload.(*wire.LaserScan).Header.Stamp.Sec, test.ShouldEqual, int64(2))
}
