package engine

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint digests the state of every object in insertion order. Two
// layers with equal fingerprints hold bit-identical object states.
func Fingerprint(l Layer) uint64 {
	d := xxhash.New()
	writeLayer(d, l)
	return d.Sum64()
}

// LevelFingerprint digests every layer of a level in order.
func LevelFingerprint(lv Level) uint64 {
	d := xxhash.New()
	for _, l := range lv.layers {
		writeLayer(d, l)
	}
	return d.Sum64()
}

func writeLayer(d *xxhash.Digest, l Layer) {
	buf := make([]byte, 0, 64)
	for _, o := range l.Objects() {
		b := o.Body()
		buf = binary.LittleEndian.AppendUint64(buf[:0], uint64(o.ID()))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(o.Kind()))
		for _, f := range [...]float64{
			b.Position.X, b.Position.Y,
			b.Velocity.X, b.Velocity.Y,
			b.Angle, b.AngularVelocity,
		} {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(f))
		}
		_, _ = d.Write(buf)
	}
}
