package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"math"
)

// StateDigest hashes the mutable simulation state: tick, robots, mines and
// markers in scan order. Two worlds built from the same config and stepped
// the same number of times produce the same digest.
func (w *World) StateDigest() string {
	h := sha256.New()
	var tmp [8]byte

	writeU64(h, &tmp, w.tick.Load())
	writeU64(h, &tmp, uint64(len(w.robots)))
	for _, r := range w.robots {
		io.WriteString(h, r.ID)
		writeF64(h, &tmp, r.X)
		writeF64(h, &tmp, r.Y)
		writeF64(h, &tmp, r.Angle)
		h.Write([]byte{byte(r.Motion)})
		writeU64(h, &tmp, uint64(r.IgnoreCountdown))
		writeU64(h, &tmp, uint64(r.MinesDestroyed))
		writeU64(h, &tmp, uint64(r.QuicksandSteps))
	}
	writeU64(h, &tmp, uint64(len(w.env.mines)))
	for _, m := range w.env.mines {
		io.WriteString(h, m.ID)
		writeF64(h, &tmp, m.X)
		writeF64(h, &tmp, m.Y)
	}
	writeU64(h, &tmp, uint64(len(w.env.markers)))
	for _, m := range w.env.markers {
		io.WriteString(h, m.ID)
		h.Write([]byte{byte(m.Purpose)})
		writeF64(h, &tmp, m.X)
		writeF64(h, &tmp, m.Y)
		writeF64(h, &tmp, m.direction)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeU64(w io.Writer, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	w.Write(tmp[:])
}

func writeF64(w io.Writer, tmp *[8]byte, v float64) {
	writeU64(w, tmp, math.Float64bits(v))
}
