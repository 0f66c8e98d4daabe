package array

import (
	"math/bits"
	"os"
)

// Rand is Bob Jenkins' small noncryptographic PRNG
// (https://burtleburtle.net/bob/rand/smallprng.html).
type Rand struct {
	a, b, c, d uint32
}

// NewRand seeds the generator and discards the first 20 outputs.
func NewRand(seed uint32) *Rand {
	r := &Rand{a: 0xf1ea5eed, b: seed, c: seed, d: seed}
	for i := 0; i < 20; i++ {
		r.Next()
	}
	return r
}

func (r *Rand) Next() uint32 {
	e := r.a - bits.RotateLeft32(r.b, 27)
	r.a = r.b ^ bits.RotateLeft32(r.c, 17)
	r.b = r.c + r.d
	r.c = r.d + e
	r.d = e + r.a
	return r.d
}

// Fill overwrites buf with non-negative pseudo-random values: the absolute
// value of each output read as an int32. The same seed gives the same
// contents.
func Fill(buf []int, seed uint32) {
	r := NewRand(seed)
	for i := range buf {
		v := int(int32(r.Next()))
		if v < 0 {
			v = -v
		}
		buf[i] = v
	}
}

// Generate allocates n values and fills them from seed.
func Generate(n int, seed uint32) []int {
	buf := make([]int, n)
	Fill(buf, seed)
	return buf
}

const seedMix = 0x9e3779b9

// DefaultSeed derives a per-process seed from the pid.
func DefaultSeed() uint32 {
	return uint32(os.Getpid()) ^ seedMix
}
