// Package vector holds the pure float32 vector math shared by ranking,
// deduplication and the storage adapters.
package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Cosine returns the cosine similarity of a and b.
// Mismatched lengths, empty vectors and zero-norm vectors yield 0.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Normalize returns an L2-normalized copy of v. A zero vector is returned as a zero copy.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, f := range v {
		out[i] = float32(float64(f) / norm)
	}
	return out
}

// Combine returns L2normalize(wa·a + wb·b).
func Combine(a []float32, wa float64, b []float32, wb float64) ([]float32, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("combine: dimension mismatch %d != %d", len(a), len(b))
	}
	mixed := make([]float32, len(a))
	for i := range a {
		mixed[i] = float32(wa*float64(a[i]) + wb*float64(b[i]))
	}
	return Normalize(mixed), nil
}

// Clamp01 bounds x to [0,1]. NaN maps to 0.
func Clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// ClampCosine bounds x to [-1,1]. NaN maps to 0.
func ClampCosine(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < -1:
		return -1
	case x > 1:
		return 1
	default:
		return x
	}
}

// ToBytes encodes v as little-endian float32 bytes (FT.SEARCH BLOB format).
func ToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// FromBytes decodes little-endian float32 bytes. A trailing partial value is an error.
func FromBytes(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
