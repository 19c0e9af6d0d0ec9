package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

// Image returns an opaque w×h image with random pixels.
// Locks only once per call.
func (r *RNG) Image(w, h int) *image.NRGBA {
	r.mu.Lock()
	defer r.mu.Unlock()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := r.rand.Uint32()
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), A: 255})
		}
	}
	return img
}

// PNG returns a random w×h image encoded as PNG.
func (r *RNG) PNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, r.Image(w, h)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// ShaderSource returns a small GLSL-like program with n random constants.
func (r *RNG) ShaderSource(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var buf bytes.Buffer
	buf.WriteString("#version 450\n")
	for i := range n {
		buf.WriteString("const float k")
		buf.WriteByte(byte('a' + i%26))
		buf.WriteString(" = 0.")
		for range 4 {
			buf.WriteByte(byte('0' + r.rand.Intn(10)))
		}
		buf.WriteString(";\n")
	}
	buf.WriteString("void main() {}\n")
	return buf.String()
}
