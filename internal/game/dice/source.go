package dice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: Every value returned by Intn is in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics if n <= 0 or crypto/rand fails.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

// seededSource is a deterministic PCG stream guarded by a mutex.
type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededSource returns a reproducible Source. Two sources built from the
// same seed yield identical sequences.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Intn returns a deterministic pseudo-random int in [0, n).
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}

// FixedSource replays a scripted list of die faces. It exists for tests that
// need exact rolls; each call consumes one face.
type FixedSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewFixedSource returns a FixedSource that yields faces in order.
// Faces are 1-based die values, e.g. 20 for a natural twenty.
func NewFixedSource(faces ...int) *FixedSource {
	return &FixedSource{faces: faces}
}

// Intn returns the next scripted face minus one.
//
// Precondition: a face remains and it is within [1, n]. Panics otherwise so a
// miscounted test fails loudly.
func (f *FixedSource) Intn(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.next >= len(f.faces) {
		panic(fmt.Sprintf("dice: FixedSource exhausted after %d faces", len(f.faces)))
	}
	face := f.faces[f.next]
	if face < 1 || face > n {
		panic(fmt.Sprintf("dice: FixedSource face %d out of range for d%d", face, n))
	}
	f.next++
	return face - 1
}

// Remaining returns the number of unconsumed faces.
func (f *FixedSource) Remaining() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.faces) - f.next
}
