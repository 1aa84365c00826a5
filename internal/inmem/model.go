package inmem

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
)

// Model derives a deterministic unit vector from the input bytes.
type Model struct {
	mu        sync.Mutex
	dimension int
	calls     int

	EncodeErr error
	// Short, when set, makes EncodeImages drop the last vector of each batch.
	Short bool
}

func NewModel(dimension int) *Model {
	return &Model{dimension: dimension}
}

func (m *Model) EncodeText(_ context.Context, text string) ([]float32, error) {
	if m.EncodeErr != nil {
		return nil, m.EncodeErr
	}
	return m.vector([]byte(text)), nil
}

func (m *Model) EncodeImages(_ context.Context, images [][]byte) ([][]float32, error) {
	if m.EncodeErr != nil {
		return nil, m.EncodeErr
	}
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	out := make([][]float32, 0, len(images))
	for _, img := range images {
		out = append(out, m.vector(img))
	}
	if m.Short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

// Calls returns how many EncodeImages batches were served.
func (m *Model) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *Model) vector(seed []byte) []float32 {
	h := fnv.New64a()
	h.Write(seed)
	state := h.Sum64() | 1
	v := make([]float32, m.dimension)
	var norm float64
	for i := range v {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		f := float64(state%2001)/1000.0 - 1.0
		v[i] = float32(f)
		norm += f * f
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		v[0] = 1
		return v
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}
