package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Model maps text and images into one shared vector space. Returned vectors
// are unit length; EncodeImages keeps the order of its input.
type Model interface {
	EncodeText(ctx context.Context, text string) ([]float32, error)
	EncodeImages(ctx context.Context, images [][]byte) ([][]float32, error)
}

var ErrZeroVector = errors.New("embedding has zero norm")

// Normalize scales v to unit length in place.
func Normalize(v []float32) error {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return ErrZeroVector
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return nil
}

// CheckDimension fails when v does not have exactly dim components.
func CheckDimension(v []float32, dim int) error {
	if dim > 0 && len(v) != dim {
		return fmt.Errorf("embedding dimension %d, want %d", len(v), dim)
	}
	return nil
}
