package vectors

import "context"

// Encoder vectorizes record sources. Output is parallel to input.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}
