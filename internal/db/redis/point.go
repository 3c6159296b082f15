package redis

import (
	"context"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/snipdex/internal/db"
	"github.com/kailas-cloud/snipdex/internal/domain/vector"
)

// Upsert stores the point as a hash. The index is implied by the key prefix.
// Vectors are written as little-endian FLOAT32 blobs.
func (s *Store) Upsert(ctx context.Context, _ string, p *db.Point) error {
	cmd := s.b().Hset().Key(p.Key).FieldValue()
	for k, v := range p.Fields {
		cmd = cmd.FieldValue(k, v)
	}
	for k, v := range p.Numerics {
		cmd = cmd.FieldValue(k, strconv.FormatFloat(v, 'f', -1, 64))
	}
	for k, v := range p.Vectors {
		cmd = cmd.FieldValue(k, rueidis.BinaryString(vector.ToBytes(v)))
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}
