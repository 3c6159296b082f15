package qdrant

import (
	"context"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kailas-cloud/snipdex/internal/db"
)

// Upsert writes the point into the collection named by index.
func (s *Store) Upsert(ctx context.Context, index string, p *db.Point) error {
	payload := make(map[string]*qdrant.Value, len(p.Fields)+len(p.Numerics)+1)
	for k, v := range p.Fields {
		payload[k] = qdrant.NewValueString(v)
	}
	for k, v := range p.Numerics {
		payload[k] = qdrant.NewValueDouble(v)
	}
	payload[keyField] = qdrant.NewValueString(p.Key)

	named := make(map[string]*qdrant.Vector, len(p.Vectors))
	for name, v := range p.Vectors {
		named[name] = &qdrant.Vector{Data: v}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: index,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(PointID(p.Key)),
			Payload: payload,
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vectors{
					Vectors: &qdrant.NamedVectors{Vectors: named},
				},
			},
		}},
	})
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	return nil
}

// payloadToFields flattens payload values into strings; the key field is returned separately.
func payloadToFields(payload map[string]*qdrant.Value) (string, map[string]string) {
	var key string
	fields := make(map[string]string, len(payload))
	for k, v := range payload {
		if k == keyField {
			key = v.GetStringValue()
			continue
		}
		switch kind := v.GetKind().(type) {
		case *qdrant.Value_StringValue:
			fields[k] = kind.StringValue
		case *qdrant.Value_DoubleValue:
			fields[k] = strconv.FormatFloat(kind.DoubleValue, 'f', -1, 64)
		case *qdrant.Value_IntegerValue:
			fields[k] = strconv.FormatInt(kind.IntegerValue, 10)
		case *qdrant.Value_BoolValue:
			fields[k] = strconv.FormatBool(kind.BoolValue)
		}
	}
	return key, fields
}
