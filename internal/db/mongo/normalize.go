package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// primitiveObjectID parses a 24-hex string into an ObjectID.
func primitiveObjectID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(id)
}

func normalizeDocs(docs []bson.M) []map[string]any {
	out := make([]map[string]any, len(docs))
	for i, d := range docs {
		out[i] = normalizeDoc(d)
	}
	return out
}

func normalizeDoc(doc bson.M) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = normalizeValue(v)
	}
	return out
}

// normalizeValue maps driver-decoded BSON values onto plain JSON types so
// downstream stages (identifier scan, LLM prompts, HTTP responses) see the
// same shapes the wire JSON would carry. ObjectIDs become their hex form,
// which is what the reference resolver matches on.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC().Format(time.RFC3339)
	case primitive.Decimal128:
		return t.String()
	case bson.M:
		return normalizeDoc(t)
	case bson.D:
		m := make(map[string]any, len(t))
		for _, e := range t {
			m[e.Key] = normalizeValue(e.Value)
		}
		return m
	case bson.A:
		arr := make([]any, len(t))
		for i, item := range t {
			arr[i] = normalizeValue(item)
		}
		return arr
	case []any:
		arr := make([]any, len(t))
		for i, item := range t {
			arr[i] = normalizeValue(item)
		}
		return arr
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, item := range t {
			m[k] = normalizeValue(item)
		}
		return m
	default:
		return v
	}
}
