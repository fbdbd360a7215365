package refs

import (
	"reflect"
	"testing"
)

func TestIsID(t *testing.T) {
	cases := map[string]bool{
		"665f1e2b9c8d4a0012345678":  true,
		"665F1E2B9C8D4A0012345678":  true,
		"665f1e2b9c8d4a001234567":   false, // 23 chars
		"665f1e2b9c8d4a00123456789": false, // 25 chars
		"665f1e2b9c8d4a001234567g":  false, // non-hex
		"":                          false,
	}
	for in, want := range cases {
		if got := IsID(in); got != want {
			t.Errorf("IsID(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestCollectIDs_NestedAndDeduplicated(t *testing.T) {
	data := []any{
		map[string]any{
			"_id":     "665f1e2b9c8d4a0012345678",
			"user_id": "665f1e2b9c8d4a0012345670",
			"items": []any{
				map[string]any{"product_id": "665f1e2b9c8d4a0012345671"},
				map[string]any{"product_id": "665f1e2b9c8d4a0012345671"},
			},
		},
	}

	got := CollectIDs(data)

	want := []string{
		"665f1e2b9c8d4a0012345670",
		"665f1e2b9c8d4a0012345671",
		"665f1e2b9c8d4a0012345678",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCollectIDs_DocumentSliceResult(t *testing.T) {
	// find and aggregate produce []map[string]any, not []any.
	data := []map[string]any{
		{
			"_id":     "665f1e2b9c8d4a0012345678",
			"ownerId": "665f1e2b9c8d4a0012345670",
		},
		{
			"_id":    "665f1e2b9c8d4a0012345679",
			"nested": []map[string]any{{"ref": "665f1e2b9c8d4a0012345671"}},
		},
	}

	got := CollectIDs(data)

	want := []string{
		"665f1e2b9c8d4a0012345670",
		"665f1e2b9c8d4a0012345671",
		"665f1e2b9c8d4a0012345678",
		"665f1e2b9c8d4a0012345679",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCollectIDs_IgnoresNonStringPositions(t *testing.T) {
	data := map[string]any{
		"count": 42,
		"ok":    true,
		"name":  "not an id",
		"score": 1.5,
	}

	if got := CollectIDs(data); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestCollectIDs_EmptyInputs(t *testing.T) {
	for _, data := range []any{nil, []any{}, map[string]any{}, "plain string", 7} {
		if got := CollectIDs(data); len(got) != 0 {
			t.Errorf("input %v: got %v, want none", data, got)
		}
	}
}
