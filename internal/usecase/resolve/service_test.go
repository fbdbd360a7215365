package resolve

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mongoman-ai/mongoman/internal/domain"
)

type fakeFinder struct {
	found   domain.ReferenceMap
	err     error
	calls   int
	lastIDs []string
}

func (f *fakeFinder) FindByIDs(ctx context.Context, ids []string, conn domain.Connection) (domain.ReferenceMap, error) {
	f.calls++
	f.lastIDs = ids
	return f.found, f.err
}

func TestResolve_NoIdentifiersSkipsStore(t *testing.T) {
	finder := &fakeFinder{}
	svc := New(finder)

	refs, err := svc.Resolve(context.Background(), []any{map[string]any{"count": 3}}, domain.Connection{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(refs) != 0 {
		t.Errorf("references: got %v, want empty", refs)
	}
	if finder.calls != 0 {
		t.Errorf("store calls: got %d, want none", finder.calls)
	}
}

func TestResolve_CollectsAndForwardsIDs(t *testing.T) {
	finder := &fakeFinder{found: domain.ReferenceMap{
		"665f1e2b9c8d4a0012345670": {{Collection: "users", Document: map[string]any{"name": "Alice"}}},
	}}
	svc := New(finder)

	result := []any{
		map[string]any{"user_id": "665f1e2b9c8d4a0012345670"},
		map[string]any{"user_id": "665f1e2b9c8d4a0012345670"},
	}

	refs, err := svc.Resolve(context.Background(), result, domain.Connection{DBName: "shop"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(finder.lastIDs, []string{"665f1e2b9c8d4a0012345670"}) {
		t.Errorf("forwarded ids: got %v, want deduplicated", finder.lastIDs)
	}
	if len(refs["665f1e2b9c8d4a0012345670"]) != 1 {
		t.Errorf("references: got %v", refs)
	}
}

func TestResolve_ExecutorDocumentSlice(t *testing.T) {
	// The executor returns find/aggregate results as []map[string]any.
	finder := &fakeFinder{found: domain.ReferenceMap{
		"665f1e2b9c8d4a0012345670": {{Collection: "users", Document: map[string]any{"name": "Alice"}}},
	}}
	svc := New(finder)

	var result any = []map[string]any{
		{"_id": "665f1e2b9c8d4a0012345678", "ownerId": "665f1e2b9c8d4a0012345670"},
	}

	refs, err := svc.Resolve(context.Background(), result, domain.Connection{DBName: "shop"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"665f1e2b9c8d4a0012345670", "665f1e2b9c8d4a0012345678"}
	if !reflect.DeepEqual(finder.lastIDs, want) {
		t.Errorf("forwarded ids: got %v, want %v", finder.lastIDs, want)
	}
	if finder.calls != 1 {
		t.Errorf("store calls: got %d, want 1", finder.calls)
	}
	if len(refs) != 1 {
		t.Errorf("references: got %v", refs)
	}
}

func TestResolve_StoreError(t *testing.T) {
	finder := &fakeFinder{err: domain.ErrDataStore}
	svc := New(finder)

	_, err := svc.Resolve(context.Background(), map[string]any{"id": "665f1e2b9c8d4a0012345670"}, domain.Connection{})

	if !errors.Is(err, domain.ErrDataStore) {
		t.Errorf("got %v, want ErrDataStore", err)
	}
}
