package resolve

import (
	"context"

	"github.com/mongoman-ai/mongoman/internal/domain"
)

// Finder looks up documents by primary key across every collection of the
// caller's database.
type Finder interface {
	FindByIDs(ctx context.Context, ids []string, conn domain.Connection) (domain.ReferenceMap, error)
}
