// Package mongo implements the document store capability against the
// caller's MongoDB-compatible database. Connection parameters arrive per
// call and a client is opened and released around every operation; nothing
// is pooled across requests, trading throughput for zero cross-request
// connection state at interactive scale.
package mongo

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mongoman-ai/mongoman/internal/domain"
	"github.com/mongoman-ai/mongoman/internal/domain/query"
)

// Store executes structured queries and lookups against a caller's database.
type Store struct {
	scanWorkers int
	logger      *zap.Logger
}

// NewStore creates a document store. scanWorkers bounds the parallel
// per-collection fan-out in FindByIDs.
func NewStore(scanWorkers int, logger *zap.Logger) *Store {
	if scanWorkers <= 0 {
		scanWorkers = 4
	}
	return &Store{scanWorkers: scanWorkers, logger: logger}
}

// withDatabase opens a scoped client, runs fn against the database and
// releases the client on every exit path.
func (s *Store) withDatabase(ctx context.Context, conn domain.Connection, fn func(db *mongo.Database) error) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conn.URI))
	if err != nil {
		return fmt.Errorf("%w: connect: %w", domain.ErrDataStore, err)
	}
	defer func() {
		if derr := client.Disconnect(context.WithoutCancel(ctx)); derr != nil {
			s.logger.Warn("mongo disconnect failed", zap.Error(derr))
		}
	}()

	return fn(client.Database(conn.DBName))
}

// ListCollections returns the collection names of the database.
func (s *Store) ListCollections(ctx context.Context, conn domain.Connection) ([]string, error) {
	var names []string
	err := s.withDatabase(ctx, conn, func(db *mongo.Database) error {
		found, err := db.ListCollectionNames(ctx, bson.D{})
		if err != nil {
			return fmt.Errorf("%w: list collections: %w", domain.ErrDataStore, err)
		}
		names = found
		return nil
	})
	return names, err
}

// Execute runs exactly one validated operation against exactly one
// collection. Each method executes a single branch; an update never doubles
// as an aggregation.
func (s *Store) Execute(ctx context.Context, q query.Query, conn domain.Connection) (any, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var result any
	err := s.withDatabase(ctx, conn, func(db *mongo.Database) error {
		coll := db.Collection(q.Collection)

		var err error
		switch q.Method {
		case query.Find:
			result, err = s.find(ctx, coll, q)
		case query.Count:
			result, err = coll.CountDocuments(ctx, filterOrEmpty(q.Filter))
		case query.InsertOne:
			result, err = s.insertOne(ctx, coll, q)
		case query.DeleteMany:
			result, err = s.deleteMany(ctx, coll, q)
		case query.UpdateOne:
			result, err = s.updateOne(ctx, coll, q)
		case query.Aggregate:
			result, err = s.aggregate(ctx, coll, q.Pipeline)
		}
		if err != nil {
			return fmt.Errorf("%w: %s on %s: %w", domain.ErrDataStore, q.Method, q.Collection, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Sample draws up to size random documents from the collection.
func (s *Store) Sample(ctx context.Context, collection string, size int, conn domain.Connection) ([]map[string]any, error) {
	pipeline := []any{
		bson.M{"$sample": bson.M{"size": size}},
	}

	var docs []map[string]any
	err := s.withDatabase(ctx, conn, func(db *mongo.Database) error {
		raw, err := s.aggregate(ctx, db.Collection(collection), pipeline)
		if err != nil {
			return fmt.Errorf("%w: sample %s: %w", domain.ErrDataStore, collection, err)
		}
		docs = raw
		return nil
	})
	return docs, err
}

// FindByIDs searches every collection of the database for documents whose
// primary key equals one of the identifiers, in parallel across collections.
// An empty identifier set returns an empty map without touching the store.
func (s *Store) FindByIDs(ctx context.Context, ids []string, conn domain.Connection) (domain.ReferenceMap, error) {
	found := make(domain.ReferenceMap)
	if len(ids) == 0 {
		return found, nil
	}

	// An id may be stored as an ObjectID or as its raw hex string.
	candidates := make([]any, 0, len(ids)*2)
	for _, id := range ids {
		candidates = append(candidates, id)
		if oid, err := primitiveObjectID(id); err == nil {
			candidates = append(candidates, oid)
		}
	}

	err := s.withDatabase(ctx, conn, func(db *mongo.Database) error {
		collections, err := db.ListCollectionNames(ctx, bson.D{})
		if err != nil {
			return fmt.Errorf("%w: list collections: %w", domain.ErrDataStore, err)
		}

		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.scanWorkers)

		for _, name := range collections {
			name := name
			g.Go(func() error {
				cur, err := db.Collection(name).Find(gctx, bson.M{"_id": bson.M{"$in": candidates}})
				if err != nil {
					return fmt.Errorf("%w: scan %s: %w", domain.ErrDataStore, name, err)
				}
				var docs []bson.M
				if err := cur.All(gctx, &docs); err != nil {
					return fmt.Errorf("%w: scan %s: %w", domain.ErrDataStore, name, err)
				}

				mu.Lock()
				defer mu.Unlock()
				for _, doc := range docs {
					norm := normalizeDoc(doc)
					id, ok := norm["_id"].(string)
					if !ok {
						continue
					}
					found[id] = append(found[id], domain.Reference{Collection: name, Document: norm})
				}
				return nil
			})
		}
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *Store) find(ctx context.Context, coll *mongo.Collection, q query.Query) ([]map[string]any, error) {
	opts := options.Find()
	if len(q.Projection) > 0 {
		opts.SetProjection(bson.M(q.Projection))
	}

	cur, err := coll.Find(ctx, filterOrEmpty(q.Filter), opts)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return normalizeDocs(docs), nil
}

func (s *Store) insertOne(ctx context.Context, coll *mongo.Collection, q query.Query) (map[string]any, error) {
	res, err := coll.InsertOne(ctx, bson.M(q.Document))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"acknowledged": true,
		"insertedId":   normalizeValue(res.InsertedID),
	}, nil
}

func (s *Store) deleteMany(ctx context.Context, coll *mongo.Collection, q query.Query) (map[string]any, error) {
	res, err := coll.DeleteMany(ctx, filterOrEmpty(q.Filter))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"acknowledged": true,
		"deletedCount": res.DeletedCount,
	}, nil
}

// updateOne applies a $set-style partial update to the first match.
func (s *Store) updateOne(ctx context.Context, coll *mongo.Collection, q query.Query) (map[string]any, error) {
	res, err := coll.UpdateOne(ctx, filterOrEmpty(q.Filter), bson.M{"$set": bson.M(q.Document)})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"acknowledged":  true,
		"matchedCount":  res.MatchedCount,
		"modifiedCount": res.ModifiedCount,
	}, nil
}

func (s *Store) aggregate(ctx context.Context, coll *mongo.Collection, pipeline []any) ([]map[string]any, error) {
	if pipeline == nil {
		pipeline = []any{}
	}
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return normalizeDocs(docs), nil
}

func filterOrEmpty(filter map[string]any) bson.M {
	if filter == nil {
		return bson.M{}
	}
	return bson.M(filter)
}
