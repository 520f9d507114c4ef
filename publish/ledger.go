package publish

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/raushankrgupta/product-page-generator/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Ledger keeps track of the products pushed to the store
type Ledger interface {
	Record(ctx context.Context, entry models.PublishedProduct) error
	// Recent returns up to limit entries, newest first
	Recent(ctx context.Context, limit int) ([]models.PublishedProduct, error)
}

// MemoryLedger is a Ledger that lives for the lifetime of the process
type MemoryLedger struct {
	mu      sync.Mutex
	entries []models.PublishedProduct
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (l *MemoryLedger) Record(_ context.Context, entry models.PublishedProduct) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

func (l *MemoryLedger) Recent(_ context.Context, limit int) ([]models.PublishedProduct, error) {
	l.mu.Lock()
	out := append([]models.PublishedProduct(nil), l.entries...)
	l.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MongoLedger stores entries in a MongoDB collection
type MongoLedger struct {
	collection *mongo.Collection
}

func NewMongoLedger(db *mongo.Database) *MongoLedger {
	return &MongoLedger{collection: db.Collection("published_products")}
}

func (l *MongoLedger) Record(ctx context.Context, entry models.PublishedProduct) error {
	if _, err := l.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert published product: %w", err)
	}
	return nil
}

func (l *MongoLedger) Recent(ctx context.Context, limit int) ([]models.PublishedProduct, error) {
	opts := options.Find().SetSort(bson.M{"published_at": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := l.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.PublishedProduct{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
