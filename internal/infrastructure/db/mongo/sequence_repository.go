package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionCounters = "counters"

// SequenceRepository implements named monotonic counters on top of a
// findAndModify upsert. Each counter lives in one document keyed by name.
type SequenceRepository struct {
	coll *mongo.Collection
}

func NewSequenceRepository(db *mongo.Database) *SequenceRepository {
	return &SequenceRepository{coll: db.Collection(collectionCounters)}
}

type counterDoc struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"value"`
}

// Next atomically increments and returns the counter. The first call for
// a name creates it and returns 1.
func (r *SequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	var doc counterDoc
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"value": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next sequence %q: %w", name, err)
	}
	return doc.Value, nil
}
