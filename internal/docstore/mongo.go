package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/agrosoja/agrosoja/internal/clock"
)

// countersCollection holds one sequence counter per document collection.
const countersCollection = "_counters"

// MongoStore keeps each document collection in a Mongo collection of the
// same name.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	clock  clock.Clock
}

type mongoDoc struct {
	ID        string    `bson:"_id"`
	Seq       int64     `bson:"seq"`
	Fields    bson.M    `bson:"fields"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses the named database.
func NewMongoStore(ctx context.Context, uri, database string, c clock.Clock) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database), clock: c}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// FetchAll returns every document in a collection in insertion order.
func (s *MongoStore) FetchAll(ctx context.Context, collection string) ([]Record, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var records []Record
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", collection, err)
		}
		records = append(records, doc.record())
	}
	return records, cur.Err()
}

// Get returns one document, or nil when it does not exist.
func (s *MongoStore) Get(ctx context.Context, collection, id string) (*Record, error) {
	var doc mongoDoc
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", collection, id, err)
	}
	rec := doc.record()
	return &rec, nil
}

// Create stores a new document under a generated id.
func (s *MongoStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	seq, err := s.nextSeq(ctx, collection)
	if err != nil {
		return "", err
	}

	now := s.clock.Now()
	doc := mongoDoc{
		ID:        uuid.NewString(),
		Seq:       seq,
		Fields:    bson.M(mergeFields(nil, fields)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("creating %s document: %w", collection, err)
	}
	return doc.ID, nil
}

// Update merges fields into an existing document.
func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	set := bson.M{"updated_at": s.clock.Now()}
	for k, v := range fields {
		set["fields."+k] = v
	}

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("updating %s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

// Delete removes a document.
func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("deleting %s/%s: %w", collection, id, err)
	}
	return nil
}

// GetSingleton returns the document stored under key.
func (s *MongoStore) GetSingleton(ctx context.Context, collection, key string) (*Record, error) {
	return s.Get(ctx, collection, key)
}

// SetSingleton replaces the document stored under key.
func (s *MongoStore) SetSingleton(ctx context.Context, collection, key string, fields map[string]any) error {
	seq, err := s.nextSeq(ctx, collection)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	update := bson.M{
		"$set":         bson.M{"fields": bson.M(mergeFields(nil, fields)), "updated_at": now},
		"$setOnInsert": bson.M{"created_at": now, "seq": seq},
	}
	_, err = s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": key}, update,
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("setting %s/%s: %w", collection, key, err)
	}
	return nil
}

// nextSeq atomically increments the per-collection insertion counter.
func (s *MongoStore) nextSeq(ctx context.Context, collection string) (int64, error) {
	var counter struct {
		Value int64 `bson:"value"`
	}
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("allocating %s sequence: %w", collection, err)
	}
	return counter.Value, nil
}

func (d mongoDoc) record() Record {
	fields := map[string]any(d.Fields)
	if fields == nil {
		fields = map[string]any{}
	}
	return Record{
		ID:        d.ID,
		Fields:    fields,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
