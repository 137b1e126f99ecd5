package cache

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type mongoSnapshotDocument struct {
	Slot      string `bson:"_id"`
	UpdatedAt int64  `bson:"updated_at"`
	Data      []byte `bson:"data"`
}

// MongoDBStore keeps the snapshot in a single document of the snapshots collection.
type MongoDBStore struct {
	collection *mongo.Collection
	slot       string
}

// NewMongoDBStore returns a store bound to the snapshots collection.
func NewMongoDBStore(database *mongo.Database, slot string) (*MongoDBStore, error) {
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}
	if slot == "" {
		slot = DefaultSlotName
	}
	return &MongoDBStore{collection: database.Collection("snapshots"), slot: slot}, nil
}

// Get returns the snapshot document, or nil if the slot is empty.
func (s *MongoDBStore) Get(ctx context.Context) (*Snapshot, error) {
	var doc mongoSnapshotDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": s.slot}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	return decodeSnapshot(doc.Data)
}

// Set replaces the snapshot document, inserting it on first write.
func (s *MongoDBStore) Set(ctx context.Context, snapshot *Snapshot) error {
	payload, err := encodeSnapshot(snapshot, false)
	if err != nil {
		return err
	}
	doc := mongoSnapshotDocument{
		Slot:      s.slot,
		UpdatedAt: snapshot.Timestamp.Unix(),
		Data:      payload,
	}
	_, err = s.collection.ReplaceOne(ctx, bson.M{"_id": s.slot}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Close is a no-op; the client is closed by its owner.
func (s *MongoDBStore) Close() error {
	return nil
}
