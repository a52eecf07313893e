package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// WindowCache stores raw PMS window payloads in the pms_windows collection.
// A TTL index on expires_at lets mongod reap old entries; reads also check
// the expiry because the reaper runs only once a minute.
type WindowCache struct {
	col *mongo.Collection
	now func() time.Time
}

func NewWindowCache(db *mongo.Database) *WindowCache {
	col := db.Collection("pms_windows")
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	_, _ = col.Indexes().CreateOne(context.Background(), idx)
	return &WindowCache{col: col, now: time.Now}
}

type windowDocument struct {
	Key       string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func (c *WindowCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var doc windowDocument
	if err := c.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if !c.now().UTC().Before(doc.ExpiresAt) {
		return nil, false, nil
	}
	return doc.Payload, true, nil
}

func (c *WindowCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	now := c.now().UTC()
	doc := windowDocument{
		Key:       key,
		Payload:   payload,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	_, err := c.col.UpdateByID(ctx, key, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}
