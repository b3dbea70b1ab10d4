package kvstore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// kvEntry is one stored key-value pair.
// Collection: kv_entries (unique index on key, see db.Init)
type kvEntry struct {
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("kv_entries")}
}

func (s *MongoStore) Get(ctx context.Context, key string) (string, error) {
	var e kvEntry
	err := s.col.FindOne(ctx, bson.M{"key": key}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrNotFound
		}
		return "", err
	}
	return e.Value, nil
}

func (s *MongoStore) Put(ctx context.Context, key string, value string) error {
	filter := bson.M{"key": key}
	update := bson.M{
		"$set": bson.M{
			"key":        key,
			"value":      value,
			"updated_at": time.Now(),
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.col.UpdateOne(ctx, filter, update, opts)
	return err
}

func (s *MongoStore) List(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"key": bson.M{"$regex": "^" + regexQuoteMeta(prefix)}}
	cur, err := s.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"key": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var keys []string
	for cur.Next(ctx) {
		var e kvEntry
		if err := cur.Decode(&e); err != nil {
			return nil, err
		}
		keys = append(keys, e.Key)
	}
	return keys, cur.Err()
}

// regexQuoteMeta escapes regex metacharacters so key prefixes match
// literally. Keys contain ':' and document numbers like "2025-01234",
// but escaping keeps List safe for any prefix.
func regexQuoteMeta(s string) string {
	const meta = `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		for j := 0; j < len(meta); j++ {
			if c == meta[j] {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, c)
	}
	return string(out)
}
