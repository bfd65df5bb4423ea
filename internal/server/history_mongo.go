package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const generationsCollection = "generations"

// MongoHistory は生成履歴を MongoDB に保存します。
type MongoHistory struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoHistory は MongoDB に接続し、セッション検索用のインデックスを用意します。
func NewMongoHistory(ctx context.Context, uri, database string) (*MongoHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	collection := client.Database(database).Collection(generationsCollection)
	_, err = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		slog.WarnContext(ctx, "creating index", "error", err)
	}

	return &MongoHistory{client: client, collection: collection}, nil
}

func (m *MongoHistory) Add(ctx context.Context, g Generation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := m.collection.InsertOne(ctx, g); err != nil {
		return fmt.Errorf("inserting generation: %w", err)
	}
	return nil
}

func (m *MongoHistory) List(ctx context.Context, sessionID string, limit int) ([]Generation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := m.collection.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("finding generations: %w", err)
	}
	defer cur.Close(ctx)

	var out []Generation
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding generations: %w", err)
	}
	return out, nil
}

func (m *MongoHistory) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
