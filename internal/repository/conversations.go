package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pageza/vitalchat/backend/internal/models"
)

const chatsCollection = "chats"

// MongoConversationStore implements ConversationStore on a MongoDB collection.
type MongoConversationStore struct {
	coll *mongo.Collection
}

var _ ConversationStore = (*MongoConversationStore)(nil)

// NewMongoConversationStore creates a new MongoConversationStore instance
func NewMongoConversationStore(db *mongo.Database) *MongoConversationStore {
	return &MongoConversationStore{coll: db.Collection(chatsCollection)}
}

// EnsureIndexes creates the indexes backing the session and history reads.
func (s *MongoConversationStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "sessionId", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create chat indexes: %w", err)
	}
	return nil
}

func (s *MongoConversationStore) Append(ctx context.Context, turn *models.ConversationTurn) error {
	if _, err := s.coll.InsertOne(ctx, turn); err != nil {
		return fmt.Errorf("failed to insert chat turn: %w", err)
	}
	return nil
}

func (s *MongoConversationStore) ListBySession(ctx context.Context, accountID uint, sessionID string) ([]models.ConversationTurn, error) {
	filter := bson.M{"userId": accountID, "sessionId": sessionID}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	return s.find(ctx, filter, opts)
}

func (s *MongoConversationStore) ListRecent(ctx context.Context, accountID uint, limit int64) ([]models.ConversationTurn, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)
	return s.find(ctx, bson.M{"userId": accountID}, opts)
}

func (s *MongoConversationStore) ListSessions(ctx context.Context, accountID uint) ([]models.SessionSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": accountID}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$sessionId"},
			{Key: "lastTimestamp", Value: bson.M{"$first": "$timestamp"}},
			{Key: "lastMessage", Value: bson.M{"$first": "$message"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastTimestamp", Value: -1}}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate chat sessions: %w", err)
	}
	summaries := []models.SessionSummary{}
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, fmt.Errorf("failed to decode chat sessions: %w", err)
	}
	return summaries, nil
}

func (s *MongoConversationStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.ConversationTurn, error) {
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat turns: %w", err)
	}
	turns := []models.ConversationTurn{}
	if err := cursor.All(ctx, &turns); err != nil {
		return nil, fmt.Errorf("failed to decode chat turns: %w", err)
	}
	return turns, nil
}
