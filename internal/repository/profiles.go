package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pageza/vitalchat/backend/internal/models"
)

const profilesCollection = "profiles"

// MongoProfileStore implements ProfileStore on a MongoDB collection.
type MongoProfileStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

var _ ProfileStore = (*MongoProfileStore)(nil)

// NewMongoProfileStore creates a new MongoProfileStore instance
func NewMongoProfileStore(db *mongo.Database) *MongoProfileStore {
	return &MongoProfileStore{
		coll: db.Collection(profilesCollection),
		now:  time.Now,
	}
}

// EnsureIndexes creates the unique index on the owning account.
func (s *MongoProfileStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create profile index: %w", err)
	}
	return nil
}

func (s *MongoProfileStore) Get(ctx context.Context, accountID uint) (*models.HealthProfile, error) {
	var profile models.HealthProfile
	err := s.coll.FindOne(ctx, bson.M{"userId": accountID}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}

// Upsert sets only the fields present in update in a single findOneAndUpdate,
// so concurrent saves for the same account never lose each other's writes.
func (s *MongoProfileStore) Upsert(ctx context.Context, accountID uint, update *models.HealthProfileUpdate) (*models.HealthProfile, error) {
	now := s.now().UTC()
	set := bson.M{"updatedAt": now}
	setOnInsert := bson.M{"userId": accountID, "createdAt": now}

	if update.Age != nil {
		set["age"] = *update.Age
	}
	if update.Gender != nil {
		set["gender"] = *update.Gender
	}
	if update.HeightCm != nil {
		set["height"] = *update.HeightCm
	}
	if update.WeightKg != nil {
		set["weight"] = *update.WeightKg
	}
	if update.DietaryPreferences != nil {
		set["dietaryPreferences"] = *update.DietaryPreferences
	}
	if update.Goals != nil {
		set["goals"] = *update.Goals
	}
	if update.SetAllergies {
		allergies := update.Allergies
		if allergies == nil {
			allergies = []string{}
		}
		set["allergies"] = allergies
	} else {
		setOnInsert["allergies"] = []string{}
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var profile models.HealthProfile
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"userId": accountID},
		bson.M{"$set": set, "$setOnInsert": setOnInsert},
		opts,
	).Decode(&profile)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return &profile, nil
}

// Ping checks connectivity of the backing deployment.
func (s *MongoProfileStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
