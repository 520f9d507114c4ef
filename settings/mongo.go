package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/raushankrgupta/product-page-generator/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const settingsDocID = "shopify"

// MongoStore keeps settings in one document of the settings collection
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("settings")}
}

func (m *MongoStore) Load(ctx context.Context) (models.Settings, error) {
	var s models.Settings
	err := m.collection.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Settings{}, nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return s, nil
}

func (m *MongoStore) Save(ctx context.Context, s models.Settings) error {
	update := bson.M{"$set": bson.M{
		models.KeyShopURL:  s.ShopURL,
		models.KeyAPIToken: s.APIToken,
	}}
	_, err := m.collection.UpdateOne(ctx, bson.M{"_id": settingsDocID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
