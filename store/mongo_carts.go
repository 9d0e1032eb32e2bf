package store

import (
	"context"
	"errors"

	"helmet-store/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoCartStore struct {
	coll *mongo.Collection
}

func (s *mongoCartStore) Get(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := s.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (s *mongoCartStore) Save(ctx context.Context, cart *models.Cart, expected int64) error {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	next := expected + 1

	if cart.ID.IsZero() {
		doc := *cart
		doc.ID = primitive.NewObjectID()
		doc.Version = next
		// the unique index on userId turns a concurrent first insert into a conflict
		if _, err := s.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrVersionConflict
			}
			return err
		}
		cart.ID = doc.ID
		cart.Version = next
		return nil
	}

	filter := bson.M{"_id": cart.ID, "version": expected}
	if expected == 0 {
		// carts written before versioning have no version field
		filter["version"] = bson.M{"$in": bson.A{0, nil}}
	}
	update := bson.M{"$set": bson.M{
		"items":      cart.Items,
		"totalPrice": cart.TotalPrice,
		"version":    next,
		"createdAt":  cart.CreatedAt,
		"updatedAt":  cart.UpdatedAt,
	}}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	cart.Version = next
	return nil
}
