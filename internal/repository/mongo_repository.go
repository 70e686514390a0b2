// Package repository persists session carts in MongoDB, one document per
// session.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrCartNotFound = errors.New("cart not found")

const cartTTL = 30 * 24 * time.Hour

type cartDocument struct {
	SessionID string         `bson:"session_id"`
	Items     []itemDocument `bson:"items"`
	Coupon    string         `bson:"coupon,omitempty"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

// itemDocument keeps prices as decimal strings so no precision is lost.
type itemDocument struct {
	ProductID    int64  `bson:"product_id"`
	Name         string `bson:"name"`
	UnitPrice    string `bson:"unit_price"`
	VariantLabel string `bson:"variant_label"`
	Quantity     int    `bson:"quantity"`
	ImageRef     string `bson:"image_ref,omitempty"`
	Kind         string `bson:"kind"`
}

type MongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{collection: db.Collection("carts")}
}

func (m *MongoRepository) GetCart(ctx context.Context, sessionID string) (*domain.SavedCart, error) {
	var doc cartDocument
	err := m.collection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart := &domain.SavedCart{
		SessionID: doc.SessionID,
		Items:     make([]domain.LineItem, 0, len(doc.Items)),
		Coupon:    doc.Coupon,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, it := range doc.Items {
		price, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("cart %s: bad unit price %q: %w", sessionID, it.UnitPrice, err)
		}
		cart.Items = append(cart.Items, domain.LineItem{
			ProductID:    it.ProductID,
			Name:         it.Name,
			UnitPrice:    price,
			VariantLabel: it.VariantLabel,
			Quantity:     it.Quantity,
			ImageRef:     it.ImageRef,
			Kind:         domain.Kind(it.Kind),
		})
	}
	return cart, nil
}

// UpsertCart replaces the stored cart of cart.SessionID.
func (m *MongoRepository) UpsertCart(ctx context.Context, cart *domain.SavedCart) error {
	now := time.Now().UTC()
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	items := make([]itemDocument, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, itemDocument{
			ProductID:    it.ProductID,
			Name:         it.Name,
			UnitPrice:    it.UnitPrice.String(),
			VariantLabel: it.VariantLabel,
			Quantity:     it.Quantity,
			ImageRef:     it.ImageRef,
			Kind:         string(it.Kind),
		})
	}

	filter := bson.M{"session_id": cart.SessionID}
	update := bson.M{
		"$set": bson.M{
			"items":      items,
			"coupon":     cart.Coupon,
			"updated_at": cart.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": cart.CreatedAt},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (m *MongoRepository) DeleteCart(ctx context.Context, sessionID string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"session_id": sessionID})
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrCartNotFound
	}
	return nil
}

func (m *MongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(cartTTL.Seconds())),
		},
	}

	if _, err := m.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
