// Package store persists users, products, carts, orders, payments and
// sequence counters. Mongo is the production backend; the in-memory backend
// serves local development and tests.
package store

import (
	"context"
	"errors"
	"time"

	"helmet-store/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique key (user email, cart owner) is taken.
	ErrDuplicate = errors.New("store: duplicate key")
	// ErrVersionConflict is returned when a conditional write lost a race.
	ErrVersionConflict = errors.New("store: version conflict")
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate, now time.Time) (*models.User, error)
	SetRole(ctx context.Context, email, role string, now time.Time) (*models.User, error)
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	// Update applies the set fields of update and returns the stored result.
	Update(ctx context.Context, id string, update models.ProductUpdate, now time.Time) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

type CartStore interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	// Save writes cart if the stored version still equals expected, then
	// bumps cart.Version. A cart never saved before has expected version 0.
	Save(ctx context.Context, cart *models.Cart, expected int64) error
}

type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	// FindByID resolves either a hex object id or a human-readable order id.
	FindByID(ctx context.Context, id string) (*models.Order, error)
	// List returns orders newest first; an empty userID lists every order.
	List(ctx context.Context, userID string) ([]models.Order, error)
	// UpdateStatus moves the order to next only if its status is still from.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, next models.OrderStatus, now time.Time) (*models.Order, error)
	SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status string, now time.Time) error
}

type PaymentStore interface {
	Create(ctx context.Context, payment *models.Payment) error
}

type CounterStore interface {
	// Next atomically increments the named counter and returns the new value.
	Next(ctx context.Context, name string) (int64, error)
}

// Store groups the collections behind one backend
type Store interface {
	Users() UserStore
	Products() ProductStore
	Carts() CartStore
	Orders() OrderStore
	Payments() PaymentStore
	Counters() CounterStore
	// WithTransaction runs fn so that its writes commit or roll back together
	// when the backend supports it. fn must use the context it is given.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
