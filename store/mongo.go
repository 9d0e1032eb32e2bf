package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection    = "users"
	productsCollection = "products"
	cartsCollection    = "carts"
	ordersCollection   = "orders"
	paymentsCollection = "payments"
	countersCollection = "counters"
)

// MongoStore is the MongoDB backend
type MongoStore struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool

	users    *mongoUserStore
	products *mongoProductStore
	carts    *mongoCartStore
	orders   *mongoOrderStore
	payments *mongoPaymentStore
	counters *mongoCounterStore
}

// ConnectMongo dials uri, verifies the connection and returns a store bound to
// database dbName. Multi-document transactions are only used when enabled,
// since standalone servers reject them.
func ConnectMongo(ctx context.Context, uri, dbName string, transactions bool) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoStore(client, client.Database(dbName), transactions), nil
}

func NewMongoStore(client *mongo.Client, db *mongo.Database, transactions bool) *MongoStore {
	return &MongoStore{
		client:       client,
		db:           db,
		transactions: transactions,
		users:        &mongoUserStore{coll: db.Collection(usersCollection)},
		products:     &mongoProductStore{coll: db.Collection(productsCollection)},
		carts:        &mongoCartStore{coll: db.Collection(cartsCollection)},
		orders:       &mongoOrderStore{coll: db.Collection(ordersCollection)},
		payments:     &mongoPaymentStore{coll: db.Collection(paymentsCollection)},
		counters:     &mongoCounterStore{coll: db.Collection(countersCollection)},
	}
}

func (s *MongoStore) Users() UserStore { return s.users }
func (s *MongoStore) Products() ProductStore { return s.products }
func (s *MongoStore) Carts() CartStore { return s.carts }
func (s *MongoStore) Orders() OrderStore { return s.orders }
func (s *MongoStore) Payments() PaymentStore { return s.payments }
func (s *MongoStore) Counters() CounterStore { return s.counters }

// EnsureIndexes creates the unique and sort indexes the handlers rely on
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  string
		model mongo.IndexModel
	}{
		{usersCollection, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{cartsCollection, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{ordersCollection, mongo.IndexModel{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)}},
		{ordersCollection, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{paymentsCollection, mongo.IndexModel{Keys: bson.D{{Key: "orderId", Value: 1}}}},
	}
	for _, idx := range indexes {
		if _, err := s.db.Collection(idx.coll).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll, err)
		}
	}
	return nil
}

func (s *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
