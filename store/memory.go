package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"helmet-store/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps every collection in process memory. Transactions are
// serialized; when fn fails, the order and payment writes made through the
// transaction's context are reversed.
type MemoryStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users    map[primitive.ObjectID]models.User
	products []models.Product
	carts    map[string]models.Cart
	orders   map[primitive.ObjectID]models.Order
	payments []models.Payment
	counters map[string]int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    map[primitive.ObjectID]models.User{},
		carts:    map[string]models.Cart{},
		orders:   map[primitive.ObjectID]models.Order{},
		counters: map[string]int64{},
	}
}

func (s *MemoryStore) Users() UserStore { return memoryUsers{s} }
func (s *MemoryStore) Products() ProductStore { return memoryProducts{s} }
func (s *MemoryStore) Carts() CartStore { return memoryCarts{s} }
func (s *MemoryStore) Orders() OrderStore { return memoryOrders{s} }
func (s *MemoryStore) Payments() PaymentStore { return memoryPayments{s} }
func (s *MemoryStore) Counters() CounterStore { return memoryCounters{s} }

type memoryTxKey struct{}

// memoryTx records how to reverse each write made inside one transaction
type memoryTx struct {
	store *MemoryStore
	undo  []func()
}

func (s *MemoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &memoryTx{store: s}
	if err := fn(context.WithValue(ctx, memoryTxKey{}, tx)); err != nil {
		s.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// onRollback registers undo when ctx belongs to a transaction on s. Callers
// hold s.mu.
func (s *MemoryStore) onRollback(ctx context.Context, undo func()) {
	if tx, ok := ctx.Value(memoryTxKey{}).(*memoryTx); ok && tx.store == s {
		tx.undo = append(tx.undo, undo)
	}
}

func (s *MemoryStore) Ping(context.Context) error { return nil }
func (s *MemoryStore) Close(context.Context) error { return nil }

// PaymentRecords returns a copy of the stored payments.
func (s *MemoryStore) PaymentRecords() []models.Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Payment(nil), s.payments...)
}

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Create(_ context.Context, user *models.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, u := range m.s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	m.s.users[user.ID] = *user
	return nil
}

func (m memoryUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	u, ok := m.s.users[oid]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, u := range m.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryUsers) UpdateProfile(_ context.Context, id string, update models.ProfileUpdate, now time.Time) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	u, ok := m.s.users[oid]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Phone != nil {
		u.Phone = *update.Phone
	}
	if update.Address != nil {
		u.Address = *update.Address
	}
	u.UpdatedAt = now
	m.s.users[oid] = u
	return &u, nil
}

func (m memoryUsers) SetRole(_ context.Context, email, role string, now time.Time) (*models.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for id, u := range m.s.users {
		if u.Email == email {
			u.Role = role
			u.UpdatedAt = now
			m.s.users[id] = u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

type memoryProducts struct{ s *MemoryStore }

func (m memoryProducts) Create(_ context.Context, product *models.Product) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	m.s.products = append(m.s.products, *product)
	return nil
}

func (m memoryProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	for _, p := range m.s.products {
		if p.ID == oid {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryProducts) List(context.Context) ([]models.Product, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	return append([]models.Product{}, m.s.products...), nil
}

func (m memoryProducts) Update(_ context.Context, id string, update models.ProductUpdate, now time.Time) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i := range m.s.products {
		if m.s.products[i].ID == oid {
			update.Apply(&m.s.products[i])
			m.s.products[i].UpdatedAt = now
			p := m.s.products[i]
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryProducts) Delete(_ context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i, p := range m.s.products {
		if p.ID == oid {
			m.s.products = append(m.s.products[:i:i], m.s.products[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

type memoryCarts struct{ s *MemoryStore }

func (m memoryCarts) Get(_ context.Context, userID string) (*models.Cart, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	c, ok := m.s.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Items = append([]models.CartItem{}, c.Items...)
	return &c, nil
}

func (m memoryCarts) Save(_ context.Context, cart *models.Cart, expected int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	current, exists := m.s.carts[cart.UserID]
	if exists && current.Version != expected || !exists && expected != 0 {
		return ErrVersionConflict
	}
	if cart.ID.IsZero() {
		if exists {
			return ErrVersionConflict
		}
		cart.ID = primitive.NewObjectID()
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	cart.Version = expected + 1
	stored := *cart
	stored.Items = append([]models.CartItem{}, cart.Items...)
	m.s.carts[cart.UserID] = stored
	return nil
}

type memoryOrders struct{ s *MemoryStore }

func (m memoryOrders) Create(ctx context.Context, order *models.Order) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, o := range m.s.orders {
		if o.OrderID == order.OrderID {
			return ErrDuplicate
		}
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	id := order.ID
	m.s.orders[id] = *order
	m.s.onRollback(ctx, func() { delete(m.s.orders, id) })
	return nil
}

func (m memoryOrders) FindByID(_ context.Context, id string) (*models.Order, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		if o, ok := m.s.orders[oid]; ok {
			return &o, nil
		}
		return nil, ErrNotFound
	}
	for _, o := range m.s.orders {
		if o.OrderID == id {
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryOrders) List(_ context.Context, userID string) ([]models.Order, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()
	orders := []models.Order{}
	for _, o := range m.s.orders {
		if userID == "" || o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].OrderID > orders[j].OrderID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func (m memoryOrders) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, next models.OrderStatus, now time.Time) (*models.Order, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[id]
	if !ok || o.Status != from {
		return nil, ErrVersionConflict
	}
	prevUpdated := o.UpdatedAt
	m.s.onRollback(ctx, func() {
		if cur, ok := m.s.orders[id]; ok && cur.Status == next {
			cur.Status, cur.UpdatedAt = from, prevUpdated
			m.s.orders[id] = cur
		}
	})
	o.Status = next
	o.UpdatedAt = now
	m.s.orders[id] = o
	return &o, nil
}

func (m memoryOrders) SetPaymentStatus(ctx context.Context, id primitive.ObjectID, status string, now time.Time) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	o, ok := m.s.orders[id]
	if !ok {
		return ErrNotFound
	}
	prev, prevUpdated := o.PaymentStatus, o.UpdatedAt
	m.s.onRollback(ctx, func() {
		if cur, ok := m.s.orders[id]; ok && cur.PaymentStatus == status {
			cur.PaymentStatus, cur.UpdatedAt = prev, prevUpdated
			m.s.orders[id] = cur
		}
	})
	o.PaymentStatus = status
	o.UpdatedAt = now
	m.s.orders[id] = o
	return nil
}

type memoryPayments struct{ s *MemoryStore }

func (m memoryPayments) Create(ctx context.Context, payment *models.Payment) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	id := payment.ID
	m.s.payments = append(m.s.payments, *payment)
	m.s.onRollback(ctx, func() {
		for i, p := range m.s.payments {
			if p.ID == id {
				m.s.payments = append(m.s.payments[:i], m.s.payments[i+1:]...)
				return
			}
		}
	})
	return nil
}

type memoryCounters struct{ s *MemoryStore }

func (m memoryCounters) Next(_ context.Context, name string) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.counters[name]++
	return m.s.counters[name], nil
}
