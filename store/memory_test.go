package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"helmet-store/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMemoryUsersDuplicateEmail(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.Users().Create(ctx, &models.User{Email: "a@example.com"}))
	err := st.Users().Create(ctx, &models.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMemoryUsersProfileAndRole(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	user := &models.User{Email: "a@example.com", Name: "A", Role: models.RoleUser}
	require.NoError(t, st.Users().Create(ctx, user))

	name := "Anh"
	updated, err := st.Users().UpdateProfile(ctx, user.ID.Hex(), models.ProfileUpdate{Name: &name}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Anh", updated.Name)

	promoted, err := st.Users().SetRole(ctx, "a@example.com", models.RoleAdmin, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role)

	_, err = st.Users().FindByID(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Users().SetRole(ctx, "ghost@example.com", models.RoleAdmin, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCartsVersionCheck(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	_, err := st.Carts().Get(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)

	cart := models.NewCart("user-1")
	require.NoError(t, st.Carts().Save(ctx, cart, 0))
	assert.Equal(t, int64(1), cart.Version)

	first, err := st.Carts().Get(ctx, "user-1")
	require.NoError(t, err)
	second, err := st.Carts().Get(ctx, "user-1")
	require.NoError(t, err)

	first.AddItem(models.CartItem{ProductID: "p1", Price: 10, Quantity: 1})
	require.NoError(t, st.Carts().Save(ctx, first, 1))

	second.AddItem(models.CartItem{ProductID: "p2", Price: 20, Quantity: 1})
	err = st.Carts().Save(ctx, second, 1)
	assert.ErrorIs(t, err, ErrVersionConflict)

	stored, err := st.Carts().Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, stored.Items, 1)
	assert.Equal(t, int64(2), stored.Version)
}

func TestMemoryCountersConcurrent(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	seen := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := st.Counters().Next(ctx, models.CounterOrder)
			assert.NoError(t, err)
			seen <- seq
		}()
	}
	wg.Wait()
	close(seen)

	unique := map[int64]bool{}
	for seq := range seen {
		unique[seq] = true
	}
	assert.Len(t, unique, n)
	assert.True(t, unique[1])
	assert.True(t, unique[n])
}

func TestMemoryOrdersListNewestFirst(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"ORD-20250101-001", "ORD-20250101-002", "ORD-20250101-003"} {
		owner := "u1"
		if i == 1 {
			owner = "u2"
		}
		require.NoError(t, st.Orders().Create(ctx, &models.Order{OrderID: id, UserID: owner, CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	all, err := st.Orders().List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "ORD-20250101-003", all[0].OrderID)
	assert.Equal(t, "ORD-20250101-001", all[2].OrderID)

	mine, err := st.Orders().List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	byNumber, err := st.Orders().FindByID(ctx, "ORD-20250101-002")
	require.NoError(t, err)
	assert.Equal(t, "u2", byNumber.UserID)

	byHex, err := st.Orders().FindByID(ctx, byNumber.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, byNumber.OrderID, byHex.OrderID)

	_, err = st.Orders().FindByID(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryOrdersConditionalStatusUpdate(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	order := &models.Order{OrderID: "ORD-20250101-001", Status: models.StatusPending}
	require.NoError(t, st.Orders().Create(ctx, order))

	updated, err := st.Orders().UpdateStatus(ctx, order.ID, models.StatusPending, models.StatusConfirmed, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, updated.Status)

	_, err = st.Orders().UpdateStatus(ctx, order.ID, models.StatusPending, models.StatusCancelled, time.Now())
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestMemoryTransactionRollsBack(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	order := &models.Order{OrderID: "ORD-20250101-001", PaymentStatus: models.PaymentPending}
	require.NoError(t, st.Orders().Create(ctx, order))

	boom := errors.New("boom")
	err := st.WithTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, st.Payments().Create(ctx, &models.Payment{PaymentID: "PAY-20250101-001"}))
		require.NoError(t, st.Orders().SetPaymentStatus(ctx, order.ID, models.PaymentPaid, time.Now()))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	assert.Empty(t, st.PaymentRecords())
	got, err := st.Orders().FindByID(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, got.PaymentStatus)
}

func TestMemoryRollbackKeepsWritesOutsideTransaction(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	settled := &models.Order{OrderID: "ORD-20250101-001", Status: models.StatusPending, PaymentStatus: models.PaymentPending}
	require.NoError(t, st.Orders().Create(ctx, settled))

	var outside *models.Order
	err := st.WithTransaction(ctx, func(txCtx context.Context) error {
		require.NoError(t, st.Payments().Create(txCtx, &models.Payment{PaymentID: "PAY-20250101-001"}))

		done := make(chan struct{})
		go func() {
			defer close(done)
			outside = &models.Order{OrderID: "ORD-20250101-002", Status: models.StatusPending}
			assert.NoError(t, st.Orders().Create(ctx, outside))
			assert.NoError(t, st.Orders().SetPaymentStatus(ctx, settled.ID, models.PaymentPaid, time.Now()))
			assert.NoError(t, st.Payments().Create(ctx, &models.Payment{PaymentID: "PAY-20250101-002"}))
		}()
		<-done
		return errors.New("order not found")
	})
	require.Error(t, err)

	got, err := st.Orders().FindByID(ctx, outside.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "ORD-20250101-002", got.OrderID)

	got, err = st.Orders().FindByID(ctx, settled.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)

	payments := st.PaymentRecords()
	require.Len(t, payments, 1)
	assert.Equal(t, "PAY-20250101-002", payments[0].PaymentID)
}
