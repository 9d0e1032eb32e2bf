package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipping, false},
		{StatusConfirmed, StatusShipping, true},
		{StatusConfirmed, StatusPending, false},
		{StatusShipping, StatusDelivered, true},
		{StatusShipping, StatusCancelled, true},
		{StatusDelivered, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to))
		})
	}
}

func TestOrderStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusShipping.Terminal())
}

func TestParseOrderStatus(t *testing.T) {
	st, ok := ParseOrderStatus("shipping")
	assert.True(t, ok)
	assert.Equal(t, StatusShipping, st)

	_, ok = ParseOrderStatus("lost")
	assert.False(t, ok)
}

func TestParsePaymentMethod(t *testing.T) {
	for in, want := range map[string]string{"": MethodCOD, "cod": MethodCOD, "bank": MethodBank, "banking": MethodBank} {
		got, ok := ParsePaymentMethod(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParsePaymentMethod("card")
	assert.False(t, ok)
}

func TestOrderViewFlattensCustomerInfo(t *testing.T) {
	created := time.Date(2025, 1, 1, 8, 30, 0, 0, time.UTC)
	order := &Order{
		OrderID: "ORD-20250101-001",
		UserID:  "u1",
		CustomerInfo: CustomerInfo{
			FullName: "An Nguyen",
			Email:    "an@example.com",
			Phone:    "0900000000",
			Address:  "1 Le Loi",
		},
		Status:    StatusPending,
		Notes:     "leave at door",
		CreatedAt: created,
		UpdatedAt: created,
	}

	view := order.View()
	assert.Equal(t, "An Nguyen", view.UserName)
	assert.Equal(t, "an@example.com", view.UserEmail)
	assert.Equal(t, "0900000000", view.UserPhone)
	assert.Equal(t, "1 Le Loi", view.ShippingAddress)
	assert.Equal(t, "leave at door", view.Note)
	assert.Equal(t, "2025-01-01T08:30:00Z", view.CreatedAt)
	assert.NotNil(t, view.Items)
}
