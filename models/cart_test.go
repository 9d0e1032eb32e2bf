package models

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineSum(c *Cart) float64 {
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

func TestCartAddMergeRemoveScenario(t *testing.T) {
	cart := NewCart("user-1")
	item := CartItem{ProductID: "p1", Price: 100, Quantity: 2, SelectedColor: "Black", SelectedSize: "M"}

	cart.AddItem(item)
	assert.Equal(t, 200.0, cart.TotalPrice)

	item.Quantity = 1
	cart.AddItem(item)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, 300.0, cart.Items[0].Subtotal)
	assert.Equal(t, 300.0, cart.TotalPrice)

	removed, ok := cart.RemoveItem(item.Key())
	require.True(t, ok)
	assert.Equal(t, 3, removed.Quantity)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0.0, cart.TotalPrice)
}

func TestCartAddKeepsStoredLinePrice(t *testing.T) {
	cart := NewCart("user-1")
	cart.AddItem(CartItem{ProductID: "p1", Price: 50, Quantity: 1})
	cart.AddItem(CartItem{ProductID: "p1", Price: 80, Quantity: 2})

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 50.0, cart.Items[0].Price)
	assert.Equal(t, 150.0, cart.TotalPrice)
}

func TestCartDistinctVariantsAreSeparateLines(t *testing.T) {
	cart := NewCart("user-1")
	cart.AddItem(CartItem{ProductID: "p1", Price: 10, Quantity: 1, SelectedColor: "Black", SelectedSize: "M"})
	cart.AddItem(CartItem{ProductID: "p1", Price: 10, Quantity: 1, SelectedColor: "Black", SelectedSize: "L"})
	cart.AddItem(CartItem{ProductID: "p1", Price: 10, Quantity: 1, SelectedColor: "Red", SelectedSize: "M"})

	assert.Len(t, cart.Items, 3)
	assert.Equal(t, 30.0, cart.TotalPrice)
}

func TestCartRemoveMissingLineLeavesCartUnchanged(t *testing.T) {
	cart := NewCart("user-1")
	cart.AddItem(CartItem{ProductID: "p1", Price: 10, Quantity: 2, SelectedColor: "Black"})

	_, ok := cart.RemoveItem(LineKey{ProductID: "p1", Color: "White"})
	assert.False(t, ok)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 20.0, cart.TotalPrice)
}

func TestCartSetQuantity(t *testing.T) {
	cart := NewCart("user-1")
	cart.AddItem(CartItem{ProductID: "p1", Price: 25, Quantity: 1})
	cart.AddItem(CartItem{ProductID: "p2", Price: 10, Quantity: 1})

	assert.True(t, cart.SetQuantity(LineKey{ProductID: "p1"}, 4))
	assert.Equal(t, 110.0, cart.TotalPrice)

	assert.True(t, cart.SetQuantity(LineKey{ProductID: "p1"}, 0))
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 10.0, cart.TotalPrice)

	assert.False(t, cart.SetQuantity(LineKey{ProductID: "missing"}, 1))
}

func TestCartTotalMatchesLinesAfterRandomMutations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	products := []string{"p1", "p2", "p3"}
	colors := []string{"Black", "White"}
	prices := []float64{19.5, 120, 75.25}

	cart := NewCart("user-1")
	for step := 0; step < 500; step++ {
		idx := rng.Intn(len(products))
		key := LineKey{ProductID: products[idx], Color: colors[rng.Intn(len(colors))]}
		switch rng.Intn(3) {
		case 0:
			cart.AddItem(CartItem{ProductID: key.ProductID, SelectedColor: key.Color, Price: prices[idx], Quantity: 1 + rng.Intn(3)})
		case 1:
			cart.RemoveItem(key)
		case 2:
			cart.SetQuantity(key, rng.Intn(4))
		}

		assert.InDelta(t, lineSum(cart), cart.TotalPrice, 1e-6, "step %d", step)
		for _, item := range cart.Items {
			assert.InDelta(t, item.Price*float64(item.Quantity), item.Subtotal, 1e-6)
		}
	}
}

func TestCartRecalculate(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: "p1", Price: 10, Quantity: 3, Subtotal: 1},
		{ProductID: "p2", Price: 5, Quantity: 2},
	}, TotalPrice: 999}

	cart.Recalculate()
	assert.Equal(t, 30.0, cart.Items[0].Subtotal)
	assert.Equal(t, 40.0, cart.TotalPrice)
}
