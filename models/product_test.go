package models

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductUpdateOnlyTouchesSetFields(t *testing.T) {
	p := Product{Name: "Retro", Price: 800000, Stock: 2, Colors: []string{"Black"}}
	assert.True(t, ProductUpdate{}.Empty())

	stock := 0
	inventory := []Variant{{Color: "Red", Size: "L", Quantity: 1}}
	update := ProductUpdate{Stock: &stock, Inventory: &inventory}
	assert.False(t, update.Empty())
	assert.Equal(t, []string{"inventory", "stock"}, sortedKeys(update.Fields()))

	update.Apply(&p)
	assert.Equal(t, "Retro", p.Name)
	assert.Equal(t, 800000.0, p.Price)
	assert.Equal(t, 0, p.Stock)
	assert.Equal(t, []string{"Black"}, p.Colors)
	assert.Equal(t, inventory, p.Inventory)
	assert.True(t, p.Available())
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
