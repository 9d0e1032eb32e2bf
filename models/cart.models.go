package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LineKey identifies a cart line. Two lines never share a key.
type LineKey struct {
	ProductID string
	Color     string
	Size      string
}

// CartItem represents a line in the cart
type CartItem struct {
	ProductID     string  `bson:"productId" json:"productId"`
	ProductName   string  `bson:"productName,omitempty" json:"productName,omitempty"`
	Price         float64 `bson:"price" json:"price"`
	Quantity      int     `bson:"quantity" json:"quantity"`
	SelectedColor string  `bson:"selectedColor" json:"selectedColor"`
	SelectedSize  string  `bson:"selectedSize" json:"selectedSize"`
	Subtotal      float64 `bson:"subtotal" json:"subtotal"`
}

func (i CartItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, Color: i.SelectedColor, Size: i.SelectedSize}
}

// Cart represents a user's shopping cart. TotalPrice is kept in step with the
// lines on every mutation; Version increases by one on every successful save.
type Cart struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID     string             `bson:"userId" json:"userId"`
	Items      []CartItem         `bson:"items" json:"items"`
	TotalPrice float64            `bson:"totalPrice" json:"totalPrice"`
	Version    int64              `bson:"version" json:"-"`
	CreatedAt  *time.Time         `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt  *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// NewCart returns the empty cart served for users that have none stored.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

func (c *Cart) indexOf(key LineKey) int {
	for i, item := range c.Items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// Line returns the line stored under key.
func (c *Cart) Line(key LineKey) (CartItem, bool) {
	if i := c.indexOf(key); i >= 0 {
		return c.Items[i], true
	}
	return CartItem{}, false
}

// AddItem merges item into the cart. An existing line keeps its price and
// grows by item.Quantity; otherwise item is appended as a new line.
func (c *Cart) AddItem(item CartItem) {
	if i := c.indexOf(item.Key()); i >= 0 {
		line := &c.Items[i]
		delta := line.Price * float64(item.Quantity)
		line.Quantity += item.Quantity
		line.Subtotal += delta
		c.TotalPrice += delta
		return
	}
	item.Subtotal = item.Price * float64(item.Quantity)
	c.Items = append(c.Items, item)
	c.TotalPrice += item.Subtotal
}

// SetQuantity changes the quantity of a line; zero removes it.
func (c *Cart) SetQuantity(key LineKey, quantity int) bool {
	i := c.indexOf(key)
	if i < 0 {
		return false
	}
	if quantity == 0 {
		c.removeAt(i)
		return true
	}
	line := &c.Items[i]
	subtotal := line.Price * float64(quantity)
	c.TotalPrice += subtotal - line.Subtotal
	line.Quantity = quantity
	line.Subtotal = subtotal
	return true
}

// RemoveItem drops the line under key and returns it.
func (c *Cart) RemoveItem(key LineKey) (CartItem, bool) {
	i := c.indexOf(key)
	if i < 0 {
		return CartItem{}, false
	}
	line := c.Items[i]
	c.removeAt(i)
	return line, true
}

func (c *Cart) removeAt(i int) {
	line := c.Items[i]
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.TotalPrice -= line.Price * float64(line.Quantity)
	if len(c.Items) == 0 {
		c.TotalPrice = 0
	}
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.TotalPrice = 0
}

// Recalculate derives every subtotal and the cart total from the lines.
func (c *Cart) Recalculate() {
	total := 0.0
	for i := range c.Items {
		c.Items[i].Subtotal = c.Items[i].Price * float64(c.Items[i].Quantity)
		total += c.Items[i].Subtotal
	}
	c.TotalPrice = total
}

// Touch stamps the modification time, setting the creation time on first save.
func (c *Cart) Touch(now time.Time) {
	if c.CreatedAt == nil {
		created := now
		c.CreatedAt = &created
	}
	c.UpdatedAt = &now
}
