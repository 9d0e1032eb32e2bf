package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"helmet-store/models"
	"helmet-store/store"
	"helmet-store/utils"

	"go.uber.org/zap"
)

// maxCartAttempts bounds the read-modify-write loop when concurrent requests
// keep bumping the cart version underneath us.
const maxCartAttempts = 5

var errCartNotFound = utils.NewNotFoundError("Cart not found")

// CartService mutates the single cart document each user owns
type CartService struct {
	carts store.CartStore
	log   *zap.Logger
	now   func() time.Time
}

func NewCartService(carts store.CartStore, log *zap.Logger) *CartService {
	return &CartService{carts: carts, log: log, now: time.Now}
}

// Get returns the user's cart, or an empty cart if none is stored
func (s *CartService) Get(ctx context.Context, userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, utils.NewValidationError("Missing userId")
	}
	cart, err := s.carts.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.NewCart(userID), nil
	}
	if err != nil {
		return nil, utils.NewInternalError("Failed to fetch cart", err)
	}
	return cart, nil
}

// Replace stores items as the user's whole cart. Subtotals and the total are
// derived from the items; lines sharing a key are merged.
func (s *CartService) Replace(ctx context.Context, userID string, items []models.CartItem, totalPrice float64) (*models.Cart, error) {
	if userID == "" || items == nil {
		return nil, utils.NewValidationError("Missing userId or items")
	}
	for _, item := range items {
		if err := validateLine(item, true); err != nil {
			return nil, err
		}
	}

	cart, err := s.mutate(ctx, userID, true, func(cart *models.Cart) error {
		cart.Clear()
		for _, item := range items {
			cart.AddItem(item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if math.Abs(cart.TotalPrice-totalPrice) > 0.005 {
		s.log.Debug("client cart total disagrees with items",
			zap.String("user_id", userID),
			zap.Float64("client_total", totalPrice),
			zap.Float64("total", cart.TotalPrice))
	}
	return cart, nil
}

// AddItem merges item into the line with the same product, color and size,
// or appends it as a new line
func (s *CartService) AddItem(ctx context.Context, userID string, item models.CartItem) (*models.Cart, error) {
	if userID == "" {
		return nil, utils.NewValidationError("Missing userId")
	}
	if err := validateLine(item, false); err != nil {
		return nil, err
	}
	return s.mutate(ctx, userID, true, func(cart *models.Cart) error {
		cart.AddItem(item)
		return nil
	})
}

// UpdateItemQuantity sets the quantity of an existing line; zero removes it
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID string, key models.LineKey, quantity int) (*models.Cart, error) {
	if userID == "" || key.ProductID == "" {
		return nil, utils.NewValidationError("Missing userId or productId")
	}
	if quantity < 0 {
		return nil, utils.NewValidationError("Quantity must not be negative")
	}
	return s.mutate(ctx, userID, false, func(cart *models.Cart) error {
		if !cart.SetQuantity(key, quantity) {
			return utils.NewNotFoundError("Item not found in cart")
		}
		return nil
	})
}

// RemoveItem drops the line identified by key
func (s *CartService) RemoveItem(ctx context.Context, userID string, key models.LineKey) (*models.Cart, error) {
	if userID == "" || key.ProductID == "" {
		return nil, utils.NewValidationError("Missing userId or productId")
	}
	return s.mutate(ctx, userID, false, func(cart *models.Cart) error {
		if _, ok := cart.RemoveItem(key); !ok {
			s.log.Debug("cart line not found",
				zap.String("user_id", userID),
				zap.String("product_id", key.ProductID),
				zap.String("color", key.Color),
				zap.String("size", key.Size))
			return utils.NewNotFoundError("Item not found in cart")
		}
		return nil
	})
}

// Clear empties the cart. A user without a cart gets an empty one back.
func (s *CartService) Clear(ctx context.Context, userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, utils.NewValidationError("Missing userId")
	}
	cart, err := s.mutate(ctx, userID, false, func(cart *models.Cart) error {
		cart.Clear()
		return nil
	})
	if errors.Is(err, errCartNotFound) {
		return models.NewCart(userID), nil
	}
	return cart, err
}

// mutate loads the cart, applies fn and saves the result conditionally on the
// version it read, retrying when another writer got there first.
func (s *CartService) mutate(ctx context.Context, userID string, create bool, fn func(*models.Cart) error) (*models.Cart, error) {
	for attempt := 0; attempt < maxCartAttempts; attempt++ {
		cart, err := s.carts.Get(ctx, userID)
		if errors.Is(err, store.ErrNotFound) {
			if !create {
				return nil, errCartNotFound
			}
			cart = models.NewCart(userID)
		} else if err != nil {
			return nil, utils.NewInternalError("Failed to fetch cart", err)
		}

		expected := cart.Version
		if err := fn(cart); err != nil {
			return nil, err
		}
		cart.Touch(s.now())

		err = s.carts.Save(ctx, cart, expected)
		if errors.Is(err, store.ErrVersionConflict) {
			s.log.Debug("cart changed concurrently, retrying", zap.String("user_id", userID), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, utils.NewInternalError("Failed to save cart", err)
		}
		return cart, nil
	}
	return nil, utils.NewInternalError("Failed to save cart", errors.New("cart kept changing concurrently"))
}

func validateLine(item models.CartItem, allowFree bool) error {
	if strings.TrimSpace(item.ProductID) == "" {
		return utils.NewValidationError("Missing productId")
	}
	if item.Quantity <= 0 {
		return utils.NewValidationError("Quantity must be positive")
	}
	if item.Price < 0 || !allowFree && item.Price == 0 {
		return utils.NewValidationError("Price must be positive")
	}
	return nil
}
