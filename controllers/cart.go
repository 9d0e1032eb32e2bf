package controllers

import (
	"net/http"

	"helmet-store/models"
	"helmet-store/services"
	"helmet-store/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CartController handles cart-related requests
type CartController struct {
	carts *services.CartService
	log   *zap.Logger
}

func NewCartController(carts *services.CartService, log *zap.Logger) *CartController {
	return &CartController{carts: carts, log: log}
}

// cartItemRequest accepts both the current field names and the ones older
// storefront builds still send (id, name, color, size).
type cartItemRequest struct {
	ProductID     string  `json:"productId"`
	ID            string  `json:"id"`
	ProductName   string  `json:"productName"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Quantity      *int    `json:"quantity"`
	SelectedColor string  `json:"selectedColor"`
	Color         string  `json:"color"`
	SelectedSize  string  `json:"selectedSize"`
	Size          string  `json:"size"`
}

func (req cartItemRequest) quantity() int {
	if req.Quantity == nil {
		return 0
	}
	return *req.Quantity
}

func (req cartItemRequest) item() models.CartItem {
	return models.CartItem{
		ProductID:     firstNonEmpty(req.ProductID, req.ID),
		ProductName:   firstNonEmpty(req.ProductName, req.Name),
		Price:         req.Price,
		Quantity:      req.quantity(),
		SelectedColor: firstNonEmpty(req.SelectedColor, req.Color),
		SelectedSize:  firstNonEmpty(req.SelectedSize, req.Size),
	}
}

type replaceCartRequest struct {
	UserID     string            `json:"userId"`
	Items      []cartItemRequest `json:"items"`
	TotalPrice float64           `json:"totalPrice"`
}

// GetCart returns the user's cart, or an empty one
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.carts.Get(ctx, mux.Vars(r)["userId"])
	if err != nil {
		utils.WriteError(w, requestLogger(cc.log, r), err, "Failed to fetch cart")
		return
	}
	utils.WriteJSON(w, http.StatusOK, dataResponse{Data: cart})
}

// ReplaceCart stores a complete cart for the user
func (cc *CartController) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	var req replaceCartRequest
	if err := decodeBody(r, &req, false); err != nil {
		utils.WriteError(w, requestLogger(cc.log, r), err, "Failed to save cart")
		return
	}
	items := make([]models.CartItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, it.item())
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.carts.Replace(ctx, req.UserID, items, req.TotalPrice)
	if err != nil {
		utils.WriteError(w, requestLogger(cc.log, r), err, "Failed to save cart")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, dataResponse{Data: cart})
}

// AddToCart adds a line, or more of an existing line, to the user's cart
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cartItemRequest
	if err := decodeBody(r, &req, false); err != nil {
		utils.WriteError(w, requestLogger(cc.log, r), err, "Failed to add item")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.carts.AddItem(ctx, mux.Vars(r)["userId"], req.item())
	if err != nil {
		utils.WriteError(w, requestLogger(cc.log, r), err, "Failed to add item")
		return
	}
	utils.WriteJSON(w, http.StatusOK, dataResponse{Data: cart})
}

// lineKey reads the color and size of the addressed line from the body, then
// falls back to the query string.
func (cc *CartController) lineKey(r *http.Request) (models.LineKey, cartItemRequest, error) {
	var req cartItemRequest
	if err := decodeBody(r, &req, true); err != nil {
		return models.LineKey{}, req, err
	}
	q := r.URL.Query()
	key := models.LineKey{
		ProductID: mux.Vars(r)["productId"],
		Color:     firstNonEmpty(req.SelectedColor, req.Color, q.Get("selectedColor"), q.Get("color")),
		Size:      firstNonEmpty(req.SelectedSize, req.Size, q.Get("selectedSize"), q.Get("size")),
	}
	return key, req, nil
}

// UpdateCartItem sets the quantity of one line; zero removes it
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	key, req, err := cc.lineKey(r)
	if err != nil {
		utils.WriteError(w, requestLogger(cc.log, r), err, "Failed to update item")
		return
	}

	if req.Quantity == nil {
		utils.WriteError(w, requestLogger(cc.log, r), utils.NewValidationError("Missing quantity"), "")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.carts.UpdateItemQuantity(ctx, mux.Vars(r)["userId"], key, *req.Quantity)
	if err != nil {
		utils.WriteError(w, requestLogger(cc.log, r), err, "Failed to update item")
		return
	}
	utils.WriteJSON(w, http.StatusOK, dataResponse{Data: cart})
}

// RemoveFromCart removes one line from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	key, _, err := cc.lineKey(r)
	if err != nil {
		utils.WriteError(w, requestLogger(cc.log, r), err, "Failed to remove item")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.carts.RemoveItem(ctx, mux.Vars(r)["userId"], key)
	if err != nil {
		utils.WriteError(w, requestLogger(cc.log, r), err, "Failed to remove item")
		return
	}
	utils.WriteJSON(w, http.StatusOK, dataResponse{Data: cart})
}

// ClearCart empties the user's cart
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	cart, err := cc.carts.Clear(ctx, mux.Vars(r)["userId"])
	if err != nil {
		utils.WriteError(w, requestLogger(cc.log, r), err, "Failed to clear cart")
		return
	}
	utils.WriteJSON(w, http.StatusOK, dataResponse{Data: cart})
}
