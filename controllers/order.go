package controllers

import (
	"net/http"

	"helmet-store/models"
	"helmet-store/services"
	"helmet-store/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// OrderController handles order and payment requests
type OrderController struct {
	orders *services.OrderService
	log    *zap.Logger
}

func NewOrderController(orders *services.OrderService, log *zap.Logger) *OrderController {
	return &OrderController{orders: orders, log: log}
}

type orderItemRequest struct {
	ProductID     string  `json:"productId"`
	ID            string  `json:"id"`
	ProductName   string  `json:"productName"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	Color         string  `json:"color"`
	SelectedColor string  `json:"selectedColor"`
	Size          string  `json:"size"`
	SelectedSize  string  `json:"selectedSize"`
}

// orderRequest also accepts the flat customer fields the first checkout page
// posted instead of customerInfo.
type orderRequest struct {
	UserID          string               `json:"userId"`
	Items           []orderItemRequest   `json:"items"`
	CustomerInfo    *models.CustomerInfo `json:"customerInfo"`
	TotalAmount     *float64             `json:"totalAmount"`
	PaymentMethod   string               `json:"paymentMethod"`
	Notes           string               `json:"notes"`
	Note            string               `json:"note"`
	UserName        string               `json:"userName"`
	UserEmail       string               `json:"userEmail"`
	UserPhone       string               `json:"userPhone"`
	ShippingAddress string               `json:"shippingAddress"`
}

func (req orderRequest) input() services.CreateOrderInput {
	in := services.CreateOrderInput{
		UserID:        req.UserID,
		CustomerInfo:  req.CustomerInfo,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		Notes:         firstNonEmpty(req.Notes, req.Note),
	}
	if in.CustomerInfo == nil && (req.UserName != "" || req.UserEmail != "" || req.ShippingAddress != "") {
		in.CustomerInfo = &models.CustomerInfo{
			FullName: req.UserName,
			Email:    req.UserEmail,
			Phone:    req.UserPhone,
			Address:  req.ShippingAddress,
			UserID:   req.UserID,
		}
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, models.OrderItem{
			ProductID:   firstNonEmpty(it.ProductID, it.ID),
			ProductName: firstNonEmpty(it.ProductName, it.Name),
			Price:       it.Price,
			Quantity:    it.Quantity,
			Color:       firstNonEmpty(it.Color, it.SelectedColor),
			Size:        firstNonEmpty(it.Size, it.SelectedSize),
		})
	}
	return in
}

// CreateOrder places an order
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decodeBody(r, &req, false); err != nil {
		utils.WriteError(w, requestLogger(oc.log, r), err, "Failed to create order")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	created, err := oc.orders.Create(ctx, req.input())
	if err != nil {
		utils.WriteError(w, requestLogger(oc.log, r), err, "Failed to create order")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, dataResponse{Data: created})
}

// GetOrders lists the orders visible to the caller
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		utils.WriteError(w, requestLogger(oc.log, r), utils.NewAuthError("Unauthorized"), "")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := oc.orders.List(ctx, caller)
	if err != nil {
		utils.WriteError(w, requestLogger(oc.log, r), err, "Failed to fetch orders")
		return
	}
	utils.WriteJSON(w, http.StatusOK, dataResponse{Data: orders})
}

// GetOrder returns one order by object id or order number
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		utils.WriteError(w, requestLogger(oc.log, r), utils.NewAuthError("Unauthorized"), "")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.orders.Get(ctx, caller, mux.Vars(r)["id"])
	if err != nil {
		utils.WriteError(w, requestLogger(oc.log, r), err, "Failed to fetch order")
		return
	}
	utils.WriteJSON(w, http.StatusOK, dataResponse{Data: order})
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an order to a new status
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeBody(r, &req, false); err != nil {
		utils.WriteError(w, requestLogger(oc.log, r), err, "Failed to update status")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.orders.UpdateStatus(ctx, mux.Vars(r)["id"], req.Status)
	if err != nil {
		utils.WriteError(w, requestLogger(oc.log, r), err, "Failed to update status")
		return
	}
	utils.WriteJSON(w, http.StatusOK, dataResponse{Data: order})
}

type paymentRequest struct {
	OrderID string   `json:"orderId"`
	UserID  string   `json:"userId"`
	Amount  *float64 `json:"amount"`
	Method  string   `json:"method"`
}

// CreatePayment records a payment for an order
func (oc *OrderController) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeBody(r, &req, false); err != nil {
		utils.WriteError(w, requestLogger(oc.log, r), err, "Failed to create payment")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	payment, err := oc.orders.CreatePayment(ctx, services.CreatePaymentInput{
		OrderID: req.OrderID,
		UserID:  req.UserID,
		Amount:  req.Amount,
		Method:  req.Method,
	})
	if err != nil {
		utils.WriteError(w, requestLogger(oc.log, r), err, "Failed to create payment")
		return
	}
	utils.WriteJSON(w, http.StatusCreated, dataResponse{Data: payment})
}
