package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"helmet-store/metrics"
	"helmet-store/models"
	"helmet-store/store"
	"helmet-store/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const unknownProductName = "Unknown Product"

// ErrInvalidTransition is wrapped by the error returned when an order status
// change is not allowed by the status graph.
var ErrInvalidTransition = errors.New("invalid order status transition")

// Caller identifies who is asking, as established by the bearer token
type Caller struct {
	UserID string
	Role   string
}

func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }

// OrderService places orders, moves them through their status graph and
// records payments against them
type OrderService struct {
	store   store.Store
	mailer  utils.Mailer
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

func NewOrderService(st store.Store, mailer utils.Mailer, m *metrics.Metrics, log *zap.Logger) *OrderService {
	if mailer == nil {
		mailer = utils.NoopMailer{}
	}
	return &OrderService{store: st, mailer: mailer, metrics: m, log: log, now: time.Now}
}

type CreateOrderInput struct {
	UserID        string
	Items         []models.OrderItem
	CustomerInfo  *models.CustomerInfo
	TotalAmount   *float64
	PaymentMethod string
	Notes         string
}

// Create places an order with a fresh ORD-YYYYMMDD-NNN identifier. The cart is
// left alone; clearing it is up to the client.
func (s *OrderService) Create(ctx context.Context, in CreateOrderInput) (*models.CreatedOrder, error) {
	if in.UserID == "" || len(in.Items) == 0 || in.CustomerInfo == nil || in.TotalAmount == nil {
		return nil, utils.NewValidationError("Missing userId, items, customerInfo or totalAmount")
	}
	if *in.TotalAmount < 0 {
		return nil, utils.NewValidationError("totalAmount must not be negative")
	}
	method, ok := models.ParsePaymentMethod(strings.ToLower(in.PaymentMethod))
	if !ok {
		return nil, utils.NewValidationError("Invalid payment method")
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, utils.NewValidationError("Item quantity must be positive")
		}
		if strings.TrimSpace(item.ProductName) == "" {
			item.ProductName = unknownProductName
		}
		items = append(items, item)
	}

	customer := *in.CustomerInfo
	if customer.UserID == "" {
		customer.UserID = in.UserID
	}

	seq, err := s.store.Counters().Next(ctx, models.CounterOrder)
	if err != nil {
		return nil, utils.NewInternalError("Failed to create order", err)
	}
	now := s.now()
	order := &models.Order{
		OrderID:       utils.FormatSequenceID("ORD", now, seq),
		UserID:        in.UserID,
		Items:         items,
		CustomerInfo:  customer,
		TotalAmount:   *in.TotalAmount,
		ShippingCost:  0,
		PaymentMethod: method,
		PaymentStatus: models.PaymentPending,
		Status:        models.StatusPending,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Orders().Create(ctx, order); err != nil {
		return nil, utils.NewInternalError("Failed to create order", err)
	}

	s.metrics.OrderCreated()
	s.log.Info("order created",
		zap.String("order_id", order.OrderID),
		zap.String("user_id", order.UserID),
		zap.Float64("total_amount", order.TotalAmount))
	s.notify(*order, utils.OrderConfirmationEmail)

	return &models.CreatedOrder{
		ID:          order.ID.Hex(),
		OrderID:     order.OrderID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		CreatedAt:   order.CreatedAt,
	}, nil
}

// List returns orders newest first. Admins see every order, everyone else
// only their own.
func (s *OrderService) List(ctx context.Context, caller Caller) ([]models.OrderView, error) {
	owner := caller.UserID
	if caller.IsAdmin() {
		owner = ""
	}
	orders, err := s.store.Orders().List(ctx, owner)
	if err != nil {
		return nil, utils.NewInternalError("Failed to fetch orders", err)
	}
	views := make([]models.OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, orders[i].View())
	}
	return views, nil
}

// Get looks an order up by object id or order identifier. Orders owned by
// someone else are reported as missing to non-admin callers.
func (s *OrderService) Get(ctx context.Context, caller Caller, id string) (*models.OrderView, error) {
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() && order.UserID != caller.UserID {
		return nil, utils.NewNotFoundError("Order not found")
	}
	view := order.View()
	return &view, nil
}

func (s *OrderService) find(ctx context.Context, id string) (*models.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, utils.NewValidationError("Missing order id")
	}
	order, err := s.store.Orders().FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, utils.NewNotFoundError("Order not found")
	}
	if err != nil {
		return nil, utils.NewInternalError("Failed to fetch order", err)
	}
	return order, nil
}

// UpdateStatus moves an order along the status graph. Setting the current
// status again is accepted and changes nothing.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.OrderView, error) {
	next, ok := models.ParseOrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !ok {
		return nil, utils.NewValidationError("Invalid status")
	}
	order, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status == next {
		view := order.View()
		return &view, nil
	}
	if !order.Status.CanTransition(next) {
		return nil, &utils.AppError{
			Kind:    utils.KindConflict,
			Message: fmt.Sprintf("Cannot change status from %s to %s", order.Status, next),
			Err:     ErrInvalidTransition,
		}
	}

	updated, err := s.store.Orders().UpdateStatus(ctx, order.ID, order.Status, next, s.now())
	if errors.Is(err, store.ErrVersionConflict) {
		return nil, utils.NewConflictError("Order status was changed by another request")
	}
	if err != nil {
		return nil, utils.NewInternalError("Failed to update status", err)
	}

	s.log.Info("order status changed",
		zap.String("order_id", updated.OrderID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(next)))
	s.notify(*updated, utils.StatusUpdateEmail)

	view := updated.View()
	return &view, nil
}

type CreatePaymentInput struct {
	OrderID string
	UserID  string
	Amount  *float64
	Method  string
}

// CreatePayment records a payment and marks its order paid. Both writes share
// one store transaction.
func (s *OrderService) CreatePayment(ctx context.Context, in CreatePaymentInput) (*models.Payment, error) {
	if in.OrderID == "" || in.UserID == "" || in.Amount == nil || in.Method == "" {
		return nil, utils.NewValidationError("Missing orderId, userId, amount or method")
	}
	if *in.Amount <= 0 {
		return nil, utils.NewValidationError("Amount must be positive")
	}
	method, ok := models.ParsePaymentMethod(strings.ToLower(in.Method))
	if !ok {
		return nil, utils.NewValidationError("Invalid payment method")
	}
	status := models.PaymentStatusCompleted
	if method == models.MethodCOD {
		status = models.PaymentStatusPending
	}

	var payment *models.Payment
	err := s.store.WithTransaction(ctx, func(ctx context.Context) error {
		order, err := s.find(ctx, in.OrderID)
		if err != nil {
			return err
		}
		seq, err := s.store.Counters().Next(ctx, models.CounterPayment)
		if err != nil {
			return err
		}
		now := s.now()
		orderID := order.OrderID
		if orderID == "" {
			orderID = order.ID.Hex()
		}
		payment = &models.Payment{
			PaymentID:     utils.FormatSequenceID("PAY", now, seq),
			OrderID:       orderID,
			UserID:        in.UserID,
			Amount:        *in.Amount,
			Method:        method,
			Status:        status,
			TransactionID: uuid.NewString(),
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.store.Payments().Create(ctx, payment); err != nil {
			return err
		}
		return s.store.Orders().SetPaymentStatus(ctx, order.ID, models.PaymentPaid, now)
	})
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, utils.NewInternalError("Failed to create payment", err)
	}

	s.log.Info("payment recorded",
		zap.String("payment_id", payment.PaymentID),
		zap.String("order_id", payment.OrderID),
		zap.String("status", payment.Status))
	return payment, nil
}

func (s *OrderService) notify(order models.Order, render func(*models.Order) (string, string)) {
	to := order.CustomerInfo.Email
	if to == "" || to == "N/A" {
		return
	}
	subject, body := render(&order)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.mailer.SendEmail(ctx, to, subject, body); err != nil {
			s.log.Warn("failed to send order email", zap.String("order_id", order.OrderID), zap.Error(err))
		}
	}()
}
