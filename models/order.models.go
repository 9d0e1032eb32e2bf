package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipping  OrderStatus = "shipping"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// transitions lists the statuses reachable from each non-terminal status.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipping, StatusCancelled},
	StatusShipping:  {StatusDelivered, StatusCancelled},
}

// ParseOrderStatus returns the status named s, or false if s is not a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusConfirmed, StatusShipping, StatusDelivered, StatusCancelled:
		return st, true
	}
	return "", false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether an order may move from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

const (
	MethodCOD  = "cod"
	MethodBank = "bank"
)

// ParsePaymentMethod accepts "cod", "bank" and the storefront's "banking" alias.
// An empty method defaults to cash on delivery.
func ParsePaymentMethod(s string) (string, bool) {
	switch s {
	case "", MethodCOD:
		return MethodCOD, true
	case MethodBank, "banking":
		return MethodBank, true
	}
	return "", false
}

// OrderItem is a purchased line, copied from the cart at checkout
type OrderItem struct {
	ProductID   string  `bson:"productId" json:"productId"`
	ProductName string  `bson:"productName" json:"productName"`
	Price       float64 `bson:"price" json:"price"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	Color       string  `bson:"color" json:"color"`
	Size        string  `bson:"size" json:"size"`
}

// CustomerInfo holds the contact details captured on the checkout form
type CustomerInfo struct {
	FullName string `bson:"fullName" json:"fullName"`
	Email    string `bson:"email" json:"email"`
	Phone    string `bson:"phone" json:"phone"`
	Address  string `bson:"address" json:"address"`
	UserID   string `bson:"userId" json:"userId"`
}

// Order represents a placed order
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OrderID       string             `bson:"orderId" json:"orderId"`
	UserID        string             `bson:"userId" json:"userId"`
	Items         []OrderItem        `bson:"items" json:"items"`
	CustomerInfo  CustomerInfo       `bson:"customerInfo" json:"customerInfo"`
	TotalAmount   float64            `bson:"totalAmount" json:"totalAmount"`
	ShippingCost  float64            `bson:"shippingCost" json:"shippingCost"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"` // "cod" or "bank"
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	Status        OrderStatus        `bson:"status" json:"status"`
	Notes         string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderView is the flattened shape the dashboard and order tracking pages consume
type OrderView struct {
	ID              string      `json:"id"`
	OrderID         string      `json:"orderId"`
	UserID          string      `json:"userId"`
	UserName        string      `json:"userName"`
	UserEmail       string      `json:"userEmail"`
	UserPhone       string      `json:"userPhone"`
	ShippingAddress string      `json:"shippingAddress"`
	Items           []OrderItem `json:"items"`
	TotalAmount     float64     `json:"totalAmount"`
	ShippingCost    float64     `json:"shippingCost"`
	PaymentMethod   string      `json:"paymentMethod"`
	PaymentStatus   string      `json:"paymentStatus"`
	Status          OrderStatus `json:"status"`
	Note            string      `json:"note,omitempty"`
	CreatedAt       string      `json:"createdAt"`
	UpdatedAt       string      `json:"updatedAt"`
}

func (o *Order) View() OrderView {
	items := o.Items
	if items == nil {
		items = []OrderItem{}
	}
	return OrderView{
		ID:              o.ID.Hex(),
		OrderID:         o.OrderID,
		UserID:          o.UserID,
		UserName:        o.CustomerInfo.FullName,
		UserEmail:       o.CustomerInfo.Email,
		UserPhone:       o.CustomerInfo.Phone,
		ShippingAddress: o.CustomerInfo.Address,
		Items:           items,
		TotalAmount:     o.TotalAmount,
		ShippingCost:    o.ShippingCost,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Status:          o.Status,
		Note:            o.Notes,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       o.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// CreatedOrder is the minimal projection returned when an order is placed
type CreatedOrder struct {
	ID          string      `json:"id"`
	OrderID     string      `json:"orderId"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"totalAmount"`
	CreatedAt   time.Time   `json:"createdAt"`
}
