package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
)

// Payment represents a payment submitted for an order
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PaymentID     string             `bson:"paymentId" json:"paymentId"`
	OrderID       string             `bson:"orderId" json:"orderId"`
	UserID        string             `bson:"userId" json:"userId"`
	Amount        float64            `bson:"amount" json:"amount"`
	Method        string             `bson:"method" json:"method"` // "cod" or "bank"
	Status        string             `bson:"status" json:"status"` // "pending", "completed"
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
