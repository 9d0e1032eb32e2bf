package models

const (
	CounterOrder   = "orderId"
	CounterPayment = "paymentId"
)

// Counter is a named monotonically increasing sequence
type Counter struct {
	ID  string `bson:"_id" json:"id"`
	Seq int64  `bson:"seq" json:"seq"`
}
