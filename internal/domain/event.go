package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced        = "order.placed"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the payload published for order lifecycle changes.
type OrderEvent struct {
	EventID     string          `json:"eventId"`
	Type        string          `json:"type"`
	OrderID     int64           `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	UserID      int64           `json:"userId"`
	Status      OrderStatus     `json:"status"`
	Previous    OrderStatus     `json:"previousStatus,omitempty"`
	Total       decimal.Decimal `json:"total"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxSent       OutboxStatus = "sent"
)

type OutboxEvent struct {
	ID        int64
	EventID   string
	EventType string
	Payload   []byte
	Status    OutboxStatus
	Attempts  int
	NextRetry time.Time
	CreatedAt time.Time
}

// OutboxBackoff returns the delay before retry number attempts, doubling
// from one second up to a minute.
func OutboxBackoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := time.Second
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= time.Minute {
			return time.Minute
		}
	}
	return d
}
