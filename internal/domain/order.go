package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "bloom/internal/errors"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirmed  OrderStatus = "CONFIRMED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	candidate := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	for _, st := range OrderStatuses {
		if st == candidate {
			return st, true
		}
	}
	return "", false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CustomerCancellable reports whether the buyer may still cancel.
func (s OrderStatus) CustomerCancellable() bool {
	return s == OrderStatusPending || s == OrderStatusConfirmed
}

// CheckTransition returns a conflict error when the order cannot move from s to next.
func (s OrderStatus) CheckTransition(next OrderStatus) error {
	if s == next {
		return apperrors.NewConflictError(fmt.Sprintf("order is already %s", s))
	}
	if s.IsTerminal() {
		return apperrors.NewConflictError(fmt.Sprintf("order is %s and can no longer change status", s))
	}
	return nil
}

type DeliveryDetails struct {
	RecipientName string
	Phone         string
	Street        string
	City          string
	State         string
	PostalCode    string
}

type Order struct {
	ID           int64
	OrderNumber  string
	UserID       int64
	Status       OrderStatus
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	ShippingCost decimal.Decimal
	Total        decimal.Decimal
	CouponID     *int64
	CouponCode   *string
	Delivery     DeliveryDetails
	DeliveryDate *time.Time
	GiftMessage  *string
	Notes        *string
	Items        []OrderItem
	History      []OrderStatusChange
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OrderItem struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type OrderStatusChange struct {
	ID        int64
	OrderID   int64
	Status    OrderStatus
	ChangedBy *int64
	CreatedAt time.Time
}

// NewOrderNumber builds a human friendly, unique order reference.
func NewOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("BLM-%s-%s", now.UTC().Format("20060102"), suffix)
}

type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// CalculateTotals applies total = subtotal - discount + shipping.
func CalculateTotals(subtotal, discount decimal.Decimal, settings Settings) Totals {
	shipping := settings.ShippingFor(subtotal.Sub(discount))
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Shipping: shipping,
		Total:    subtotal.Sub(discount).Add(shipping),
	}
}

// Subtotal sums the line totals of items.
func Subtotal(items []OrderItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

const (
	ReasonProductNotFound    = "PRODUCT_NOT_FOUND"
	ReasonProductInactive    = "PRODUCT_INACTIVE"
	ReasonInsufficientStock  = "INSUFFICIENT_STOCK"
	ReasonOrderNotCancelable = "ORDER_NOT_CANCELLABLE"
)

// ItemFailure explains why a checkout line could not be fulfilled.
type ItemFailure struct {
	ProductID int64  `json:"productId"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Reason    string `json:"reason"`
}
