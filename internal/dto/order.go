package dto

import (
	"time"

	"bloom/internal/domain"
)

type CheckoutItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type DeliveryRequest struct {
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
}

type CheckoutRequest struct {
	Items        []CheckoutItem   `json:"items"`
	AddressID    *int64           `json:"addressId"`
	Delivery     *DeliveryRequest `json:"delivery"`
	CouponCode   string           `json:"couponCode"`
	DeliveryDate *string          `json:"deliveryDate"`
	GiftMessage  *string          `json:"giftMessage"`
	Notes        *string          `json:"notes"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type DeliveryDTO struct {
	RecipientName string `json:"recipientName"`
	Phone         string `json:"phone"`
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postalCode"`
}

type OrderItemDTO struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   Money  `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
	LineTotal   Money  `json:"lineTotal"`
}

type StatusChangeDTO struct {
	Status    string    `json:"status"`
	ChangedBy *int64    `json:"changedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type OrderSummaryDTO struct {
	ID          int64     `json:"id"`
	OrderNumber string    `json:"orderNumber"`
	UserID      int64     `json:"userId"`
	Status      string    `json:"status"`
	Total       Money     `json:"total"`
	CreatedAt   time.Time `json:"createdAt"`
}

type OrderDTO struct {
	OrderSummaryDTO
	Subtotal     Money             `json:"subtotal"`
	Discount     Money             `json:"discount"`
	ShippingCost Money             `json:"shippingCost"`
	CouponCode   *string           `json:"couponCode"`
	Delivery     DeliveryDTO       `json:"delivery"`
	DeliveryDate *string           `json:"deliveryDate"`
	GiftMessage  *string           `json:"giftMessage"`
	Notes        *string           `json:"notes"`
	Items        []OrderItemDTO    `json:"items"`
	History      []StatusChangeDTO `json:"history"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// DateLayout is the wire format of delivery dates.
const DateLayout = "2006-01-02"

func FromOrderSummary(o domain.Order) OrderSummaryDTO {
	return OrderSummaryDTO{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		UserID:      o.UserID,
		Status:      string(o.Status),
		Total:       NewMoney(o.Total),
		CreatedAt:   o.CreatedAt,
	}
}

func FromOrderSummaries(orders []domain.Order) []OrderSummaryDTO {
	out := make([]OrderSummaryDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrderSummary(o))
	}
	return out
}

func FromOrder(o domain.Order) OrderDTO {
	out := OrderDTO{
		OrderSummaryDTO: FromOrderSummary(o),
		Subtotal:        NewMoney(o.Subtotal),
		Discount:        NewMoney(o.Discount),
		ShippingCost:    NewMoney(o.ShippingCost),
		CouponCode:      o.CouponCode,
		Delivery: DeliveryDTO{
			RecipientName: o.Delivery.RecipientName,
			Phone:         o.Delivery.Phone,
			Street:        o.Delivery.Street,
			City:          o.Delivery.City,
			State:         o.Delivery.State,
			PostalCode:    o.Delivery.PostalCode,
		},
		GiftMessage: o.GiftMessage,
		Notes:       o.Notes,
		Items:       make([]OrderItemDTO, 0, len(o.Items)),
		History:     make([]StatusChangeDTO, 0, len(o.History)),
		UpdatedAt:   o.UpdatedAt,
	}
	if o.DeliveryDate != nil {
		d := o.DeliveryDate.Format(DateLayout)
		out.DeliveryDate = &d
	}
	for _, it := range o.Items {
		out.Items = append(out.Items, OrderItemDTO{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   NewMoney(it.UnitPrice),
			Quantity:    it.Quantity,
			LineTotal:   NewMoney(it.LineTotal()),
		})
	}
	for _, h := range o.History {
		out.History = append(out.History, StatusChangeDTO{Status: string(h.Status), ChangedBy: h.ChangedBy, CreatedAt: h.CreatedAt})
	}
	return out
}
