package dto

type CartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  *int  `json:"quantity"`
}

type CartQuoteRequest struct {
	CouponCode string `json:"couponCode"`
}

type CartLineDTO struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	ImageURL  string `json:"imageUrl"`
	UnitPrice Money  `json:"unitPrice"`
	Stock     int    `json:"stock"`
	Quantity  int    `json:"quantity"`
	LineTotal Money  `json:"lineTotal"`
}

type CartDTO struct {
	Items     []CartLineDTO `json:"items"`
	ItemCount int           `json:"itemCount"`
	Subtotal  Money         `json:"subtotal"`
}

type QuoteDTO struct {
	CouponCode *string `json:"couponCode"`
	Subtotal   Money   `json:"subtotal"`
	Discount   Money   `json:"discount"`
	Shipping   Money   `json:"shipping"`
	Total      Money   `json:"total"`
}
