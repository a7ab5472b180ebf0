package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Money is rendered as JSON numbers rather than strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Order represents a confirmed purchase.
type Order struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	OrderNumber     string          `json:"orderNumber" db:"order_number"`
	UserID          string          `json:"userId" db:"user_id"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress" db:"shipping_address"`
	PaymentMethod   string          `json:"paymentMethod" db:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	IsPaid          bool            `json:"isPaid" db:"is_paid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty" db:"paid_at"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty" db:"payment_result"`
	ItemsPrice      decimal.Decimal `json:"itemsPrice" db:"items_price"`
	ShippingPrice   decimal.Decimal `json:"shippingPrice" db:"shipping_price"`
	TaxPrice        decimal.Decimal `json:"taxPrice" db:"tax_price"`
	Discount        decimal.Decimal `json:"discount" db:"discount"`
	TotalPrice      decimal.Decimal `json:"totalPrice" db:"total_price"`
	RefundedAmount  decimal.Decimal `json:"refundedAmount" db:"refunded_amount"`
	Coupon          *AppliedCoupon  `json:"coupon,omitempty" db:"coupon"`
	OrderStatus     OrderStatus     `json:"orderStatus" db:"order_status"`
	StatusHistory   []StatusChange  `json:"statusHistory"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty" db:"delivered_at"`
	CancelledAt     *time.Time      `json:"cancelledAt,omitempty" db:"cancelled_at"`
	CancelReason    string          `json:"cancelReason,omitempty" db:"cancel_reason"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// OrderItem is a line-item snapshot taken when the order was placed.
type OrderItem struct {
	ID            uuid.UUID       `json:"-" db:"id"`
	OrderID       uuid.UUID       `json:"-" db:"order_id"`
	Position      int             `json:"-" db:"position"`
	ProductID     string          `json:"productId" db:"product_id"`
	Name          string          `json:"name" db:"name"`
	ImageURL      string          `json:"imageUrl" db:"image_url"`
	UnitPrice     decimal.Decimal `json:"unitPrice" db:"unit_price"`
	OriginalPrice decimal.Decimal `json:"originalPrice" db:"original_price"`
	Quantity      int             `json:"quantity" db:"quantity"`
	SelectedColor string          `json:"selectedColor,omitempty" db:"selected_color"`
	SelectedSize  string          `json:"selectedSize,omitempty" db:"selected_size"`
}

// LineTotal returns unitPrice × quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// PaymentResult is the gateway reference of a pre-authorised online payment.
type PaymentResult struct {
	TransactionID  string `json:"transactionId"`
	GatewayOrderID string `json:"gatewayOrderId"`
}

// AppliedCoupon records the coupon redeemed on an order.
type AppliedCoupon struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

// StatusChange is one entry of an order's status history.
type StatusChange struct {
	Status    OrderStatus `json:"status" db:"status"`
	Timestamp time.Time   `json:"timestamp" db:"created_at"`
	Actor     string      `json:"actor" db:"actor"`
	Note      string      `json:"note,omitempty" db:"note"`
}

// OrderRequest represents the request payload for creating an order.
type OrderRequest struct {
	Address        string             `json:"address"`
	PaymentMethod  string             `json:"paymentMethod"`
	Items          []OrderItemRequest `json:"items"`
	Coupon         *CouponRequest     `json:"coupon,omitempty"`
	PaymentDetails *PaymentDetails    `json:"paymentDetails,omitempty"`
}

// OrderItemRequest represents a single item in an order request.
type OrderItemRequest struct {
	Product         string           `json:"product"`
	Quantity        int              `json:"quantity"`
	SelectedColor   string           `json:"selectedColor,omitempty"`
	SelectedSize    string           `json:"selectedSize,omitempty"`
	ProductSnapshot *ProductSnapshot `json:"productSnapshot,omitempty"`
}

// ProductSnapshot is what the client displayed when the item was added to the cart.
type ProductSnapshot struct {
	Name          string           `json:"name,omitempty"`
	Image         string           `json:"image,omitempty"`
	Selling       *decimal.Decimal `json:"selling,omitempty"`
	OriginalPrice *decimal.Decimal `json:"originalPrice,omitempty"`
}

// PaymentDetails is sent when the payment was already authorised by the gateway.
type PaymentDetails struct {
	TransactionID  string `json:"transactionId"`
	GatewayOrderID string `json:"gatewayOrderId"`
}

// CouponRequest accepts either a bare code ("SAVE10") or {"code": "SAVE10", "discount": 10}.
type CouponRequest struct {
	Code     string           `json:"code"`
	Discount *decimal.Decimal `json:"discount,omitempty"`
}

// UnmarshalJSON decodes both accepted coupon shapes.
func (c *CouponRequest) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var code string
		if err := json.Unmarshal(data, &code); err != nil {
			return fmt.Errorf("failed to decode coupon code: %w", err)
		}
		c.Code = code
		c.Discount = nil
		return nil
	}

	type plain CouponRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("failed to decode coupon: %w", err)
	}
	*c = CouponRequest(p)
	return nil
}

// StatusUpdateRequest is the admin payload for PUT /api/orders/{id}/status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// CancelRequest is the payload for a user cancellation.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RefundRequest is the admin payload for a refund.
type RefundRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason,omitempty"`
}

// OrderFilter narrows an admin order listing.
type OrderFilter struct {
	Status OrderStatus
	Limit  int
	Offset int
}
