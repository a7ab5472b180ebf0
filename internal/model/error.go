package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ErrorKind classifies a domain error for the transport layer.
type ErrorKind string

const (
	KindValidation             ErrorKind = "validation"
	KindNotFound               ErrorKind = "not_found"
	KindInsufficientStock      ErrorKind = "insufficient_stock"
	KindInvalidState           ErrorKind = "invalid_state"
	KindRefundExceedsBalance   ErrorKind = "refund_exceeds_balance"
	KindConcurrentModification ErrorKind = "concurrent_modification"
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON            = "INVALID_JSON"
	ErrCodeMissingField           = "MISSING_FIELD"
	ErrCodeMissingAddress         = "MISSING_ADDRESS"
	ErrCodeMissingPaymentMethod   = "MISSING_PAYMENT_METHOD"
	ErrCodeMissingItems           = "MISSING_ITEMS"
	ErrCodeIncompleteAddress      = "INCOMPLETE_ADDRESS"
	ErrCodeInvalidQuantity        = "INVALID_QUANTITY"
	ErrCodeInvalidVariant         = "INVALID_VARIANT"
	ErrCodeInvalidPaymentMethod   = "INVALID_PAYMENT_METHOD"
	ErrCodeInvalidCoupon          = "INVALID_COUPON"
	ErrCodeInvalidStatus          = "INVALID_STATUS"
	ErrCodeUnknownStatus          = "UNKNOWN_STATUS"
	ErrCodeInvalidRefund          = "INVALID_REFUND"
	ErrCodeOrderNotPaid           = "ORDER_NOT_PAID"
	ErrCodeInvalidSettings        = "INVALID_SETTINGS"
	ErrCodeAddressNotFound        = "ADDRESS_NOT_FOUND"
	ErrCodeProductNotFound        = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound          = "ORDER_NOT_FOUND"
	ErrCodeInsufficientStock      = "INSUFFICIENT_STOCK"
	ErrCodeInvalidTransition      = "INVALID_TRANSITION"
	ErrCodeRefundExceedsBalance   = "REFUND_EXCEEDS_BALANCE"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeUnauthorised           = "UNAUTHORIZED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeInternalError          = "INTERNAL_ERROR"
)

// DomainError is a business-rule failure that is safe to show to the caller.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches domain errors by code so wrapped copies compare equal to the sentinels.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Retryable reports whether the same request may succeed if sent again.
func (e *DomainError) Retryable() bool {
	return e.Kind == KindConcurrentModification
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

func NewNotFoundError(code, message string) *DomainError {
	return NewDomainError(KindNotFound, code, message)
}

// NewProductNotFoundError names the missing product in the message.
func NewProductNotFoundError(name string) *DomainError {
	return NewNotFoundError(ErrCodeProductNotFound, fmt.Sprintf("Product not found: %s", name))
}

// NewInsufficientStockError names the product whose stock cannot cover the request.
func NewInsufficientStockError(name string, available, requested int) *DomainError {
	return NewDomainError(KindInsufficientStock, ErrCodeInsufficientStock,
		fmt.Sprintf("Insufficient stock for %s: %d available, %d requested", name, available, requested))
}

func NewInvalidStateError(message string) *DomainError {
	return NewDomainError(KindInvalidState, ErrCodeInvalidTransition, message)
}

// Common domain errors
var (
	ErrAddressRequired       = NewValidationError(ErrCodeMissingAddress, "Shipping address is required")
	ErrPaymentMethodRequired = NewValidationError(ErrCodeMissingPaymentMethod, "Payment method is required")
	ErrItemsRequired         = NewValidationError(ErrCodeMissingItems, "Order must contain at least one item")
	ErrIncompleteAddress     = NewValidationError(ErrCodeIncompleteAddress, "Incomplete address information")
	ErrInvalidQuantity       = NewValidationError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrInvalidCoupon         = NewValidationError(ErrCodeInvalidCoupon, "Invalid or expired coupon")
	ErrUnsupportedPayment    = NewValidationError(ErrCodeInvalidPaymentMethod, "Unsupported payment method")
	ErrInvalidRefundAmount   = NewValidationError(ErrCodeInvalidRefund, "Refund amount must be greater than zero")
	ErrOrderNotPaid          = NewValidationError(ErrCodeOrderNotPaid, "Order has not been paid")
	ErrUseRefundEndpoint     = NewValidationError(ErrCodeInvalidStatus, "Refunds must be issued through the refund operation")
	ErrUnknownStatus         = NewValidationError(ErrCodeUnknownStatus, "Unknown order status")
	ErrAddressNotFound       = NewNotFoundError(ErrCodeAddressNotFound, "Address not found")
	ErrOrderNotFound         = NewNotFoundError(ErrCodeOrderNotFound, "Order not found")
	ErrProductNotFound       = NewNotFoundError(ErrCodeProductNotFound, "Product not found")
	ErrRefundExceedsBalance  = NewDomainError(KindRefundExceedsBalance, ErrCodeRefundExceedsBalance, "Refund amount exceeds available balance")
	ErrConcurrentUpdate      = NewDomainError(KindConcurrentModification, ErrCodeConcurrentModification, "The request conflicted with a concurrent update, please retry")
)
