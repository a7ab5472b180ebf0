package model

import (
	"slices"
	"strings"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	StatusPlaced    OrderStatus = "placed"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPacked    OrderStatus = "packed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
	StatusRefunded  OrderStatus = "refunded"
)

// PaymentStatus tracks money movement for an order.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
	PaymentRefunded          PaymentStatus = "refunded"
)

// Canonical payment methods.
const (
	PaymentMethodCOD        = "COD"
	PaymentMethodCard       = "Card"
	PaymentMethodUPI        = "UPI"
	PaymentMethodNetBanking = "NetBanking"
	PaymentMethodWallet     = "Wallet"
)

var orderStateTransitions = map[OrderStatus][]OrderStatus{
	StatusPlaced:    {StatusConfirmed, StatusPacked, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded},
	StatusConfirmed: {StatusPacked, StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded},
	StatusPacked:    {StatusShipped, StatusDelivered, StatusCancelled, StatusRefunded},
	StatusShipped:   {StatusDelivered, StatusRefunded},
	StatusDelivered: {StatusRefunded},
	StatusCancelled: {StatusRefunded},
}

var cancellableStatuses = []OrderStatus{
	StatusPlaced,
	StatusConfirmed,
	StatusPacked,
}

// ParseOrderStatus normalises s and reports whether it names a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	switch status {
	case StatusPlaced, StatusConfirmed, StatusPacked, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded:
		return status, true
	}
	return "", false
}

// CanTransition reports whether an order may move from s to target.
func (s OrderStatus) CanTransition(target OrderStatus) bool {
	return slices.Contains(orderStateTransitions[s], target)
}

// IsCancellable reports whether an order in this state can still be cancelled.
func (s OrderStatus) IsCancellable() bool {
	return slices.Contains(cancellableStatuses, s)
}
