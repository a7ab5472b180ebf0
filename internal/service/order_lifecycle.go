package service

import (
	"context"
	"errors"
	"fmt"

	"bagvo/internal/events"
	"bagvo/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// GetOrder returns an order to its owner or to an administrator.
func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID, userID string, isAdmin bool) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	// Orders of other users are reported as missing.
	if order == nil || (!isAdmin && order.UserID != userID) {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// ListUserOrders returns the caller's orders, newest first.
func (s *orderService) ListUserOrders(ctx context.Context, userID string, limit, offset int) ([]model.Order, error) {
	limit, offset = clampPage(limit, offset)

	orders, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListOrders returns orders for the back office.
func (s *orderService) ListOrders(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" {
		status, ok := model.ParseOrderStatus(string(filter.Status))
		if !ok {
			return nil, model.ErrUnknownStatus
		}
		filter.Status = status
	}
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)

	orders, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order forward along its fulfilment path. Cancellation is
// delegated to the cancellation flow; refunds have their own operation.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, target, actor, note string) (*model.Order, error) {
	status, ok := model.ParseOrderStatus(target)
	if !ok {
		return nil, model.ErrUnknownStatus
	}

	switch status {
	case model.StatusRefunded:
		return nil, model.ErrUseRefundEndpoint
	case model.StatusCancelled:
		return s.cancel(ctx, id, "", actor, note)
	}

	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateStatus", trace.WithAttributes(
		attribute.String("order.id", id.String()),
		attribute.String("order.status", string(status)),
	))
	defer span.End()

	var updated *model.Order
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := s.lockOrder(ctx, tx, id, "")
		if err != nil {
			return err
		}

		if order.OrderStatus == status {
			return model.NewInvalidStateError(fmt.Sprintf("Order is already %s", status))
		}
		if !order.OrderStatus.CanTransition(status) {
			return model.NewInvalidStateError(
				fmt.Sprintf("Cannot change order status from %s to %s", order.OrderStatus, status))
		}

		now := s.now()
		order.OrderStatus = status
		order.UpdatedAt = now
		if status == model.StatusDelivered {
			deliveredAt := now
			order.DeliveredAt = &deliveredAt
			if !order.IsPaid && order.PaymentMethod == model.PaymentMethodCOD {
				paidAt := now
				order.IsPaid = true
				order.PaidAt = &paidAt
				order.PaymentStatus = model.PaymentPaid
			}
		}

		if err := s.saveTransition(ctx, tx, order, actor, note); err != nil {
			return err
		}
		updated = order
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return nil, s.wrapTxError(err, "failed to update order status", id.String())
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(status)).
		Str("actor", actor).
		Msg("order status updated")

	s.publish(ctx, events.OrderStatusChanged, updated, updated.TotalPrice)
	return updated, nil
}

// CancelOrder cancels the caller's order and puts its stock back.
func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID, userID, reason string) (*model.Order, error) {
	return s.cancel(ctx, id, userID, userID, reason)
}

// cancel restores stock for every line item and marks the order cancelled.
// An empty ownerID skips the ownership check.
func (s *orderService) cancel(ctx context.Context, id uuid.UUID, ownerID, actor, reason string) (*model.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CancelOrder",
		trace.WithAttributes(attribute.String("order.id", id.String())),
	)
	defer span.End()

	var cancelled *model.Order
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := s.lockOrder(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}

		if !order.OrderStatus.IsCancellable() {
			return model.NewInvalidStateError(
				fmt.Sprintf("Order cannot be cancelled once it is %s", order.OrderStatus))
		}

		if err := s.restoreStock(ctx, tx, order); err != nil {
			return err
		}

		now := s.now()
		cancelledAt := now
		order.OrderStatus = model.StatusCancelled
		order.CancelledAt = &cancelledAt
		order.CancelReason = reason
		order.UpdatedAt = now

		if err := s.saveTransition(ctx, tx, order, actor, reason); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return nil, s.wrapTxError(err, "failed to cancel order", id.String())
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("actor", actor).
		Int("item_count", len(cancelled.Items)).
		Msg("order cancelled, stock restored")

	s.publish(ctx, events.OrderCancelled, cancelled, cancelled.TotalPrice)
	return cancelled, nil
}

// RefundOrder refunds amount from a paid order. The first refund moves the order to
// refunded and puts its stock back unless a cancellation already did.
func (s *orderService) RefundOrder(ctx context.Context, id uuid.UUID, amount decimal.Decimal, actor, reason string) (*model.Order, error) {
	if !amount.IsPositive() {
		return nil, model.ErrInvalidRefundAmount
	}

	ctx, span := s.tracer.Start(ctx, "OrderService.RefundOrder", trace.WithAttributes(
		attribute.String("order.id", id.String()),
		attribute.String("refund.amount", amount.String()),
	))
	defer span.End()

	var refunded *model.Order
	err := s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		order, err := s.lockOrder(ctx, tx, id, "")
		if err != nil {
			return err
		}

		if !order.IsPaid {
			return model.ErrOrderNotPaid
		}

		balance := order.TotalPrice.Sub(order.RefundedAmount)
		if amount.GreaterThan(balance) {
			s.logger.Warn().
				Str("order_id", id.String()).
				Str("amount", amount.String()).
				Str("balance", balance.String()).
				Msg("refund exceeds balance")
			return model.ErrRefundExceedsBalance
		}

		if order.OrderStatus != model.StatusRefunded {
			if order.OrderStatus != model.StatusCancelled {
				if err := s.restoreStock(ctx, tx, order); err != nil {
					return err
				}
			}
			order.OrderStatus = model.StatusRefunded
		}

		order.RefundedAmount = order.RefundedAmount.Add(amount)
		if order.RefundedAmount.GreaterThanOrEqual(order.TotalPrice) {
			order.PaymentStatus = model.PaymentRefunded
		} else {
			order.PaymentStatus = model.PaymentPartiallyRefunded
		}
		order.UpdatedAt = s.now()

		note := reason
		if note == "" {
			note = "Refunded " + amount.StringFixed(2)
		}
		if err := s.saveTransition(ctx, tx, order, actor, note); err != nil {
			return err
		}
		refunded = order
		return nil
	})
	endSpan(span, err)
	if err != nil {
		return nil, s.wrapTxError(err, "failed to refund order", id.String())
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("amount", amount.String()).
		Str("refunded_amount", refunded.RefundedAmount.String()).
		Str("payment_status", string(refunded.PaymentStatus)).
		Msg("order refunded")

	s.publish(ctx, events.OrderRefunded, refunded, amount)
	return refunded, nil
}

// lockOrder loads and row-locks an order. A non-empty ownerID hides orders of other users.
func (s *orderService) lockOrder(ctx context.Context, tx pgx.Tx, id uuid.UUID, ownerID string) (*model.Order, error) {
	order, err := s.orderRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if order == nil || (ownerID != "" && order.UserID != ownerID) {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) restoreStock(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	for _, item := range order.Items {
		err := s.productRepo.RestoreStock(ctx, tx, item.ProductID, item.Quantity)
		if errors.Is(err, model.ErrProductNotFound) {
			s.logger.Warn().
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID).
				Msg("product removed from catalog, stock not restored")
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// saveTransition persists the order fields and appends the new status to its history.
func (s *orderService) saveTransition(ctx context.Context, tx pgx.Tx, order *model.Order, actor, note string) error {
	if err := s.orderRepo.UpdateOrder(ctx, tx, order); err != nil {
		return err
	}

	change := model.StatusChange{
		Status:    order.OrderStatus,
		Timestamp: order.UpdatedAt,
		Actor:     actor,
		Note:      note,
	}
	if err := s.orderRepo.AppendStatusHistory(ctx, tx, order.ID, change); err != nil {
		return err
	}
	order.StatusHistory = append(order.StatusHistory, change)
	return nil
}

func asDomainError(err error) (*model.DomainError, bool) {
	var de *model.DomainError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
