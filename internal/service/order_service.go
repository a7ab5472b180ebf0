package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bagvo/internal/coupon"
	"bagvo/internal/events"
	"bagvo/internal/model"
	"bagvo/internal/pricing"
	"bagvo/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// OrderPolicy switches advisory checks into hard failures.
type OrderPolicy struct {
	// StrictVariantValidation rejects colors and sizes the product is not offered in.
	StrictVariantValidation bool
	// StrictPaymentMethod rejects payment methods that do not map onto a known method.
	StrictPaymentMethod bool
}

// orderService implements OrderService.
type orderService struct {
	tx          repository.TxRunner
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	addressRepo repository.AddressRepository
	coupons     coupon.Validator
	settings    SettingsService
	publisher   events.Publisher
	policy      OrderPolicy
	now         func() time.Time
	tracer      trace.Tracer
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	tx repository.TxRunner,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	addressRepo repository.AddressRepository,
	coupons coupon.Validator,
	settings SettingsService,
	publisher events.Publisher,
	policy OrderPolicy,
	logger zerolog.Logger,
) OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &orderService{
		tx:          tx,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		addressRepo: addressRepo,
		coupons:     coupons,
		settings:    settings,
		publisher:   publisher,
		policy:      policy,
		now:         time.Now,
		tracer:      otel.Tracer("bagvo/service"),
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// PlaceOrder validates the request, then reserves stock, redeems the coupon and
// inserts the order in a single transaction.
func (s *orderService) PlaceOrder(ctx context.Context, userID string, req *model.OrderRequest) (*model.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.PlaceOrder",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	order, err := s.placeOrder(ctx, userID, req)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.String("order.number", order.OrderNumber),
		attribute.Int("order.items", len(order.Items)),
	)
	endSpan(span, nil)

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("user_id", userID).
		Int("item_count", len(order.Items)).
		Str("total_price", order.TotalPrice.String()).
		Msg("order placed successfully")

	s.publish(ctx, events.OrderPlaced, order, order.TotalPrice)
	return order, nil
}

func (s *orderService) placeOrder(ctx context.Context, userID string, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	shipping, err := s.resolveAddress(ctx, userID, req.Address)
	if err != nil {
		return nil, err
	}

	paymentMethod, err := s.resolvePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	rules := pricing.RulesFromSettings(*settings)

	now := s.now()
	var placed *model.Order
	err = s.tx.WithTx(ctx, func(tx pgx.Tx) error {
		order := &model.Order{
			ID:              uuid.New(),
			UserID:          userID,
			ShippingAddress: shipping,
			PaymentMethod:   paymentMethod,
			PaymentStatus:   model.PaymentPending,
			RefundedAmount:  decimal.Zero,
			OrderStatus:     model.StatusPlaced,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		items, err := s.reserveItems(ctx, tx, order.ID, req.Items)
		if err != nil {
			return err
		}
		order.Items = items

		discount, applied, err := s.applyCoupon(ctx, tx, req.Coupon, pricing.ItemsPrice(items), now)
		if err != nil {
			return err
		}

		breakdown := pricing.Compute(items, rules, discount)
		order.ItemsPrice = breakdown.ItemsPrice
		order.ShippingPrice = breakdown.ShippingPrice
		order.TaxPrice = breakdown.TaxPrice
		order.Discount = breakdown.Discount
		order.TotalPrice = breakdown.TotalPrice
		if applied != "" {
			order.Coupon = &model.AppliedCoupon{Code: applied, Discount: breakdown.Discount}
		}

		if d := req.PaymentDetails; d != nil {
			paidAt := now
			order.PaymentStatus = model.PaymentPaid
			order.IsPaid = true
			order.PaidAt = &paidAt
			order.PaymentResult = &model.PaymentResult{
				TransactionID:  d.TransactionID,
				GatewayOrderID: d.GatewayOrderID,
			}
		}

		if order.OrderNumber == "" {
			number, err := s.orderRepo.NextOrderNumber(ctx, tx, now)
			if err != nil {
				return err
			}
			order.OrderNumber = number
		}

		order.StatusHistory = []model.StatusChange{{
			Status:    model.StatusPlaced,
			Timestamp: now,
			Actor:     userID,
			Note:      "Order placed",
		}}

		if err := s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
			return err
		}

		placed = order
		return nil
	})
	if err != nil {
		return nil, s.wrapTxError(err, "failed to create order", userID)
	}

	return placed, nil
}

// reserveItems resolves every requested product in order and takes its stock.
func (s *orderService) reserveItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, requested []model.OrderItemRequest) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(requested))

	for i, item := range requested {
		productID := strings.TrimSpace(item.Product)

		product, err := s.productRepo.GetByIDTx(ctx, tx, productID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			name := productID
			if item.ProductSnapshot != nil && item.ProductSnapshot.Name != "" {
				name = item.ProductSnapshot.Name
			}
			s.logger.Warn().Str("product_id", productID).Int("item_index", i).Msg("product not found")
			return nil, model.NewProductNotFoundError(name)
		}

		if err := s.checkVariants(product, item); err != nil {
			return nil, err
		}

		if product.Stock < item.Quantity {
			s.logger.Warn().
				Str("product_id", product.ID).
				Int("stock", product.Stock).
				Int("quantity", item.Quantity).
				Msg("insufficient stock")
			return nil, model.NewInsufficientStockError(product.Name, product.Stock, item.Quantity)
		}

		if snap := item.ProductSnapshot; snap != nil && snap.Selling != nil && !snap.Selling.Equal(product.Price.Selling) {
			s.logger.Debug().
				Str("product_id", product.ID).
				Str("snapshot_price", snap.Selling.String()).
				Str("catalog_price", product.Price.Selling.String()).
				Msg("client price snapshot differs from catalog, using catalog price")
		}

		ok, err := s.productRepo.DecrementStock(ctx, tx, product.ID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Another order drained the stock between the read and the update.
			return nil, model.NewInsufficientStockError(product.Name, 0, item.Quantity)
		}

		items = append(items, model.OrderItem{
			ID:            uuid.New(),
			OrderID:       orderID,
			Position:      i,
			ProductID:     product.ID,
			Name:          product.Name,
			ImageURL:      product.ImageURL,
			UnitPrice:     product.Price.Selling,
			OriginalPrice: product.Price.MRP,
			Quantity:      item.Quantity,
			SelectedColor: strings.TrimSpace(item.SelectedColor),
			SelectedSize:  strings.TrimSpace(item.SelectedSize),
		})
	}

	return items, nil
}

func (s *orderService) checkVariants(product *model.Product, item model.OrderItemRequest) error {
	checks := []struct {
		kind     string
		selected string
		options  []string
	}{
		{"color", item.SelectedColor, product.Attributes.Colors},
		{"size", item.SelectedSize, product.Attributes.Sizes},
	}

	for _, c := range checks {
		if variantOffered(c.selected, c.options) {
			continue
		}
		if s.policy.StrictVariantValidation {
			return model.NewValidationError(model.ErrCodeInvalidVariant,
				fmt.Sprintf("%s is not available in %s %s", product.Name, c.kind, strings.TrimSpace(c.selected)))
		}
		s.logger.Warn().
			Str("product_id", product.ID).
			Str("variant", c.kind).
			Str("selected", c.selected).
			Msg("selected variant not offered by product")
	}
	return nil
}

// applyCoupon validates and redeems the requested coupon. It returns the discount
// the coupon grants and the normalised code, or zero and "" when no coupon was sent.
func (s *orderService) applyCoupon(ctx context.Context, tx pgx.Tx, req *model.CouponRequest, itemsPrice decimal.Decimal, now time.Time) (decimal.Decimal, string, error) {
	if req == nil || strings.TrimSpace(req.Code) == "" {
		return decimal.Zero, "", nil
	}

	c, err := s.coupons.Validate(ctx, tx, req.Code, now)
	if err != nil {
		return decimal.Zero, "", err
	}

	if itemsPrice.LessThan(c.MinOrderValue) {
		return decimal.Zero, "", model.NewValidationError(model.ErrCodeInvalidCoupon,
			fmt.Sprintf("Coupon %s requires a minimum order value of %s", c.Code, c.MinOrderValue.StringFixed(2)))
	}

	discount := pricing.CouponDiscount(c, itemsPrice)
	if req.Discount != nil && !req.Discount.Equal(discount) {
		s.logger.Warn().
			Str("coupon_code", c.Code).
			Str("client_discount", req.Discount.String()).
			Str("discount", discount.String()).
			Msg("client coupon discount ignored")
	}

	if err := s.coupons.Redeem(ctx, tx, c.Code); err != nil {
		return decimal.Zero, "", err
	}

	return discount, c.Code, nil
}

func (s *orderService) resolveAddress(ctx context.Context, userID, ref string) (model.ShippingAddress, error) {
	addressID, err := uuid.Parse(strings.TrimSpace(ref))
	if err != nil {
		return model.ShippingAddress{}, model.ErrAddressNotFound
	}

	saved, err := s.addressRepo.GetByID(ctx, userID, addressID)
	if err != nil {
		return model.ShippingAddress{}, fmt.Errorf("failed to resolve address: %w", err)
	}
	if saved == nil {
		s.logger.Debug().Str("user_id", userID).Str("address_id", addressID.String()).Msg("address not found")
		return model.ShippingAddress{}, model.ErrAddressNotFound
	}

	shipping := mapAddress(saved.Data)
	if !shipping.IsComplete() {
		return model.ShippingAddress{}, model.ErrIncompleteAddress
	}
	return shipping, nil
}

func (s *orderService) resolvePaymentMethod(raw string) (string, error) {
	method, ok := normalizePaymentMethod(raw)
	if ok {
		return method, nil
	}
	if s.policy.StrictPaymentMethod {
		return "", model.ErrUnsupportedPayment
	}
	s.logger.Warn().Str("payment_method", method).Msg("unrecognised payment method accepted as sent")
	return method, nil
}

// validateOrderRequest checks required fields before anything is read or written.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil || strings.TrimSpace(req.Address) == "" {
		return model.ErrAddressRequired
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		return model.ErrPaymentMethodRequired
	}
	if len(req.Items) == 0 {
		return model.ErrItemsRequired
	}

	for i, item := range req.Items {
		if strings.TrimSpace(item.Product) == "" {
			return model.NewValidationError(model.ErrCodeMissingField,
				fmt.Sprintf("Item %d: product is required", i+1))
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.Product).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}

// wrapTxError passes domain errors through and adds context to everything else.
func (s *orderService) wrapTxError(err error, msg, subject string) error {
	if _, ok := asDomainError(err); ok {
		return err
	}
	s.logger.Error().Err(err).Str("subject", subject).Msg(msg)
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *orderService) publish(ctx context.Context, eventType events.Type, order *model.Order, amount decimal.Decimal) {
	event := events.NewOrderEvent(eventType, order, amount, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_type", string(eventType)).
			Str("order_id", order.ID.String()).
			Msg("failed to publish order event")
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
