package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bagvo/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, order_number, user_id, shipping_address, payment_method, payment_status,
	is_paid, paid_at, payment_result, items_price, shipping_price, tax_price, discount, total_price,
	refunded_amount, coupon_code, coupon_discount, order_status, delivered_at, cancelled_at,
	cancel_reason, created_at, updated_at`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// FormatOrderNumber renders BGV<yyMMdd><seq>, with seq zero-padded to six digits.
func FormatOrderNumber(now time.Time, seq int64) string {
	return fmt.Sprintf("BGV%s%06d", now.Format("060102"), seq)
}

// NextOrderNumber draws the next value of order_number_seq.
func (r *orderRepository) NextOrderNumber(ctx context.Context, tx pgx.Tx, now time.Time) (string, error) {
	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		r.logger.Error().Err(err).Msg("failed to allocate order number")
		return "", fmt.Errorf("failed to allocate order number: %w", err)
	}
	return FormatOrderNumber(now, seq), nil
}

// CreateOrder inserts a new order, its items and its history within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
	`

	couponCode, couponDiscount := couponColumns(order.Coupon)
	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.ShippingAddress,
		order.PaymentMethod,
		string(order.PaymentStatus),
		order.IsPaid,
		order.PaidAt,
		order.PaymentResult,
		order.ItemsPrice,
		order.ShippingPrice,
		order.TaxPrice,
		order.Discount,
		order.TotalPrice,
		order.RefundedAmount,
		couponCode,
		couponDiscount,
		string(order.OrderStatus),
		order.DeliveredAt,
		order.CancelledAt,
		order.CancelReason,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range order.Items {
		item := &order.Items[i]
		batch.Queue(`
			INSERT INTO order_items (id, order_id, position, product_id, name, image_url,
				unit_price, original_price, quantity, selected_color, selected_size)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			item.ID, order.ID, item.Position, item.ProductID, item.Name, item.ImageURL,
			item.UnitPrice, item.OriginalPrice, item.Quantity, item.SelectedColor, item.SelectedSize,
		)
	}
	for _, change := range order.StatusHistory {
		batch.Queue(`
			INSERT INTO order_status_history (order_id, status, actor, note, created_at)
			VALUES ($1, $2, $3, $4, $5)`,
			order.ID, string(change.Status), change.Actor, change.Note, change.Timestamp,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Int("statement", i).
				Msg("failed to create order rows")
			return fmt.Errorf("failed to create order rows: %w", err)
		}
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Int("items", len(order.Items)).
		Msg("order created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items and history.
// It returns nil when the order does not exist.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.getByID(ctx, r.pool, id, false)
}

// GetByIDForUpdate retrieves and locks an order row until the transaction ends.
func (r *orderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	return r.getByID(ctx, tx, id, true)
}

func (r *orderRepository) getByID(ctx context.Context, db querier, id uuid.UUID, forUpdate bool) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var order model.Order
	if err := scanOrder(db.QueryRow(ctx, query, id), &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.loadItems(ctx, db, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	history, err := r.loadHistory(ctx, db, id)
	if err != nil {
		return nil, err
	}
	order.StatusHistory = history

	return &order, nil
}

// ListByUser returns a user's orders with their items, newest first.
func (r *orderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, userID, limit, offset)
}

// List returns orders for the back office, optionally filtered by status.
func (r *orderRepository) List(ctx context.Context, filter model.OrderFilter) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR order_status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, string(filter.Status), filter.Limit, filter.Offset)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	ids := []uuid.UUID{}
	for rows.Next() {
		var order model.Order
		if err := scanOrder(rows, &order); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

// UpdateOrder persists the mutable fields of an order.
func (r *orderRepository) UpdateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		UPDATE orders
		SET payment_status = $2,
			is_paid = $3,
			paid_at = $4,
			refunded_amount = $5,
			order_status = $6,
			delivered_at = $7,
			cancelled_at = $8,
			cancel_reason = $9,
			updated_at = $10
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		order.ID,
		string(order.PaymentStatus),
		order.IsPaid,
		order.PaidAt,
		order.RefundedAmount,
		string(order.OrderStatus),
		order.DeliveredAt,
		order.CancelledAt,
		order.CancelReason,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to update order")
		return fmt.Errorf("failed to update order: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// AppendStatusHistory records a status change for an order.
func (r *orderRepository) AppendStatusHistory(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, change model.StatusChange) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, status, actor, note, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		orderID, string(change.Status), change.Actor, change.Note, change.Timestamp,
	)
	if err != nil {
		r.logger.Error().Err(err).
			Str("order_id", orderID.String()).
			Str("status", string(change.Status)).
			Msg("failed to append status history")
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

func (r *orderRepository) loadItems(ctx context.Context, db querier, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	query := `
		SELECT id, order_id, position, product_id, name, image_url, unit_price,
			original_price, quantity, selected_color, selected_size
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`

	rows, err := db.Query(ctx, query, orderIDs)
	if err != nil {
		r.logger.Error().Err(err).Int("orders", len(orderIDs)).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]model.OrderItem, len(orderIDs))
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.Position,
			&item.ProductID,
			&item.Name,
			&item.ImageURL,
			&item.UnitPrice,
			&item.OriginalPrice,
			&item.Quantity,
			&item.SelectedColor,
			&item.SelectedSize,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return items, nil
}

func (r *orderRepository) loadHistory(ctx context.Context, db querier, orderID uuid.UUID) ([]model.StatusChange, error) {
	rows, err := db.Query(ctx, `
		SELECT status, actor, note, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY id`, orderID)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to query status history")
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	history := []model.StatusChange{}
	for rows.Next() {
		var change model.StatusChange
		var status string
		if err := rows.Scan(&status, &change.Actor, &change.Note, &change.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		change.Status = model.OrderStatus(status)
		history = append(history, change)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status history: %w", err)
	}

	return history, nil
}

func scanOrder(row pgx.Row, o *model.Order) error {
	var (
		paymentStatus  string
		orderStatus    string
		couponCode     *string
		couponDiscount decimal.NullDecimal
	)

	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.ShippingAddress,
		&o.PaymentMethod,
		&paymentStatus,
		&o.IsPaid,
		&o.PaidAt,
		&o.PaymentResult,
		&o.ItemsPrice,
		&o.ShippingPrice,
		&o.TaxPrice,
		&o.Discount,
		&o.TotalPrice,
		&o.RefundedAmount,
		&couponCode,
		&couponDiscount,
		&orderStatus,
		&o.DeliveredAt,
		&o.CancelledAt,
		&o.CancelReason,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return err
	}

	o.PaymentStatus = model.PaymentStatus(paymentStatus)
	o.OrderStatus = model.OrderStatus(orderStatus)
	if couponCode != nil {
		o.Coupon = &model.AppliedCoupon{Code: *couponCode, Discount: couponDiscount.Decimal}
	}

	return nil
}

func couponColumns(c *model.AppliedCoupon) (*string, decimal.NullDecimal) {
	if c == nil {
		return nil, decimal.NullDecimal{}
	}
	return &c.Code, decimal.NullDecimal{Decimal: c.Discount, Valid: true}
}
