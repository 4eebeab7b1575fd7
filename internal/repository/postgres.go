package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-order-orchestrator/internal/models"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger zerolog.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logger.With().Str("component", "order-repository").Logger(),
	}
}

var _ OrderRepository = (*PostgresOrderRepository)(nil)

// Create persists the order and its items in one transaction.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, status, total_amount, total_items, paid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		order.ID,
		order.Status,
		order.TotalAmount,
		order.TotalItems,
		order.Paid,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", order.ID).Msg("Failed to insert order")
		return err
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)`,
			order.ID, item.ProductID, item.Quantity, item.UnitPrice,
		)
		if err != nil {
			r.logger.Error().Err(err).Str("order_id", order.ID).Str("product_id", item.ProductID).Msg("Failed to insert order item")
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	r.logger.Info().
		Str("order_id", order.ID).
		Float64("total_amount", order.TotalAmount).
		Int("total_items", order.TotalItems).
		Msg("Order created")

	return nil
}

// GetByID returns the order with its items, or nil when no row matches.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order, err := r.scanOrderRow(r.db.QueryRowContext(ctx, `
		SELECT o.id, o.status, o.total_amount, o.total_items, o.paid,
		       o.paid_at, o.payment_reference, o.created_at, o.updated_at,
		       rc.id, rc.receipt_url, rc.created_at
		FROM orders o
		LEFT JOIN order_receipts rc ON rc.order_id = o.id
		WHERE o.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("Failed to fetch order")
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// List returns one page of orders plus the total count over the same filter.
// Items are not joined in list views.
func (r *PostgresOrderRepository) List(ctx context.Context, filter ListFilter) ([]*models.Order, int, error) {
	where := ""
	args := make([]interface{}, 0, 3)
	if filter.Status != nil {
		where = " WHERE status = $1"
		args = append(args, *filter.Status)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders"+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("Failed to count orders")
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT o.id, o.status, o.total_amount, o.total_items, o.paid,
		       o.paid_at, o.payment_reference, o.created_at, o.updated_at,
		       NULL, NULL, NULL
		FROM orders o%s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("Failed to list orders")
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0, filter.Limit)
	for rows.Next() {
		order, err := r.scanOrderRow(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// UpdateStatus performs a single conditional row update so two racing status
// changes cannot both win.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) (*models.Order, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		id, from, to, time.Now().UTC(),
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("Failed to update order status")
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, apperrors.NewNotFoundError("order", id)
		}
		return nil, apperrors.NewConflictError("order", id,
			fmt.Sprintf("status changed concurrently, expected %s but found %s", from, current.Status))
	}

	r.logger.Info().Str("order_id", id).Str("from", string(from)).Str("to", string(to)).Msg("Order status updated")

	return r.GetByID(ctx, id)
}

// MarkPaid sets the payment fields and attaches the receipt in one
// transaction, conditioned on the order not already being paid.
func (r *PostgresOrderRepository) MarkPaid(ctx context.Context, id, paymentReference, receiptURL string, paidAt time.Time) (*models.Order, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET status = $2, paid = TRUE, paid_at = $3, payment_reference = $4, updated_at = $3
		WHERE id = $1 AND status <> $2`,
		id, models.OrderStatusPaid, paidAt, paymentReference,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("Failed to mark order paid")
		return nil, false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if affected == 0 {
		// Either the order does not exist or it is already paid; the
		// already-paid case must stay a successful no-op under redelivery.
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			return nil, false, err
		}
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if current == nil {
			return nil, false, apperrors.NewNotFoundError("order", id)
		}
		return current, false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO order_receipts (id, order_id, receipt_url, created_at)
		VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), id, receiptURL, paidAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", id).Msg("Failed to insert receipt")
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	r.logger.Info().
		Str("order_id", id).
		Str("payment_reference", paymentReference).
		Msg("Order marked paid")

	updated, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *PostgresOrderRepository) scanOrderRow(row rowScanner) (*models.Order, error) {
	var order models.Order
	var paidAt sql.NullTime
	var paymentReference sql.NullString
	var receiptID, receiptURL sql.NullString
	var receiptCreatedAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.Status,
		&order.TotalAmount,
		&order.TotalItems,
		&order.Paid,
		&paidAt,
		&paymentReference,
		&order.CreatedAt,
		&order.UpdatedAt,
		&receiptID,
		&receiptURL,
		&receiptCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if paidAt.Valid {
		order.PaidAt = &paidAt.Time
	}
	if paymentReference.Valid {
		order.PaymentReference = paymentReference.String
	}
	if receiptID.Valid {
		order.Receipt = &models.Receipt{
			ID:         receiptID.String,
			OrderID:    order.ID,
			ReceiptURL: receiptURL.String,
			CreatedAt:  receiptCreatedAt.Time,
		}
	}

	return &order, nil
}

func (r *PostgresOrderRepository) loadItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, quantity, unit_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.OrderItem, 0, 4)
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
