package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EventOrderPlaced is the outbox event type written with every stored order.
const EventOrderPlaced = "OrderPlaced"

type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
}

// StoredOrder is an order row as read back from Postgres.
type StoredOrder struct {
	ID        uuid.UUID
	SessionID string
	Status    domain.OrderStatus
	Customer  domain.Customer
	Items     []domain.OrderLine
	Totals    domain.Totals
	PlacedAt  time.Time
}

var ErrOrderNotFound = errors.New("order not found")

// Repository stores orders together with their outbox events.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateOrder inserts the order and its OrderPlaced outbox event in one
// transaction.
func (r *Repository) CreateOrder(ctx context.Context, snapshot domain.OrderSnapshot) error {
	customerJSON, err := json.Marshal(snapshot.Customer)
	if err != nil {
		return fmt.Errorf("failed to marshal customer: %w", err)
	}
	itemsJSON, err := json.Marshal(snapshot.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox payload: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, session_id, status, customer, items, subtotal, discount,
		                     delivery_charge, grand_total, coupon_code, placed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		snapshot.ID,
		snapshot.SessionID,
		domain.OrderStatusPlaced,
		customerJSON,
		itemsJSON,
		snapshot.Totals.Subtotal,
		snapshot.Totals.Discount,
		snapshot.Totals.DeliveryCharge,
		snapshot.Totals.GrandTotal,
		snapshot.Totals.CouponCode,
		snapshot.PlacedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_outbox (aggregate_id, event_type, payload) VALUES ($1, $2, $3)`,
		snapshot.ID.String(), EventOrderPlaced, payload)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order: %w", err)
	}
	return nil
}

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*StoredOrder, error) {
	var (
		o            StoredOrder
		customerJSON []byte
		itemsJSON    []byte
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, status, customer, items, subtotal, discount,
		        delivery_charge, grand_total, coupon_code, placed_at
		 FROM orders WHERE id = $1`, id).Scan(
		&o.ID,
		&o.SessionID,
		&o.Status,
		&customerJSON,
		&itemsJSON,
		&o.Totals.Subtotal,
		&o.Totals.Discount,
		&o.Totals.DeliveryCharge,
		&o.Totals.GrandTotal,
		&o.Totals.CouponCode,
		&o.PlacedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	if err := json.Unmarshal(customerJSON, &o.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	o.PlacedAt = o.PlacedAt.UTC()
	return &o, nil
}

// GetUnprocessedEvents returns up to limit outbox events oldest first.
func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at
		 FROM order_outbox
		 WHERE processed_at IS NULL
		 ORDER BY created_at, id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox events: %w", err)
	}
	defer rows.Close()

	var events []*OutboxEvent
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventAsProcessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE order_outbox SET processed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event %d processed: %w", id, err)
	}
	return nil
}

// OrderStore is the part of Repository the submitter needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, snapshot domain.OrderSnapshot) error
}

// PostgresSubmitter accepts an order once it is durably stored.
type PostgresSubmitter struct {
	store OrderStore
}

func NewPostgresSubmitter(store OrderStore) *PostgresSubmitter {
	return &PostgresSubmitter{store: store}
}

func (s *PostgresSubmitter) Submit(ctx context.Context, snapshot domain.OrderSnapshot) (Result, error) {
	err := s.store.CreateOrder(ctx, snapshot)
	if errors.Is(err, ErrDuplicateOrder) {
		return Result{Accepted: false}, nil
	}
	if err != nil {
		return Result{}, err
	}
	return Result{Accepted: true, OrderID: snapshot.ID.String()}, nil
}
