package enquiry

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/fjod/nutstore/internal/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, e domain.Enquiry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO enquiries (id, type, name, company, email, phone, subject, product_type,
		                        quantity, budget, delivery_date, message, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		e.ID, e.Type, e.Name, e.Company, e.Email, e.Phone, e.Subject, e.ProductType,
		e.Quantity, e.Budget, e.DeliveryDate, e.Message, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert enquiry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, t domain.EnquiryType) ([]domain.Enquiry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, name, company, email, phone, subject, product_type,
		        quantity, budget, delivery_date, message, created_at
		 FROM enquiries WHERE type = $1 ORDER BY created_at`, t)
	if err != nil {
		return nil, fmt.Errorf("query enquiries: %w", err)
	}
	defer rows.Close()

	var out []domain.Enquiry
	for rows.Next() {
		var e domain.Enquiry
		if err := rows.Scan(&e.ID, &e.Type, &e.Name, &e.Company, &e.Email, &e.Phone, &e.Subject,
			&e.ProductType, &e.Quantity, &e.Budget, &e.DeliveryDate, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan enquiry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// MemoryRepository keeps enquiries in process. Used when no database is
// configured.
type MemoryRepository struct {
	mu        sync.Mutex
	enquiries []domain.Enquiry
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Save(_ context.Context, e domain.Enquiry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enquiries = append(r.enquiries, e)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, t domain.EnquiryType) ([]domain.Enquiry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Enquiry
	for _, e := range r.enquiries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out, nil
}
