package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const productColumns = `id, name, description, category, price, image_url, tags,
		stock_quantity, rating, is_bestseller, is_new, created_at`

// Repository reads the catalog from SQLite.
type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// :memory: databases are per connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) RunMigrations(migrationsPath string) error {
	driver, err := sqlite.WithInstance(r.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		"sqlite",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) GetAll(ctx context.Context) ([]domain.Product, error) {
	return r.query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	products, err := r.query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return &products[0], nil
}

// GetByCategory tries an exact match first, then case-insensitive partial
// matches of the slug spellings.
func (r *Repository) GetByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	products, err := r.query(ctx, `SELECT `+productColumns+` FROM products WHERE category = ? ORDER BY id`, category)
	if err != nil {
		return nil, err
	}
	if len(products) > 0 {
		return products, nil
	}

	for _, v := range categoryVariants(category) {
		if v == "" {
			continue
		}
		products, err = r.query(ctx,
			`SELECT `+productColumns+` FROM products WHERE LOWER(category) LIKE ? ORDER BY id`,
			"%"+strings.ToLower(v)+"%")
		if err != nil {
			return nil, err
		}
		if len(products) > 0 {
			return products, nil
		}
	}
	return []domain.Product{}, nil
}

func (r *Repository) GetFlagged(ctx context.Context, flag domain.Flag) ([]domain.Product, error) {
	var column string
	switch flag {
	case domain.FlagBestseller:
		column = "is_bestseller"
	case domain.FlagNew:
		column = "is_new"
	default:
		return []domain.Product{}, nil
	}
	return r.query(ctx, `SELECT `+productColumns+` FROM products WHERE `+column+` = 1 ORDER BY id`)
}

func (r *Repository) query(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query products: %w", ErrUnavailable, err)
	}

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("%w: row iteration error: %w", ErrUnavailable, err)
	}
	rows.Close()

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func scanProduct(rows *sql.Rows) (domain.Product, error) {
	var (
		p         domain.Product
		price     float64
		tags      string
		createdAt time.Time
	)
	err := rows.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Category,
		&price,
		&p.ImageRef,
		&tags,
		&p.Stock,
		&p.Rating,
		&p.Bestseller,
		&p.New,
		&createdAt,
	)
	if err != nil {
		return p, fmt.Errorf("failed to scan product: %w", err)
	}
	p.Price = decimal.NewFromFloat(price)
	p.CreatedAt = createdAt.UTC()
	if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
		return p, fmt.Errorf("failed to decode tags of product %d: %w", p.ID, err)
	}
	return p, nil
}

func (r *Repository) attachVariants(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	index := make(map[int64]int, len(products))
	placeholders := make([]string, len(products))
	args := make([]any, len(products))
	for i, p := range products {
		index[p.ID] = i
		placeholders[i] = "?"
		args[i] = p.ID
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT product_id, label, price FROM product_variants
		 WHERE product_id IN (`+strings.Join(placeholders, ",")+`)
		 ORDER BY product_id, position`, args...)
	if err != nil {
		return fmt.Errorf("%w: failed to query variants: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID int64
			label     string
			price     float64
		)
		if err := rows.Scan(&productID, &label, &price); err != nil {
			return fmt.Errorf("%w: failed to scan variant: %w", ErrUnavailable, err)
		}
		i := index[productID]
		products[i].Variants = append(products[i].Variants, domain.Variant{
			Label: label,
			Price: decimal.NewFromFloat(price),
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: row iteration error: %w", ErrUnavailable, err)
	}
	return nil
}
