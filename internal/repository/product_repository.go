package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"canopy-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for catalog data access.
// Search results carry their batches so a register can resolve a scan
// without a second round trip.
type ProductRepository interface {
	Upsert(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	Search(ctx context.Context, query string, storeID uuid.UUID, limit int) ([]*domain.Product, error)
	FindByScanCode(ctx context.Context, storeID uuid.UUID, code string) (*domain.Product, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, store_id, sku, name, brand, category, sub_category,
	thc_percent, cbd_percent, unit_price, package_size, equivalent_grams, stock,
	created_at, updated_at`

// Upsert inserts a product or replaces its catalog fields, then
// replaces its batch rows. Used by the back-office import feed.
func (r *productRepository) Upsert(ctx context.Context, product *domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (id, store_id, sku, name, brand, category, sub_category,
			thc_percent, cbd_percent, unit_price, package_size, equivalent_grams, stock,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			sku = EXCLUDED.sku,
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			category = EXCLUDED.category,
			sub_category = EXCLUDED.sub_category,
			thc_percent = EXCLUDED.thc_percent,
			cbd_percent = EXCLUDED.cbd_percent,
			unit_price = EXCLUDED.unit_price,
			package_size = EXCLUDED.package_size,
			equivalent_grams = EXCLUDED.equivalent_grams,
			stock = EXCLUDED.stock,
			updated_at = NOW()
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		product.ID,
		product.StoreID,
		product.SKU,
		product.Name,
		product.Brand,
		product.Category,
		product.SubCategory,
		product.THCPercent,
		product.CBDPercent,
		product.UnitPrice,
		product.PackageSize,
		product.EquivalentGrams,
		product.Stock,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("failed to clear batches: %w", err)
	}

	batchQuery := `
		INSERT INTO batches (id, product_id, lot_code, quantity, case_gtin, unit_gtin, packaged_at, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, b := range product.Batches {
		_, err := tx.ExecContext(
			ctx,
			batchQuery,
			b.ID,
			product.ID,
			b.LotCode,
			b.Quantity,
			b.CaseGTIN,
			b.UnitGTIN,
			b.PackagedAt,
			b.Location,
		)
		if err != nil {
			return fmt.Errorf("failed to insert batch %s: %w", b.LotCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	return nil
}

// FindByID retrieves a product with its batches
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM products WHERE id = $1`, productColumns)

	product, err := r.scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	if err := r.attachBatches(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

// Search finds products by name, brand, or SKU within a store
func (r *productRepository) Search(ctx context.Context, query string, storeID uuid.UUID, limit int) ([]*domain.Product, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	pattern := "%" + strings.TrimSpace(query) + "%"

	searchQuery := fmt.Sprintf(`
		SELECT %s
		FROM products
		WHERE store_id = $1 AND (name ILIKE $2 OR brand ILIKE $2 OR sku ILIKE $2)
		ORDER BY name ASC
		LIMIT $3
	`, productColumns)

	rows, err := r.db.QueryContext(ctx, searchQuery, storeID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	for _, product := range products {
		if err := r.attachBatches(ctx, product); err != nil {
			return nil, err
		}
	}

	return products, nil
}

// FindByScanCode locates the product a scanned code belongs to by
// tolerant comparison against batch GTINs and lot codes: equality or
// containment in either direction, matching the resolver's policy.
func (r *productRepository) FindByScanCode(ctx context.Context, storeID uuid.UUID, code string) (*domain.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrProductNotFound
	}

	query := `
		SELECT DISTINCT b.product_id
		FROM batches b
		JOIN products p ON p.id = b.product_id
		WHERE p.store_id = $1 AND (
			(b.unit_gtin <> '' AND (b.unit_gtin LIKE '%' || $2 || '%' OR $2 LIKE '%' || b.unit_gtin || '%'))
			OR (b.case_gtin <> '' AND (b.case_gtin LIKE '%' || $2 || '%' OR $2 LIKE '%' || b.case_gtin || '%'))
			OR (b.lot_code <> '' AND (b.lot_code LIKE '%' || $2 || '%' OR $2 LIKE '%' || b.lot_code || '%'))
		)
		LIMIT 1
	`

	var productID uuid.UUID
	err := r.db.QueryRowContext(ctx, query, storeID, code).Scan(&productID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by scan code: %w", err)
	}

	return r.FindByID(ctx, productID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *productRepository) scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	err := row.Scan(
		&product.ID,
		&product.StoreID,
		&product.SKU,
		&product.Name,
		&product.Brand,
		&product.Category,
		&product.SubCategory,
		&product.THCPercent,
		&product.CBDPercent,
		&product.UnitPrice,
		&product.PackageSize,
		&product.EquivalentGrams,
		&product.Stock,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *productRepository) attachBatches(ctx context.Context, product *domain.Product) error {
	query := `
		SELECT id, product_id, lot_code, quantity, case_gtin, unit_gtin, packaged_at, location
		FROM batches
		WHERE product_id = $1
		ORDER BY packaged_at NULLS LAST, lot_code
	`

	rows, err := r.db.QueryContext(ctx, query, product.ID)
	if err != nil {
		return fmt.Errorf("failed to load batches: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var batch domain.Batch
		err := rows.Scan(
			&batch.ID,
			&batch.ProductID,
			&batch.LotCode,
			&batch.Quantity,
			&batch.CaseGTIN,
			&batch.UnitGTIN,
			&batch.PackagedAt,
			&batch.Location,
		)
		if err != nil {
			return fmt.Errorf("failed to scan batch: %w", err)
		}
		product.Batches = append(product.Batches, batch)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating batches: %w", err)
	}

	return nil
}
