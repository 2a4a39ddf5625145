package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"canopy-pos/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// TransactionRepository defines the interface for sale persistence.
// A transaction and its item snapshot are written atomically.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *domain.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	List(ctx context.Context, storeID uuid.UUID, status domain.TransactionStatus, page, pageSize int) ([]*domain.Transaction, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create writes the transaction and its items in one SQL transaction,
// so a failed persistence attempt leaves nothing behind and the live
// cart can simply retry.
func (r *transactionRepository) Create(ctx context.Context, transaction *domain.Transaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO transactions (id, store_id, operator_id, customer_id, subtotal,
			discount_amount, tax, total, payment_method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = tx.ExecContext(
		ctx,
		query,
		transaction.ID,
		transaction.StoreID,
		transaction.OperatorID,
		transaction.CustomerID,
		transaction.Subtotal,
		transaction.DiscountAmount,
		transaction.Tax,
		transaction.Total,
		transaction.PaymentMethod,
		transaction.Status,
		transaction.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	itemQuery := `
		INSERT INTO transaction_items (id, transaction_id, product_id, product_name,
			lot_code, quantity, unit_price, discount_pct, promo_tag)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, item := range transaction.Items {
		_, err := tx.ExecContext(
			ctx,
			itemQuery,
			item.ID,
			transaction.ID,
			item.ProductID,
			item.ProductName,
			item.LotCode,
			item.Quantity,
			item.UnitPrice,
			item.DiscountPct,
			item.PromoTag,
		)
		if err != nil {
			return fmt.Errorf("failed to create transaction item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a transaction with its item snapshot
func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `
		SELECT id, store_id, operator_id, customer_id, subtotal, discount_amount,
			tax, total, payment_method, status, created_at
		FROM transactions
		WHERE id = $1
	`

	transaction := &domain.Transaction{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&transaction.ID,
		&transaction.StoreID,
		&transaction.OperatorID,
		&transaction.CustomerID,
		&transaction.Subtotal,
		&transaction.DiscountAmount,
		&transaction.Tax,
		&transaction.Total,
		&transaction.PaymentMethod,
		&transaction.Status,
		&transaction.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to find transaction by ID: %w", err)
	}

	if err := r.attachItems(ctx, transaction); err != nil {
		return nil, err
	}

	return transaction, nil
}

// List retrieves transactions for a store, optionally filtered by
// status, newest first, with pagination.
func (r *transactionRepository) List(ctx context.Context, storeID uuid.UUID, status domain.TransactionStatus, page, pageSize int) ([]*domain.Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	whereClause := "WHERE store_id = $1"
	args := []interface{}{storeID}

	if status != "" {
		whereClause += " AND status = $2"
		args = append(args, status)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM transactions %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	offset := (page - 1) * pageSize
	listQuery := fmt.Sprintf(`
		SELECT id, store_id, operator_id, customer_id, subtotal, discount_amount,
			tax, total, payment_method, status, created_at
		FROM transactions
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []*domain.Transaction{}
	for rows.Next() {
		transaction := &domain.Transaction{}
		err := rows.Scan(
			&transaction.ID,
			&transaction.StoreID,
			&transaction.OperatorID,
			&transaction.CustomerID,
			&transaction.Subtotal,
			&transaction.DiscountAmount,
			&transaction.Tax,
			&transaction.Total,
			&transaction.PaymentMethod,
			&transaction.Status,
			&transaction.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, transaction)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, total, nil
}

// UpdateStatus transitions a transaction to a new status
func (r *transactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE transactions SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to update transaction status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}

func (r *transactionRepository) attachItems(ctx context.Context, transaction *domain.Transaction) error {
	query := `
		SELECT id, product_id, product_name, lot_code, quantity, unit_price, discount_pct, promo_tag
		FROM transaction_items
		WHERE transaction_id = $1
		ORDER BY product_name, lot_code
	`

	rows, err := r.db.QueryContext(ctx, query, transaction.ID)
	if err != nil {
		return fmt.Errorf("failed to load transaction items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.TransactionItem
		err := rows.Scan(
			&item.ID,
			&item.ProductID,
			&item.ProductName,
			&item.LotCode,
			&item.Quantity,
			&item.UnitPrice,
			&item.DiscountPct,
			&item.PromoTag,
		)
		if err != nil {
			return fmt.Errorf("failed to scan transaction item: %w", err)
		}
		transaction.Items = append(transaction.Items, item)
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating transaction items: %w", err)
	}

	return nil
}
