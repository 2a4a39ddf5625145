package repository

import (
	"context"
	"testing"

	"canopy-pos/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func seedTransaction(t *testing.T, repo TransactionRepository, storeID uuid.UUID, status domain.TransactionStatus) *domain.Transaction {
	t.Helper()

	transaction := &domain.Transaction{
		ID:             uuid.New(),
		StoreID:        storeID,
		OperatorID:     uuid.New(),
		Subtotal:       decimal.RequireFromString("50.00"),
		DiscountAmount: decimal.RequireFromString("5.00"),
		Tax:            decimal.RequireFromString("5.85"),
		Total:          decimal.RequireFromString("50.85"),
		PaymentMethod:  "card",
		Status:         status,
		Items: []domain.TransactionItem{
			{
				ID:          uuid.New(),
				ProductID:   uuid.New(),
				ProductName: "Item A",
				LotCode:     "LOT-1",
				Quantity:    2,
				UnitPrice:   decimal.RequireFromString("25.00"),
				DiscountPct: decimal.NewFromInt(10),
			},
		},
	}
	if err := repo.Create(context.Background(), transaction); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return transaction
}

func TestTransactionRepositoryCreateAndFind(t *testing.T) {
	repo := NewTransactionRepository(testDB)
	ctx := context.Background()
	storeID := uuid.New()

	created := seedTransaction(t, repo, storeID, domain.TransactionCompleted)

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Status != domain.TransactionCompleted {
		t.Errorf("status = %q", found.Status)
	}
	if !found.Total.Equal(decimal.RequireFromString("50.85")) {
		t.Errorf("total = %s", found.Total)
	}
	if len(found.Items) != 1 || found.Items[0].ProductName != "Item A" || found.Items[0].LotCode != "LOT-1" {
		t.Errorf("items = %+v", found.Items)
	}
}

func TestTransactionRepositoryFindMissing(t *testing.T) {
	repo := NewTransactionRepository(testDB)

	_, err := repo.FindByID(context.Background(), uuid.New())
	if err != ErrTransactionNotFound {
		t.Errorf("err = %v, want ErrTransactionNotFound", err)
	}
}

func TestTransactionRepositoryListFiltersByStatus(t *testing.T) {
	repo := NewTransactionRepository(testDB)
	ctx := context.Background()
	storeID := uuid.New()

	seedTransaction(t, repo, storeID, domain.TransactionCompleted)
	seedTransaction(t, repo, storeID, domain.TransactionParked)
	seedTransaction(t, repo, storeID, domain.TransactionParked)

	parked, total, err := repo.List(ctx, storeID, domain.TransactionParked, 1, 10)
	if err != nil {
		t.Fatalf("List parked: %v", err)
	}
	if total != 2 || len(parked) != 2 {
		t.Errorf("parked: total = %d, len = %d, want 2/2", total, len(parked))
	}

	all, total, err := repo.List(ctx, storeID, "", 1, 10)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if total != 3 || len(all) != 3 {
		t.Errorf("all: total = %d, len = %d, want 3/3", total, len(all))
	}

	// Page size clamps keep a bad client from dumping the whole table.
	page, _, err := repo.List(ctx, storeID, "", 1, 2)
	if err != nil {
		t.Fatalf("List paged: %v", err)
	}
	if len(page) != 2 {
		t.Errorf("page len = %d, want 2", len(page))
	}
}

func TestTransactionRepositoryUpdateStatus(t *testing.T) {
	repo := NewTransactionRepository(testDB)
	ctx := context.Background()

	created := seedTransaction(t, repo, uuid.New(), domain.TransactionParked)

	if err := repo.UpdateStatus(ctx, created.ID, domain.TransactionCancelled); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	found, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found.Status != domain.TransactionCancelled {
		t.Errorf("status = %q, want cancelled", found.Status)
	}

	if err := repo.UpdateStatus(ctx, uuid.New(), domain.TransactionCancelled); err != ErrTransactionNotFound {
		t.Errorf("missing id err = %v, want ErrTransactionNotFound", err)
	}
}
