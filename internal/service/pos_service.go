package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"canopy-pos/internal/domain"
	"canopy-pos/internal/pricing"
	"canopy-pos/internal/repository"
	"canopy-pos/internal/scan"
	"canopy-pos/internal/session"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart              = errors.New("cart is empty")
	ErrScanUnmatched          = errors.New("no product matches the scanned code")
	ErrPromotionNotActive     = errors.New("promotion is not currently active")
	ErrRegulatedLimitExceeded = errors.New("regulated equivalent exceeds the legal limit")
	ErrNotParked              = errors.New("transaction is not parked")
	ErrSearchSuperseded       = errors.New("search superseded by a newer request")
)

// CartView is what a register renders after any cart operation: the
// session itself, presentation-rounded totals, and the regulated
// aggregate with its gate already evaluated.
type CartView struct {
	Session    domain.CartSession `json:"session"`
	Totals     domain.Totals      `json:"totals"`
	Equivalent float64            `json:"equivalent_grams"`
	OverLimit  bool               `json:"over_limit"`
}

// ScanOutcome reports what a barcode scan resolved to.
type ScanOutcome struct {
	View    *CartView       `json:"view"`
	Product *domain.Product `json:"product"`
	Batch   *domain.Batch   `json:"batch,omitempty"`
}

// PosService drives the register: session lifecycle, cart mutations,
// scanning, and sale finalization.
type PosService interface {
	OpenSession(ctx context.Context, storeID, operatorID uuid.UUID) (*CartView, error)
	View(ctx context.Context, sessionID uuid.UUID) (*CartView, error)
	Scan(ctx context.Context, sessionID uuid.UUID, raw string) (*ScanOutcome, error)
	AddLine(ctx context.Context, sessionID, productID uuid.UUID, quantity int, discountPct decimal.Decimal, promoTag, lotCode string) (*CartView, error)
	UpdateLine(ctx context.Context, sessionID uuid.UUID, key string, quantity *int, discountPct *decimal.Decimal) (*CartView, error)
	RemoveLine(ctx context.Context, sessionID uuid.UUID, key string) (*CartView, error)
	SetOrderDiscount(ctx context.Context, sessionID uuid.UUID, discount domain.OrderDiscount) (*CartView, error)
	ApplyPromotion(ctx context.Context, sessionID uuid.UUID, tag string) (*CartView, error)
	ClearCart(ctx context.Context, sessionID uuid.UUID) (*CartView, error)
	Park(ctx context.Context, sessionID uuid.UUID, customerID *uuid.UUID) (*domain.Transaction, error)
	Complete(ctx context.Context, sessionID uuid.UUID, paymentMethod string, customerID *uuid.UUID) (*domain.Transaction, error)
	Resume(ctx context.Context, sessionID, transactionID uuid.UUID) (*CartView, error)
	SearchProducts(ctx context.Context, sessionID uuid.UUID, query string, limit int) ([]*domain.Product, error)
	History(ctx context.Context, storeID uuid.UUID, status domain.TransactionStatus, page, pageSize int) ([]*domain.Transaction, int, error)
}

type posService struct {
	products     repository.ProductRepository
	transactions repository.TransactionRepository
	promotions   repository.PromotionRepository
	sessions     *session.Store

	taxRate           decimal.Decimal
	regulatedCategory string
	equivalentLimit   float64

	mu         sync.Mutex
	sequencers map[uuid.UUID]*session.Sequencer
}

// NewPosService creates a new instance of PosService
func NewPosService(
	products repository.ProductRepository,
	transactions repository.TransactionRepository,
	promotions repository.PromotionRepository,
	sessions *session.Store,
	taxRate float64,
	regulatedCategory string,
	equivalentLimit float64,
) PosService {
	return &posService{
		products:          products,
		transactions:      transactions,
		promotions:        promotions,
		sessions:          sessions,
		taxRate:           decimal.NewFromFloat(taxRate),
		regulatedCategory: regulatedCategory,
		equivalentLimit:   equivalentLimit,
		sequencers:        make(map[uuid.UUID]*session.Sequencer),
	}
}

func (s *posService) view(sess domain.CartSession) *CartView {
	equivalent := pricing.RegulatedEquivalent(sess.Lines, s.regulatedCategory)
	return &CartView{
		Session:    sess,
		Totals:     pricing.ComputeTotals(sess.Lines, sess.Discount, s.taxRate).Presented(),
		Equivalent: equivalent,
		OverLimit:  equivalent > s.equivalentLimit,
	}
}

// OpenSession starts an empty cart for a register.
func (s *posService) OpenSession(ctx context.Context, storeID, operatorID uuid.UUID) (*CartView, error) {
	sess := domain.NewCartSession(storeID, operatorID)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to open cart session: %w", err)
	}
	return s.view(sess), nil
}

// View returns the current cart with recomputed totals.
func (s *posService) View(ctx context.Context, sessionID uuid.UUID) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// Scan resolves a barcode to a product and batch and merges one unit
// into the cart. An unresolvable code returns ErrScanUnmatched and
// leaves the cart untouched.
func (s *posService) Scan(ctx context.Context, sessionID uuid.UUID, raw string) (*ScanOutcome, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByScanCode(ctx, sess.StoreID, raw)
	if err != nil {
		if err == repository.ErrProductNotFound {
			return nil, ErrScanUnmatched
		}
		return nil, fmt.Errorf("failed to look up scanned product: %w", err)
	}

	batch := scan.ResolveBatch(raw, product.Batches)

	sess = sess.WithLine(domain.CartLine{
		Product:  *product,
		Quantity: 1,
		Batch:    batch,
	})

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save cart session: %w", err)
	}

	return &ScanOutcome{View: s.view(sess), Product: product, Batch: batch}, nil
}

// AddLine adds a product manually, optionally pinned to a lot.
func (s *posService) AddLine(ctx context.Context, sessionID, productID uuid.UUID, quantity int, discountPct decimal.Decimal, promoTag, lotCode string) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	var batch *domain.Batch
	if lotCode != "" {
		for i := range product.Batches {
			if product.Batches[i].LotCode == lotCode {
				batch = &product.Batches[i]
				break
			}
		}
	}

	sess = sess.WithLine(domain.CartLine{
		Product:     *product,
		Quantity:    quantity,
		DiscountPct: discountPct,
		PromoTag:    promoTag,
		Batch:       batch,
	})

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save cart session: %w", err)
	}

	return s.view(sess), nil
}

// UpdateLine changes quantity and/or discount on one line. Quantity
// zero or below removes the line. Unknown keys are ignored so the cart
// always stays renderable.
func (s *posService) UpdateLine(ctx context.Context, sessionID uuid.UUID, key string, quantity *int, discountPct *decimal.Decimal) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if quantity != nil {
		sess = sess.WithQuantity(key, *quantity)
	}
	if discountPct != nil {
		sess = sess.WithLineDiscount(key, *discountPct)
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save cart session: %w", err)
	}

	return s.view(sess), nil
}

// RemoveLine drops one line from the cart.
func (s *posService) RemoveLine(ctx context.Context, sessionID uuid.UUID, key string) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess = sess.WithoutLine(key)

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save cart session: %w", err)
	}

	return s.view(sess), nil
}

// SetOrderDiscount replaces the order-level discount.
func (s *posService) SetOrderDiscount(ctx context.Context, sessionID uuid.UUID, discount domain.OrderDiscount) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess = sess.WithDiscount(discount)

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save cart session: %w", err)
	}

	return s.view(sess), nil
}

// ApplyPromotion sets the order discount from an active promotion tag.
func (s *posService) ApplyPromotion(ctx context.Context, sessionID uuid.UUID, tag string) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	promotion, err := s.promotions.FindByTag(ctx, sess.StoreID, tag)
	if err != nil {
		return nil, err
	}
	if !promotion.CurrentAt(time.Now()) {
		return nil, ErrPromotionNotActive
	}

	sess = sess.WithDiscount(domain.OrderDiscount{Kind: promotion.Kind, Value: promotion.Value})

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save cart session: %w", err)
	}

	return s.view(sess), nil
}

// ClearCart empties the cart but keeps the session open.
func (s *posService) ClearCart(ctx context.Context, sessionID uuid.UUID) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sess = sess.Cleared()

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save cart session: %w", err)
	}

	return s.view(sess), nil
}

// Park snapshots the cart as a parked transaction and empties the
// session. The cart is only cleared once persistence succeeded, so a
// failed park leaves it intact for retry.
func (s *posService) Park(ctx context.Context, sessionID uuid.UUID, customerID *uuid.UUID) (*domain.Transaction, error) {
	return s.finalize(ctx, sessionID, domain.TransactionParked, "", customerID, false)
}

// Complete finalizes the sale. The regulated-equivalent ceiling is a
// guarded precondition here: an over-limit cart is refused, not saved.
func (s *posService) Complete(ctx context.Context, sessionID uuid.UUID, paymentMethod string, customerID *uuid.UUID) (*domain.Transaction, error) {
	return s.finalize(ctx, sessionID, domain.TransactionCompleted, paymentMethod, customerID, true)
}

func (s *posService) finalize(ctx context.Context, sessionID uuid.UUID, status domain.TransactionStatus, paymentMethod string, customerID *uuid.UUID, gate bool) (*domain.Transaction, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if len(sess.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	if gate {
		if equivalent := pricing.RegulatedEquivalent(sess.Lines, s.regulatedCategory); equivalent > s.equivalentLimit {
			return nil, ErrRegulatedLimitExceeded
		}
	}

	if customerID != nil {
		sess = sess.WithCustomer(customerID)
	}

	totals := pricing.ComputeTotals(sess.Lines, sess.Discount, s.taxRate).Presented()

	transaction := &domain.Transaction{
		ID:             uuid.New(),
		StoreID:        sess.StoreID,
		OperatorID:     sess.OperatorID,
		CustomerID:     sess.CustomerID,
		Subtotal:       totals.Subtotal,
		DiscountAmount: totals.DiscountAmount,
		Tax:            totals.Tax,
		Total:          totals.Total,
		PaymentMethod:  paymentMethod,
		Status:         status,
		CreatedAt:      time.Now().UTC(),
	}

	for _, line := range sess.Lines {
		lot := ""
		if line.Batch != nil {
			lot = line.Batch.LotCode
		}
		transaction.Items = append(transaction.Items, domain.TransactionItem{
			ID:          uuid.New(),
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			LotCode:     lot,
			Quantity:    line.Quantity,
			UnitPrice:   line.Product.UnitPrice,
			DiscountPct: line.DiscountPct,
			PromoTag:    line.PromoTag,
		})
	}

	if err := s.transactions.Create(ctx, transaction); err != nil {
		// Cart state is never lost on a failed persistence attempt.
		return nil, fmt.Errorf("failed to persist transaction: %w", err)
	}

	sess = sess.Cleared()
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to clear cart session: %w", err)
	}

	return transaction, nil
}

// Resume rebuilds a live cart from a parked transaction's snapshot.
// The parked transaction is cancelled so the sale is not counted twice
// once the resumed cart finalizes on its own.
func (s *posService) Resume(ctx context.Context, sessionID, transactionID uuid.UUID) (*CartView, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	parked, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if parked.Status != domain.TransactionParked {
		return nil, ErrNotParked
	}

	sess = sess.Cleared().WithCustomer(parked.CustomerID)
	for _, item := range parked.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to restore product %s: %w", item.ProductID, err)
		}

		var batch *domain.Batch
		if item.LotCode != "" {
			for i := range product.Batches {
				if product.Batches[i].LotCode == item.LotCode {
					batch = &product.Batches[i]
					break
				}
			}
		}

		// Snapshot price wins over the current catalog price so the
		// resumed sale matches what the customer was quoted.
		restored := *product
		restored.UnitPrice = item.UnitPrice

		sess = sess.WithLine(domain.CartLine{
			Product:     restored,
			Quantity:    item.Quantity,
			DiscountPct: item.DiscountPct,
			PromoTag:    item.PromoTag,
			Batch:       batch,
		})
	}

	if err := s.transactions.UpdateStatus(ctx, transactionID, domain.TransactionCancelled); err != nil {
		return nil, fmt.Errorf("failed to retire parked transaction: %w", err)
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save cart session: %w", err)
	}

	return s.view(sess), nil
}

// SearchProducts runs a keystroke-driven catalog search. Each session
// keeps a sequencer so results of a superseded request are discarded
// instead of overwriting newer ones.
func (s *posService) SearchProducts(ctx context.Context, sessionID uuid.UUID, query string, limit int) ([]*domain.Product, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	seq := s.sequencer(sessionID)
	tag := seq.Begin()

	products, err := s.products.Search(ctx, query, sess.StoreID, limit)
	if err != nil {
		return nil, err
	}

	if !seq.Accept(tag) {
		return nil, ErrSearchSuperseded
	}

	return products, nil
}

// History lists finalized and parked sales for a store.
func (s *posService) History(ctx context.Context, storeID uuid.UUID, status domain.TransactionStatus, page, pageSize int) ([]*domain.Transaction, int, error) {
	return s.transactions.List(ctx, storeID, status, page, pageSize)
}

func (s *posService) sequencer(sessionID uuid.UUID) *session.Sequencer {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, ok := s.sequencers[sessionID]
	if !ok {
		seq = &session.Sequencer{}
		s.sequencers[sessionID] = seq
	}
	return seq
}
