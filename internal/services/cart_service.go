package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"food_ordering/internal/models"
	"food_ordering/internal/page"
	"food_ordering/internal/redis"
	"food_ordering/internal/repository"

	"github.com/shopspring/decimal"
)

type CartLine struct {
	Product  models.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartView is a priced snapshot of a session's cart. Amounts are unrounded.
type CartView struct {
	Lines     []CartLine      `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Total     decimal.Decimal `json:"total"`
}

func (v *CartView) Empty() bool { return len(v.Lines) == 0 }

type CartService interface {
	// Add puts quantity more of a product in the cart, capped at the
	// per-line maximum.
	Add(sessionID string, productID uint, quantity int) (*models.Product, error)
	// SetQuantity replaces a line's quantity. Zero or less removes the line;
	// products not in the cart are ignored.
	SetQuantity(sessionID string, productID uint, quantity int) error
	Remove(sessionID string, productID uint) error
	View(sessionID string) (*CartView, error)
	// Checkout is View for a cart that must not be empty.
	Checkout(sessionID string) (*CartView, error)
	Clear(sessionID string) error
}

type cartService struct {
	productRepo repository.ProductRepository
	redis       *redis.Client
	ttl         time.Duration
	taxRate     decimal.Decimal
}

func NewCartService(productRepo repository.ProductRepository, redis *redis.Client, ttl time.Duration, taxRate decimal.Decimal) CartService {
	return &cartService{productRepo: productRepo, redis: redis, ttl: ttl, taxRate: taxRate}
}

func (s *cartService) session(sessionID string) (*redis.SessionData, error) {
	sess, err := s.redis.GetSession(sessionID)
	if errors.Is(err, redis.ErrNotFound) {
		return redis.NewSessionData(time.Now()), nil
	}
	return sess, err
}

func (s *cartService) Add(sessionID string, productID uint, quantity int) (*models.Product, error) {
	if quantity < page.DefaultMinQuantity {
		verr := NewValidationError()
		verr.Add("quantity", page.MsgInvalid)
		return nil, verr
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, notFound(err)
	}
	if !product.Available {
		return nil, ErrProductUnavailable
	}

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	sess.Cart[productID] = page.ClampQuantity(sess.Cart[productID]+quantity, page.DefaultMinQuantity, page.DefaultMaxQuantity)
	if err := s.redis.UpdateSession(sessionID, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return product, nil
}

func (s *cartService) SetQuantity(sessionID string, productID uint, quantity int) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if _, ok := sess.Cart[productID]; !ok {
		return nil
	}
	if quantity <= 0 {
		delete(sess.Cart, productID)
	} else {
		sess.Cart[productID] = page.ClampQuantity(quantity, page.DefaultMinQuantity, page.DefaultMaxQuantity)
	}
	return s.redis.UpdateSession(sessionID, sess, s.ttl)
}

func (s *cartService) Remove(sessionID string, productID uint) error {
	return s.SetQuantity(sessionID, productID, 0)
}

func (s *cartService) View(sessionID string) (*CartView, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	ids := make([]uint, 0, len(sess.Cart))
	for id := range sess.Cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	// Products deleted since they were added drop out of the view.
	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}

	view := &CartView{}
	lines := make([]page.CartLine, 0, len(products))
	for _, p := range products {
		qty := sess.Cart[p.ID]
		line := page.CartLine{UnitPrice: p.Price, Quantity: qty}
		lines = append(lines, line)
		view.Lines = append(view.Lines, CartLine{Product: p, Quantity: qty, Subtotal: line.Total()})
		view.ItemCount += qty
	}
	totals := page.ComputeTotals(lines, s.taxRate)
	view.Subtotal, view.Tax, view.Total = totals.Subtotal, totals.Tax, totals.Total
	return view, nil
}

func (s *cartService) Checkout(sessionID string) (*CartView, error) {
	view, err := s.View(sessionID)
	if err != nil {
		return nil, err
	}
	if view.Empty() {
		return nil, ErrCartEmpty
	}
	return view, nil
}

func (s *cartService) Clear(sessionID string) error {
	sess, err := s.session(sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	sess.Cart = make(map[uint]int)
	return s.redis.UpdateSession(sessionID, sess, s.ttl)
}
